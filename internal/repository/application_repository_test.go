package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Application{}, &models.ApprovalLog{}, &models.EmailLog{}))
	return db
}

func strPtr(s string) *string { return &s }

func newApplication(status models.Status) *models.Application {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return &models.Application{
		ID:              uuid.NewString(),
		WorkOrderNumber: models.WorkOrderNumberFor(start),
		ApplicantName:   "Wang",
		ApplicantEmail:  strPtr("wang@plant.test"),
		Department:      "Maintenance",
		WorkArea:        "Boiler room",
		WorkContent:     "Replace flange",
		WorkTimeStart:   start,
		WorkTimeEnd:     start.Add(4 * time.Hour),
		HazardFactors:   models.HazardFactors{HotWork: true},
		HazardousOperations: models.HazardousOperations{
			HotWork: models.OperationYes,
			HotWorkDetails: &models.HotWorkDetails{
				PersonnelType:  models.PersonnelTypeEmployee,
				AreaSupervisor: "Production Manager",
			},
		},
		AreaSupervisorEmail: strPtr("prod@plant.test"),
		Status:              status,
	}
}

func TestApplicationRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewApplicationRepository(newTestDB(t))

	app := newApplication(models.StatusPendingAreaSupervisor)
	require.NoError(t, repo.Create(ctx, app))

	found, err := repo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingAreaSupervisor, found.Status)
	assert.True(t, found.HazardFactors.HotWork)
	require.NotNil(t, found.HazardousOperations.HotWorkDetails)
	assert.Equal(t, "Production Manager", found.HazardousOperations.HotWorkDetails.AreaSupervisor)
	assert.Nil(t, found.PersonnelInfo)
	assert.Empty(t, found.ApprovalLogs)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestApplicationRepository_ApplyTransition(t *testing.T) {
	ctx := context.Background()
	repo := NewApplicationRepository(newTestDB(t))

	app := newApplication(models.StatusPendingAreaSupervisor)
	require.NoError(t, repo.Create(ctx, app))

	ops := app.HazardousOperations
	details := *ops.HotWorkDetails
	details.FireWatcherName = "Chen"
	ops.HotWorkDetails = &details

	log := &models.ApprovalLog{
		ApproverType:  models.ApproverTypeAreaSupervisor,
		ApproverEmail: "prod@plant.test",
		Action:        models.ActionApprove,
	}
	err := repo.ApplyTransition(ctx, Transition{
		ApplicationID:       app.ID,
		From:                models.StatusPendingAreaSupervisor,
		To:                  models.StatusPendingEHS,
		HazardousOperations: &ops,
		Log:                 log,
	})
	require.NoError(t, err)
	assert.NotZero(t, log.ID)
	assert.Equal(t, app.ID, log.ApplicationID)

	found, err := repo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingEHS, found.Status)
	assert.Equal(t, "Chen", found.HazardousOperations.HotWorkDetails.FireWatcherName)
	require.Len(t, found.ApprovalLogs, 1)
	assert.Equal(t, models.ApproverTypeAreaSupervisor, found.ApprovalLogs[0].ApproverType)
}

func TestApplicationRepository_ApplyTransitionGuardsStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewApplicationRepository(newTestDB(t))

	app := newApplication(models.StatusPendingEHS)
	require.NoError(t, repo.Create(ctx, app))

	first := Transition{
		ApplicationID: app.ID,
		From:          models.StatusPendingEHS,
		To:            models.StatusPendingManager,
		Log:           &models.ApprovalLog{ApproverType: models.ApproverTypeEHSManager, ApproverEmail: "ehs@plant.test", Action: models.ActionApprove},
	}
	second := Transition{
		ApplicationID: app.ID,
		From:          models.StatusPendingEHS,
		To:            models.StatusRejected,
		Log:           &models.ApprovalLog{ApproverType: models.ApproverTypeEHSManager, ApproverEmail: "ehs@plant.test", Action: models.ActionReject},
	}

	require.NoError(t, repo.ApplyTransition(ctx, first))
	assert.ErrorIs(t, repo.ApplyTransition(ctx, second), ErrStatusChanged)

	found, err := repo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingManager, found.Status)
	assert.Len(t, found.ApprovalLogs, 1, "rolled back transition must not leave a log entry")
}

func TestApplicationRepository_ApplyTransitionRollsBackOnLogFailure(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewApplicationRepository(db)

	app := newApplication(models.StatusPendingEHS)
	require.NoError(t, repo.Create(ctx, app))

	// log insert fails after the status update has run inside the transaction
	require.NoError(t, db.Migrator().DropTable(&models.ApprovalLog{}))

	err := repo.ApplyTransition(ctx, Transition{
		ApplicationID: app.ID,
		From:          models.StatusPendingEHS,
		To:            models.StatusApproved,
		Log:           &models.ApprovalLog{ApproverType: models.ApproverTypeEHSManager, ApproverEmail: "ehs@plant.test", Action: models.ActionApprove},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStatusChanged)

	var stored models.Application
	require.NoError(t, db.Select("id", "status").First(&stored, "id = ?", app.ID).Error)
	assert.Equal(t, models.StatusPendingEHS, stored.Status)
}

func TestApplicationRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewApplicationRepository(newTestDB(t))

	pending := newApplication(models.StatusPendingEHS)
	pending.ApplicantName = "Lin"
	pending.WorkArea = "Tank farm"
	require.NoError(t, repo.Create(ctx, pending))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newApplication(models.StatusApproved)))
	}

	q := NewListQuery()
	q.Filters["status"] = models.StatusPendingEHS.String()
	apps, total, err := repo.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, apps, 1)
	assert.Equal(t, pending.ID, apps[0].ID)

	q = NewListQuery()
	q.Search = "TANK"
	_, total, err = repo.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	q = NewListQuery()
	q.PerPage = 2
	q.Page = 2
	apps, total, err = repo.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, apps, 2)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestApplicationRepository_DeleteCascadesLogs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewApplicationRepository(db)

	app := newApplication(models.StatusPendingEHS)
	require.NoError(t, repo.Create(ctx, app))
	require.NoError(t, repo.ApplyTransition(ctx, Transition{
		ApplicationID: app.ID,
		From:          models.StatusPendingEHS,
		To:            models.StatusRejected,
		Log:           &models.ApprovalLog{ApproverType: models.ApproverTypeEHSManager, ApproverEmail: "ehs@plant.test", Action: models.ActionReject, Comment: strPtr("missing gas test")},
	}))

	logs, err := repo.ListApprovalLogs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	require.NoError(t, repo.Delete(ctx, app.ID))
	assert.ErrorIs(t, repo.Delete(ctx, app.ID), gorm.ErrRecordNotFound)

	logs, err = repo.ListApprovalLogs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

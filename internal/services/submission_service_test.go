package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sjperalta/workpermit-api/internal/config"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func newTestSubmissionService(repo *memoryApplicationRepository, resolver *roles.Resolver) (*SubmissionService, *recordingDispatcher) {
	d := &recordingDispatcher{}
	svc := NewSubmissionService(repo, resolver, d, testBaseURL)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "app-1" }
	return svc, d
}

func generalInput() CreateApplicationInput {
	return CreateApplicationInput{
		ApplicantName: "Wang",
		Department:    "Maintenance",
		WorkArea:      "Line 3",
		WorkContent:   "Replace conveyor belt",
		WorkTimeStart: "2026-10-14T08:00",
		WorkTimeEnd:   "2026-10-14T17:00",
		HazardFactors: &models.HazardFactors{GeneralWork: true},
	}
}

func hotWorkInput() CreateApplicationInput {
	in := generalInput()
	in.HazardFactors = &models.HazardFactors{HotWork: true}
	in.HazardousOperations = models.HazardousOperations{
		HotWork: models.OperationYes,
		HotWorkDetails: &models.HotWorkDetails{
			PersonnelType:     models.PersonnelTypeEmployee,
			Date:              "2026-10-14",
			OperationLocation: "Line 3 welding bay",
			WorkToBePerformed: "Weld bracket",
			OperatorName:      "Li",
			AreaSupervisor:    "Production Manager",
		},
	}
	return in
}

func TestSubmissionService_Create_HotWorkRoutesToAreaSupervisor(t *testing.T) {
	repo := newMemoryApplicationRepository()
	svc, d := newTestSubmissionService(repo, testResolver())

	app, err := svc.Create(context.Background(), testApplicant, hotWorkInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingAreaSupervisor, app.Status)
	assert.Equal(t, "EHS202610140930", app.WorkOrderNumber)
	assert.Equal(t, testArea, deref(app.AreaSupervisorEmail))
	assert.Equal(t, testEHS, deref(app.EHSManagerEmail))
	assert.Equal(t, testOps, deref(app.DepartmentManagerEmail))
	assert.Equal(t, testApplicant, deref(app.ApplicantEmail))

	stored := repo.get("app-1")
	assert.Equal(t, models.StatusPendingAreaSupervisor, stored.Status)

	sent := d.all()
	require.Len(t, sent, 1)
	assert.Equal(t, models.EmailTypeAreaSupervisorNew, sent[0].Kind)
	assert.Equal(t, testArea, sent[0].To)
	assert.Equal(t, testBaseURL+"/applications/app-1", sent[0].Link)
}

func TestSubmissionService_Create_GeneralWorkRoutesToEHS(t *testing.T) {
	repo := newMemoryApplicationRepository()
	svc, d := newTestSubmissionService(repo, testResolver())

	in := generalInput()
	in.ApplicantEmail = "someone.else@plant.test"
	app, err := svc.Create(context.Background(), testApplicant, in)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingEHS, app.Status)
	assert.Nil(t, app.AreaSupervisorEmail)
	assert.Equal(t, "someone.else@plant.test", deref(app.ApplicantEmail))

	sent := d.all()
	require.Len(t, sent, 1)
	assert.Equal(t, models.EmailTypeEHSNew, sent[0].Kind)
	assert.Equal(t, testEHS, sent[0].To)
}

func TestSubmissionService_Create_HotWorkNoSkipsAreaSupervisor(t *testing.T) {
	repo := newMemoryApplicationRepository()
	svc, _ := newTestSubmissionService(repo, testResolver())

	in := generalInput()
	in.HazardFactors = &models.HazardFactors{HotWork: true}
	in.HazardousOperations.HotWork = models.OperationNo

	app, err := svc.Create(context.Background(), testApplicant, in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingEHS, app.Status)
}

func TestSubmissionService_Create_CollectsEveryViolation(t *testing.T) {
	repo := newMemoryApplicationRepository()
	svc, d := newTestSubmissionService(repo, testResolver())

	in := CreateApplicationInput{
		ApplicantEmail: "not-an-email",
		WorkTimeStart:  "2026-10-14T17:00",
		WorkTimeEnd:    "2026-10-14T08:00",
	}
	_, err := svc.Create(context.Background(), testApplicant, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"applicant_name", "department", "work_area", "work_content", "applicant_email", "work_time_end", "hazard_factors"} {
		assert.True(t, fields[want], "expected violation for %s", want)
	}

	assert.Empty(t, d.all())
	assert.Empty(t, repo.apps)
}

func TestSubmissionService_Create_RejectsMultiDayWindow(t *testing.T) {
	svc, _ := newTestSubmissionService(newMemoryApplicationRepository(), testResolver())

	in := generalInput()
	in.WorkTimeEnd = "2026-10-15T09:00"
	_, err := svc.Create(context.Background(), testApplicant, in)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "work_time_end", verr.Fields[0].Field)
}

func TestSubmissionService_Create_ContractorNeedsName(t *testing.T) {
	svc, _ := newTestSubmissionService(newMemoryApplicationRepository(), testResolver())

	in := hotWorkInput()
	in.HazardousOperations.HotWorkDetails.PersonnelType = models.PersonnelTypeContractor
	_, err := svc.Create(context.Background(), testApplicant, in)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "hazardous_operations.hot_work_details.contractor_name", verr.Fields[0].Field)
}

func TestSubmissionService_Create_MissingAreaSupervisorConfig(t *testing.T) {
	svc, d := newTestSubmissionService(newMemoryApplicationRepository(), testResolver())

	in := hotWorkInput()
	in.HazardousOperations.HotWorkDetails.AreaSupervisor = "Warehouse Manager"
	_, err := svc.Create(context.Background(), testApplicant, in)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "Warehouse Manager")
	assert.Empty(t, d.all())
}

func TestSubmissionService_Create_MissingEHSConfig(t *testing.T) {
	resolver := roles.NewResolver(config.RoleTables{})
	svc, _ := newTestSubmissionService(newMemoryApplicationRepository(), resolver)

	_, err := svc.Create(context.Background(), testApplicant, generalInput())
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestSubmissionService_Create_UnregisteredApplicant(t *testing.T) {
	resolver := roles.NewResolver(config.RoleTables{
		EHSEmails:  []string{testEHS},
		Applicants: []config.Applicant{{Name: "Wang", Email: testApplicant}},
	})
	svc, _ := newTestSubmissionService(newMemoryApplicationRepository(), resolver)

	_, err := svc.Create(context.Background(), "stranger@plant.test", generalInput())
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = svc.Create(context.Background(), "WANG@plant.test", generalInput())
	assert.NoError(t, err)
}

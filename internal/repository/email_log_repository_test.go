package repository

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailLogRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewEmailLogRepository(newTestDB(t))

	appID := "app-1"
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &models.EmailLog{
		ApplicationID: &appID,
		Recipient:     "ehs@plant.test",
		Subject:       "New request",
		EmailType:     models.EmailTypeEHSNew,
		Channel:       "log",
		Success:       true,
		SentAt:        base,
	}))
	require.NoError(t, repo.Create(ctx, &models.EmailLog{
		ApplicationID: &appID,
		Recipient:     "wang@plant.test",
		Subject:       "Rejected",
		EmailType:     models.EmailTypeApplicantRejected,
		Channel:       "smtp",
		Success:       false,
		ErrorMessage:  strPtr("connection refused"),
		SentAt:        base.Add(time.Minute),
	}))
	require.NoError(t, repo.Create(ctx, &models.EmailLog{
		Recipient: "ops@plant.test",
		Subject:   "Test",
		EmailType: models.EmailTypeTest,
		Success:   true,
		SentAt:    base.Add(2 * time.Minute),
	}))

	all, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.EmailTypeTest, all[0].EmailType)
	assert.Nil(t, all[0].ApplicationID)

	forApp, err := repo.FindByApplication(ctx, appID)
	require.NoError(t, err)
	require.Len(t, forApp, 2)
	assert.Equal(t, models.EmailTypeEHSNew, forApp[0].EmailType)
	assert.False(t, forApp[1].Success)
	assert.Equal(t, "connection refused", *forApp[1].ErrorMessage)
}

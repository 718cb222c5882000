package repository

import (
	"context"

	"github.com/sjperalta/workpermit-api/internal/models"
	"gorm.io/gorm"
)

// EmailLogRepository defines the interface for notification audit records
type EmailLogRepository interface {
	Create(ctx context.Context, log *models.EmailLog) error
	List(ctx context.Context, limit int) ([]models.EmailLog, error)
	FindByApplication(ctx context.Context, applicationID string) ([]models.EmailLog, error)
}

type emailLogRepository struct {
	db *gorm.DB
}

// NewEmailLogRepository creates a new email log repository
func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) Create(ctx context.Context, log *models.EmailLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *emailLogRepository) List(ctx context.Context, limit int) ([]models.EmailLog, error) {
	var logs []models.EmailLog
	db := r.db.WithContext(ctx).Order("sent_at DESC, id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&logs).Error
	return logs, err
}

func (r *emailLogRepository) FindByApplication(ctx context.Context, applicationID string) ([]models.EmailLog, error) {
	var logs []models.EmailLog
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("sent_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}

package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sjperalta/workpermit-api/internal/models"
	"gorm.io/gorm"
)

// ErrStatusChanged is returned by ApplyTransition when the stored status no longer matches the expected one
var ErrStatusChanged = errors.New("application status changed")

// Transition is a guarded status change together with its decision log entry
type Transition struct {
	ApplicationID string
	From          models.Status
	To            models.Status
	// HazardousOperations, when set, replaces the stored hazardous operations record
	HazardousOperations *models.HazardousOperations
	Log                 *models.ApprovalLog
	At                  time.Time
}

// ApplicationRepository defines the interface for application data access
type ApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, query *ListQuery) ([]models.Application, int64, error)
	Create(ctx context.Context, app *models.Application) error
	ApplyTransition(ctx context.Context, t Transition) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ListApprovalLogs(ctx context.Context, limit int) ([]models.ApprovalLog, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

var applicationSortColumns = map[string]string{
	"created_at":      "created_at",
	"updated_at":      "updated_at",
	"work_time_start": "work_time_start",
	"department":      "department",
	"status":          "status",
	"applicant_name":  "applicant_name",
}

func (r *applicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("ApprovalLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("approved_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) List(ctx context.Context, query *ListQuery) ([]models.Application, int64, error) {
	if query == nil {
		query = NewListQuery()
	}

	var apps []models.Application
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Application{})

	// Apply search
	if query.Search != "" {
		search := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(applicant_name) LIKE ? OR LOWER(work_order_number) LIKE ? OR LOWER(department) LIKE ? OR LOWER(work_area) LIKE ? OR LOWER(work_content) LIKE ?",
			search, search, search, search, search)
	}

	// Apply status filter
	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	if query.Filters["department"] != "" {
		db = db.Where("department = ?", query.Filters["department"])
	}

	if query.Filters["applicant_email"] != "" {
		db = db.Where("LOWER(applicant_email) = ?", models.NormalizeEmail(query.Filters["applicant_email"]))
	}

	// Count total
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply sorting
	if col, ok := applicationSortColumns[query.SortBy]; ok {
		order := col
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("created_at DESC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset(query.offset()).Limit(query.PerPage)
	}

	err := db.Preload("ApprovalLogs", func(db *gorm.DB) *gorm.DB {
		return db.Order("approved_at ASC, id ASC")
	}).Find(&apps).Error
	return apps, total, err
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Omit("ApprovalLogs").Create(app).Error
}

// ApplyTransition updates the status only if it still equals t.From and appends the log entry,
// both in one transaction. Zero matched rows roll back with ErrStatusChanged.
func (r *applicationRepository) ApplyTransition(ctx context.Context, t Transition) error {
	if t.At.IsZero() {
		t.At = time.Now()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patch := &models.Application{Status: t.To, UpdatedAt: t.At}
		columns := []interface{}{"UpdatedAt"}
		if t.HazardousOperations != nil {
			patch.HazardousOperations = *t.HazardousOperations
			columns = append(columns, "HazardousOperations")
		}

		result := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", t.ApplicationID, t.From).
			Select("Status", columns...).
			Updates(patch)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStatusChanged
		}

		if t.Log != nil {
			t.Log.ApplicationID = t.ApplicationID
			if t.Log.ApprovedAt.IsZero() {
				t.Log.ApprovedAt = t.At
			}
			if err := tx.Create(t.Log).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an application together with its decision log
func (r *applicationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("application_id = ?", id).Delete(&models.ApprovalLog{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Application{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *applicationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).Count(&count).Error
	return count, err
}

// ListApprovalLogs returns the most recent decisions across all applications
func (r *applicationRepository) ListApprovalLogs(ctx context.Context, limit int) ([]models.ApprovalLog, error) {
	var logs []models.ApprovalLog
	db := r.db.WithContext(ctx).Order("approved_at DESC, id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&logs).Error
	return logs, err
}

package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/repository"
)

const dashboardLimit = 200

// Dashboard is the administrative overview
type Dashboard struct {
	Applications []models.ApplicationResponse `json:"applications"`
	ApprovalLogs []models.ApprovalLogResponse `json:"approval_logs"`
	EmailLogs    []models.EmailLogResponse    `json:"email_logs"`
	Total        int64                        `json:"total"`
}

type AdminService struct {
	applications repository.ApplicationRepository
	emailLogs    repository.EmailLogRepository
}

func NewAdminService(applications repository.ApplicationRepository, emailLogs repository.EmailLogRepository) *AdminService {
	return &AdminService{applications: applications, emailLogs: emailLogs}
}

// Dashboard returns the most recent applications, decisions and notification attempts
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	q := repository.NewListQuery()
	q.PerPage = dashboardLimit
	apps, total, err := s.applications.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}

	logs, err := s.applications.ListApprovalLogs(ctx, dashboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval logs: %w", err)
	}

	emails, err := s.emailLogs.List(ctx, dashboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load email logs: %w", err)
	}

	d := &Dashboard{
		Applications: make([]models.ApplicationResponse, 0, len(apps)),
		ApprovalLogs: make([]models.ApprovalLogResponse, 0, len(logs)),
		EmailLogs:    make([]models.EmailLogResponse, 0, len(emails)),
		Total:        total,
	}
	for i := range apps {
		d.Applications = append(d.Applications, apps[i].ToResponse())
	}
	for i := range logs {
		d.ApprovalLogs = append(d.ApprovalLogs, logs[i].ToResponse())
	}
	for i := range emails {
		d.EmailLogs = append(d.EmailLogs, emails[i].ToResponse())
	}
	return d, nil
}

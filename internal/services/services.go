package services

import (
	"github.com/sjperalta/workpermit-api/internal/config"
	"github.com/sjperalta/workpermit-api/internal/jobs"
	"github.com/sjperalta/workpermit-api/internal/mailer"
	"github.com/sjperalta/workpermit-api/internal/repository"
	"github.com/sjperalta/workpermit-api/internal/roles"
)

// Services holds all service instances
type Services struct {
	Submission   *SubmissionService
	Approval     *ApprovalService
	Notification *NotificationService
	Admin        *AdminService
	Export       *ExportService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, resolver *roles.Resolver, m mailer.Mailer, cfg *config.Config) *Services {
	notificationSvc := NewNotificationService(m, repos.EmailLog, cfg.NotifyRatePerSecond)
	dispatcher := NewAsyncDispatcher(worker, notificationSvc)

	return &Services{
		Submission:   NewSubmissionService(repos.Application, resolver, dispatcher, cfg.BaseURL),
		Approval:     NewApprovalService(repos.Application, resolver, dispatcher, cfg.BaseURL),
		Notification: notificationSvc,
		Admin:        NewAdminService(repos.Application, repos.EmailLog),
		Export:       NewExportService(repos.Application),
		Job:          NewJobService(worker),
	}
}

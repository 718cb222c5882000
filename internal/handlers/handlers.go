package handlers

import (
	"github.com/sjperalta/workpermit-api/internal/roles"
	"github.com/sjperalta/workpermit-api/internal/services"
	"gorm.io/gorm"
)

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Session     *SessionHandler
	Application *ApplicationHandler
	Admin       *AdminHandler
	Job         *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, resolver *roles.Resolver, db *gorm.DB) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(db, svcs.Notification),
		Session:     NewSessionHandler(resolver),
		Application: NewApplicationHandler(svcs.Submission, svcs.Approval),
		Admin:       NewAdminHandler(svcs.Admin, svcs.Export, svcs.Approval),
		Job:         NewJobHandler(svcs.Job),
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/repository"
	"github.com/sjperalta/workpermit-api/internal/roles"
	"github.com/sjperalta/workpermit-api/internal/statemachine"
	"github.com/sjperalta/workpermit-api/pkg/logger"
	"gorm.io/gorm"
)

// minEHSRejectComment is the trimmed comment length required when EHS rejects
const minEHSRejectComment = 10

// Decision is one approver's verdict on an application
type Decision struct {
	ApplicationID   string
	ApproverEmail   string
	SessionEmail    string
	Action          models.Action
	Comment         string
	FireWatcherName string
}

// DecisionResult is the updated application and the log entry recorded for the decision
type DecisionResult struct {
	Application *models.Application
	Log         *models.ApprovalLog
}

// Recipients are the resolved notification addresses of the approver roles
type Recipients struct {
	EHS               string
	OperationsManager string
}

// ApprovalService validates and applies decisions
type ApprovalService struct {
	repo       repository.ApplicationRepository
	resolver   *roles.Resolver
	dispatcher Dispatcher
	baseURL    string
	now        func() time.Time
}

func NewApprovalService(repo repository.ApplicationRepository, resolver *roles.Resolver, dispatcher Dispatcher, baseURL string) *ApprovalService {
	return &ApprovalService{
		repo:       repo,
		resolver:   resolver,
		dispatcher: dispatcher,
		baseURL:    baseURL,
		now:        time.Now,
	}
}

// Get loads one application with its decision log
func (s *ApprovalService) Get(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load application %s: %w", id, err)
	}
	return app, nil
}

// List returns a page of applications
func (s *ApprovalService) List(ctx context.Context, query *repository.ListQuery) ([]models.Application, int64, error) {
	apps, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, total, nil
}

// Submit validates a decision, applies the transition atomically and dispatches the notifications
func (s *ApprovalService) Submit(ctx context.Context, d Decision) (*DecisionResult, error) {
	verr := &ValidationError{}
	if !d.Action.IsValid() {
		verr.Add("action", "must be approve or reject")
	}
	if strings.TrimSpace(d.ApproverEmail) == "" {
		verr.Add("approver_email", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	// 1. exists
	app, err := s.Get(ctx, d.ApplicationID)
	if err != nil {
		return nil, err
	}

	// 2. claimed identity matches the session
	approver := models.NormalizeEmail(d.ApproverEmail)
	if approver != models.NormalizeEmail(d.SessionEmail) {
		return nil, ErrIdentityMismatch
	}

	// 3. still pending
	from := app.Status
	if !from.IsPending() {
		return nil, ErrAlreadyFinalized
	}

	// 4. holds the capability of the current stage
	if !s.resolver.Resolve(approver).CanApprove(from, app.AreaSupervisorName()) {
		return nil, s.expectedApprover(app)
	}

	// 5, 6. stage specific input rules
	if err := decisionRule(from, d.Action, d.Comment, d.FireWatcherName); err != nil {
		return nil, err
	}

	approverType, _ := models.ApproverTypeFor(from)
	if err := statemachine.NewApplicationFSM(app).Apply(ctx, d.Action); err != nil {
		return nil, fmt.Errorf("failed to compute transition: %w", err)
	}

	now := s.now()
	entry := &models.ApprovalLog{
		ApplicationID: app.ID,
		ApproverType:  approverType,
		ApproverEmail: strings.TrimSpace(d.ApproverEmail),
		Action:        d.Action,
		Comment:       optional(d.Comment),
		ApprovedAt:    now,
	}
	transition := repository.Transition{
		ApplicationID: app.ID,
		From:          from,
		To:            app.Status,
		Log:           entry,
		At:            now,
	}
	if from == models.StatusPendingAreaSupervisor && d.Action == models.ActionApprove {
		ops := withFireWatcher(app.HazardousOperations, strings.TrimSpace(d.FireWatcherName))
		transition.HazardousOperations = &ops
	}

	if err := s.repo.ApplyTransition(ctx, transition); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrStateChanged
		}
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}

	if transition.HazardousOperations != nil {
		app.HazardousOperations = *transition.HazardousOperations
	}
	app.UpdatedAt = now
	app.ApprovalLogs = append(app.ApprovalLogs, *entry)

	logger.Info(fmt.Sprintf("[Approval] %s %s application %s as %s: %s -> %s",
		entry.ApproverEmail, d.Action, app.ID, approverType, from, app.Status))

	s.dispatcher.Dispatch(PlanDecisionNotifications(app, from, d.Action, d.Comment, s.recipients(app), s.baseURL)...)

	return &DecisionResult{Application: app, Log: entry}, nil
}

// Delete removes an application and its decision log
func (s *ApprovalService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete application %s: %w", id, err)
	}
	logger.Warn(fmt.Sprintf("[Approval] application %s deleted", id))
	return nil
}

// decisionRule checks the inputs a specific (stage, action) pair requires
func decisionRule(stage models.Status, action models.Action, comment, fireWatcher string) error {
	switch {
	case stage == models.StatusPendingAreaSupervisor && action == models.ActionApprove:
		if strings.TrimSpace(fireWatcher) == "" {
			return validationError("fire_watcher_name", "is required when the area supervisor approves")
		}
	case stage == models.StatusPendingEHS && action == models.ActionReject:
		if utf8.RuneCountInString(strings.TrimSpace(comment)) < minEHSRejectComment {
			return validationError("comment", fmt.Sprintf("must be at least %d characters when EHS rejects", minEHSRejectComment))
		}
	}
	return nil
}

func withFireWatcher(ops models.HazardousOperations, name string) models.HazardousOperations {
	details := models.HotWorkDetails{}
	if ops.HotWorkDetails != nil {
		details = *ops.HotWorkDetails
	}
	details.FireWatcherName = name
	ops.HotWorkDetails = &details
	return ops
}

// expectedApprover builds the authorization error naming who should act at the current stage
func (s *ApprovalService) expectedApprover(app *models.Application) *AuthorizationError {
	switch app.Status {
	case models.StatusPendingAreaSupervisor:
		email := deref(app.AreaSupervisorEmail)
		if email == "" {
			email, _ = s.resolver.AreaSupervisorEmail(app.AreaSupervisorName())
		}
		role := "area supervisor"
		if name := app.AreaSupervisorName(); name != "" {
			role += " " + name
		}
		return &AuthorizationError{Role: role, Email: email}
	case models.StatusPendingEHS:
		return &AuthorizationError{Role: "EHS manager", Email: s.recipients(app).EHS}
	default:
		return &AuthorizationError{Role: "operations manager", Email: s.recipients(app).OperationsManager}
	}
}

// recipients prefers the addresses snapshotted at submission over current configuration
func (s *ApprovalService) recipients(app *models.Application) Recipients {
	r := Recipients{
		EHS:               deref(app.EHSManagerEmail),
		OperationsManager: deref(app.DepartmentManagerEmail),
	}
	if r.EHS == "" {
		r.EHS, _ = s.resolver.EHSManagerEmail()
	}
	if r.OperationsManager == "" {
		r.OperationsManager, _ = s.resolver.OperationsManagerEmail(app.Department)
	}
	return r
}

// PlanDecisionNotifications returns the fan-out for a transition out of from.
// app carries the new status. Recipients without an address are skipped.
func PlanDecisionNotifications(app *models.Application, from models.Status, action models.Action, comment string, r Recipients, baseURL string) []Notification {
	var out []Notification
	add := func(kind, to string) {
		if to = strings.TrimSpace(to); to != "" {
			out = append(out, ComposeNotification(kind, to, app, baseURL, comment))
		}
	}
	applicant := deref(app.ApplicantEmail)

	if action == models.ActionReject {
		if from == models.StatusPendingManager {
			add(models.EmailTypeEHSRejection, r.EHS)
		}
		add(models.EmailTypeApplicantRejected, applicant)
		return out
	}

	switch {
	case from == models.StatusPendingAreaSupervisor:
		add(models.EmailTypeEHSNew, r.EHS)
		add(models.EmailTypeApplicantProgress, applicant)
	case from == models.StatusPendingEHS && app.Status == models.StatusApproved:
		add(models.EmailTypeApplicantApproved, applicant)
	case from == models.StatusPendingEHS:
		add(models.EmailTypeDepartmentManagerNew, r.OperationsManager)
		add(models.EmailTypeApplicantProgress, applicant)
	case from == models.StatusPendingManager:
		add(models.EmailTypeEHSApproval, r.EHS)
		add(models.EmailTypeApplicantApproved, applicant)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/repository"
	"github.com/sjperalta/workpermit-api/internal/roles"
	"github.com/sjperalta/workpermit-api/pkg/logger"
)

var validate = validator.New()

// Accepted work time layouts; RFC 3339 first, then browser datetime-local values in server time
var workTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// CreateApplicationInput is the submitted permit request
type CreateApplicationInput struct {
	ApplicantName                 string                     `json:"applicant_name"`
	ApplicantEmail                string                     `json:"applicant_email"`
	Department                    string                     `json:"department"`
	WorkArea                      string                     `json:"work_area"`
	WorkContent                   string                     `json:"work_content"`
	WorkTimeStart                 string                     `json:"work_time_start"`
	WorkTimeEnd                   string                     `json:"work_time_end"`
	HazardFactors                 *models.HazardFactors      `json:"hazard_factors"`
	HazardFactorsDescription      string                     `json:"hazard_factors_description"`
	OtherHazardFactorsDescription string                     `json:"other_hazard_factors_description"`
	HazardousOperations           models.HazardousOperations `json:"hazardous_operations"`
	PersonnelInfo                 *models.PersonnelInfo      `json:"personnel_info"`
}

// SubmissionService validates new requests, picks the first approver and persists them
type SubmissionService struct {
	repo       repository.ApplicationRepository
	resolver   *roles.Resolver
	dispatcher Dispatcher
	baseURL    string
	now        func() time.Time
	newID      func() string
}

func NewSubmissionService(repo repository.ApplicationRepository, resolver *roles.Resolver, dispatcher Dispatcher, baseURL string) *SubmissionService {
	return &SubmissionService{
		repo:       repo,
		resolver:   resolver,
		dispatcher: dispatcher,
		baseURL:    baseURL,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Create validates input, routes it to the first approver, persists it and notifies that approver.
// actorEmail is the authenticated submitter; it becomes the applicant email when none is given.
func (s *SubmissionService) Create(ctx context.Context, actorEmail string, input CreateApplicationInput) (*models.Application, error) {
	actor := s.resolver.Resolve(actorEmail)
	if !actor.CanSubmit() {
		return nil, &AuthorizationError{Role: "registered applicant"}
	}

	start, end, err := validateApplication(&input)
	if err != nil {
		return nil, err
	}

	ehsEmail, ok := s.resolver.EHSManagerEmail()
	if !ok {
		return nil, &ConfigurationError{Role: "EHS manager", Key: "EHS_MANAGER_EMAIL"}
	}

	now := s.now()
	app := &models.Application{
		ID:                            s.newID(),
		WorkOrderNumber:               models.WorkOrderNumberFor(now),
		ApplicantName:                 strings.TrimSpace(input.ApplicantName),
		Department:                    strings.TrimSpace(input.Department),
		WorkArea:                      strings.TrimSpace(input.WorkArea),
		WorkContent:                   strings.TrimSpace(input.WorkContent),
		WorkTimeStart:                 start,
		WorkTimeEnd:                   end,
		HazardFactors:                 *input.HazardFactors,
		HazardFactorsDescription:      optional(input.HazardFactorsDescription),
		OtherHazardFactorsDescription: optional(input.OtherHazardFactorsDescription),
		HazardousOperations:           input.HazardousOperations,
		PersonnelInfo:                 input.PersonnelInfo,
		EHSManagerEmail:               &ehsEmail,
		Status:                        models.StatusPendingEHS,
		CreatedAt:                     now,
		UpdatedAt:                     now,
	}

	applicant := strings.TrimSpace(input.ApplicantEmail)
	if applicant == "" {
		applicant = strings.TrimSpace(actorEmail)
	}
	app.ApplicantEmail = optional(applicant)

	if opsEmail, ok := s.resolver.OperationsManagerEmail(app.Department); ok {
		app.DepartmentManagerEmail = &opsEmail
	}

	var first Notification
	if app.RequiresAreaSupervisor() {
		name := app.AreaSupervisorName()
		areaEmail, ok := s.resolver.AreaSupervisorEmail(name)
		if !ok {
			return nil, &ConfigurationError{Role: "area supervisor", Key: name}
		}
		app.AreaSupervisorEmail = &areaEmail
		app.Status = models.StatusPendingAreaSupervisor
		first = ComposeNotification(models.EmailTypeAreaSupervisorNew, areaEmail, app, s.baseURL, "")
	} else {
		first = ComposeNotification(models.EmailTypeEHSNew, ehsEmail, app, s.baseURL, "")
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	logger.Info(fmt.Sprintf("[Submission] application %s (%s) created with status %s", app.ID, app.WorkOrderNumber, app.Status))
	s.dispatcher.Dispatch(first)

	return app, nil
}

// validateApplication collects every violated constraint and returns the parsed work window
func validateApplication(in *CreateApplicationInput) (time.Time, time.Time, error) {
	verr := &ValidationError{}

	required := []struct {
		field string
		value string
	}{
		{"applicant_name", in.ApplicantName},
		{"department", in.Department},
		{"work_area", in.WorkArea},
		{"work_content", in.WorkContent},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			verr.Add(r.field, "is required")
		}
	}

	if email := strings.TrimSpace(in.ApplicantEmail); email != "" && validate.Var(email, "email") != nil {
		verr.Add("applicant_email", "must be a valid email address")
	}

	start, startOK := parseWorkTime(verr, "work_time_start", in.WorkTimeStart)
	end, endOK := parseWorkTime(verr, "work_time_end", in.WorkTimeEnd)
	if startOK && endOK {
		if end.Before(start) {
			verr.Add("work_time_end", "must not be before work_time_start")
		}
		sy, sm, sd := start.Date()
		ey, em, ed := end.In(start.Location()).Date()
		if sy != ey || sm != em || sd != ed {
			verr.Add("work_time_end", "must be on the same day as work_time_start")
		}
	}

	if in.HazardFactors == nil {
		verr.Add("hazard_factors", "is required")
	}

	ops := in.HazardousOperations
	for _, o := range []struct {
		field string
		value string
	}{
		{"hazardous_operations.confined_space", ops.ConfinedSpace},
		{"hazardous_operations.work_at_height", ops.WorkAtHeight},
	} {
		if o.value != "" && o.value != models.OperationYes && o.value != models.OperationNo {
			verr.Add(o.field, "must be yes or no")
		}
	}

	hotWork := in.HazardFactors != nil && in.HazardFactors.HotWork
	switch {
	case hotWork && ops.HotWork == "":
		verr.Add("hazardous_operations.hot_work", "is required when hot work is declared")
	case ops.HotWork != "" && ops.HotWork != models.OperationYes && ops.HotWork != models.OperationNo:
		verr.Add("hazardous_operations.hot_work", "must be yes or no")
	case hotWork && ops.HotWork == models.OperationYes:
		validateHotWorkDetails(verr, ops.HotWorkDetails)
	}

	if p := in.PersonnelInfo; p != nil {
		validateContractor(verr, "personnel_info.contractor", p.Contractor)
		for i, sub := range p.Subcontractors {
			validateContractor(verr, fmt.Sprintf("personnel_info.subcontractors[%d]", i), sub)
		}
	}

	return start, end, verr.OrNil()
}

func validateHotWorkDetails(verr *ValidationError, d *models.HotWorkDetails) {
	const prefix = "hazardous_operations.hot_work_details"
	if d == nil {
		verr.Add(prefix, "is required when hot work is yes")
		return
	}

	switch d.PersonnelType {
	case models.PersonnelTypeEmployee:
	case models.PersonnelTypeContractor:
		if strings.TrimSpace(d.ContractorName) == "" {
			verr.Add(prefix+".contractor_name", "is required for contractor personnel")
		}
	default:
		verr.Add(prefix+".personnel_type", "must be employee or contractor")
	}

	for _, r := range []struct {
		field string
		value string
	}{
		{"date", d.Date},
		{"operation_location", d.OperationLocation},
		{"work_to_be_performed", d.WorkToBePerformed},
		{"operator_name", d.OperatorName},
		{"area_supervisor", d.AreaSupervisor},
	} {
		if strings.TrimSpace(r.value) == "" {
			verr.Add(prefix+"."+r.field, "is required")
		}
	}
}

func validateContractor(verr *ValidationError, prefix string, c models.ContractorInfo) {
	if strings.TrimSpace(c.Name) == "" {
		verr.Add(prefix+".name", "is required")
	}
	if strings.TrimSpace(c.SiteSupervisor) == "" {
		verr.Add(prefix+".site_supervisor", "is required")
	}
	workers := 0
	for _, p := range c.Personnel {
		if strings.TrimSpace(p) != "" {
			workers++
		}
	}
	if workers == 0 {
		verr.Add(prefix+".personnel", "needs at least one worker")
	}
}

func parseWorkTime(verr *ValidationError, field, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.Add(field, "is required")
		return time.Time{}, false
	}
	for _, layout := range workTimeLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339 {
			t, err = time.Parse(layout, raw)
		} else {
			t, err = time.ParseInLocation(layout, raw, time.Local)
		}
		if err == nil {
			return t, true
		}
	}
	verr.Add(field, "must be a date and time")
	return time.Time{}, false
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

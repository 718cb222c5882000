package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/workpermit-api/internal/models"
)

// Transition events
const (
	EventApproveArea     = "approve_area"
	EventApproveEHS      = "approve_ehs"
	EventApproveEHSFinal = "approve_ehs_final"
	EventApproveManager  = "approve_manager"
	EventReject          = "reject"
)

var pendingStates = []string{
	models.StatusPendingAreaSupervisor.String(),
	models.StatusPendingEHS.String(),
	models.StatusPendingManager.String(),
}

// ApplicationFSM wraps an application with its approval state machine.
// Transitions only change the in-memory state; persisting it is the caller's job.
type ApplicationFSM struct {
	application *models.Application
	fsm         *fsm.FSM
}

// NewApplicationFSM creates a new application state machine starting at the application's status
func NewApplicationFSM(application *models.Application) *ApplicationFSM {
	afsm := &ApplicationFSM{
		application: application,
	}

	afsm.fsm = fsm.NewFSM(
		application.Status.String(),
		fsm.Events{
			// pending_area_supervisor → pending_ehs
			{Name: EventApproveArea, Src: []string{models.StatusPendingAreaSupervisor.String()}, Dst: models.StatusPendingEHS.String()},

			// pending_ehs → pending_manager
			{Name: EventApproveEHS, Src: []string{models.StatusPendingEHS.String()}, Dst: models.StatusPendingManager.String()},

			// pending_ehs → approved, pure general work skips the operations manager
			{Name: EventApproveEHSFinal, Src: []string{models.StatusPendingEHS.String()}, Dst: models.StatusApproved.String()},

			// pending_manager → approved
			{Name: EventApproveManager, Src: []string{models.StatusPendingManager.String()}, Dst: models.StatusApproved.String()},

			// any pending → rejected
			{Name: EventReject, Src: pendingStates, Dst: models.StatusRejected.String()},
		},
		fsm.Callbacks{},
	)

	return afsm
}

// ApproveEvent returns the event an approval fires from the current state
func (a *ApplicationFSM) ApproveEvent() (string, error) {
	switch a.application.Status {
	case models.StatusPendingAreaSupervisor:
		return EventApproveArea, nil
	case models.StatusPendingEHS:
		if a.application.HazardFactors.IsPureGeneralWork() {
			return EventApproveEHSFinal, nil
		}
		return EventApproveEHS, nil
	case models.StatusPendingManager:
		return EventApproveManager, nil
	}
	return "", fmt.Errorf("application cannot be approved in current state: %s", a.application.Status)
}

// Approve moves the application to the next stage
func (a *ApplicationFSM) Approve(ctx context.Context) error {
	event, err := a.ApproveEvent()
	if err != nil {
		return err
	}
	return a.fire(ctx, event)
}

// Reject moves the application to rejected
func (a *ApplicationFSM) Reject(ctx context.Context) error {
	if !a.application.Status.IsPending() {
		return fmt.Errorf("application cannot be rejected in current state: %s", a.application.Status)
	}
	return a.fire(ctx, EventReject)
}

// Apply fires the transition for action
func (a *ApplicationFSM) Apply(ctx context.Context, action models.Action) error {
	switch action {
	case models.ActionApprove:
		return a.Approve(ctx)
	case models.ActionReject:
		return a.Reject(ctx)
	}
	return fmt.Errorf("unknown action: %q", action)
}

func (a *ApplicationFSM) fire(ctx context.Context, event string) error {
	if err := a.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to %s application: %w", event, err)
	}

	next, err := models.ParseStatus(a.fsm.Current())
	if err != nil {
		return err
	}
	a.application.Status = next
	return nil
}

// Current returns the current state
func (a *ApplicationFSM) Current() models.Status {
	s, _ := models.ParseStatus(a.fsm.Current())
	return s
}

// Can checks if a transition is possible
func (a *ApplicationFSM) Can(event string) bool {
	return a.fsm.Can(event)
}

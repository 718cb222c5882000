package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a work permit application.
// It is persisted and serialized as its literal name.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusPendingAreaSupervisor
	StatusPendingEHS
	StatusPendingManager
	StatusApproved
	StatusRejected
)

var statusNames = map[Status]string{
	StatusPendingAreaSupervisor: "pending_area_supervisor",
	StatusPendingEHS:            "pending_ehs",
	StatusPendingManager:        "pending_manager",
	StatusApproved:              "approved",
	StatusRejected:              "rejected",
}

// ParseStatus converts a persisted literal into a Status
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown application status %q", s)
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsValid reports whether s is one of the five defined states
func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// IsPending reports whether a decision can still be made
func (s Status) IsPending() bool {
	return s == StatusPendingAreaSupervisor || s == StatusPendingEHS || s == StatusPendingManager
}

// IsFinal reports whether s is terminal
func (s Status) IsFinal() bool {
	return s == StatusApproved || s == StatusRejected
}

// GormDataType stores Status as text
func (Status) GormDataType() string {
	return "string"
}

// Value implements driver.Valuer
func (s Status) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("cannot persist invalid application status %d", s)
	}
	return s.String(), nil
}

// Scan implements sql.Scanner
func (s *Status) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", value)
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ApproverType labels the stage under which a decision was recorded
type ApproverType string

const (
	ApproverTypeAreaSupervisor ApproverType = "area_supervisor"
	ApproverTypeEHSManager     ApproverType = "ehs_manager"
	// ApproverTypeDepartmentManager is the operations manager stage; the literal is kept for stored logs
	ApproverTypeDepartmentManager ApproverType = "department_manager"
)

// Priority orders approver types for display
func (t ApproverType) Priority() int {
	switch t {
	case ApproverTypeAreaSupervisor:
		return 1
	case ApproverTypeEHSManager:
		return 2
	case ApproverTypeDepartmentManager:
		return 3
	}
	return 4
}

// Label is the human readable role name
func (t ApproverType) Label() string {
	switch t {
	case ApproverTypeAreaSupervisor:
		return "Area Supervisor"
	case ApproverTypeEHSManager:
		return "EHS Manager"
	case ApproverTypeDepartmentManager:
		return "Operations Manager"
	}
	return string(t)
}

// ApproverTypeFor returns the approver type of the stage being exited
func ApproverTypeFor(s Status) (ApproverType, bool) {
	switch s {
	case StatusPendingAreaSupervisor:
		return ApproverTypeAreaSupervisor, true
	case StatusPendingEHS:
		return ApproverTypeEHSManager, true
	case StatusPendingManager:
		return ApproverTypeDepartmentManager, true
	}
	return "", false
}

// Action is an approver decision
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// IsValid reports whether a is approve or reject
func (a Action) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

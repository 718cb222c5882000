package models

import (
	"time"
)

// ApprovalLog is the immutable record of one decision
type ApprovalLog struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ApplicationID string       `gorm:"type:varchar(36);not null;index" json:"application_id"`
	ApproverType  ApproverType `gorm:"size:32;not null" json:"approver_type"`
	ApproverEmail string       `gorm:"not null" json:"approver_email"`
	Action        Action       `gorm:"size:16;not null" json:"action"`
	Comment       *string      `gorm:"type:text" json:"comment"`
	ApprovedAt    time.Time    `gorm:"not null;index" json:"approved_at"`
}

// TableName specifies the table name for ApprovalLog
func (ApprovalLog) TableName() string {
	return "approval_logs"
}

// ApprovalLogResponse is the JSON response format for approval logs
type ApprovalLogResponse struct {
	ID                uint         `json:"id"`
	ApplicationID     string       `json:"application_id"`
	ApproverType      ApproverType `json:"approver_type"`
	ApproverTypeLabel string       `json:"approver_type_label"`
	ApproverEmail     string       `json:"approver_email"`
	Action            Action       `json:"action"`
	Comment           *string      `json:"comment"`
	ApprovedAt        time.Time    `json:"approved_at"`
}

// ToResponse converts ApprovalLog to ApprovalLogResponse
func (l *ApprovalLog) ToResponse() ApprovalLogResponse {
	return ApprovalLogResponse{
		ID:                l.ID,
		ApplicationID:     l.ApplicationID,
		ApproverType:      l.ApproverType,
		ApproverTypeLabel: l.ApproverType.Label(),
		ApproverEmail:     l.ApproverEmail,
		Action:            l.Action,
		Comment:           l.Comment,
		ApprovedAt:        l.ApprovedAt,
	}
}

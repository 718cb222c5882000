package models

import (
	"time"
)

// EmailLog records one delivery attempt of an outbound notification
type EmailLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID *string   `gorm:"type:varchar(36);index" json:"application_id"`
	Recipient     string    `gorm:"not null" json:"recipient"`
	Subject       string    `gorm:"not null" json:"subject"`
	EmailType     string    `gorm:"size:50;not null;index" json:"email_type"`
	Channel       string    `gorm:"size:20" json:"channel"`
	Success       bool      `gorm:"not null;index" json:"success"`
	ErrorMessage  *string   `gorm:"type:text" json:"error_message"`
	SentAt        time.Time `gorm:"not null;index" json:"sent_at"`
}

// TableName specifies the table name for EmailLog
func (EmailLog) TableName() string {
	return "email_logs"
}

// Email classification tags
const (
	EmailTypeAreaSupervisorNew    = "area_supervisor_new"
	EmailTypeEHSNew               = "ehs_new"
	EmailTypeDepartmentManagerNew = "department_manager_new"
	EmailTypeApplicantProgress    = "applicant_progress"
	EmailTypeApplicantApproved    = "applicant_approved"
	EmailTypeApplicantRejected    = "applicant_rejected"
	EmailTypeEHSRejection         = "ehs_rejection"
	EmailTypeEHSApproval          = "ehs_approval"
	EmailTypeTest                 = "test"
)

var emailTypeLabels = map[string]string{
	EmailTypeAreaSupervisorNew:    "Area supervisor (new request)",
	EmailTypeEHSNew:               "EHS (new request)",
	EmailTypeDepartmentManagerNew: "Operations manager (awaiting review)",
	EmailTypeApplicantProgress:    "Applicant (progress)",
	EmailTypeApplicantApproved:    "Applicant (approved)",
	EmailTypeApplicantRejected:    "Applicant (rejected)",
	EmailTypeEHSRejection:         "EHS (rejected by operations manager)",
	EmailTypeEHSApproval:          "EHS (review completed)",
	EmailTypeTest:                 "Connection test",
}

// EmailTypeLabel returns the display label of a classification tag
func EmailTypeLabel(emailType string) string {
	if label, ok := emailTypeLabels[emailType]; ok {
		return label
	}
	return emailType
}

// EmailLogResponse is the JSON response format for email logs
type EmailLogResponse struct {
	EmailLog
	EmailTypeLabel string `json:"email_type_label"`
}

// ToResponse converts EmailLog to EmailLogResponse
func (l *EmailLog) ToResponse() EmailLogResponse {
	return EmailLogResponse{EmailLog: *l, EmailTypeLabel: EmailTypeLabel(l.EmailType)}
}

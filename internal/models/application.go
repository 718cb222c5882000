package models

import (
	"sort"
	"strings"
	"time"
)

// Application represents one work permit request
type Application struct {
	ID                            string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	WorkOrderNumber               string              `gorm:"size:20;index" json:"work_order_number"`
	ApplicantName                 string              `gorm:"not null" json:"applicant_name"`
	ApplicantEmail                *string             `gorm:"index" json:"applicant_email"`
	Department                    string              `gorm:"not null;index" json:"department"`
	WorkArea                      string              `gorm:"not null" json:"work_area"`
	WorkContent                   string              `gorm:"type:text;not null" json:"work_content"`
	WorkTimeStart                 time.Time           `gorm:"not null" json:"work_time_start"`
	WorkTimeEnd                   time.Time           `gorm:"not null" json:"work_time_end"`
	HazardFactors                 HazardFactors       `gorm:"type:text;serializer:json" json:"hazard_factors"`
	HazardFactorsDescription      *string             `gorm:"type:text" json:"hazard_factors_description"`
	OtherHazardFactorsDescription *string             `gorm:"type:text" json:"other_hazard_factors_description"`
	HazardousOperations           HazardousOperations `gorm:"type:text;serializer:json" json:"hazardous_operations"`
	PersonnelInfo                 *PersonnelInfo      `gorm:"type:text;serializer:json" json:"personnel_info,omitempty"`
	AreaSupervisorEmail           *string             `json:"area_supervisor_email"`
	EHSManagerEmail               *string             `gorm:"column:ehs_manager_email" json:"ehs_manager_email"`
	DepartmentManagerEmail        *string             `json:"department_manager_email"`
	Status                        Status              `gorm:"type:varchar(32);not null;index" json:"status"`
	CreatedAt                     time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt                     time.Time           `json:"updated_at"`

	// Associations
	ApprovalLogs []ApprovalLog `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"approval_logs,omitempty"`
}

// TableName specifies the table name for Application
func (Application) TableName() string {
	return "work_permit_applications"
}

// HazardFactors are the declared risk categories of the work
type HazardFactors struct {
	GeneralWork   bool `json:"general_work"`
	HotWork       bool `json:"hot_work"`
	ConfinedSpace bool `json:"confined_space"`
	WorkAtHeight  bool `json:"work_at_height"`
}

// IsPureGeneralWork reports whether none of the sub-permit categories is declared
func (h HazardFactors) IsPureGeneralWork() bool {
	return !h.HotWork && !h.ConfinedSpace && !h.WorkAtHeight
}

// Any reports whether at least one factor is declared
func (h HazardFactors) Any() bool {
	return h.GeneralWork || h.HotWork || h.ConfinedSpace || h.WorkAtHeight
}

// Hazardous operation selections
const (
	OperationYes = "yes"
	OperationNo  = "no"
)

// HazardousOperations records the yes/no sub-declarations for categories that need a dedicated sub-permit
type HazardousOperations struct {
	HotWork        string          `json:"hot_work,omitempty"`
	ConfinedSpace  string          `json:"confined_space,omitempty"`
	WorkAtHeight   string          `json:"work_at_height,omitempty"`
	HotWorkDetails *HotWorkDetails `json:"hot_work_details,omitempty"`
}

// Personnel types for hot work
const (
	PersonnelTypeEmployee   = "employee"
	PersonnelTypeContractor = "contractor"
)

// HotWorkDetails is the hot work sub-permit
type HotWorkDetails struct {
	PersonnelType     string `json:"personnel_type"`
	ContractorName    string `json:"contractor_name,omitempty"`
	Date              string `json:"date"`
	OperationLocation string `json:"operation_location"`
	WorkToBePerformed string `json:"work_to_be_performed"`
	OperatorName      string `json:"operator_name"`
	FireWatcherName   string `json:"fire_watcher_name"`
	// AreaSupervisor is the named supervisor role, e.g. "Production Manager"
	AreaSupervisor string `json:"area_supervisor"`
}

// PersonnelInfo lists the contractor crew entering the site
type PersonnelInfo struct {
	Contractor     ContractorInfo   `json:"contractor"`
	Subcontractors []ContractorInfo `json:"subcontractors,omitempty"`
}

// ContractorInfo describes one contractor or subcontractor
type ContractorInfo struct {
	Name           string   `json:"name"`
	SiteSupervisor string   `json:"site_supervisor"`
	Personnel      []string `json:"personnel"`
}

// RequiresAreaSupervisor reports whether routing starts at the area supervisor
func (a *Application) RequiresAreaSupervisor() bool {
	return a.HazardFactors.HotWork && a.HazardousOperations.HotWork == OperationYes
}

// AreaSupervisorName returns the named supervisor role of the hot work permit, if any
func (a *Application) AreaSupervisorName() string {
	if a.HazardousOperations.HotWorkDetails == nil {
		return ""
	}
	return a.HazardousOperations.HotWorkDetails.AreaSupervisor
}

// SortedApprovalLogs returns the logs ordered by stage, then by time
func (a *Application) SortedApprovalLogs() []ApprovalLog {
	logs := make([]ApprovalLog, len(a.ApprovalLogs))
	copy(logs, a.ApprovalLogs)
	sort.SliceStable(logs, func(i, j int) bool {
		pi, pj := logs[i].ApproverType.Priority(), logs[j].ApproverType.Priority()
		if pi != pj {
			return pi < pj
		}
		return logs[i].ApprovedAt.Before(logs[j].ApprovedAt)
	})
	return logs
}

// WorkOrderNumberFor formats the work order number for a creation time: EHS + yyyyMMddHHmm
func WorkOrderNumberFor(t time.Time) string {
	return "EHS" + t.Format("200601021504")
}

// ApplicationResponse is the JSON response format for applications
type ApplicationResponse struct {
	ID                            string              `json:"id"`
	WorkOrderNumber               string              `json:"work_order_number"`
	ApplicantName                 string              `json:"applicant_name"`
	ApplicantEmail                *string             `json:"applicant_email"`
	Department                    string              `json:"department"`
	WorkArea                      string              `json:"work_area"`
	WorkContent                   string              `json:"work_content"`
	WorkTimeStart                 time.Time           `json:"work_time_start"`
	WorkTimeEnd                   time.Time           `json:"work_time_end"`
	HazardFactors                 HazardFactors       `json:"hazard_factors"`
	HazardFactorsDescription      *string             `json:"hazard_factors_description"`
	OtherHazardFactorsDescription *string             `json:"other_hazard_factors_description"`
	HazardousOperations           HazardousOperations `json:"hazardous_operations"`
	PersonnelInfo                 *PersonnelInfo      `json:"personnel_info,omitempty"`
	AreaSupervisorEmail           *string             `json:"area_supervisor_email"`
	EHSManagerEmail               *string             `json:"ehs_manager_email"`
	DepartmentManagerEmail        *string             `json:"department_manager_email"`
	Status                        Status              `json:"status"`
	CreatedAt                     time.Time           `json:"created_at"`
	UpdatedAt                     time.Time           `json:"updated_at"`

	ApprovalLogs []ApprovalLogResponse `json:"approval_logs"`
}

// ToResponse converts Application to ApplicationResponse with display-sorted logs
func (a *Application) ToResponse() ApplicationResponse {
	resp := ApplicationResponse{
		ID:                            a.ID,
		WorkOrderNumber:               a.WorkOrderNumber,
		ApplicantName:                 a.ApplicantName,
		ApplicantEmail:                a.ApplicantEmail,
		Department:                    a.Department,
		WorkArea:                      a.WorkArea,
		WorkContent:                   a.WorkContent,
		WorkTimeStart:                 a.WorkTimeStart,
		WorkTimeEnd:                   a.WorkTimeEnd,
		HazardFactors:                 a.HazardFactors,
		HazardFactorsDescription:      a.HazardFactorsDescription,
		OtherHazardFactorsDescription: a.OtherHazardFactorsDescription,
		HazardousOperations:           a.HazardousOperations,
		PersonnelInfo:                 a.PersonnelInfo,
		AreaSupervisorEmail:           a.AreaSupervisorEmail,
		EHSManagerEmail:               a.EHSManagerEmail,
		DepartmentManagerEmail:        a.DepartmentManagerEmail,
		Status:                        a.Status,
		CreatedAt:                     a.CreatedAt,
		UpdatedAt:                     a.UpdatedAt,
		ApprovalLogs:                  []ApprovalLogResponse{},
	}
	if resp.WorkOrderNumber == "" && !a.CreatedAt.IsZero() {
		resp.WorkOrderNumber = WorkOrderNumberFor(a.CreatedAt)
	}
	for _, log := range a.SortedApprovalLogs() {
		resp.ApprovalLogs = append(resp.ApprovalLogs, log.ToResponse())
	}
	return resp
}

// NormalizeEmail lowercases and trims an address for comparisons
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "2006-01-02 15:04"

var applicationExportHeader = []string{
	"Work Order", "ID", "Status", "Applicant", "Applicant Email", "Department", "Work Area",
	"Work Content", "Start", "End", "General Work", "Hot Work", "Confined Space", "Work At Height",
	"Area Supervisor", "Fire Watcher", "Created At",
}

var approvalLogExportHeader = []string{
	"Work Order", "Application ID", "Approver Type", "Approver Email", "Action", "Comment", "Approved At",
}

type ExportService struct {
	repo repository.ApplicationRepository
	now  func() time.Time
}

func NewExportService(repo repository.ApplicationRepository) *ExportService {
	return &ExportService{repo: repo, now: time.Now}
}

func (s *ExportService) load(ctx context.Context) ([]models.Application, error) {
	q := repository.NewListQuery()
	q.PerPage = 0
	apps, _, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications for export: %w", err)
	}
	return apps, nil
}

// ExportCSV writes one row per application
func (s *ExportService) ExportCSV(ctx context.Context) ([]byte, string, error) {
	apps, err := s.load(ctx)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)
	_ = writer.Write(applicationExportHeader)
	for i := range apps {
		_ = writer.Write(applicationRow(&apps[i]))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("work_permits_%s.csv", s.now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportXLSX writes an Applications sheet and an Approval Logs sheet
func (s *ExportService) ExportXLSX(ctx context.Context) ([]byte, string, error) {
	apps, err := s.load(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const appSheet = "Applications"
	const logSheet = "Approval Logs"
	_ = f.SetSheetName("Sheet1", appSheet)
	if _, err := f.NewSheet(logSheet); err != nil {
		return nil, "", err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	if err := writeSheetRow(f, appSheet, 1, applicationExportHeader); err != nil {
		return nil, "", err
	}
	if err := writeSheetRow(f, logSheet, 1, approvalLogExportHeader); err != nil {
		return nil, "", err
	}
	_ = f.SetRowStyle(appSheet, 1, 1, headerStyle)
	_ = f.SetRowStyle(logSheet, 1, 1, headerStyle)

	logRow := 2
	for i := range apps {
		app := &apps[i]
		if err := writeSheetRow(f, appSheet, i+2, applicationRow(app)); err != nil {
			return nil, "", err
		}
		for _, l := range app.SortedApprovalLogs() {
			row := []string{
				app.WorkOrderNumber, app.ID, l.ApproverType.Label(), l.ApproverEmail,
				string(l.Action), deref(l.Comment), l.ApprovedAt.Format(exportTimeLayout),
			}
			if err := writeSheetRow(f, logSheet, logRow, row); err != nil {
				return nil, "", err
			}
			logRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("work_permits_%s.xlsx", s.now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func applicationRow(app *models.Application) []string {
	fireWatcher := ""
	if d := app.HazardousOperations.HotWorkDetails; d != nil {
		fireWatcher = d.FireWatcherName
	}
	return []string{
		app.WorkOrderNumber,
		app.ID,
		app.Status.String(),
		app.ApplicantName,
		deref(app.ApplicantEmail),
		app.Department,
		app.WorkArea,
		app.WorkContent,
		app.WorkTimeStart.Format(exportTimeLayout),
		app.WorkTimeEnd.Format(exportTimeLayout),
		yesNo(app.HazardFactors.GeneralWork),
		yesNo(app.HazardFactors.HotWork),
		yesNo(app.HazardFactors.ConfinedSpace),
		yesNo(app.HazardFactors.WorkAtHeight),
		app.AreaSupervisorName(),
		fireWatcher,
		app.CreatedAt.Format(exportTimeLayout),
	}
}

func yesNo(b bool) string {
	if b {
		return models.OperationYes
	}
	return models.OperationNo
}

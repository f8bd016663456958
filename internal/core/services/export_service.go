package services

import (
	"bytes"
	"context"

	"hostel-leave-api/internal/adapters/persistence/models"

	"github.com/xuri/excelize/v2"
)

const leavesSheet = "Leaves"

var leaveColumns = []string{
	"ID", "Student ID", "Name", "Email", "Room", "Leave Type", "Destination",
	"Contact", "Start Date", "End Date", "Reason", "Status", "Admin Comment", "Applied At",
}

// ExportService renders leave requests as spreadsheets
type ExportService struct {
	leaves *LeaveService
}

// NewExportService creates a new export service
func NewExportService(leaves *LeaveService) *ExportService {
	return &ExportService{leaves: leaves}
}

// LeavesWorkbook returns an XLSX workbook of every leave request matching status ("" for all)
func (s *ExportService) LeavesWorkbook(ctx context.Context, status string) ([]byte, error) {
	leaves, _, err := s.leaves.ListAllLeaves(ctx, ListLeavesInput{Status: status})
	if err != nil {
		return nil, err
	}
	return buildLeavesWorkbook(leaves)
}

func buildLeavesWorkbook(leaves []*models.LeaveRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leavesSheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(leaveColumns))
	for i, c := range leaveColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(leavesSheet, "A1", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(leaveColumns))
	if err := f.SetCellStyle(leavesSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}

	for i, l := range leaves {
		email := ""
		if l.Requester != nil {
			email = l.Requester.Email
		}
		row := []interface{}{
			l.ID,
			l.StudentID,
			l.Name,
			email,
			l.RoomNumber,
			l.LeaveType,
			l.Destination,
			l.ContactNumber,
			l.StartDate.Format("2006-01-02"),
			l.EndDate.Format("2006-01-02"),
			l.Reason,
			l.Status,
			l.AdminComment,
			l.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(leavesSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(leavesSheet, "A", lastCol, 18); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package report renders attendance exports for the admin surface.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tagtrack/internal/model"
)

var columns = []string{
	"name", "regNo", "department", "level",
	"courseCode", "courseTitle", "date", "timeIn", "status", "rfidTag",
}

func recordRow(d model.AttendanceDetail) []string {
	row := make([]string, 0, len(columns))
	var name, regNo, department, level string
	if d.Student != nil {
		name, regNo = d.Student.Name, d.Student.RegNo
		department, level = d.Student.Department, d.Student.Level
	}
	var code, title string
	if d.Course != nil {
		code, title = d.Course.CourseCode, d.Course.CourseTitle
	}
	row = append(row,
		name, regNo, department, level,
		code, title,
		d.Date.Format("2006-01-02"), d.TimeIn, d.Status, d.RFIDTag,
	)
	return row
}

// WriteCSV streams enriched attendance records as CSV.
func WriteCSV(w io.Writer, records []model.AttendanceDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, d := range records {
		if err := cw.Write(recordRow(d)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// BuildXLSX renders the same export as a spreadsheet.
func BuildXLSX(records []model.AttendanceDetail) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, d := range records {
		values := recordRow(d)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

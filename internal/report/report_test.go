package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagtrack/internal/model"
)

func sampleRecords() []model.AttendanceDetail {
	when := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	return []model.AttendanceDetail{
		{
			AttendanceRecord: model.AttendanceRecord{
				Date: when, TimeIn: "09:00:00",
				Status: model.StatusPresent, RFIDTag: "TAG-001",
			},
			Student: &model.StudentRef{
				Name: "Ada Obi", RegNo: "CS/2021/001",
				Department: "Computer Science", Level: "300",
			},
			Course: &model.CourseRef{CourseCode: "CSC301", CourseTitle: "Algorithms"},
		},
		{
			// A record whose student and course were since deleted still exports.
			AttendanceRecord: model.AttendanceRecord{
				Date: when, TimeIn: "09:05:00",
				Status: model.StatusPresent, RFIDTag: "TAG-002",
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "Ada Obi", rows[1][0])
	assert.Equal(t, "CSC301", rows[1][4])
	assert.Equal(t, "2026-03-10", rows[1][6])
	assert.Equal(t, "", rows[2][0], "orphaned record exports blanks")
	assert.Equal(t, "TAG-002", rows[2][9])
}

func TestBuildXLSX(t *testing.T) {
	f, err := BuildXLSX(sampleRecords())
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Attendance", "A1")
	require.NoError(t, err)
	assert.Equal(t, "name", got)

	got, err = f.GetCellValue("Attendance", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", got)

	got, err = f.GetCellValue("Attendance", "J3")
	require.NoError(t, err)
	assert.Equal(t, "TAG-002", got)
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

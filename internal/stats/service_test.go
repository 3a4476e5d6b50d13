package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagtrack/internal/model"
	"tagtrack/internal/store/sqlite"
)

func TestAverageAttendance(t *testing.T) {
	tests := []struct {
		name          string
		present       int
		sessions      int
		totalStudents int
		want          float64
	}{
		{"no sessions", 5, 0, 10, 0},
		{"no students", 5, 2, 0, 0},
		{"quarter turnout", 1, 2, 2, 25},
		{"larger cohort", 5, 2, 10, 25},
		{"full turnout", 4, 2, 2, 100},
		{"rounds to two decimals", 1, 1, 3, 33.33},
		{"rounds up", 2, 1, 3, 66.67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageAttendance(tt.present, tt.sessions, tt.totalStudents))
		})
	}
}

func TestDayRange(t *testing.T) {
	noon := time.Date(2026, 3, 10, 12, 30, 0, 0, time.Local)
	from, to := DayRange(noon)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, 24*time.Hour, to.Sub(from))
}

func TestOverview(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()
	svc := NewService(st)

	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)

	lecturer := &model.User{Name: "Dr. Eze", Email: "eze@example.edu", PasswordHash: "x", Role: model.RoleLecturer}
	require.NoError(t, st.CreateUser(ctx, lecturer))
	admin := &model.User{Name: "Root", Email: "root@example.edu", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, st.CreateUser(ctx, admin))

	course := &model.Course{
		CourseCode: "CSC301", CourseTitle: "Algorithms",
		LecturerID: lecturer.ID, Department: "Computer Science", Level: "300",
	}
	require.NoError(t, st.CreateCourse(ctx, course))

	students := make([]*model.Student, 0, 2)
	for _, row := range []struct{ name, reg, dept, tag string }{
		{"Ada Obi", "CS/2021/001", "Computer Science", "TAG-001"},
		{"Ben Musa", "CS/2021/002", "Mathematics", "TAG-002"},
	} {
		s := &model.Student{
			Name: row.name, RegNo: row.reg,
			Department: row.dept, Level: "300", RFIDTag: row.tag,
		}
		require.NoError(t, st.CreateStudent(ctx, s))
		students = append(students, s)
	}

	sess := &model.Session{
		CourseID: course.ID, LecturerID: lecturer.ID,
		SessionDate: now, IsActive: true,
	}
	require.NoError(t, st.CreateSession(ctx, sess))

	require.NoError(t, st.CreateAttendance(ctx, &model.AttendanceRecord{
		StudentID: students[0].ID, CourseID: course.ID, SessionID: &sess.ID,
		Date: now, TimeIn: "09:00:00", RFIDTag: students[0].RFIDTag,
	}))

	// A record from yesterday must stay outside today's window.
	require.NoError(t, st.CreateAttendance(ctx, &model.AttendanceRecord{
		StudentID: students[1].ID, CourseID: course.ID,
		Date: now.Add(-24 * time.Hour), TimeIn: "09:00:00", RFIDTag: students[1].RFIDTag,
	}))

	overview, err := svc.Overview(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, 2, overview.TotalStudents)
	assert.Equal(t, 1, overview.TotalCourses)
	assert.Equal(t, 1, overview.TotalLecturers)
	assert.Equal(t, 1, overview.PresentToday)
	assert.Equal(t, 1, overview.AbsentToday)
	assert.Equal(t, 1, overview.SessionsToday)
	assert.Equal(t, 50.0, overview.AvgAttendance)

	require.Len(t, overview.AttendanceByCourse, 1)
	assert.Equal(t, "CSC301", overview.AttendanceByCourse[0].CourseCode)
	assert.Equal(t, 1, overview.AttendanceByCourse[0].Count)

	assert.Len(t, overview.StudentsByDepartment, 2)

	require.Len(t, overview.CurrentActiveSessions, 1)
	assert.Equal(t, 1, overview.CurrentActiveSessions[0].AttendeesCount)
	require.NotEmpty(t, overview.RecentSessions)
}

func TestOverviewEmptyDatabase(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	overview, err := NewService(st).Overview(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, overview.TotalStudents)
	assert.Zero(t, overview.PresentToday)
	assert.Zero(t, overview.AbsentToday)
	assert.Zero(t, overview.AvgAttendance)
	assert.Empty(t, overview.CurrentActiveSessions)
}

package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagtrack/internal/model"
	"tagtrack/internal/store"
)

func setupStore(t *testing.T) (*SQLiteStore, func()) {
	s, err := New(":memory:")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		require.NoError(t, s.Close(), "Failed to close database")
	}
	return s, cleanup
}

func seedStudent(t *testing.T, s *SQLiteStore, name, regNo, dept, tag string) *model.Student {
	st := &model.Student{
		Name:       name,
		RegNo:      regNo,
		Department: dept,
		Level:      "300",
		RFIDTag:    tag,
	}
	require.NoError(t, s.CreateStudent(context.Background(), st))
	return st
}

func seedCourse(t *testing.T, s *SQLiteStore, code, lecturerID string) *model.Course {
	c := &model.Course{
		CourseCode:  code,
		CourseTitle: "Intro to " + code,
		LecturerID:  lecturerID,
		Department:  "Computer Science",
		Level:       "300",
	}
	require.NoError(t, s.CreateCourse(context.Background(), c))
	return c
}

func seedUser(t *testing.T, s *SQLiteStore, name, email, role string) *model.User {
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestStudentCRUD(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	student := seedStudent(t, s, "Ada Obi", "CS/2021/001", "Computer Science", "TAG-001")

	t.Run("get by id", func(t *testing.T) {
		got, err := s.GetStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada Obi", got.Name)
		assert.Equal(t, "default.jpg", got.Photo)
	})

	t.Run("get by tag", func(t *testing.T) {
		got, err := s.GetStudentByTag(ctx, "TAG-001")
		require.NoError(t, err)
		assert.Equal(t, student.ID, got.ID)
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := s.GetStudentByTag(ctx, "TAG-NOPE")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate reg no", func(t *testing.T) {
		err := s.CreateStudent(ctx, &model.Student{
			Name: "Other", RegNo: "CS/2021/001",
			Department: "Physics", Level: "200", RFIDTag: "TAG-002",
		})
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("duplicate rfid tag", func(t *testing.T) {
		err := s.CreateStudent(ctx, &model.Student{
			Name: "Other", RegNo: "CS/2021/099",
			Department: "Physics", Level: "200", RFIDTag: "TAG-001",
		})
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("update", func(t *testing.T) {
		student.Level = "400"
		require.NoError(t, s.UpdateStudent(ctx, student))
		got, err := s.GetStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, "400", got.Level)
	})

	t.Run("list", func(t *testing.T) {
		students, err := s.ListStudents(ctx)
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteStudent(ctx, student.ID))
		assert.ErrorIs(t, s.DeleteStudent(ctx, student.ID), store.ErrNotFound)
		_, err := s.GetStudent(ctx, student.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestCourseCRUD(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	lecturer := seedUser(t, s, "Dr. Eze", "eze@example.edu", model.RoleLecturer)
	course := seedCourse(t, s, "CSC301", lecturer.ID)

	t.Run("duplicate code", func(t *testing.T) {
		err := s.CreateCourse(ctx, &model.Course{
			CourseCode: "CSC301", CourseTitle: "Clone",
			LecturerID: lecturer.ID, Department: "CS", Level: "300",
		})
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("update and get", func(t *testing.T) {
		course.CourseTitle = "Algorithms"
		require.NoError(t, s.UpdateCourse(ctx, course))
		got, err := s.GetCourse(ctx, course.ID)
		require.NoError(t, err)
		assert.Equal(t, "Algorithms", got.CourseTitle)
	})

	t.Run("delete missing", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteCourse(ctx, "nope"), store.ErrNotFound)
	})
}

func TestUserOperations(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	admin := seedUser(t, s, "Root", "root@example.edu", model.RoleAdmin)
	seedUser(t, s, "Lect A", "a@example.edu", model.RoleLecturer)
	seedUser(t, s, "Lect B", "b@example.edu", model.RoleLecturer)

	t.Run("get by email", func(t *testing.T) {
		got, err := s.GetUserByEmail(ctx, "root@example.edu")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, got.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := s.CreateUser(ctx, &model.User{
			Name: "Imposter", Email: "root@example.edu",
			PasswordHash: "x", Role: model.RoleAdmin,
		})
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("count by role", func(t *testing.T) {
		n, err := s.CountUsersByRole(ctx, model.RoleLecturer)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestSessionLifecycle(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	lecturer := seedUser(t, s, "Dr. Eze", "eze@example.edu", model.RoleLecturer)
	course := seedCourse(t, s, "CSC301", lecturer.ID)

	first := &model.Session{CourseID: course.ID, LecturerID: lecturer.ID, IsActive: true}
	require.NoError(t, s.CreateSession(ctx, first))

	t.Run("second active session for same course rejected", func(t *testing.T) {
		err := s.CreateSession(ctx, &model.Session{
			CourseID: course.ID, LecturerID: lecturer.ID, IsActive: true,
		})
		assert.ErrorIs(t, err, store.ErrActiveSessionExists)
	})

	t.Run("different course unaffected", func(t *testing.T) {
		other := seedCourse(t, s, "CSC305", lecturer.ID)
		err := s.CreateSession(ctx, &model.Session{
			CourseID: other.ID, LecturerID: lecturer.ID, IsActive: true,
		})
		assert.NoError(t, err)
	})

	t.Run("end flips active off", func(t *testing.T) {
		ended, err := s.EndSession(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, ended.IsActive)
	})

	t.Run("double end reports already closed", func(t *testing.T) {
		_, err := s.EndSession(ctx, first.ID)
		assert.ErrorIs(t, err, store.ErrSessionClosed)
	})

	t.Run("end missing session", func(t *testing.T) {
		_, err := s.EndSession(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("course can reopen after close", func(t *testing.T) {
		err := s.CreateSession(ctx, &model.Session{
			CourseID: course.ID, LecturerID: lecturer.ID, IsActive: true,
		})
		assert.NoError(t, err)
	})
}

func TestConcurrentSessionOpen(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	lecturer := seedUser(t, s, "Dr. Eze", "eze@example.edu", model.RoleLecturer)
	course := seedCourse(t, s, "CSC301", lecturer.ID)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateSession(ctx, &model.Session{
				CourseID: course.ID, LecturerID: lecturer.ID, IsActive: true,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, store.ErrActiveSessionExists)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent open must win")

	active, err := s.ListActiveSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestAttendanceUniqueness(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	lecturer := seedUser(t, s, "Dr. Eze", "eze@example.edu", model.RoleLecturer)
	course := seedCourse(t, s, "CSC301", lecturer.ID)
	student := seedStudent(t, s, "Ada Obi", "CS/2021/001", "Computer Science", "TAG-001")

	sess := &model.Session{CourseID: course.ID, LecturerID: lecturer.ID, IsActive: true}
	require.NoError(t, s.CreateSession(ctx, sess))

	rec := &model.AttendanceRecord{
		StudentID: student.ID, CourseID: course.ID, SessionID: &sess.ID,
		TimeIn: "09:00:00", RFIDTag: student.RFIDTag,
	}
	require.NoError(t, s.CreateAttendance(ctx, rec))

	t.Run("same student same session rejected", func(t *testing.T) {
		err := s.CreateAttendance(ctx, &model.AttendanceRecord{
			StudentID: student.ID, CourseID: course.ID, SessionID: &sess.ID,
			TimeIn: "09:05:00", RFIDTag: student.RFIDTag,
		})
		assert.ErrorIs(t, err, store.ErrDuplicateAttendance)
	})

	t.Run("kiosk records never collide", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			err := s.CreateAttendance(ctx, &model.AttendanceRecord{
				StudentID: student.ID, CourseID: course.ID,
				TimeIn: "10:00:00", RFIDTag: student.RFIDTag,
			})
			assert.NoError(t, err, "NULL session ids must not trip the unique index")
		}
	})
}

func TestConcurrentAttendanceMark(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	lecturer := seedUser(t, s, "Dr. Eze", "eze@example.edu", model.RoleLecturer)
	course := seedCourse(t, s, "CSC301", lecturer.ID)
	student := seedStudent(t, s, "Ada Obi", "CS/2021/001", "Computer Science", "TAG-001")

	sess := &model.Session{CourseID: course.ID, LecturerID: lecturer.ID, IsActive: true}
	require.NoError(t, s.CreateSession(ctx, sess))

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateAttendance(ctx, &model.AttendanceRecord{
				StudentID: student.ID, CourseID: course.ID, SessionID: &sess.ID,
				TimeIn: "09:00:00", RFIDTag: student.RFIDTag,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, store.ErrDuplicateAttendance)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent mark must win")
}

func TestAttendanceQueries(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	lecturer := seedUser(t, s, "Dr. Eze", "eze@example.edu", model.RoleLecturer)
	cs := seedCourse(t, s, "CSC301", lecturer.ID)
	math := seedCourse(t, s, "MTH201", lecturer.ID)
	ada := seedStudent(t, s, "Ada Obi", "CS/2021/001", "Computer Science", "TAG-001")
	ben := seedStudent(t, s, "Ben Musa", "CS/2021/002", "Mathematics", "TAG-002")

	today := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	yesterday := today.Add(-24 * time.Hour)

	mark := func(st *model.Student, c *model.Course, when time.Time) {
		require.NoError(t, s.CreateAttendance(ctx, &model.AttendanceRecord{
			StudentID: st.ID, CourseID: c.ID, Date: when,
			TimeIn: when.Format("15:04:05"), RFIDTag: st.RFIDTag,
		}))
	}
	mark(ada, cs, today)
	mark(ben, cs, today)
	mark(ada, math, today)
	mark(ada, cs, yesterday)

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	to := from.Add(24 * time.Hour)

	t.Run("by course carries student context", func(t *testing.T) {
		records, err := s.ListAttendanceByCourse(ctx, cs.ID)
		require.NoError(t, err)
		assert.Len(t, records, 3)
		require.NotNil(t, records[0].Student)
		assert.NotEmpty(t, records[0].Student.Name)
		require.NotNil(t, records[0].Course)
		assert.Equal(t, "CSC301", records[0].Course.CourseCode)
	})

	t.Run("by student", func(t *testing.T) {
		records, err := s.ListAttendanceByStudent(ctx, ada.ID)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("filtered by day window", func(t *testing.T) {
		records, err := s.ListAttendanceFiltered(ctx, "", &from, &to)
		require.NoError(t, err)
		assert.Len(t, records, 3)

		records, err = s.ListAttendanceFiltered(ctx, cs.ID, &from, &to)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("present counts respect bounds", func(t *testing.T) {
		n, err := s.CountPresentBetween(ctx, from, to)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = s.CountPresentForCourseBetween(ctx, cs.ID, from, to)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.CountStudentCourseBetween(ctx, ada.ID, cs.ID, from, to)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("present by course sorts by count", func(t *testing.T) {
		counts, err := s.PresentByCourseBetween(ctx, from, to)
		require.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, "CSC301", counts[0].CourseCode)
		assert.Equal(t, 2, counts[0].Count)
		assert.Equal(t, "MTH201", counts[1].CourseCode)
		assert.Equal(t, 1, counts[1].Count)
	})

	t.Run("department breakdown", func(t *testing.T) {
		counts, err := s.CountStudentsByDepartment(ctx)
		require.NoError(t, err)
		assert.Len(t, counts, 2)
	})
}

func TestAttendanceUpdateDelete(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	lecturer := seedUser(t, s, "Dr. Eze", "eze@example.edu", model.RoleLecturer)
	course := seedCourse(t, s, "CSC301", lecturer.ID)
	student := seedStudent(t, s, "Ada Obi", "CS/2021/001", "Computer Science", "TAG-001")

	rec := &model.AttendanceRecord{
		StudentID: student.ID, CourseID: course.ID,
		TimeIn: "09:00:00", RFIDTag: student.RFIDTag,
	}
	require.NoError(t, s.CreateAttendance(ctx, rec))

	rec.TimeIn = "09:30:00"
	require.NoError(t, s.UpdateAttendance(ctx, rec))

	got, err := s.GetAttendance(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", got.TimeIn)

	require.NoError(t, s.DeleteAttendance(ctx, rec.ID))
	assert.ErrorIs(t, s.DeleteAttendance(ctx, rec.ID), store.ErrNotFound)
}

func TestSessionDetailListing(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	lecturer := seedUser(t, s, "Dr. Eze", "eze@example.edu", model.RoleLecturer)
	course := seedCourse(t, s, "CSC301", lecturer.ID)

	older := &model.Session{
		CourseID: course.ID, LecturerID: lecturer.ID, IsActive: true,
		SessionDate: time.Date(2026, 3, 9, 9, 0, 0, 0, time.Local),
	}
	require.NoError(t, s.CreateSession(ctx, older))
	_, err := s.EndSession(ctx, older.ID)
	require.NoError(t, err)

	newer := &model.Session{
		CourseID: course.ID, LecturerID: lecturer.ID, IsActive: true,
		SessionDate: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local),
	}
	require.NoError(t, s.CreateSession(ctx, newer))

	t.Run("active carries joined context", func(t *testing.T) {
		active, err := s.ListActiveSessions(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		require.NotNil(t, active[0].Course)
		assert.Equal(t, "CSC301", active[0].Course.CourseCode)
		require.NotNil(t, active[0].Lecturer)
		assert.Equal(t, "Dr. Eze", active[0].Lecturer.Name)
	})

	t.Run("recent newest first", func(t *testing.T) {
		recent, err := s.ListRecentSessions(ctx, 10)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, newer.ID, recent[0].ID)
		assert.Equal(t, older.ID, recent[1].ID)
	})

	t.Run("recent respects limit", func(t *testing.T) {
		recent, err := s.ListRecentSessions(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, recent, 1)
	})

	t.Run("count between bounds", func(t *testing.T) {
		from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
		n, err := s.CountSessionsBetween(ctx, from, from.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestAuditEvents(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		err := s.InsertAuditEvent(ctx, &model.AuditEvent{
			ActorID:   "admin-1",
			Action:    "user.create",
			Details:   "created someone",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	events, err := s.ListAuditEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].CreatedAt.After(events[1].CreatedAt), "newest first")
}

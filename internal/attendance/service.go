// Package attendance converts scans into durable attendance records.
//
// Two entry points exist on purpose and must not be merged: Mark deduplicates
// by (student, session), Scan — the kiosk flow — deduplicates by
// (student, course, calendar day).
package attendance

import (
	"context"
	"errors"
	"time"

	"tagtrack/internal/identity"
	"tagtrack/internal/model"
	"tagtrack/internal/store"
)

// Domain errors surfaced to handlers.
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrSessionRequired    = errors.New("session id required")
	ErrDuplicate          = store.ErrDuplicateAttendance
	ErrAlreadyMarkedToday = errors.New("attendance already marked for today")
)

// Service records attendance. The (student, session) uniqueness rides on the
// store's unique index, so concurrent duplicate scans race safely: one insert
// wins, the other reports ErrDuplicate.
type Service struct {
	store    store.Store
	resolver *identity.Resolver
}

func NewService(st store.Store, resolver *identity.Resolver) *Service {
	return &Service{store: st, resolver: resolver}
}

// Mark records attendance for a session. The session must be supplied
// explicitly — the system never infers "the" active session, since many
// historical sessions exist per course.
func (s *Service) Mark(ctx context.Context, rfidTag, courseID, sessionID string) (*model.AttendanceDetail, error) {
	student, err := s.resolver.Resolve(ctx, rfidTag)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}

	course, err := s.store.GetCourse(ctx, courseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	now := time.Now()
	rec := &model.AttendanceRecord{
		StudentID: student.ID,
		CourseID:  course.ID,
		SessionID: &sessionID,
		Date:      now,
		TimeIn:    now.Format("15:04:05"),
		Status:    model.StatusPresent,
		RFIDTag:   rfidTag,
	}
	if err := s.store.CreateAttendance(ctx, rec); err != nil {
		return nil, err
	}

	detail := &model.AttendanceDetail{
		AttendanceRecord: *rec,
		Student: &model.StudentRef{
			ID:         student.ID,
			Name:       student.Name,
			RegNo:      student.RegNo,
			Department: student.Department,
			Level:      student.Level,
			Photo:      student.Photo,
		},
		Course: &model.CourseRef{ID: course.ID, CourseCode: course.CourseCode, CourseTitle: course.CourseTitle},
	}
	if sess, err := s.store.GetSession(ctx, sessionID); err == nil {
		detail.Session = sess
	}
	return detail, nil
}

// Scan is the kiosk flow: no session, dedup by calendar day. The same-day
// lookup is a read-then-write, matching the original semantics; the hard
// constraint lives on the session path only.
func (s *Service) Scan(ctx context.Context, rfidTag, courseID string) (*model.AttendanceDetail, error) {
	student, err := s.resolver.Resolve(ctx, rfidTag)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}

	course, err := s.store.GetCourse(ctx, courseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from, to := dayRange(now)
	marked, err := s.store.CountStudentCourseBetween(ctx, student.ID, course.ID, from, to)
	if err != nil {
		return nil, err
	}
	if marked > 0 {
		return nil, ErrAlreadyMarkedToday
	}

	rec := &model.AttendanceRecord{
		StudentID: student.ID,
		CourseID:  course.ID,
		Date:      now,
		TimeIn:    now.Format("15:04:05"),
		Status:    model.StatusPresent,
		RFIDTag:   rfidTag,
	}
	if err := s.store.CreateAttendance(ctx, rec); err != nil {
		return nil, err
	}

	return &model.AttendanceDetail{
		AttendanceRecord: *rec,
		Student: &model.StudentRef{
			ID:    student.ID,
			Name:  student.Name,
			Photo: student.Photo,
		},
	}, nil
}

// ByCourse returns enriched records for a course.
func (s *Service) ByCourse(ctx context.Context, courseID string) ([]model.AttendanceDetail, error) {
	return s.store.ListAttendanceByCourse(ctx, courseID)
}

// ByStudent returns a student's enriched attendance history.
func (s *Service) ByStudent(ctx context.Context, studentID string) ([]model.AttendanceDetail, error) {
	return s.store.ListAttendanceByStudent(ctx, studentID)
}

// ByDate returns enriched records for one calendar day.
func (s *Service) ByDate(ctx context.Context, day time.Time) ([]model.AttendanceDetail, error) {
	from, to := dayRange(day)
	return s.store.ListAttendanceFiltered(ctx, "", &from, &to)
}

// Update is the admin maintenance path; it carries no scan invariants.
// Empty fields keep their stored values.
func (s *Service) Update(ctx context.Context, id, status, timeIn string) (*model.AttendanceRecord, error) {
	rec, err := s.store.GetAttendance(ctx, id)
	if err != nil {
		return nil, err
	}
	if status != "" {
		rec.Status = status
	}
	if timeIn != "" {
		rec.TimeIn = timeIn
	}
	if err := s.store.UpdateAttendance(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteAttendance(ctx, id)
}

func dayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24 * time.Hour)
}

// Package session owns the lifecycle of a course's attendance window.
package session

import (
	"context"
	"errors"
	"time"

	"tagtrack/internal/model"
	"tagtrack/internal/store"
)

// Domain errors surfaced to handlers.
var (
	ErrCourseRequired = errors.New("course id required")
	ErrConflict       = store.ErrActiveSessionExists
	ErrNotFound       = store.ErrNotFound
	ErrAlreadyEnded   = store.ErrSessionClosed
)

// Service enforces the per-course state machine NONE -> ACTIVE -> CLOSED.
// The store's unique index carries the at-most-one-active invariant, so Open
// needs no lock: it just inserts and reports the conflict if it loses.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Open starts a new active session for the course.
func (s *Service) Open(ctx context.Context, courseID, lecturerID string) (*model.SessionDetail, error) {
	if courseID == "" {
		return nil, ErrCourseRequired
	}

	sess := &model.Session{
		CourseID:    courseID,
		LecturerID:  lecturerID,
		SessionDate: time.Now(),
		IsActive:    true,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	detail := &model.SessionDetail{Session: *sess}
	if course, err := s.store.GetCourse(ctx, courseID); err == nil {
		detail.Course = &model.CourseRef{ID: course.ID, CourseCode: course.CourseCode, CourseTitle: course.CourseTitle}
	}
	if lecturer, err := s.store.GetUser(ctx, lecturerID); err == nil {
		detail.Lecturer = &model.LecturerRef{ID: lecturer.ID, Name: lecturer.Name}
	}
	return detail, nil
}

// End closes a session. Double-close is reported as ErrAlreadyEnded so callers
// can tell "I closed it" apart from "someone already closed it".
func (s *Service) End(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.store.EndSession(ctx, sessionID)
}

// Active returns all currently active sessions with course/lecturer context.
func (s *Service) Active(ctx context.Context) ([]model.SessionDetail, error) {
	return s.store.ListActiveSessions(ctx)
}

// Recent returns the most recent sessions ordered by sessionDate descending,
// each carrying a live attendee count: Present records for the session's
// course within the session's own day range. A session whose course is gone
// keeps a zero count.
func (s *Service) Recent(ctx context.Context, limit int) ([]model.SessionDetail, error) {
	sessions, err := s.store.ListRecentSessions(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Course == nil {
			continue
		}
		from, to := dayRange(sessions[i].SessionDate)
		count, err := s.store.CountPresentForCourseBetween(ctx, sessions[i].CourseID, from, to)
		if err != nil {
			return nil, err
		}
		sessions[i].AttendeesCount = count
	}
	return sessions, nil
}

// dayRange returns the local [startOfDay, endOfDay) window containing t.
func dayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24 * time.Hour)
}

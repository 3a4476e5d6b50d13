// Package stats derives dashboard statistics from recorded attendance.
// Read-only; no invariants of its own beyond day-range semantics.
package stats

import (
	"context"
	"math"
	"time"

	"tagtrack/internal/model"
	"tagtrack/internal/store"
)

const dashboardRecentLimit = 5

// Service computes the admin overview.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// AverageAttendance is presentToday / (sessionsToday * totalStudents) * 100,
// rounded to two decimals, and 0 when either factor is 0. It treats every
// session as expecting every student — a known approximation kept for the
// dashboard's existing consumers, not a bug.
func AverageAttendance(present, sessions, totalStudents int) float64 {
	if sessions <= 0 || totalStudents <= 0 {
		return 0
	}
	avg := float64(present) / float64(sessions*totalStudents) * 100
	return math.Round(avg*100) / 100
}

// DayRange returns the local [startOfDay, endOfDay) window containing t.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24 * time.Hour)
}

// Overview assembles today's statistics as of now.
func (s *Service) Overview(ctx context.Context, now time.Time) (*model.Overview, error) {
	from, to := DayRange(now)

	totalStudents, err := s.store.CountStudents(ctx)
	if err != nil {
		return nil, err
	}
	totalCourses, err := s.store.CountCourses(ctx)
	if err != nil {
		return nil, err
	}
	totalLecturers, err := s.store.CountUsersByRole(ctx, model.RoleLecturer)
	if err != nil {
		return nil, err
	}

	presentToday, err := s.store.CountPresentBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sessionsToday, err := s.store.CountSessionsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	// Coarse by design: over-counts absence whenever a student has no
	// session to attend today.
	absentToday := totalStudents - presentToday
	if absentToday < 0 {
		absentToday = 0
	}

	byCourse, err := s.store.PresentByCourseBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDepartment, err := s.store.CountStudentsByDepartment(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.store.ListActiveSessions(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.attachAttendeeCounts(ctx, active); err != nil {
		return nil, err
	}

	recent, err := s.store.ListRecentSessions(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	if err := s.attachAttendeeCounts(ctx, recent); err != nil {
		return nil, err
	}

	return &model.Overview{
		TotalStudents:         totalStudents,
		TotalCourses:          totalCourses,
		TotalLecturers:        totalLecturers,
		PresentToday:          presentToday,
		AbsentToday:           absentToday,
		SessionsToday:         sessionsToday,
		AvgAttendance:         AverageAttendance(presentToday, sessionsToday, totalStudents),
		AttendanceByCourse:    byCourse,
		StudentsByDepartment:  byDepartment,
		CurrentActiveSessions: active,
		RecentSessions:        recent,
	}, nil
}

// attachAttendeeCounts fills each session's live attendee count: Present
// records for the session's course within the session's own day range.
// A session with an unresolved course keeps a zero count.
func (s *Service) attachAttendeeCounts(ctx context.Context, sessions []model.SessionDetail) error {
	for i := range sessions {
		if sessions[i].Course == nil {
			continue
		}
		from, to := DayRange(sessions[i].SessionDate)
		count, err := s.store.CountPresentForCourseBetween(ctx, sessions[i].CourseID, from, to)
		if err != nil {
			return err
		}
		sessions[i].AttendeesCount = count
	}
	return nil
}

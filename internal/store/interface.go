package store

import (
	"context"
	"time"

	"tagtrack/internal/model"
)

// Store is the persistence boundary. The two consistency invariants — at most
// one active session per course, at most one attendance record per
// (student, session) — are enforced by unique indexes inside the backends, not
// by callers: CreateSession and CreateAttendance report a violation as
// ErrActiveSessionExists / ErrDuplicateAttendance after the database has
// atomically rejected the write.
type Store interface {
	Close() error

	CreateStudent(ctx context.Context, s *model.Student) error
	GetStudent(ctx context.Context, id string) (*model.Student, error)
	GetStudentByTag(ctx context.Context, tag string) (*model.Student, error)
	ListStudents(ctx context.Context) ([]model.Student, error)
	UpdateStudent(ctx context.Context, s *model.Student) error
	DeleteStudent(ctx context.Context, id string) error
	CountStudents(ctx context.Context) (int, error)
	CountStudentsByDepartment(ctx context.Context) ([]model.DepartmentCount, error)

	CreateCourse(ctx context.Context, c *model.Course) error
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	UpdateCourse(ctx context.Context, c *model.Course) error
	DeleteCourse(ctx context.Context, id string) error
	CountCourses(ctx context.Context) (int, error)

	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id string) error
	CountUsersByRole(ctx context.Context, role string) (int, error)

	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	EndSession(ctx context.Context, id string) (*model.Session, error)
	ListActiveSessions(ctx context.Context) ([]model.SessionDetail, error)
	ListRecentSessions(ctx context.Context, limit int) ([]model.SessionDetail, error)
	CountSessionsBetween(ctx context.Context, from, to time.Time) (int, error)

	CreateAttendance(ctx context.Context, rec *model.AttendanceRecord) error
	GetAttendance(ctx context.Context, id string) (*model.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, rec *model.AttendanceRecord) error
	DeleteAttendance(ctx context.Context, id string) error
	ListAttendanceByCourse(ctx context.Context, courseID string) ([]model.AttendanceDetail, error)
	ListAttendanceByStudent(ctx context.Context, studentID string) ([]model.AttendanceDetail, error)
	ListAttendanceFiltered(ctx context.Context, courseID string, from, to *time.Time) ([]model.AttendanceDetail, error)
	CountPresentBetween(ctx context.Context, from, to time.Time) (int, error)
	CountPresentForCourseBetween(ctx context.Context, courseID string, from, to time.Time) (int, error)
	CountStudentCourseBetween(ctx context.Context, studentID, courseID string, from, to time.Time) (int, error)
	PresentByCourseBetween(ctx context.Context, from, to time.Time) ([]model.CourseAttendance, error)

	InsertAuditEvent(ctx context.Context, e *model.AuditEvent) error
	ListAuditEvents(ctx context.Context, limit int) ([]model.AuditEvent, error)
}

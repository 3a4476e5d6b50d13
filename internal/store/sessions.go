package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tagtrack/internal/model"
)

// CreateSession inserts a new active session. The sessions_one_active partial
// index is the arbiter: if another session for the same course is active the
// insert fails and ErrActiveSessionExists is returned.
func (s *BaseStore) CreateSession(ctx context.Context, sess *model.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.SessionDate.IsZero() {
		sess.SessionDate = time.Now()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO sessions (id, course_id, lecturer_id, session_date, is_active, created_at)
		VALUES (:id, :course_id, :lecturer_id, :session_date, :is_active, :created_at)
	`, sess)
	if s.unique(err) {
		return ErrActiveSessionExists
	}
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *BaseStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	err := s.get(ctx, &sess, `
		SELECT id, course_id, lecturer_id, session_date, is_active, created_at
		FROM sessions WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// EndSession flips is_active off. The guarded UPDATE touches zero rows both
// when the session is missing and when it is already closed; a follow-up read
// tells the two apart so callers can report AlreadyClosed distinctly.
func (s *BaseStore) EndSession(ctx context.Context, id string) (*model.Session, error) {
	res, err := s.DB.ExecContext(ctx, s.Converter(`
		UPDATE sessions SET is_active = ? WHERE id = ? AND is_active
	`), false, id)
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := s.GetSession(ctx, id); errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		} else if err != nil {
			return nil, err
		}
		return nil, ErrSessionClosed
	}
	return s.GetSession(ctx, id)
}

type sessionDetailRow struct {
	model.Session
	CourseCode   *string `db:"course_code"`
	CourseTitle  *string `db:"course_title"`
	LecturerName *string `db:"lecturer_name"`
}

func (r sessionDetailRow) toDetail() model.SessionDetail {
	d := model.SessionDetail{Session: r.Session}
	if r.CourseCode != nil {
		d.Course = &model.CourseRef{ID: r.CourseID, CourseCode: *r.CourseCode}
		if r.CourseTitle != nil {
			d.Course.CourseTitle = *r.CourseTitle
		}
	}
	if r.LecturerName != nil {
		d.Lecturer = &model.LecturerRef{ID: r.LecturerID, Name: *r.LecturerName}
	}
	return d
}

const sessionDetailQuery = `
	SELECT s.id, s.course_id, s.lecturer_id, s.session_date, s.is_active, s.created_at,
	       c.course_code AS course_code, c.course_title AS course_title,
	       u.name AS lecturer_name
	FROM sessions s
	LEFT JOIN courses c ON c.id = s.course_id
	LEFT JOIN users u ON u.id = s.lecturer_id
`

func (s *BaseStore) ListActiveSessions(ctx context.Context) ([]model.SessionDetail, error) {
	var rows []sessionDetailRow
	err := s.DB.SelectContext(ctx, &rows, sessionDetailQuery+` WHERE s.is_active ORDER BY s.session_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	details := make([]model.SessionDetail, 0, len(rows))
	for _, r := range rows {
		details = append(details, r.toDetail())
	}
	return details, nil
}

func (s *BaseStore) ListRecentSessions(ctx context.Context, limit int) ([]model.SessionDetail, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []sessionDetailRow
	err := s.DB.SelectContext(ctx, &rows, s.Converter(sessionDetailQuery+` ORDER BY s.session_date DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}
	details := make([]model.SessionDetail, 0, len(rows))
	for _, r := range rows {
		details = append(details, r.toDetail())
	}
	return details, nil
}

func (s *BaseStore) CountSessionsBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, s.Converter(`
		SELECT COUNT(*) FROM sessions WHERE session_date >= ? AND session_date < ?
	`), from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

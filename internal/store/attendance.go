package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tagtrack/internal/model"
)

// CreateAttendance inserts a new record. The attendance_student_session unique
// index is the anti-double-mark guarantee: of two concurrent inserts for the
// same (student, session) exactly one succeeds, the loser gets
// ErrDuplicateAttendance. Kiosk records have a NULL session_id and are never
// rejected here.
func (s *BaseStore) CreateAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Date.IsZero() {
		rec.Date = time.Now()
	}
	if rec.Status == "" {
		rec.Status = model.StatusPresent
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, course_id, session_id, date, time_in, status, rfid_tag, created_at)
		VALUES (:id, :student_id, :course_id, :session_id, :date, :time_in, :status, :rfid_tag, :created_at)
	`, rec)
	if s.unique(err) {
		return ErrDuplicateAttendance
	}
	if err != nil {
		return fmt.Errorf("failed to create attendance record: %w", err)
	}
	return nil
}

func (s *BaseStore) GetAttendance(ctx context.Context, id string) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := s.get(ctx, &rec, `
		SELECT id, student_id, course_id, session_id, date, time_in, status, rfid_tag, created_at
		FROM attendance_records WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateAttendance is the unguarded admin maintenance path; it bypasses the
// scanning invariants on purpose.
func (s *BaseStore) UpdateAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`
		UPDATE attendance_records
		SET student_id = ?, course_id = ?, session_id = ?, date = ?, time_in = ?, status = ?, rfid_tag = ?
		WHERE id = ?
	`), rec.StudentID, rec.CourseID, rec.SessionID, rec.Date, rec.TimeIn, rec.Status, rec.RFIDTag, rec.ID)
	if s.unique(err) {
		return ErrDuplicateAttendance
	}
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	return mustAffect(res)
}

func (s *BaseStore) DeleteAttendance(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`DELETE FROM attendance_records WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	return mustAffect(res)
}

type attendanceDetailRow struct {
	model.AttendanceRecord
	StudentName       *string `db:"student_name"`
	StudentRegNo      *string `db:"student_reg_no"`
	StudentDepartment *string `db:"student_department"`
	StudentLevel      *string `db:"student_level"`
	StudentPhoto      *string `db:"student_photo"`
	CourseCode        *string `db:"course_code"`
	CourseTitle       *string `db:"course_title"`
}

func (r attendanceDetailRow) toDetail() model.AttendanceDetail {
	d := model.AttendanceDetail{AttendanceRecord: r.AttendanceRecord}
	if r.StudentName != nil {
		d.Student = &model.StudentRef{
			ID:   r.StudentID,
			Name: *r.StudentName,
		}
		if r.StudentRegNo != nil {
			d.Student.RegNo = *r.StudentRegNo
		}
		if r.StudentDepartment != nil {
			d.Student.Department = *r.StudentDepartment
		}
		if r.StudentLevel != nil {
			d.Student.Level = *r.StudentLevel
		}
		if r.StudentPhoto != nil {
			d.Student.Photo = *r.StudentPhoto
		}
	}
	if r.CourseCode != nil {
		d.Course = &model.CourseRef{ID: r.CourseID, CourseCode: *r.CourseCode}
		if r.CourseTitle != nil {
			d.Course.CourseTitle = *r.CourseTitle
		}
	}
	return d
}

const attendanceDetailQuery = `
	SELECT a.id, a.student_id, a.course_id, a.session_id, a.date, a.time_in, a.status, a.rfid_tag, a.created_at,
	       s.name AS student_name, s.reg_no AS student_reg_no, s.department AS student_department,
	       s.level AS student_level, s.photo AS student_photo,
	       c.course_code AS course_code, c.course_title AS course_title
	FROM attendance_records a
	LEFT JOIN students s ON s.id = a.student_id
	LEFT JOIN courses c ON c.id = a.course_id
`

func (s *BaseStore) selectAttendanceDetails(ctx context.Context, query string, args ...interface{}) ([]model.AttendanceDetail, error) {
	var rows []attendanceDetailRow
	if err := s.DB.SelectContext(ctx, &rows, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to fetch attendance records: %w", err)
	}
	details := make([]model.AttendanceDetail, 0, len(rows))
	for _, r := range rows {
		details = append(details, r.toDetail())
	}
	return details, nil
}

func (s *BaseStore) ListAttendanceByCourse(ctx context.Context, courseID string) ([]model.AttendanceDetail, error) {
	return s.selectAttendanceDetails(ctx, attendanceDetailQuery+` WHERE a.course_id = ? ORDER BY a.date DESC`, courseID)
}

func (s *BaseStore) ListAttendanceByStudent(ctx context.Context, studentID string) ([]model.AttendanceDetail, error) {
	return s.selectAttendanceDetails(ctx, attendanceDetailQuery+` WHERE a.student_id = ? ORDER BY a.date DESC`, studentID)
}

// ListAttendanceFiltered serves the report export and by-date reads. Empty
// courseID and nil bounds mean "no filter".
func (s *BaseStore) ListAttendanceFiltered(ctx context.Context, courseID string, from, to *time.Time) ([]model.AttendanceDetail, error) {
	query := attendanceDetailQuery + ` WHERE 1=1`
	args := []interface{}{}
	if courseID != "" {
		query += ` AND a.course_id = ?`
		args = append(args, courseID)
	}
	if from != nil {
		query += ` AND a.date >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND a.date < ?`
		args = append(args, *to)
	}
	query += ` ORDER BY a.date DESC`
	return s.selectAttendanceDetails(ctx, query, args...)
}

func (s *BaseStore) CountPresentBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, s.Converter(`
		SELECT COUNT(*) FROM attendance_records
		WHERE status = ? AND date >= ? AND date < ?
	`), model.StatusPresent, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count present records: %w", err)
	}
	return n, nil
}

func (s *BaseStore) CountPresentForCourseBetween(ctx context.Context, courseID string, from, to time.Time) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, s.Converter(`
		SELECT COUNT(*) FROM attendance_records
		WHERE course_id = ? AND status = ? AND date >= ? AND date < ?
	`), courseID, model.StatusPresent, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count course attendance: %w", err)
	}
	return n, nil
}

// CountStudentCourseBetween backs the kiosk same-day dedup lookup.
func (s *BaseStore) CountStudentCourseBetween(ctx context.Context, studentID, courseID string, from, to time.Time) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, s.Converter(`
		SELECT COUNT(*) FROM attendance_records
		WHERE student_id = ? AND course_id = ? AND date >= ? AND date < ?
	`), studentID, courseID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count student attendance: %w", err)
	}
	return n, nil
}

func (s *BaseStore) PresentByCourseBetween(ctx context.Context, from, to time.Time) ([]model.CourseAttendance, error) {
	var counts []model.CourseAttendance
	err := s.DB.SelectContext(ctx, &counts, s.Converter(`
		SELECT a.course_id AS course_id,
		       COALESCE(c.course_code, '') AS course_code,
		       COALESCE(c.course_title, '') AS course_title,
		       COUNT(*) AS cnt
		FROM attendance_records a
		LEFT JOIN courses c ON c.id = a.course_id
		WHERE a.status = ? AND a.date >= ? AND a.date < ?
		GROUP BY a.course_id, c.course_code, c.course_title
		ORDER BY cnt DESC
	`), model.StatusPresent, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance by course: %w", err)
	}
	return counts, nil
}

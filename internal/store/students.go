package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tagtrack/internal/model"
)

func (s *BaseStore) CreateStudent(ctx context.Context, st *model.Student) error {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now()
	}
	if st.Photo == "" {
		st.Photo = "default.jpg"
	}
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO students (id, name, reg_no, department, level, rfid_tag, photo, created_at)
		VALUES (:id, :name, :reg_no, :department, :level, :rfid_tag, :photo, :created_at)
	`, st)
	if s.unique(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *BaseStore) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	var st model.Student
	err := s.get(ctx, &st, `
		SELECT id, name, reg_no, department, level, rfid_tag, photo, created_at
		FROM students WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetStudentByTag resolves a scanned RFID tag by exact match.
func (s *BaseStore) GetStudentByTag(ctx context.Context, tag string) (*model.Student, error) {
	var st model.Student
	err := s.get(ctx, &st, `
		SELECT id, name, reg_no, department, level, rfid_tag, photo, created_at
		FROM students WHERE rfid_tag = ?
	`, tag)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *BaseStore) ListStudents(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := s.DB.SelectContext(ctx, &students, `
		SELECT id, name, reg_no, department, level, rfid_tag, photo, created_at
		FROM students ORDER BY reg_no
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) UpdateStudent(ctx context.Context, st *model.Student) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`
		UPDATE students
		SET name = ?, reg_no = ?, department = ?, level = ?, rfid_tag = ?, photo = ?
		WHERE id = ?
	`), st.Name, st.RegNo, st.Department, st.Level, st.RFIDTag, st.Photo, st.ID)
	if s.unique(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return mustAffect(res)
}

func (s *BaseStore) DeleteStudent(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`DELETE FROM students WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return mustAffect(res)
}

func (s *BaseStore) CountStudents(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return n, nil
}

func (s *BaseStore) CountStudentsByDepartment(ctx context.Context) ([]model.DepartmentCount, error) {
	var counts []model.DepartmentCount
	err := s.DB.SelectContext(ctx, &counts, `
		SELECT department, COUNT(*) AS cnt
		FROM students
		GROUP BY department
		ORDER BY cnt DESC, department
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count students by department: %w", err)
	}
	return counts, nil
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tagtrack/internal/model"
)

func (s *BaseStore) CreateCourse(ctx context.Context, c *model.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO courses (id, course_code, course_title, lecturer_id, department, level, created_at)
		VALUES (:id, :course_code, :course_title, :lecturer_id, :department, :level, :created_at)
	`, c)
	if s.unique(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (s *BaseStore) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	err := s.get(ctx, &c, `
		SELECT id, course_code, course_title, lecturer_id, department, level, created_at
		FROM courses WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *BaseStore) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := s.DB.SelectContext(ctx, &courses, `
		SELECT id, course_code, course_title, lecturer_id, department, level, created_at
		FROM courses ORDER BY course_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *BaseStore) UpdateCourse(ctx context.Context, c *model.Course) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`
		UPDATE courses
		SET course_code = ?, course_title = ?, lecturer_id = ?, department = ?, level = ?
		WHERE id = ?
	`), c.CourseCode, c.CourseTitle, c.LecturerID, c.Department, c.Level, c.ID)
	if s.unique(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return mustAffect(res)
}

func (s *BaseStore) DeleteCourse(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`DELETE FROM courses WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return mustAffect(res)
}

func (s *BaseStore) CountCourses(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return n, nil
}

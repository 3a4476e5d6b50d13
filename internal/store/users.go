package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tagtrack/internal/model"
)

func (s *BaseStore) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES (:id, :name, :email, :password_hash, :role, :created_at)
	`, u)
	if s.unique(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *BaseStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.get(ctx, &u, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *BaseStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.get(ctx, &u, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE email = ?
	`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *BaseStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.DB.SelectContext(ctx, &users, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *BaseStore) UpdateUser(ctx context.Context, u *model.User) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, role = ?
		WHERE id = ?
	`), u.Name, u.Email, u.PasswordHash, u.Role, u.ID)
	if s.unique(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return mustAffect(res)
}

func (s *BaseStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return mustAffect(res)
}

func (s *BaseStore) CountUsersByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, s.Converter(`SELECT COUNT(*) FROM users WHERE role = ?`), role)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tagtrack/internal/model"
)

func (s *BaseStore) InsertAuditEvent(ctx context.Context, e *model.AuditEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO audit_events (id, actor_id, action, details, created_at)
		VALUES (:id, :actor_id, :action, :details, :created_at)
	`, e)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

func (s *BaseStore) ListAuditEvents(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []model.AuditEvent
	err := s.DB.SelectContext(ctx, &events, s.Converter(`
		SELECT id, actor_id, action, details, created_at
		FROM audit_events ORDER BY created_at DESC LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return events, nil
}

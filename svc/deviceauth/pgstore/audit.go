package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/devicekey/pkg/audit"
)

var auditColumns = []string{
	"id", "user_id", "action", "resource", "resource_id", "result",
	"error", "request_id", "ip", "metadata", "created_at",
}

// AuditStorage writes audit events to the audit_events table.
type AuditStorage struct {
	pool *pgxpool.Pool
}

var (
	_ audit.BatchStorage = (*AuditStorage)(nil)
	_ audit.Reader       = (*AuditStorage)(nil)
)

func NewAuditStorage(pool *pgxpool.Pool) *AuditStorage {
	return &AuditStorage{pool: pool}
}

func (s *AuditStorage) Store(ctx context.Context, e audit.Event) error {
	row, err := auditRow(e)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_events (id, user_id, action, resource, resource_id, result,
			error, request_id, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		row...,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// StoreBatch writes events with COPY in a single round trip.
func (s *AuditStorage) StoreBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"audit_events"},
		auditColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			return auditRow(events[i])
		}),
	)
	if err != nil {
		return fmt.Errorf("copy audit events: %w", err)
	}
	return nil
}

// ListUserEvents returns the newest events for userID, at most limit.
func (s *AuditStorage) ListUserEvents(ctx context.Context, userID string, limit int) ([]audit.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, action, resource, resource_id, result,
			error, request_id, ip, metadata, created_at
		FROM audit_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (audit.Event, error) {
		var e audit.Event
		var result string
		err := row.Scan(&e.ID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID, &result,
			&e.Error, &e.RequestID, &e.IP, &e.Metadata, &e.CreatedAt)
		e.Result = audit.Result(result)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit events: %w", err)
	}
	return events, nil
}

func auditRow(e audit.Event) ([]any, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, errors.Join(audit.ErrEventValidation, err)
	}
	var metadata any
	if len(e.Metadata) > 0 {
		metadata = e.Metadata
	}
	return []any{
		id, e.UserID, e.Action, e.Resource, e.ResourceID, string(e.Result),
		e.Error, e.RequestID, e.IP, metadata, e.CreatedAt,
	}, nil
}

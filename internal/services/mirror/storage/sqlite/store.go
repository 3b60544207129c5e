// Package sqlite provides a SQLite-backed snapshot cache for the mirror.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/laviddichterman/wario-ux-shared/internal/platform/storage/sqlitemigrate"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/storage"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists the latest server payloads in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.PayloadStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite snapshot cache and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SavePayload replaces the cached payload for the payload's event type.
func (s *Store) SavePayload(ctx context.Context, payload storage.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if !payload.EventType.Cacheable() {
		return fmt.Errorf("event type %q is not cacheable", payload.EventType)
	}
	if len(payload.Payload) == 0 {
		return fmt.Errorf("payload is required")
	}
	receivedAt := payload.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO payloads (event_type, payload, received_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(event_type) DO UPDATE SET
		   payload = excluded.payload,
		   received_at = excluded.received_at`,
		string(payload.EventType),
		payload.Payload,
		toMillis(receivedAt),
	)
	if err != nil {
		return fmt.Errorf("save payload %s: %w", payload.EventType, err)
	}
	return nil
}

// GetPayload returns the cached payload for one event type.
func (s *Store) GetPayload(ctx context.Context, eventType event.Type) (storage.Payload, error) {
	if err := ctx.Err(); err != nil {
		return storage.Payload{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Payload{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT event_type, payload, received_at FROM payloads WHERE event_type = ?`,
		string(eventType),
	)
	payload, err := scanPayload(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Payload{}, storage.ErrNotFound
		}
		return storage.Payload{}, fmt.Errorf("get payload %s: %w", eventType, err)
	}
	return payload, nil
}

// ListPayloads returns every cached payload ordered by receive time.
func (s *Store) ListPayloads(ctx context.Context) ([]storage.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT event_type, payload, received_at FROM payloads ORDER BY received_at, event_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("list payloads: %w", err)
	}
	defer rows.Close()

	var payloads []storage.Payload
	for rows.Next() {
		payload, err := scanPayload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		payloads = append(payloads, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payloads: %w", err)
	}
	return payloads, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayload(row rowScanner) (storage.Payload, error) {
	var (
		eventType  string
		data       []byte
		receivedAt int64
	)
	if err := row.Scan(&eventType, &data, &receivedAt); err != nil {
		return storage.Payload{}, err
	}
	return storage.Payload{
		EventType:  event.Type(eventType),
		Payload:    data,
		ReceivedAt: fromMillis(receivedAt),
	}, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/turnkeeper/internal/codec"
	"github.com/rpggio/turnkeeper/internal/domain/session"
	"github.com/rpggio/turnkeeper/internal/repository"
)

var _ session.Repository = (*SessionRepository)(nil)

// SessionRepository implements session.Repository for SQLite. Device state
// and active sessions are stored as CBOR blobs.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// SaveDeviceState upserts the state of a device.
func (r *SessionRepository) SaveDeviceState(ctx context.Context, deviceID string, st *session.DeviceState) error {
	blob, err := codec.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode device state: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO device_state (device_id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
	`, deviceID, blob, st.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save device state: %w", err)
	}
	return nil
}

// GetDeviceState loads the state of a device. Undecodable blobs yield
// repository.ErrCorrupt.
func (r *SessionRepository) GetDeviceState(ctx context.Context, deviceID string) (*session.DeviceState, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx, "SELECT state FROM device_state WHERE device_id = ?", deviceID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device state: %w", err)
	}

	var st session.DeviceState
	if err := codec.Unmarshal(blob, &st); err != nil {
		return nil, fmt.Errorf("%w: device state: %v", repository.ErrCorrupt, err)
	}
	return &st, nil
}

// DeleteDeviceState removes the state of a device.
func (r *SessionRepository) DeleteDeviceState(ctx context.Context, deviceID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM device_state WHERE device_id = ?", deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete device state: %w", err)
	}
	return requireAffected(result)
}

// UpsertActive writes a device's entry in the active-session map. The last
// writer for a device wins.
func (r *SessionRepository) UpsertActive(ctx context.Context, s *session.ActiveSession) error {
	blob, err := codec.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode active session: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO active_sessions (device_id, device_name, session, last_update) VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			device_name = excluded.device_name,
			session = excluded.session,
			last_update = excluded.last_update
	`, s.DeviceID, s.DeviceName, blob, s.LastUpdate.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert active session: %w", err)
	}
	return nil
}

// ListActive returns every active-session entry, most recent first.
// Entries that no longer decode are deleted and skipped.
func (r *SessionRepository) ListActive(ctx context.Context) ([]session.ActiveSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT device_id, device_name, session, last_update
		FROM active_sessions
		ORDER BY last_update DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	var (
		sessions = []session.ActiveSession{}
		corrupt  []string
	)
	for rows.Next() {
		var (
			deviceID, deviceName string
			blob                 []byte
			lastUpdate           int64
		)
		if err := rows.Scan(&deviceID, &deviceName, &blob, &lastUpdate); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan active session: %w", err)
		}
		var s session.ActiveSession
		if err := codec.Unmarshal(blob, &s); err != nil {
			corrupt = append(corrupt, deviceID)
			continue
		}
		s.DeviceID = deviceID
		s.DeviceName = deviceName
		s.LastUpdate = time.UnixMilli(lastUpdate)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating active session rows: %w", err)
	}
	rows.Close()

	// The single connection is free again once rows are closed.
	for _, id := range corrupt {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM active_sessions WHERE device_id = ?", id); err != nil {
			return nil, fmt.Errorf("failed to purge corrupt active session: %w", err)
		}
	}
	return sessions, nil
}

// DeleteActive removes a device from the active-session map.
func (r *SessionRepository) DeleteActive(ctx context.Context, deviceID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM active_sessions WHERE device_id = ?", deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete active session: %w", err)
	}
	return requireAffected(result)
}

// GetMeta reads a local metadata value.
func (r *SessionRepository) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %q: %w", key, err)
	}
	return value, nil
}

// SetMeta writes a local metadata value.
func (r *SessionRepository) SetMeta(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta %q: %w", key, err)
	}
	return nil
}

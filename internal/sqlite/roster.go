package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/repository"
)

var _ roster.Repository = (*RosterRepository)(nil)

// RosterRepository implements roster.Repository for SQLite
type RosterRepository struct {
	db *DB
}

// NewRosterRepository creates a new RosterRepository
func NewRosterRepository(db *DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// GetSettings loads the stored settings document.
func (r *RosterRepository) GetSettings(ctx context.Context) (*roster.Settings, error) {
	var data string
	err := r.db.QueryRowContext(ctx, "SELECT data FROM settings WHERE id = 1").Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings roster.Settings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return nil, fmt.Errorf("%w: settings: %v", repository.ErrCorrupt, err)
	}
	return &settings, nil
}

// SaveSettings replaces the stored settings document.
func (r *RosterRepository) SaveSettings(ctx context.Context, settings roster.Settings) error {
	return saveSettings(ctx, r.db, settings)
}

func saveSettings(ctx context.Context, ex execer, settings roster.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO settings (id, data, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(data))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// ListPeople returns the roster in insertion order.
func (r *RosterRepository) ListPeople(ctx context.Context) ([]roster.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, default_turn_seconds, has_priority, total_usage_seconds
		FROM people
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	people := []roster.Person{}
	for rows.Next() {
		var p roster.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.DefaultTurnSeconds, &p.HasPriority, &p.TotalUsageSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people rows: %w", err)
	}
	return people, nil
}

// GetPerson retrieves a person by ID
func (r *RosterRepository) GetPerson(ctx context.Context, id string) (*roster.Person, error) {
	var p roster.Person
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, default_turn_seconds, has_priority, total_usage_seconds
		FROM people
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.DefaultTurnSeconds, &p.HasPriority, &p.TotalUsageSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &p, nil
}

// CreatePerson appends a person to the roster.
func (r *RosterRepository) CreatePerson(ctx context.Context, p *roster.Person) error {
	return insertPerson(ctx, r.db, p)
}

func insertPerson(ctx context.Context, q querier, p *roster.Person) error {
	pos, err := nextPosition(ctx, q, "people")
	if err != nil {
		return fmt.Errorf("failed to allocate person position: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO people (id, name, default_turn_seconds, has_priority, total_usage_seconds, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.DefaultTurnSeconds, p.HasPriority, p.TotalUsageSeconds, pos)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

// UpdatePerson overwrites a person's fields.
func (r *RosterRepository) UpdatePerson(ctx context.Context, p *roster.Person) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE people
		SET name = ?, default_turn_seconds = ?, has_priority = ?, total_usage_seconds = ?
		WHERE id = ?
	`, p.Name, p.DefaultTurnSeconds, p.HasPriority, p.TotalUsageSeconds, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return requireAffected(result)
}

// DeletePerson removes a person from the roster.
func (r *RosterRepository) DeletePerson(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return requireAffected(result)
}

// ResetUsage zeroes every person's accumulated usage.
func (r *RosterRepository) ResetUsage(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE people SET total_usage_seconds = 0"); err != nil {
		return fmt.Errorf("failed to reset usage: %w", err)
	}
	return nil
}

// ListDevices returns registered devices in insertion order.
func (r *RosterRepository) ListDevices(ctx context.Context) ([]roster.Device, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM devices ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	devices := []roster.Device{}
	for rows.Next() {
		var d roster.Device
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device rows: %w", err)
	}
	return devices, nil
}

// CreateDevice registers a device.
func (r *RosterRepository) CreateDevice(ctx context.Context, d *roster.Device) error {
	return insertDevice(ctx, r.db, d)
}

func insertDevice(ctx context.Context, q querier, d *roster.Device) error {
	pos, err := nextPosition(ctx, q, "devices")
	if err != nil {
		return fmt.Errorf("failed to allocate device position: %w", err)
	}
	_, err = q.ExecContext(ctx, "INSERT INTO devices (id, name, position) VALUES (?, ?, ?)", d.ID, d.Name, pos)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

// DeleteDevice removes a registered device.
func (r *RosterRepository) DeleteDevice(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	return requireAffected(result)
}

package sqlite

import (
	"context"
	"fmt"

	"github.com/rpggio/turnkeeper/internal/domain/backup"
)

var _ backup.Repository = (*BackupRepository)(nil)

// BackupRepository implements backup.Repository for SQLite
type BackupRepository struct {
	db *DB
}

// NewBackupRepository creates a new BackupRepository
func NewBackupRepository(db *DB) *BackupRepository {
	return &BackupRepository{db: db}
}

// Replace swaps settings, people, devices and rules in one transaction.
// Device state and history are left alone.
func (r *BackupRepository) Replace(ctx context.Context, doc backup.Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveSettings(ctx, tx, doc.Settings); err != nil {
		return err
	}

	for _, table := range []string{"people", "devices"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	for i := range doc.People {
		if err := insertPerson(ctx, tx, &doc.People[i]); err != nil {
			return err
		}
	}
	for i := range doc.Devices {
		if err := insertDevice(ctx, tx, &doc.Devices[i]); err != nil {
			return err
		}
	}
	if err := replaceRules(ctx, tx, doc.Rules); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit backup: %w", err)
	}
	return nil
}

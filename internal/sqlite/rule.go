package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rpggio/turnkeeper/internal/repository"
)

var _ rule.Repository = (*RuleRepository)(nil)

// RuleRepository implements rule.Repository for SQLite
type RuleRepository struct {
	db *DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = "id, name, description, condition, action, enabled, built_in, position"

func scanRule(row interface{ Scan(dest ...any) error }) (rule.Rule, error) {
	var r rule.Rule
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Condition, &r.Action, &r.Enabled, &r.BuiltIn, &r.Position)
	return r, err
}

// List returns rules in evaluation order.
func (r *RuleRepository) List(ctx context.Context) ([]rule.Rule, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+ruleColumns+" FROM rules ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	rules := []rule.Rule{}
	for rows.Next() {
		rl, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows: %w", err)
	}
	return rules, nil
}

// Get retrieves a rule by ID
func (r *RuleRepository) Get(ctx context.Context, id string) (*rule.Rule, error) {
	rl, err := scanRule(r.db.QueryRowContext(ctx, "SELECT "+ruleColumns+" FROM rules WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &rl, nil
}

// Create appends a rule after every existing one.
func (r *RuleRepository) Create(ctx context.Context, rl *rule.Rule) error {
	pos, err := nextPosition(ctx, r.db, "rules")
	if err != nil {
		return fmt.Errorf("failed to allocate rule position: %w", err)
	}
	rl.Position = pos
	return insertRule(ctx, r.db, rl)
}

func insertRule(ctx context.Context, ex execer, rl *rule.Rule) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rl.ID, rl.Name, rl.Description, rl.Condition, rl.Action, rl.Enabled, rl.BuiltIn, rl.Position)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// SetEnabled updates a rule's enabled flag.
func (r *RuleRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	result, err := r.db.ExecContext(ctx, "UPDATE rules SET enabled = ? WHERE id = ?", enabled, id)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a rule.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return requireAffected(result)
}

// ReplaceAll swaps the whole rule list in one transaction. Positions follow
// slice order.
func (r *RuleRepository) ReplaceAll(ctx context.Context, rules []rule.Rule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceRules(ctx, tx, rules); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}
	return nil
}

func replaceRules(ctx context.Context, ex execer, rules []rule.Rule) error {
	if _, err := ex.ExecContext(ctx, "DELETE FROM rules"); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}
	for i := range rules {
		rl := rules[i]
		rl.Position = i
		if err := insertRule(ctx, ex, &rl); err != nil {
			return err
		}
	}
	return nil
}

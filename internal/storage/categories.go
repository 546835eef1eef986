package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// CategoryRegistry tracks the known category labels. The set is open: it
// grows when a transaction uses a new label and shrinks only through Remove,
// which refuses labels still referenced by transactions.
type CategoryRegistry struct {
	db *DB
}

func NewCategoryRegistry(db *DB) *CategoryRegistry {
	return &CategoryRegistry{db: db}
}

// List returns all labels in ascending order.
func (r *CategoryRegistry) List(ctx context.Context) ([]string, error) {
	labels := []string{}
	err := r.db.read(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT label FROM categories ORDER BY label`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var l string
			if err := rows.Scan(&l); err != nil {
				return err
			}
			labels = append(labels, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return labels, nil
}

// Contains reports whether label is registered.
func (r *CategoryRegistry) Contains(ctx context.Context, label string) (bool, error) {
	label = strings.TrimSpace(label)
	var found bool
	err := r.db.read(ctx, func(db *sql.DB) error {
		var err error
		found, err = categoryExists(ctx, db, label)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("lookup category %q: %w", label, err)
	}
	return found, nil
}

// Add registers label. Adding an existing label is a no-op.
func (r *CategoryRegistry) Add(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return core.NewValidationError("category", "must not be empty")
	}
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		return r.db.ensureCategory(ctx, tx, label)
	})
	if err != nil {
		return fmt.Errorf("add category %q: %w", label, err)
	}
	return nil
}

// Remove unregisters label. It fails with an InUseError while any
// transaction references the label and with a NotFoundError if the label
// is unknown.
func (r *CategoryRegistry) Remove(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		found, err := categoryExists(ctx, tx, label)
		if err != nil {
			return err
		}
		if !found {
			return core.CategoryNotFound(label)
		}

		var refs int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE category = ?`, label).Scan(&refs); err != nil {
			return fmt.Errorf("count references: %w", err)
		}
		if refs > 0 {
			return &core.InUseError{Label: label, References: refs}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE label = ?`, label); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove category %q: %w", label, err)
	}

	r.db.logger.InfoContext(ctx, "Category removed", log.FieldOperation, log.OpCategory, log.FieldCategory, label)
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func categoryExists(ctx context.Context, q queryRower, label string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE label = ?`, label).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *DB) ensureCategory(ctx context.Context, tx *sql.Tx, label string) error {
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (label) VALUES (?)`, label)
	if err != nil {
		return fmt.Errorf("register category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.logger.InfoContext(ctx, "Category registered", log.FieldOperation, log.OpCategory, log.FieldCategory, label)
	}
	return nil
}

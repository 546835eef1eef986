package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const transactionColumns = "id, date, amount_cents, category, description, created_at, updated_at"

// TransactionRepository provides CRUD and query access to stored transactions.
type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create validates t, registers its category when unknown and stores it.
// It returns the id assigned by storage.
func (r *TransactionRepository) Create(ctx context.Context, t core.Transaction) (int64, error) {
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.db.ensureCategory(ctx, tx, t.Category); err != nil {
			return err
		}
		now := r.db.timestamp()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (date, amount_cents, category, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			t.Date.String(), core.ToCents(t.Amount), t.Category, t.Description, now, now)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read inserted id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	r.db.logger.InfoContext(ctx, "Transaction saved",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(id, t.Date.String(), core.FormatAmount(t.Amount), t.Category).
			ToSlice()...)

	return id, nil
}

// Update replaces every user-supplied field of the transaction with id.
func (r *TransactionRepository) Update(ctx context.Context, id int64, t core.Transaction) error {
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.db.ensureCategory(ctx, tx, t.Category); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE transactions
			 SET date = ?, amount_cents = ?, category = ?, description = ?, updated_at = ?
			 WHERE id = ?`,
			t.Date.String(), core.ToCents(t.Amount), t.Category, t.Description, r.db.timestamp(), id)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("read affected rows: %w", err)
		}
		if n == 0 {
			return core.TransactionNotFound(id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", id, err)
	}

	r.db.logger.InfoContext(ctx, "Transaction updated", log.FieldOperation, log.OpUpdate, log.FieldID, id)
	return nil
}

// Delete removes the transaction permanently.
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("read affected rows: %w", err)
		}
		if n == 0 {
			return core.TransactionNotFound(id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	r.db.logger.InfoContext(ctx, "Transaction deleted", log.FieldOperation, log.OpDelete, log.FieldID, id)
	return nil
}

// Get retrieves a single transaction by id.
func (r *TransactionRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	var t core.Transaction
	err := r.db.read(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
		var err error
		t, err = scanTransaction(row)
		if errors.Is(err, sql.ErrNoRows) {
			return core.TransactionNotFound(id)
		}
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// Query returns every transaction matching f, ordered by s.
func (r *TransactionRepository) Query(ctx context.Context, f core.Filter, s core.Sort) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	query, args, err := buildSelect(f, s)
	if err != nil {
		return nil, err
	}

	out := []core.Transaction{}
	err = r.db.read(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query transactions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTransaction(rows)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	r.db.logger.DebugContext(ctx, "Transactions queried",
		log.FieldOperation, log.OpQuery,
		log.FieldCount, len(out))
	return out, nil
}

// Count returns the number of transactions matching f. Limit is ignored.
func (r *TransactionRepository) Count(ctx context.Context, f core.Filter) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	where, args := buildWhere(f)

	var n int
	err := r.db.read(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func buildSelect(f core.Filter, s core.Sort) (string, []any, error) {
	s = s.Normalize()
	var column string
	switch s.Field {
	case core.SortByDate:
		column = "date"
	case core.SortByAmount:
		column = "amount_cents"
	case core.SortByCategory:
		column = "category"
	default:
		return "", nil, core.NewValidationError("sort", fmt.Sprintf("unknown field %q", s.Field))
	}
	dir := "DESC"
	if s.Asc {
		dir = "ASC"
	}

	where, args := buildWhere(f)
	var b strings.Builder
	b.WriteString(`SELECT ` + transactionColumns + ` FROM transactions`)
	b.WriteString(where)
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s", column, dir, dir)
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return b.String(), args, nil
}

func buildWhere(f core.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !f.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, f.To.String())
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		conds = append(conds, "category = ?")
		args = append(args, c)
	}
	if len(f.Categories) > 0 {
		marks := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			marks[i] = "?"
			args = append(args, strings.TrimSpace(c))
		}
		conds = append(conds, "category IN ("+strings.Join(marks, ", ")+")")
	}
	if f.DescriptionContains != "" {
		conds = append(conds, "instr("+foldFunc+"(description), ?) > 0")
		args = append(args, core.FoldText(f.DescriptionContains))
	}
	if f.MinAmount != nil {
		conds = append(conds, "amount_cents >= ?")
		args = append(args, core.ToCents(f.MinAmount.Round(2)))
	}
	if f.MaxAmount != nil {
		conds = append(conds, "amount_cents <= ?")
		args = append(args, core.ToCents(f.MaxAmount.Round(2)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                    core.Transaction
		date                 string
		cents                int64
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &date, &cents, &t.Category, &t.Description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return t, fmt.Errorf("transaction %d has corrupt date: %w", t.ID, err)
	}
	t.Date = d
	t.Amount = core.FromCents(cents)
	if t.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return t, fmt.Errorf("transaction %d has corrupt created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return t, fmt.Errorf("transaction %d has corrupt updated_at: %w", t.ID, err)
	}
	return t, nil
}

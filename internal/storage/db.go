package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const timestampLayout = time.RFC3339Nano

// foldFunc is the SQL name of core.FoldText. SQLite's own lower() only
// folds ASCII.
const foldFunc = "fintrack_fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return core.FoldText(v), nil
		case []byte:
			return core.FoldText(string(v)), nil
		default:
			return v, nil
		}
	})
}

// DB is the process-wide storage context. It is opened once, handed to every
// repository at construction time and closed on shutdown. All operations go
// through its mutex, so at most one statement touches the file at a time.
type DB struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// Open creates the parent directory if needed, opens the SQLite file and
// brings the schema up to date.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: writes are serialized and nothing is left pending in
	// a second connection when Close runs.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger := slog.Default().With(log.FieldComponent, log.ComponentStorage)
	logger.Debug("Opened SQLite database", log.FieldPath, dbPath)

	return &DB{
		db:     db,
		path:   dbPath,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}, nil
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

// Close waits for the running operation, then closes the file.
// It is safe to call more than once.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	d.logger.Debug("Closed SQLite database", log.FieldPath, d.path)
	return nil
}

func (d *DB) timestamp() string {
	return d.now().Format(timestampLayout)
}

// read runs fn while holding the storage lock.
func (d *DB) read(ctx context.Context, fn func(*sql.DB) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(d.db)
}

// inTx runs fn in a transaction while holding the storage lock. The
// transaction commits only if fn returns nil.
func (d *DB) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return ErrClosed
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence, so that
// quotas survive restarts of a single-instance deployment.
//
// The increment is a single UPSERT ... RETURNING statement, which makes the
// window reset and the count update atomic without an explicit transaction.
// Times are stored as Unix nanoseconds.
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	closeOnce sync.Once

	incrementStmt *sql.Stmt
	sweepStmt     *sql.Stmt
	countStmt     *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a SQLite store at dbPath with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{DBPath: dbPath})
}

// NewSQLiteStoreWithConfig creates a SQLite store with custom configuration.
// The parent directory of the database file is created if needed.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.DBPath, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db, dbPath: cfg.DBPath}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quota_records (
		client_key TEXT PRIMARY KEY,
		window_start INTEGER NOT NULL,
		count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quota_window_start ON quota_records(window_start);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	// Parameters: client key, now, window (both in nanoseconds). SET
	// expressions see the row as it was before the update.
	s.incrementStmt, err = s.db.Prepare(`
		INSERT INTO quota_records (client_key, window_start, count)
		VALUES (?1, ?2, 1)
		ON CONFLICT (client_key) DO UPDATE SET
			window_start = CASE WHEN ?2 - quota_records.window_start > ?3
				THEN ?2 ELSE quota_records.window_start END,
			count = CASE WHEN ?2 - quota_records.window_start > ?3
				THEN 1 ELSE quota_records.count + 1 END
		RETURNING window_start, count
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare increment statement: %w", err)
	}

	s.sweepStmt, err = s.db.Prepare(`
		DELETE FROM quota_records
		WHERE window_start < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sweep statement: %w", err)
	}

	s.countStmt, err = s.db.Prepare(`SELECT COUNT(*) FROM quota_records`)
	if err != nil {
		return fmt.Errorf("failed to prepare count statement: %w", err)
	}

	return nil
}

// Increment implements Store.
func (s *SQLiteStore) Increment(ctx context.Context, key string, now time.Time, window time.Duration) (QuotaRecord, error) {
	if key == "" {
		return QuotaRecord{}, ErrEmptyKey
	}

	var (
		start int64
		count int
	)
	err := s.incrementStmt.QueryRowContext(ctx, key, now.UnixNano(), window.Nanoseconds()).Scan(&start, &count)
	if err != nil {
		return QuotaRecord{}, fmt.Errorf("failed to increment quota for %q: %w", key, err)
	}

	return QuotaRecord{
		ClientKey:   key,
		WindowStart: time.Unix(0, start),
		Count:       count,
	}, nil
}

// Sweep implements Store.
func (s *SQLiteStore) Sweep(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	result, err := s.sweepStmt.ExecContext(ctx, now.Add(-window).UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep quota records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(deleted), nil
}

// Len implements Store.
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.countStmt.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quota records: %w", err)
	}
	return n, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.incrementStmt, s.sweepStmt, s.countStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Record is one journal row. Refresh rows use the count fields; install
// rows use Packages, Success, LineCount and Error.
type Record struct {
	ID             string
	Kind           Kind
	Timestamp      time.Time
	Environment    string
	FileCount      int
	ModuleCount    int
	InstalledCount int
	MissingCount   int
	Packages       []string
	Success        bool
	LineCount      int
	Duration       time.Duration
	Error          string
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("journal path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("journal path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite journal %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Append writes a batch of records in one transaction.
func (s *Store) Append(records []Record) error {
	if s == nil || len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
INSERT INTO operations (
  id, kind, ts_utc, environment, file_count, module_count,
  installed_count, missing_count, packages, success, line_count,
  duration_ms, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id, kind, ts_utc) DO NOTHING
`
	return s.withRetry("append operations", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		for _, record := range records {
			ts := record.Timestamp
			if ts.IsZero() {
				ts = time.Now()
			}
			success := 0
			if record.Success {
				success = 1
			}
			if _, err := tx.Exec(
				query,
				record.ID,
				string(record.Kind),
				ts.UTC().Format(time.RFC3339Nano),
				record.Environment,
				record.FileCount,
				record.ModuleCount,
				record.InstalledCount,
				record.MissingCount,
				strings.Join(record.Packages, " "),
				success,
				record.LineCount,
				record.Duration.Milliseconds(),
				record.Error,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// Recent returns the newest records, optionally filtered by kind.
func (s *Store) Recent(kind Kind, limit int) ([]Record, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	base := `
SELECT id, kind, ts_utc, environment, file_count, module_count,
       installed_count, missing_count, packages, success, line_count,
       duration_ms, error
FROM operations
`
	args := make([]any, 0, 2)
	if kind != "" {
		base += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	base += " ORDER BY ts_utc DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	var rows *sql.Rows
	err := s.withRetry("load operations", func() error {
		var qErr error
		rows, qErr = s.db.Query(base, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var (
			record     Record
			kindRaw    string
			tsRaw      string
			packages   string
			success    int
			durationMS int64
		)
		if err := rows.Scan(
			&record.ID,
			&kindRaw,
			&tsRaw,
			&record.Environment,
			&record.FileCount,
			&record.ModuleCount,
			&record.InstalledCount,
			&record.MissingCount,
			&packages,
			&success,
			&record.LineCount,
			&durationMS,
			&record.Error,
		); err != nil {
			return nil, fmt.Errorf("scan operation row: %w", err)
		}

		record.Kind = Kind(kindRaw)
		record.Success = success != 0
		record.Duration = time.Duration(durationMS) * time.Millisecond
		if packages != "" {
			record.Packages = strings.Fields(packages)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse operation timestamp %q: %w", tsRaw, err)
		}
		record.Timestamp = ts.UTC()

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operation rows: %w", err)
	}

	return records, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

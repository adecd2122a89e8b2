package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// tsLayout is fixed width so ts_utc sorts lexically in time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// watch mode records a snapshot per re-run, so keep lock waits short
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSnapshot stores the snapshot and its anomaly rows in one transaction
// and returns the run id, generating one when empty.
func (s *Store) SaveSnapshot(projectKey string, snapshot Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectKey = normalizeKey(projectKey)
	if snapshot.RunID == "" {
		snapshot.RunID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return "", fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	err := s.withRetry("save snapshot", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.Exec(`
INSERT INTO snapshots (
  run_id, project_key, schema_version, ts_utc, package_count, edge_count,
  cycle_count, anomaly_count, max_depth, avg_instability
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snapshot.RunID,
			projectKey,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(tsLayout),
			snapshot.PackageCount,
			snapshot.EdgeCount,
			snapshot.CycleCount,
			snapshot.AnomalyCount,
			snapshot.MaxDepth,
			snapshot.AvgInstability,
		); err != nil {
			return err
		}

		for _, kind := range sortedKeys(snapshot.AnomalyCounts) {
			if _, err := tx.Exec(`INSERT INTO snapshot_anomaly_counts(run_id, kind, count) VALUES (?, ?, ?)`,
				snapshot.RunID, kind, snapshot.AnomalyCounts[kind]); err != nil {
				return err
			}
		}
		for _, id := range snapshot.AnomalyIDs {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO snapshot_anomalies(run_id, anomaly_id) VALUES (?, ?)`,
				snapshot.RunID, id); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return snapshot.RunID, nil
}

// LoadSnapshots returns snapshots at or after since, oldest first.
func (s *Store) LoadSnapshots(projectKey string, since time.Time) ([]Snapshot, error) {
	query := `
SELECT run_id, project_key, schema_version, ts_utc, package_count, edge_count,
  cycle_count, anomaly_count, max_depth, avg_instability
FROM snapshots WHERE project_key = ?`
	args := []any{normalizeKey(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(tsLayout))
	}
	query += " ORDER BY ts_utc ASC, run_id ASC"
	return s.load(query, args...)
}

// Latest returns up to n most recent snapshots, oldest first.
func (s *Store) Latest(projectKey string, n int) ([]Snapshot, error) {
	if n <= 0 {
		return []Snapshot{}, nil
	}
	snapshots, err := s.load(`
SELECT run_id, project_key, schema_version, ts_utc, package_count, edge_count,
  cycle_count, anomaly_count, max_depth, avg_instability
FROM snapshots WHERE project_key = ?
ORDER BY ts_utc DESC, run_id DESC LIMIT ?`, normalizeKey(projectKey), n)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
	return snapshots, nil
}

func (s *Store) load(query string, args ...any) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshots []Snapshot
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		snapshots, qErr = s.scanSnapshots(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}

	// The pool holds one connection; child queries run after the parent
	// rows are closed.
	for i := range snapshots {
		if err := s.loadChildren(&snapshots[i]); err != nil {
			return nil, err
		}
	}
	return snapshots, nil
}

func (s *Store) scanSnapshots(query string, args ...any) ([]Snapshot, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var (
			tsRaw    string
			snapshot Snapshot
		)
		if err := rows.Scan(
			&snapshot.RunID,
			&snapshot.ProjectKey,
			&snapshot.SchemaVersion,
			&tsRaw,
			&snapshot.PackageCount,
			&snapshot.EdgeCount,
			&snapshot.CycleCount,
			&snapshot.AnomalyCount,
			&snapshot.MaxDepth,
			&snapshot.AvgInstability,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts.UTC()
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snapshots, nil
}

func (s *Store) loadChildren(snapshot *Snapshot) error {
	counts, err := s.db.Query(`SELECT kind, count FROM snapshot_anomaly_counts WHERE run_id = ? ORDER BY kind`, snapshot.RunID)
	if err != nil {
		return fmt.Errorf("load anomaly counts for %s: %w", snapshot.RunID, err)
	}
	snapshot.AnomalyCounts = make(map[string]int)
	for counts.Next() {
		var kind string
		var n int
		if err := counts.Scan(&kind, &n); err != nil {
			counts.Close()
			return fmt.Errorf("scan anomaly count: %w", err)
		}
		snapshot.AnomalyCounts[kind] = n
	}
	counts.Close()
	if err := counts.Err(); err != nil {
		return err
	}

	ids, err := s.db.Query(`SELECT anomaly_id FROM snapshot_anomalies WHERE run_id = ? ORDER BY anomaly_id`, snapshot.RunID)
	if err != nil {
		return fmt.Errorf("load anomaly ids for %s: %w", snapshot.RunID, err)
	}
	defer ids.Close()
	snapshot.AnomalyIDs = make([]string, 0)
	for ids.Next() {
		var id string
		if err := ids.Scan(&id); err != nil {
			return fmt.Errorf("scan anomaly id: %w", err)
		}
		snapshot.AnomalyIDs = append(snapshot.AnomalyIDs, id)
	}
	return ids.Err()
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

// IsCorruptError reports sqlite errors that mean the file is not a usable
// database.
func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database")
}

func normalizeKey(projectKey string) string {
	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		return "default"
	}
	return projectKey
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"surveycore/internal/survey"
)

// SQLite persists state to a single table as JSON snapshots, one bucket per
// payload kind. Full-state snapshots after every write keep the
// implementation simple; the dataset is small and static.
type SQLite struct {
	db   *sql.DB
	mu   sync.Mutex
	path string

	records []survey.Record
	runs    []RunSummary
}

const (
	bucketRecords = "records"
	bucketRuns    = "runs"
)

func openSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "surveycore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &SQLite{db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSQLite opens a snapshotting sqlite-backed results store at path.
func NewSQLite(path string) (*SQLite, error) { return openSQLite(path) }

func (s *SQLite) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		switch bucket {
		case bucketRecords:
			if err := json.Unmarshal(payload, &s.records); err != nil {
				return fmt.Errorf("decode records: %w", err)
			}
		case bucketRuns:
			if err := json.Unmarshal(payload, &s.runs); err != nil {
				return fmt.Errorf("decode runs: %w", err)
			}
		}
	}
	return rows.Err()
}

func (s *SQLite) persist(bucket string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	_, err = s.db.Exec(`INSERT INTO state(bucket, payload) VALUES(?, ?)
		ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, payload)
	if err != nil {
		return fmt.Errorf("persist %s: %w", bucket, err)
	}
	return nil
}

func (s *SQLite) SaveTable(_ context.Context, table survey.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]survey.Record(nil), table.Records...)
	return s.persist(bucketRecords, s.records)
}

func (s *SQLite) LoadTable(_ context.Context) (survey.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return survey.Table{Records: append([]survey.Record(nil), s.records...)}, nil
}

func (s *SQLite) AppendRun(_ context.Context, run RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return s.persist(bucketRuns, s.runs)
}

func (s *SQLite) ListRuns(_ context.Context) ([]RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RunSummary(nil), s.runs...), nil
}

func (s *SQLite) Close() error { return s.db.Close() }

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"surveycore/internal/survey"
)

const (
	postgresDriver = "pgx"
	// Default DSN keeps parity with Open defaults while allowing env overrides.
	defaultPostgresDSN = "postgres://localhost/surveycore?sslmode=disable"
)

// sqlOpen is swapped by tests to stub the database handle.
var sqlOpen = sql.Open

// Postgres mirrors the sqlite snapshot semantics against a PostgreSQL
// server: one state table keyed by bucket holding JSON payloads.
type Postgres struct {
	db *sql.DB
	mu sync.Mutex

	records []survey.Record
	runs    []RunSummary
}

func openPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sqlOpen(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS survey_state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	p := &Postgres{db: db}
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPostgres opens a postgres-backed results store using the provided DSN.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	return openPostgres(ctx, dsn)
}

func (p *Postgres) load(ctx context.Context) error {
	rows, err := p.db.QueryContext(ctx, `SELECT bucket, payload FROM survey_state`)
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
			if err := json.Unmarshal(payload, &p.records); err != nil {
				return fmt.Errorf("decode records: %w", err)
			}
		case bucketRuns:
			if err := json.Unmarshal(payload, &p.runs); err != nil {
				return fmt.Errorf("decode runs: %w", err)
			}
		}
	}
	return rows.Err()
}

func (p *Postgres) persist(ctx context.Context, bucket string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO survey_state(bucket, payload) VALUES($1, $2)
		ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, payload)
	if err != nil {
		return fmt.Errorf("persist %s: %w", bucket, err)
	}
	return nil
}

func (p *Postgres) SaveTable(ctx context.Context, table survey.Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append([]survey.Record(nil), table.Records...)
	return p.persist(ctx, bucketRecords, p.records)
}

func (p *Postgres) LoadTable(_ context.Context) (survey.Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return survey.Table{Records: append([]survey.Record(nil), p.records...)}, nil
}

func (p *Postgres) AppendRun(ctx context.Context, run RunSummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = append(p.runs, run)
	return p.persist(ctx, bucketRuns, p.runs)
}

func (p *Postgres) ListRuns(_ context.Context) ([]RunSummary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RunSummary(nil), p.runs...), nil
}

func (p *Postgres) Close() error { return p.db.Close() }

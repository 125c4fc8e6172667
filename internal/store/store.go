// Package store persists pipeline results: the materialized typed table and
// the summaries of completed report runs. Backends snapshot full state, which
// is proportionate for a small static dataset.
package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"surveycore/internal/survey"
)

// Driver identifies a concrete results store implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// RunSummary records one completed (or failed) report run.
type RunSummary struct {
	ID           string    `json:"id"`
	StatementKey string    `json:"statement_key"`
	Respondents  int       `json:"respondents"`
	Formats      []string  `json:"formats"`
	ArtifactKeys []string  `json:"artifact_keys,omitempty"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

// ResultsStore persists the typed table and run summaries.
type ResultsStore interface {
	// SaveTable replaces the persisted typed table.
	SaveTable(ctx context.Context, table survey.Table) error
	// LoadTable returns the persisted table (empty when never saved).
	LoadTable(ctx context.Context) (survey.Table, error)
	// AppendRun records a run summary.
	AppendRun(ctx context.Context, run RunSummary) error
	// ListRuns returns run summaries in append order.
	ListRuns(ctx context.Context) ([]RunSummary, error)
	// Close releases backend resources.
	Close() error
}

// Open selects a backend using environment variables. Defaults to sqlite.
//
//	SURVEYCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	SURVEYCORE_SQLITE_PATH: path to sqlite file (default ./surveycore.db)
//	SURVEYCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func Open(ctx context.Context) (ResultsStore, error) {
	driver := os.Getenv("SURVEYCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return openSQLite(os.Getenv("SURVEYCORE_SQLITE_PATH"))
	case DriverPostgres:
		return openPostgres(ctx, os.Getenv("SURVEYCORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

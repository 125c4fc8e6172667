package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
)

func TestOpenPostgresPropagatesOpenError(t *testing.T) {
	original := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		if driver != postgresDriver {
			t.Fatalf("unexpected driver %s", driver)
		}
		return nil, fmt.Errorf("boom")
	}
	t.Cleanup(func() { sqlOpen = original })

	if _, err := openPostgres(context.Background(), "postgres://example/db"); err == nil {
		t.Fatalf("expected open error to propagate")
	}
}

func TestOpenPostgresDefaultsDSN(t *testing.T) {
	original := sqlOpen
	var gotDSN string
	sqlOpen = func(_, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return nil, fmt.Errorf("stop here")
	}
	t.Cleanup(func() { sqlOpen = original })

	_, _ = openPostgres(context.Background(), "")
	if gotDSN != defaultPostgresDSN {
		t.Fatalf("expected default DSN, got %q", gotDSN)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("SURVEYCORE_STORAGE_DRIVER", "bogus")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestOpenMemoryDriver(t *testing.T) {
	t.Setenv("SURVEYCORE_STORAGE_DRIVER", "memory")
	s, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("expected memory store, got %T", s)
	}
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"surveycore/internal/observability"
	"surveycore/internal/schema"
	"surveycore/internal/store"
)

// fixtureCSV builds a small export with the canonical question headers. The
// second row carries a bad timestamp and a non-numeric statement answer.
func fixtureCSV() string {
	header := []string{
		schema.Question(schema.FieldTimestamp),
		schema.Question(schema.FieldBeliefs),
		schema.Question(schema.FieldWorkLangs),
		schema.Question(schema.FieldFavLang),
		schema.Question(schema.FieldProgYears),
		schema.Question(schema.FieldHumanGood),
	}
	rows := [][]string{
		{"2014/08/29 7:20:13 PM UTC", "Christian", "Go;Python", "Golang", "12", "4"},
		{"yesterday", "Atheist", "C++", "C++11", "3", "strongly"},
		{"2014/08/29 9:05:44 PM UTC", "", "JavaScript", "JS", "7", ""},
	}
	var b strings.Builder
	b.WriteString(quoteJoin(header))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(quoteJoin(row))
	}
	return b.String()
}

func quoteJoin(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + cell + `"`
	}
	return strings.Join(quoted, ",")
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(fixtureCSV()), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestIngestNormalizesAndPersists(t *testing.T) {
	ctx := context.Background()
	results := store.NewMemory()
	rec := observability.NewExpvarRecorder("")

	table, err := Ingest(ctx, writeFixture(t), results, rec)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("records = %d", table.Len())
	}

	first := table.Records[0]
	if first.Timestamp.IsZero() {
		t.Fatalf("first timestamp did not parse")
	}
	if first.FavLang != "go" {
		t.Fatalf("favlang = %q", first.FavLang)
	}
	if len(first.WorkLangs) != 2 {
		t.Fatalf("worklangs = %v", first.WorkLangs)
	}
	if score := first.Statements[schema.FieldHumanGood]; !score.Valid || score.Score != 4 {
		t.Fatalf("humangood = %+v", score)
	}

	second := table.Records[1]
	if !second.Timestamp.IsZero() {
		t.Fatalf("bad timestamp must degrade to the zero sentinel")
	}
	if second.Statements[schema.FieldHumanGood].Valid {
		t.Fatalf("non-numeric statement answer must be absent")
	}

	persisted, err := results.LoadTable(ctx)
	if err != nil {
		t.Fatalf("load persisted: %v", err)
	}
	if persisted.Len() != table.Len() {
		t.Fatalf("persisted records = %d", persisted.Len())
	}

	snap := rec.Snapshot()
	if snap.Rows != 3 {
		t.Fatalf("rows counter = %d", snap.Rows)
	}
	if snap.Sentinels[schema.FieldTimestamp] != 1 {
		t.Fatalf("timestamp sentinels = %+v", snap.Sentinels)
	}
	if snap.Sentinels[schema.FieldHumanGood] != 1 {
		t.Fatalf("statement sentinels = %+v", snap.Sentinels)
	}
	if snap.Results["ingest"]["success"] != 1 {
		t.Fatalf("results = %+v", snap.Results)
	}
}

func TestIngestHaltsOnMissingFile(t *testing.T) {
	rec := observability.NewExpvarRecorder("")
	results := store.NewMemory()
	if _, err := Ingest(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), results, rec); err == nil {
		t.Fatalf("expected error for missing export")
	}
	table, err := results.LoadTable(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("nothing must be persisted after a load failure")
	}
	if rec.Snapshot().Results["ingest"]["error"] != 1 {
		t.Fatalf("failure must be observed")
	}
}

func TestIngestWithoutStoreOrRecorder(t *testing.T) {
	table, err := Ingest(context.Background(), writeFixture(t), nil, nil)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("records = %d", table.Len())
	}
}

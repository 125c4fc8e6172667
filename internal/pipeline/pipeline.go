// Package pipeline wires the batch flow together: load the raw export,
// normalize it into the typed table, persist the table, and hand it to the
// aggregation layer. One logical call stack; the only asynchronous boundary
// is the report worker downstream.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"surveycore/internal/ingest"
	"surveycore/internal/observability"
	"surveycore/internal/schema"
	"surveycore/internal/store"
	"surveycore/internal/survey"
)

// Ingest loads and normalizes the export at path, persists the typed table,
// and returns it. Malformed field values never fail the run; they degrade to
// sentinels and are counted on the recorder. A load failure halts everything
// before normalization.
func Ingest(ctx context.Context, path string, results store.ResultsStore, recorder observability.Recorder) (survey.Table, error) {
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}
	started := time.Now()

	raws, err := ingest.ReadFile(path)
	if err != nil {
		recorder.Observe(ctx, "ingest", false, time.Since(started))
		return survey.Table{}, err
	}
	recorder.CountRows(len(raws))

	table := survey.NormalizeAll(raws)
	countSentinels(raws, table, recorder)

	if results != nil {
		if err := results.SaveTable(ctx, table); err != nil {
			recorder.Observe(ctx, "ingest", false, time.Since(started))
			return survey.Table{}, fmt.Errorf("persist table: %w", err)
		}
	}
	recorder.Observe(ctx, "ingest", true, time.Since(started))
	return table, nil
}

// countSentinels compares raw answers against normalized fields so operators
// can see how much of the dataset degraded: timestamps that failed to parse
// and statements that carried text but no usable score.
func countSentinels(raws []survey.Raw, table survey.Table, recorder observability.Recorder) {
	for i, rec := range table.Records {
		if rec.Timestamp.IsZero() && raws[i][schema.Question(schema.FieldTimestamp)] != "" {
			recorder.CountSentinel(schema.FieldTimestamp)
		}
		for _, key := range schema.Statements {
			raw := raws[i][schema.Question(key)]
			if raw != "" && raw != "0" && !rec.Statements[key].Valid {
				recorder.CountSentinel(key)
			}
		}
	}
}

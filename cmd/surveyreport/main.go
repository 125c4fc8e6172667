// Command surveyreport runs the survey analytics batch: it loads a raw
// export, normalizes it, persists the typed table, and renders report
// artifacts for a chosen belief statement into the configured blob store.
//
// Storage and blob backends are selected via SURVEYCORE_* environment
// variables (see internal/store and internal/blob). With -serve the process
// stays up and exposes the report API plus Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"surveycore/internal/blob"
	"surveycore/internal/observability"
	"surveycore/internal/pipeline"
	"surveycore/internal/render"
	"surveycore/internal/reports"
	"surveycore/internal/schema"
	"surveycore/internal/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("surveyreport: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("surveyreport", flag.ContinueOnError)
	input := fs.String("input", "", "path to the raw survey export (csv)")
	statement := fs.String("statement", schema.FieldHumanGood, "statement field key for the cross-tabulation")
	formats := fs.String("formats", "json,csv,html,svg,png", "comma-separated artifact formats")
	serve := fs.String("serve", "", "optional listen address; keeps the process up serving the report API and /metrics")
	requestedBy := fs.String("requested-by", "surveyreport-cli", "requestor recorded on the report")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	ctx := context.Background()
	registry := prometheus.NewRegistry()
	recorder := observability.NewPrometheusRecorder(registry)

	results, err := store.Open(ctx)
	if err != nil {
		return fmt.Errorf("open results store: %w", err)
	}
	defer func() { _ = results.Close() }()

	blobs, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	table, err := pipeline.Ingest(ctx, *input, results, recorder)
	if err != nil {
		// Load failure halts before normalization; nothing is rendered.
		return fmt.Errorf("ingest: %w", err)
	}
	log.Printf("ingested %d respondents from %s", table.Len(), *input)

	wanted, err := parseFormats(*formats)
	if err != nil {
		return err
	}

	worker := reports.NewWorker(results, blobs, &reports.MemoryAuditLog{}, results, recorder)
	worker.Start()
	defer func() { _ = worker.Stop(context.Background()) }()

	record, err := worker.EnqueueReport(ctx, reports.Input{
		StatementKey: *statement,
		Formats:      wanted,
		RequestedBy:  *requestedBy,
	})
	if err != nil {
		return fmt.Errorf("enqueue report: %w", err)
	}

	record, err = waitForReport(worker, record.ID, 30*time.Second)
	if err != nil {
		return err
	}
	for _, artifact := range record.Artifacts {
		log.Printf("artifact %s (%s, %d bytes) %s", artifact.Key, artifact.ContentType, artifact.SizeBytes, artifact.URL)
	}

	if *serve != "" {
		mux := http.NewServeMux()
		mux.Handle("/api/v1/", reports.NewHandler(worker))
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		log.Printf("serving report API on %s", *serve)
		return http.ListenAndServe(*serve, mux)
	}
	return nil
}

func parseFormats(list string) ([]render.Format, error) {
	var out []render.Format
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		format, ok := render.ParseFormat(name)
		if !ok {
			return nil, fmt.Errorf("unsupported format %q", name)
		}
		out = append(out, format)
	}
	return out, nil
}

func waitForReport(worker *reports.Worker, id string, timeout time.Duration) (reports.Record, error) {
	deadline := time.Now().Add(timeout)
	for {
		record, ok := worker.GetReport(id)
		if !ok {
			return reports.Record{}, fmt.Errorf("report %s disappeared", id)
		}
		switch record.Status {
		case reports.StatusSucceeded:
			return record, nil
		case reports.StatusFailed:
			return record, fmt.Errorf("report failed: %s", record.Error)
		}
		if time.Now().After(deadline) {
			return record, fmt.Errorf("timeout waiting for report %s", id)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// Package reports runs report generation: it pulls the typed table from the
// results store, executes both aggregations for a chosen statement, and
// materializes artifacts into the blob store. Requests are processed
// asynchronously by a single worker goroutine.
package reports

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"surveycore/internal/aggregate"
	"surveycore/internal/blob"
	"surveycore/internal/observability"
	"surveycore/internal/render"
	"surveycore/internal/schema"
	"surveycore/internal/store"
	"surveycore/internal/survey"
)

// Status describes the lifecycle stage of a report request.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact captures one stored report artifact.
type Artifact struct {
	Key         string        `json:"key"`
	Format      render.Format `json:"format"`
	ContentType string        `json:"content_type"`
	SizeBytes   int64         `json:"size_bytes"`
	URL         string        `json:"url,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Record tracks a report request and its resulting artifacts.
type Record struct {
	ID            string          `json:"id"`
	StatementKey  string          `json:"statement_key"`
	StatementText string          `json:"statement_text"`
	Formats       []render.Format `json:"formats"`
	Status        Status          `json:"status"`
	Error         string          `json:"error,omitempty"`
	Respondents   int             `json:"respondents,omitempty"`
	Artifacts     []Artifact      `json:"artifacts,omitempty"`
	RequestedBy   string          `json:"requested_by"`
	Reason        string          `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// Input represents an enqueue request for the worker.
type Input struct {
	StatementKey string
	Formats      []render.Format
	RequestedBy  string
	Reason       string
}

// Scheduler queues report requests and exposes status.
type Scheduler interface {
	EnqueueReport(ctx context.Context, input Input) (Record, error)
	GetReport(id string) (Record, bool)
	ListReports() []Record
}

// Source supplies the typed table the aggregations read.
type Source interface {
	LoadTable(ctx context.Context) (survey.Table, error)
}

// RunSink receives run summaries for completed or failed reports. The
// results store satisfies it; a nil sink disables run bookkeeping.
type RunSink interface {
	AppendRun(ctx context.Context, run store.RunSummary) error
}

// AuditLogger records report audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures audit trail metadata for report runs.
type AuditEntry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	Statement  string         `json:"statement"`
	Status     Status         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Worker executes report requests asynchronously.
type Worker struct {
	source   Source
	blobs    blob.Store
	audit    AuditLogger
	runs     RunSink
	recorder observability.Recorder

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Record
	order []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id    string
	input Input
}

// NewWorker constructs a report worker. Audit, sink and recorder may be nil.
func NewWorker(source Source, blobs blob.Store, audit AuditLogger, runs RunSink, recorder observability.Recorder) *Worker {
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		source:   source,
		blobs:    blobs,
		audit:    audit,
		runs:     runs,
		recorder: recorder,
		queue:    make(chan task, 32),
		jobs:     make(map[string]*Record),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing report requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// EnqueueReport schedules a report and returns the queued record.
func (w *Worker) EnqueueReport(ctx context.Context, input Input) (Record, error) {
	if w.source == nil {
		return Record{}, fmt.Errorf("report source not configured")
	}
	key := strings.TrimSpace(input.StatementKey)
	if key == "" {
		return Record{}, fmt.Errorf("statement key required")
	}
	if !schema.IsStatement(key) {
		return Record{}, fmt.Errorf("unknown statement %s", key)
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []render.Format{render.FormatJSON, render.FormatPNG}
	}
	uniq := make([]render.Format, 0, len(formats))
	seen := make(map[render.Format]struct{})
	for _, format := range formats {
		if _, dup := seen[format]; dup {
			continue
		}
		if _, ok := render.ParseFormat(string(format)); !ok {
			return Record{}, fmt.Errorf("unsupported report format %s", format)
		}
		uniq = append(uniq, format)
		seen[format] = struct{}{}
	}

	id := newID()
	now := time.Now().UTC()
	record := Record{
		ID:            id,
		StatementKey:  key,
		StatementText: schema.Question(key),
		Formats:       uniq,
		Status:        StatusQueued,
		RequestedBy:   input.RequestedBy,
		Reason:        input.Reason,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	w.order = append(w.order, id)
	snapshot := record.copy()
	w.mu.Unlock()

	w.recordAudit(ctx, id, StatusQueued, nil)

	select {
	case w.queue <- task{id: id, input: input}:
	default:
		return Record{}, fmt.Errorf("report queue full")
	}
	return snapshot, nil
}

// GetReport returns a snapshot of the report record.
func (w *Worker) GetReport(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

// ListReports returns snapshots of all report records in enqueue order.
func (w *Worker) ListReports() []Record {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Record, 0, len(w.order))
	for _, id := range w.order {
		if record, ok := w.jobs[id]; ok {
			out = append(out, record.copy())
		}
	}
	return out
}

func (w *Worker) process(t task) {
	started := time.Now().UTC()
	w.updateStatus(t.id, StatusRunning, "")

	record, ok := w.GetReport(t.id)
	if !ok {
		return
	}

	table, err := w.source.LoadTable(w.ctx)
	if err != nil {
		w.fail(t.id, started, fmt.Sprintf("load table: %v", err))
		return
	}

	w.mu.Lock()
	if rec, ok := w.jobs[t.id]; ok {
		rec.Respondents = table.Len()
	}
	w.mu.Unlock()

	report := render.Report{
		GeneratedAt:   started,
		Respondents:   table.Len(),
		StatementKey:  record.StatementKey,
		StatementText: record.StatementText,
		Stream:        aggregate.BuildStream(table),
		Breakdown:     aggregate.CrossTab(table, record.StatementKey),
	}

	artifacts := make([]Artifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		payload, err := render.Materialize(format, report)
		if err != nil {
			w.fail(t.id, started, err.Error())
			return
		}
		artifact := Artifact{
			Key:         fmt.Sprintf("reports/%s/%s.%s", t.id, record.StatementKey, format),
			Format:      format,
			ContentType: render.ContentType(format),
			SizeBytes:   int64(len(payload)),
			CreatedAt:   time.Now().UTC(),
		}
		if w.blobs != nil {
			info, err := w.blobs.Put(w.ctx, artifact.Key, bytes.NewReader(payload), blob.PutOptions{
				ContentType: artifact.ContentType,
				Metadata:    map[string]string{"statement": record.StatementKey},
			})
			if err != nil {
				w.fail(t.id, started, fmt.Sprintf("store artifact: %v", err))
				return
			}
			artifact.URL = info.URL
			if info.Size > 0 {
				artifact.SizeBytes = info.Size
			}
		}
		artifacts = append(artifacts, artifact)
	}

	w.complete(t.id, started, artifacts)
}

func (w *Worker) updateStatus(id string, status Status, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, id, status, nil)
}

func (w *Worker) complete(id string, started time.Time, artifacts []Artifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	record, ok := w.jobs[id]
	if ok {
		record.Status = StatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recorder.Observe(w.ctx, "report", true, now.Sub(started))
	w.recordAudit(w.ctx, id, StatusSucceeded, nil)
	if ok {
		w.sinkRun(id, started, now)
	}
}

func (w *Worker) fail(id string, started time.Time, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recorder.Observe(w.ctx, "report", false, now.Sub(started))
	w.recordAudit(w.ctx, id, StatusFailed, map[string]any{"error": reason})
	w.sinkRun(id, started, now)
}

func (w *Worker) sinkRun(id string, started, completed time.Time) {
	if w.runs == nil {
		return
	}
	record, ok := w.GetReport(id)
	if !ok {
		return
	}
	formats := make([]string, len(record.Formats))
	for i, f := range record.Formats {
		formats[i] = string(f)
	}
	keys := make([]string, len(record.Artifacts))
	for i, a := range record.Artifacts {
		keys[i] = a.Key
	}
	_ = w.runs.AppendRun(w.ctx, store.RunSummary{
		ID:           record.ID,
		StatementKey: record.StatementKey,
		Respondents:  record.Respondents,
		Formats:      formats,
		ArtifactKeys: keys,
		Status:       string(record.Status),
		Error:        record.Error,
		StartedAt:    started,
		CompletedAt:  completed,
	})
}

func (w *Worker) recordAudit(ctx context.Context, id string, status Status, metadata map[string]any) {
	if w.audit == nil {
		return
	}
	w.mu.RLock()
	actor, statement, reason := "", "", ""
	if record, ok := w.jobs[id]; ok {
		actor = record.RequestedBy
		statement = record.StatementKey
		reason = record.Reason
	}
	w.mu.RUnlock()
	w.audit.Record(ctx, AuditEntry{
		ID:         newID(),
		Action:     "survey_report",
		Actor:      actor,
		Statement:  statement,
		Status:     status,
		Reason:     reason,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	})
}

func (r Record) copy() Record {
	dup := r
	dup.Formats = append([]render.Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]Artifact(nil), r.Artifacts...)
	}
	return dup
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b[:])
}

// MemoryAuditLog captures audit entries in-memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a defensive copy of recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

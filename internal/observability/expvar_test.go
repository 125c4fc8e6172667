package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewTracer(&buf)

	span := tracer.Start("ingest")
	span.End(nil)
	span = tracer.Start("report")
	span.End(errors.New("load table: backend down"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Operation != "ingest" || entries[0].Status != "success" || entries[0].Error != "" {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "load table: backend down" {
		t.Fatalf("second entry = %+v", entries[1])
	}
	if entries[1].EndedAt.Before(entries[1].StartedAt) {
		t.Fatalf("span ended before it started")
	}

	dec := json.NewDecoder(&buf)
	for i := 0; i < 2; i++ {
		var entry TraceEntry
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decode line %d: %v", i, err)
		}
	}
	if dec.More() {
		t.Fatalf("unexpected extra trace output")
	}
}

func TestTracerWithoutWriter(t *testing.T) {
	tracer := NewTracer(nil)
	tracer.Start("ingest").End(nil)
	if len(tracer.Entries()) != 1 {
		t.Fatalf("entries = %d", len(tracer.Entries()))
	}
}

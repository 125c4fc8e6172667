package fs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"surveycore/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStorePutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)

	info, err := store.Put(ctx, "reports/run-1/chart.png", bytes.NewReader([]byte("payload")), core.PutOptions{ContentType: "image/png", Metadata: map[string]string{"statement": "humangood"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "reports/run-1/chart.png" || info.Size != 7 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "reports/run-1/chart.png", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("put must be create-only")
	}

	head, err := store.Head(ctx, "reports/run-1/chart.png")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ContentType != "image/png" || head.Metadata["statement"] != "humangood" {
		t.Fatalf("unexpected head %+v", head)
	}

	got, rc, err := store.Get(ctx, "reports/run-1/chart.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" || got.ETag != head.ETag {
		t.Fatalf("unexpected get result")
	}

	list, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "reports/run-1/chart.png" {
		t.Fatalf("unexpected list %+v", list)
	}

	existed, err := store.Delete(ctx, "reports/run-1/chart.png")
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	existed, err = store.Delete(ctx, "reports/run-1/chart.png")
	if err != nil || existed {
		t.Fatalf("second delete must be a no-op: %v %v", existed, err)
	}
}

func TestStoreRejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"", " ", "../escape", "/absolute", "a/../../b"} {
		if _, err := store.Put(ctx, key, bytes.NewReader(nil), core.PutOptions{}); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}

func TestStorePresignURL(t *testing.T) {
	store := newTempStore(t)
	url, err := store.PresignURL(context.Background(), "reports/x.json", core.SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if url == "" {
		t.Fatalf("expected local pseudo URL")
	}
	if _, err := store.PresignURL(context.Background(), "reports/x.json", core.SignedURLOptions{Method: "PUT"}); err != core.ErrUnsupported {
		t.Fatalf("PUT presign must be unsupported, got %v", err)
	}
}

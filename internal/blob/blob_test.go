package blob

import (
	"bytes"
	"context"
	"testing"
)

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	ctx := context.Background()

	t.Setenv("SURVEYCORE_BLOB_DRIVER", "memory")
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}

	t.Setenv("SURVEYCORE_BLOB_DRIVER", "fs")
	t.Setenv("SURVEYCORE_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
	if _, err := store.Put(ctx, "reports/x.json", bytes.NewReader([]byte("{}")), PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put through fs facade: %v", err)
	}
}

func TestOpenDefaultsToFilesystem(t *testing.T) {
	t.Setenv("SURVEYCORE_BLOB_DRIVER", "")
	t.Setenv("SURVEYCORE_BLOB_FS_ROOT", t.TempDir())
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Setenv("SURVEYCORE_BLOB_DRIVER", "tape")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	t.Setenv("SURVEYCORE_BLOB_DRIVER", "s3")
	t.Setenv("SURVEYCORE_BLOB_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected error when bucket unset")
	}
}

package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestKeyValueStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Set(ctx, "credential", "tok123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "identity", `{"id":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, _ := reopened.Get(ctx, "credential")
	if !ok || v != "tok123" {
		t.Fatalf("expected persisted credential, got %q ok=%v", v, ok)
	}

	if err := reopened.Delete(ctx, "credential", "identity"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok, _ := again.Get(ctx, "identity"); ok {
		t.Fatalf("expected identity removed on disk")
	}
}

func TestOpen_MissingAndEmptyFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(filepath.Join(dir, "missing.json")); err != nil {
		t.Fatalf("missing file must open empty: %v", err)
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(empty); err != nil {
		t.Fatalf("empty file must open: %v", err)
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

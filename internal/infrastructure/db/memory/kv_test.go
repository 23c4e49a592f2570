package memory

import (
	"context"
	"testing"
)

func TestKeyValueStore(t *testing.T) {
	ctx := context.Background()
	s := NewKeyValueStore()

	if _, ok, _ := s.Get(ctx, "credential"); ok {
		t.Fatalf("expected empty store")
	}
	_ = s.Set(ctx, "credential", "a")
	_ = s.Set(ctx, "identity", "b")
	if s.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", s.Len())
	}
	_ = s.Delete(ctx, "credential", "identity", "absent")
	if s.Len() != 0 {
		t.Fatalf("expected all keys gone, got %d", s.Len())
	}
}

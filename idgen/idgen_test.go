package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	if parts := strings.Split(id, "-"); len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
}

func TestUUIDv7_Uniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("UUIDv7: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("watch_", Default)()
	if !strings.HasPrefix(id, "watch_") {
		t.Fatalf("Prefixed: expected prefix 'watch_', got %q", id)
	}
	if len(id) != len("watch_")+36 {
		t.Fatalf("Prefixed: expected length %d, got %d", len("watch_")+36, len(id))
	}
	if _, err := Parse(id); err != nil {
		t.Fatalf("Parse prefixed: %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Fatal("Parse: expected error for invalid UUID")
	}
	if _, err := Parse("run_nope"); err == nil {
		t.Fatal("Parse: expected error for invalid prefixed UUID")
	}
}

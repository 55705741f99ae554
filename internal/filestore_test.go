package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	if v, err := store.Get("chat:intent:topic1"); err != nil || v != "" {
		t.Fatalf("Get(missing) = (%q, %v), want empty, nil", v, err)
	}

	if err := store.Set("chat:intent:topic1", "value1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, _ := store.Get("chat:intent:topic1"); v != "value1" {
		t.Errorf("Get() = %q, want value1", v)
	}

	if err := store.Set("chat:intent:topic1", "value2"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if v, _ := store.Get("chat:intent:topic1"); v != "value2" {
		t.Errorf("Get() after overwrite = %q, want value2", v)
	}

	if err := store.Remove("chat:intent:topic1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if v, _ := store.Get("chat:intent:topic1"); v != "" {
		t.Errorf("Get() after remove = %q, want empty", v)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store := NewFileStore(dir)
	if err := store.Set("chat:intent:topic1", "persisted"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reopened := NewFileStore(dir)
	if v, _ := reopened.Get("chat:intent:topic1"); v != "persisted" {
		t.Errorf("Get() from new instance = %q, want persisted", v)
	}

	pairs, err := reopened.List("chat:intent:")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pairs) != 1 || pairs[0].Value != "persisted" {
		t.Errorf("List() = %+v, want one persisted entry", pairs)
	}
}

func TestFileStoreListFiltersPrefix(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_ = store.Set("chat:intent:topic1", "a")
	_ = store.Set("chat:intent:topic2", "b")
	_ = store.Set("other:key", "c")

	pairs, err := store.List("chat:intent:")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pairs) != 2 {
		t.Errorf("List() returned %d pairs, want 2", len(pairs))
	}
}

func TestFileStoreCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := store.Set("chat:intent:topic1", "value"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "entries.yaml"), []byte("{{{not yaml"), 0644); err != nil {
		t.Fatalf("failed to corrupt index: %v", err)
	}

	// A corrupt index degrades to an empty listing, not a failure
	pairs, err := store.List("chat:intent:")
	if err != nil {
		t.Fatalf("List() with corrupt index error = %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("List() with corrupt index = %+v, want empty", pairs)
	}

	// And the store keeps working afterwards
	if err := store.Set("chat:intent:topic2", "fresh"); err != nil {
		t.Fatalf("Set() after corrupt index error = %v", err)
	}
	if v, _ := store.Get("chat:intent:topic2"); v != "fresh" {
		t.Errorf("Get() after recovery = %q, want fresh", v)
	}
}

func TestFileStoreMissingDirectory(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "does", "not", "exist"))

	// Reads before any write see an empty store
	if v, err := store.Get("chat:intent:topic1"); err != nil || v != "" {
		t.Errorf("Get() = (%q, %v), want empty, nil", v, err)
	}

	// The first write creates the directory
	if err := store.Set("chat:intent:topic1", "value"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, _ := store.Get("chat:intent:topic1"); v != "value" {
		t.Errorf("Get() = %q, want value", v)
	}
}

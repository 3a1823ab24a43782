package cursor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_AbsentCursor(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "lastblock.txt"))
	_, ok, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for absent cursor")
	}
}

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "lastblock.txt"))
	for _, pos := range []int64{1, 42, 95000000} {
		if err := s.Save(pos); err != nil {
			t.Fatalf("save %d: %v", pos, err)
		}
		got, ok, err := s.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !ok || got != pos {
			t.Errorf("expected (%d, true), got (%d, %v)", pos, got, ok)
		}
	}
}

func TestFileStore_TrailingNewlineTolerated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastblock.txt")
	if err := os.WriteFile(path, []byte("12345\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	got, ok, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok || got != 12345 {
		t.Errorf("expected (12345, true), got (%d, %v)", got, ok)
	}
}

func TestFileStore_GarbageIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastblock.txt")
	if err := os.WriteFile(path, []byte("not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	if _, _, err := s.Load(); err == nil {
		t.Error("expected parse error for garbage cursor file")
	}
}

package store

import (
	"path/filepath"
	"testing"
)

func TestNew_CreatesDirAndEnablesForeignKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "data", "seatmark.db")
	st, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	var fk int
	if err := st.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys=%d, want 1", fk)
	}
}

func TestNew_ReopenKeepsSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seatmark.db")
	first, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := New(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

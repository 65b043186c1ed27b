package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_CreateInsideDestination(t *testing.T) {
	dest := t.TempDir()
	mgr := NewManager(dest)

	if mgr.GetPath() != "" {
		t.Fatal("GetPath() should be empty before Create()")
	}
	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	wsPath := mgr.GetPath()
	if filepath.Dir(wsPath) != dest {
		t.Errorf("staging dir %s is not inside %s", wsPath, dest)
	}
	if !strings.HasPrefix(filepath.Base(wsPath), StagingPrefix) {
		t.Errorf("Expected staging prefix, got: %s", wsPath)
	}
	if err := mgr.Create(); err == nil {
		t.Error("second Create() should fail")
	}
}

func TestManager_Commit(t *testing.T) {
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "b.png"), []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	mgr := NewManager(dest)
	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	staging := mgr.GetPath()
	for _, name := range []string{"b.png", "a.png"} {
		if err := os.WriteFile(filepath.Join(staging, name), []byte("new"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(staging, "nested"), 0o750); err != nil {
		t.Fatal(err)
	}

	moved, err := mgr.Commit()
	if err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}

	want := []string{filepath.Join(dest, "a.png"), filepath.Join(dest, "b.png")}
	if len(moved) != 2 || moved[0] != want[0] || moved[1] != want[1] {
		t.Fatalf("unexpected moved files: %v", moved)
	}
	data, err := os.ReadFile(filepath.Join(dest, "b.png"))
	if err != nil || string(data) != "new" {
		t.Errorf("existing artifact was not replaced: %q %v", data, err)
	}
	if _, err := os.Stat(staging); !os.IsNotExist(err) {
		t.Errorf("staging directory still exists after commit: %s", staging)
	}
	if mgr.GetPath() != "" {
		t.Error("GetPath() should be empty after commit")
	}
}

func TestManager_CleanupDiscardsOutput(t *testing.T) {
	dest := t.TempDir()
	mgr := NewManager(dest)
	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(mgr.GetPath(), "partial.png"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}
	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("second Cleanup() failed: %v", err)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("destination should be empty, found %d entries", len(entries))
	}
}

func TestManager_CommitBeforeCreate(t *testing.T) {
	if _, err := NewManager(t.TempDir()).Commit(); err == nil {
		t.Error("Commit() without Create() should fail")
	}
}

func TestManager_CreateMissingDestination(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing"))
	if err := mgr.Create(); err == nil {
		t.Error("Create() should fail when destination is missing")
	}
}

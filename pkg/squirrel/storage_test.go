package squirrel

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSStorage_WriteAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entry"+Ext)
	storage := OSStorage{}

	data := []byte("payload")
	n, err := storage.WriteAll(path, data)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != len(data) {
		t.Errorf("wrote %d bytes, want %d", n, len(data))
	}

	got, err := storage.ReadAll(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("read back %q, want %q", got, data)
	}

	// Overwrite fully replaces, never appends.
	if _, err := storage.WriteAll(path, []byte("x")); err != nil {
		t.Fatal(err)
	}
	got, _ = storage.ReadAll(path)
	if string(got) != "x" {
		t.Errorf("after overwrite got %q, want %q", got, "x")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("found %d files, want 1", len(entries))
	}
}

func TestOSStorage_Probes(t *testing.T) {
	dir := t.TempDir()
	storage := OSStorage{}

	if !storage.IsDir(dir) {
		t.Error("IsDir false for existing directory")
	}
	if storage.IsDir(filepath.Join(dir, "missing")) {
		t.Error("IsDir true for missing path")
	}
	if storage.IsRegularFile(dir) {
		t.Error("IsRegularFile true for a directory")
	}

	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !storage.IsRegularFile(path) {
		t.Error("IsRegularFile false for existing file")
	}
	if storage.IsDir(path) {
		t.Error("IsDir true for a file")
	}

	if _, err := storage.ModTime(path); err != nil {
		t.Errorf("ModTime for existing file: %v", err)
	}
	if _, err := storage.ModTime(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected ModTime error for missing path")
	}

	if err := storage.Remove(path); err != nil {
		t.Errorf("remove: %v", err)
	}
	if storage.IsRegularFile(path) {
		t.Error("file still present after Remove")
	}
}

package fsio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Exists(path); err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if err := Exists(filepath.Join(dir, "absent")); err == nil {
		t.Fatalf("Exists succeeded for a missing file")
	}
}

func TestWriteFile_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	if err := WriteFile(path, []byte("first"), false); err != nil {
		t.Fatalf("initial write: %v", err)
	}

	err := WriteFile(path, []byte("second"), false)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, _ := os.ReadFile(path)
	if !bytes.Equal(got, []byte("first")) {
		t.Fatalf("refused write still modified the file")
	}

	if err := WriteFile(path, []byte("second"), true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
	got, _ = os.ReadFile(path)
	if !bytes.Equal(got, []byte("second")) {
		t.Fatalf("forced write did not replace contents")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input")
	want := []byte("some file contents")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("ReadFile returned different contents")
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatalf("ReadFile succeeded for a missing file")
	}
}

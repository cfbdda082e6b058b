package patchnwb

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

// Both backing types must satisfy the full interface: archive/zip needs
// ReadAt, image and config decoding need Read.
var (
	_ ReaderAtCloser = &GSReaderAtCloser{}
	_ ReaderAtCloser = &os.File{}
)

func TestMaybeOpenLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.zip")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, nbytes, err := MaybeOpenFromGoogleStorage(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if nbytes != 10 {
		t.Errorf("expected size 10, got %d", nbytes)
	}

	// Sequential read and random access must both work on the same handle.
	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		t.Fatal(err)
	}
	if string(head) != "0123" {
		t.Errorf("expected leading bytes 0123, got %q", head)
	}

	tail := make([]byte, 3)
	if _, err := f.ReadAt(tail, 7); err != nil {
		t.Fatal(err)
	}
	if string(tail) != "789" {
		t.Errorf("expected trailing bytes 789, got %q", tail)
	}
}

func TestMaybeOpenMalformedGSPath(t *testing.T) {
	if _, _, err := MaybeOpenFromGoogleStorage("gs://bucket-only", nil); err == nil {
		t.Fatal("expected an error for a gs:// path with no object name, got nil")
	}
}

func TestMaybeOpenMissingLocalFile(t *testing.T) {
	if _, _, err := MaybeOpenFromGoogleStorage(filepath.Join(t.TempDir(), "absent.zip"), nil); err == nil {
		t.Fatal("expected an error for a missing local file, got nil")
	}
}

package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRotatingWriter_NoRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	for range 10 {
		if _, err := rw.Write([]byte("hello\n")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if rw.Size() != 60 {
		t.Errorf("Size() = %d, want 60", rw.Size())
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup expected when rotation is disabled")
	}
	if rw.Path() != path {
		t.Errorf("Path() = %q", rw.Path())
	}
}

func TestRotatingWriter_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	chunk := bytes.Repeat([]byte("x"), 600*1024)
	for range 4 {
		if _, err := rw.Write(chunk); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backups beyond MaxBackups should be removed")
	}
	if rw.Size() != int64(len(chunk)) {
		t.Errorf("Size() = %d, want %d", rw.Size(), len(chunk))
	}
}

func TestRotatingWriter_Compress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 1, Compress: true})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	chunk := bytes.Repeat([]byte("y"), 700*1024)
	_, _ = rw.Write(chunk)
	_, _ = rw.Write(chunk)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, gzErr := os.Stat(path + ".1.gz")
		_, plainErr := os.Stat(path + ".1")
		if gzErr == nil && os.IsNotExist(plainErr) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("compressed backup was not created")
}

func TestRotatingWriter_Close(t *testing.T) {
	rw, err := NewRotatingWriter(filepath.Join(t.TempDir(), "app.log"), DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if _, err := rw.Write([]byte("late")); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Write after Close = %v, want ErrWriterClosed", err)
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync after Close = %v", err)
	}
}

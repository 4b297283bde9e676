package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink stores one named document.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// FileSink writes documents into Dir, replacing each file atomically.
type FileSink struct {
	Dir string
}

func (s FileSink) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFileAtomic(filepath.Join(s.Dir, name), data, 0o644)
}

// WriteFileAtomic writes to a temp file next to path and renames it into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// MultiSink writes to every sink in order and stops at the first error.
type MultiSink []Sink

func (m MultiSink) Put(ctx context.Context, name string, data []byte) error {
	for _, s := range m {
		if err := s.Put(ctx, name, data); err != nil {
			return err
		}
	}
	return nil
}

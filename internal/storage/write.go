package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic writes name into dir through a temp file and a rename, so a
// reader never sees a partially written artifact. Temp names start with a
// dot and can never collide with a sanitized artifact name.
func WriteAtomic(dir, name string, write func(io.Writer) error) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	err = tmp.Chmod(0o644)
	if err == nil {
		err = write(tmp)
	}
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	dst := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return dst, nil
}

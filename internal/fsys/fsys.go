// Package fsys is the file-system capability used to write export artifacts.
package fsys

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSystem writes export output.
type FileSystem interface {
	Exists(path string) bool
	WriteText(path, content string) error
	WriteBytes(path string, data []byte) error
	CreateDirectories(path string) error
}

// OS implements FileSystem on the local disk. Writes create missing parent
// directories.
type OS struct{}

// Exists reports whether path exists.
func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteText writes content as UTF-8.
func (o OS) WriteText(path, content string) error {
	return o.WriteBytes(path, []byte(content))
}

// WriteBytes writes data, replacing any existing file.
func (o OS) WriteBytes(path string, data []byte) error {
	if err := o.CreateDirectories(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CreateDirectories creates path and any missing parents.
func (OS) CreateDirectories(path string) error {
	if path == "" || path == "." {
		return nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

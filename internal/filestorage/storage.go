// Package filestorage provides a local-disk implementation of storage.Storage.
//
// Each artifact format is written to `<BaseDir>/<name>.<ext>` through a temp
// file and rename, so readers see either the previous file or the complete
// new one, never a partial write.
package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/storage"
	"github.com/specialistvlad/stepflow/internal/table"
)

// Storage writes artifacts below a base directory.
type Storage struct {
	BaseDir string
}

// New creates a disk storage rooted at baseDir. The directory is created on
// first write.
func New(baseDir string) *Storage {
	return &Storage{BaseDir: baseDir}
}

// Write persists t once per requested format, replacing existing files.
func (s *Storage) Write(ctx context.Context, t *table.Table, name string, formats []storage.Format) error {
	logger := ctxlog.FromContext(ctx).With("artifact", name)

	if err := validateName(name); err != nil {
		return storage.WriteError(name, "", err)
	}
	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return storage.WriteError(name, "", fmt.Errorf("failed to create output directory %s: %w", s.BaseDir, err))
	}

	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			return storage.WriteError(name, f, err)
		}
		path := s.Path(name, f)
		if err := writeFileAtomic(path, func(w io.Writer) error { return storage.Encode(w, t, f) }); err != nil {
			return storage.WriteError(name, f, err)
		}
		logger.Debug("Artifact written to disk.", "format", f, "path", path)
	}
	return nil
}

// Path returns the file an artifact format is stored in.
func (s *Storage) Path(name string, f storage.Format) string {
	return filepath.Join(s.BaseDir, storage.FileName(name, f))
}

// validateName rejects names that would escape the base directory.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("artifact name cannot be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}

func writeFileAtomic(path string, encode func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := encode(tmp); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stepflow/internal/config"
	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/filestorage"
	"github.com/specialistvlad/stepflow/internal/memstorage"
	"github.com/specialistvlad/stepflow/internal/objectstorage"
	"github.com/specialistvlad/stepflow/internal/storage"
)

// defaultBaseDir is used when the configuration has no storage block.
const defaultBaseDir = "output"

// newStorage builds the persistent storage backend the configuration selects.
func newStorage(ctx context.Context, cfg *config.Storage) (storage.Storage, error) {
	logger := ctxlog.FromContext(ctx)
	if cfg == nil {
		logger.Debug("No storage configured; using file storage.", "base_dir", defaultBaseDir)
		return filestorage.New(defaultBaseDir), nil
	}

	switch cfg.Kind {
	case config.StorageFile:
		logger.Debug("Using file storage.", "base_dir", cfg.BaseDir)
		return filestorage.New(cfg.BaseDir), nil
	case config.StorageHTTP:
		logger.Debug("Using object storage.", "base_url", cfg.BaseURL)
		return objectstorage.New(cfg.BaseURL, cfg.Headers)
	case config.StorageMemory:
		logger.Debug("Using in-memory storage; artifacts will not outlive the run.")
		return memstorage.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Kind)
	}
}

func snapshotFormats(cfg *config.Snapshot) ([]storage.Format, error) {
	if cfg == nil {
		return storage.ParseFormats(nil)
	}
	return storage.ParseFormats(cfg.Formats)
}

package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"datahub-backend/internal/infrastructure/storage"
	"datahub-backend/internal/shared/utils"
	"datahub-backend/pkg/logger"
)

// CleanupExportPayload names the temp directory of one produced archive.
type CleanupExportPayload struct {
	Dir string `json:"dir"`
}

// CleanupExportHandler removes the temp directory of a served archive.
type CleanupExportHandler struct {
	tempRoot string
}

func NewCleanupExportHandler(tempRoot string) *CleanupExportHandler {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	return &CleanupExportHandler{tempRoot: tempRoot}
}

func (h *CleanupExportHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload CleanupExportPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if !IsExportDir(h.tempRoot, payload.Dir) {
		logger.Warn("Refusing to remove non-export directory", map[string]interface{}{
			"dir": payload.Dir,
		})
		return fmt.Errorf("not an export directory %q: %w", payload.Dir, asynq.SkipRetry)
	}

	if err := os.RemoveAll(payload.Dir); err != nil {
		return fmt.Errorf("remove %s: %w", payload.Dir, err)
	}

	logger.Info("Export directory removed", map[string]interface{}{
		"dir": payload.Dir,
	})
	return nil
}

// SweepExportsHandler removes export directories older than MaxAge, catching
// any whose cleanup task was lost.
type SweepExportsHandler struct {
	tempRoot string
	maxAge   time.Duration
	now      func() time.Time
}

func NewSweepExportsHandler(tempRoot string, maxAge time.Duration) *SweepExportsHandler {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	return &SweepExportsHandler{tempRoot: tempRoot, maxAge: maxAge, now: time.Now}
}

func (h *SweepExportsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	removed, err := h.Sweep()
	if err != nil {
		return err
	}
	logger.Info("Export sweep finished", map[string]interface{}{
		"removed": removed,
		"max_age": h.maxAge.String(),
	})
	return nil
}

// Sweep returns how many directories were removed.
func (h *SweepExportsHandler) Sweep() (int, error) {
	entries, err := os.ReadDir(h.tempRoot)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", h.tempRoot, err)
	}

	cutoff := h.now().Add(-h.maxAge)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), storage.ExportDirPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(h.tempRoot, e.Name())
		if err := os.RemoveAll(dir); err != nil {
			logger.Error("Failed to remove stale export "+dir, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// IsExportDir reports whether dir is a direct child of tempRoot created by
// the archive exporter.
func IsExportDir(tempRoot, dir string) bool {
	if dir == "" {
		return false
	}
	clean := filepath.Clean(dir)
	return filepath.Dir(clean) == filepath.Clean(tempRoot) &&
		strings.HasPrefix(filepath.Base(clean), storage.ExportDirPrefix)
}

// Package maintenance removes preview work directories left behind by
// interrupted runs.
package maintenance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hdx-stable-schema/internal/common/logger"
)

// WorkDirPrefix is the name prefix of the directories a preview creates
// under DOWNLOAD_DIR.
const WorkDirPrefix = "hdx-preview-"

// CleanupResult represents the result of removing one work directory
type CleanupResult struct {
	Path      string
	ModTime   time.Time
	SizeBytes int64
	Success   bool
	Error     string
}

// Maintenance cleans up the download directory
type Maintenance struct {
	dir    string
	logger logger.Logger
	now    func() time.Time
}

func New(dir string, logger logger.Logger) *Maintenance {
	return &Maintenance{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
}

// CleanupStaleWorkDirs removes work directories not modified for olderThan.
// A directory that cannot be removed is reported in its result and does not
// stop the sweep.
func (m *Maintenance) CleanupStaleWorkDirs(ctx context.Context, olderThan time.Duration) ([]CleanupResult, error) {
	m.logger.Info("Starting cleanup of preview work directories",
		"dir", m.dir,
		"older_than", olderThan)

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading download directory: %w", err)
	}

	cutoff := m.now().Add(-olderThan)
	var results []CleanupResult
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), WorkDirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(m.dir, entry.Name())
		result := CleanupResult{Path: path, ModTime: info.ModTime(), SizeBytes: dirSize(path)}
		if err := os.RemoveAll(path); err != nil {
			result.Error = err.Error()
			m.logger.Warn("Failed to remove work directory", "path", path, "error", err)
		} else {
			result.Success = true
			m.logger.Debug("Removed work directory", "path", path, "size_bytes", result.SizeBytes)
		}
		results = append(results, result)
	}

	var freed int64
	for _, r := range results {
		if r.Success {
			freed += r.SizeBytes
		}
	}
	m.logger.Info("Work directory cleanup completed",
		"directories", len(results),
		"bytes_freed", freed)

	return results, nil
}

func dirSize(root string) int64 {
	var size int64
	filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}

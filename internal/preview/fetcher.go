// Package preview downloads a resource and reads a handful of its rows.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hdx-stable-schema/internal/common/config"
	"github.com/hdx-stable-schema/internal/common/logger"
	"github.com/hdx-stable-schema/internal/common/maintenance"
	"github.com/hdx-stable-schema/internal/schema"
	"github.com/hdx-stable-schema/pkg/hdx/models"
)

// Fetcher reads preview rows for a resource.
type Fetcher struct {
	downloader  Downloader
	downloadDir string
	rows        int
	logger      logger.Logger
}

func NewFetcher(cfg config.PreviewConfig, downloader Downloader, logger logger.Logger) *Fetcher {
	return &Fetcher{
		downloader:  downloader,
		downloadDir: cfg.DownloadDir,
		rows:        cfg.Rows,
		logger:      logger,
	}
}

// FetchRows never fails: problems are reported through the status string,
// which is StatusSuccess when rows were read.
func (f *Fetcher) FetchRows(ctx context.Context, res *models.Resource, sheetName string) (*Table, string) {
	table, err := f.Fetch(ctx, res, sheetName)
	if err != nil {
		f.logger.Warn("Preview failed", "resource", res.Name, "error", err)
		return &Table{}, Status(res, err)
	}
	return table, StatusSuccess
}

// Fetch downloads res and reads up to the configured number of rows from
// sheetName (first sheet when empty). The HXL hashtag row is dropped when
// the latest check marks the sheet as HXLated.
func (f *Fetcher) Fetch(ctx context.Context, res *models.Resource, sheetName string) (*Table, error) {
	format := normaliseFormat(res.Format)
	switch format {
	case "CSV", "XLSX", "XLS", "GEOJSON", "SHP":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, res.Format)
	}

	hxlated, err := f.isHXLated(res, sheetName)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp(f.downloadDir, maintenance.WorkDirPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	path, err := f.localCopy(ctx, res, workDir)
	if err != nil {
		return nil, err
	}

	if format != "XLSX" && format != "XLS" && isZip(path) {
		unzipped := filepath.Join(workDir, "unzipped")
		if err := extractZip(path, unzipped); err != nil {
			return nil, err
		}
		if path, err = findByExtension(unzipped, "."+strings.ToLower(format)); err != nil {
			return nil, err
		}
		f.logger.Debug("Reading file from archive", "resource", res.Name, "path", path)
	}

	limit := f.rows
	if hxlated {
		limit++
	}

	var table *Table
	switch format {
	case "CSV":
		table, err = readCSV(path, limit)
	case "XLSX", "XLS":
		table, err = readXLSX(path, sheetName, limit)
	case "GEOJSON":
		table, err = readGeoJSON(path, limit)
	case "SHP":
		table, err = readShapefile(path, limit)
	}
	if err != nil {
		return nil, err
	}

	if hxlated && len(table.Rows) > 0 {
		table.Rows = table.Rows[1:]
	}

	f.logger.Info("Preview read",
		"resource", res.Name,
		"columns", len(table.Columns),
		"rows", len(table.Rows),
		"hxlated", hxlated)

	return table, nil
}

// isHXLated consults the latest complete file structure check. A resource
// without one is read as plain data.
func (f *Fetcher) isHXLated(res *models.Resource, sheetName string) (bool, error) {
	if res.Kind != models.KindTabular {
		return false, nil
	}
	check, err := schema.LatestFSCheck(res)
	if err != nil {
		f.logger.Debug("No complete check, assuming no HXL row", "resource", res.Name, "error", err)
		return false, nil
	}

	if sheetName != "" {
		for _, sheet := range check.Sheets {
			if sheet.Name == sheetName {
				return sheet.IsHXLated, nil
			}
		}
		return false, nil
	}

	switch len(check.Sheets) {
	case 0:
		return false, nil
	case 1:
		return check.Sheets[0].IsHXLated, nil
	}
	for _, sheet := range check.Sheets {
		if sheet.IsHXLated {
			return false, fmt.Errorf("%w: resource %q has %d sheets", ErrAmbiguousSheet, res.Name, len(check.Sheets))
		}
	}
	return false, nil
}

// localCopy downloads remote resources into workDir. Local paths and
// file:// URLs are used in place.
func (f *Fetcher) localCopy(ctx context.Context, res *models.Resource, workDir string) (string, error) {
	if res.DownloadURL == "" {
		return "", fmt.Errorf("%w: resource %q has no download URL", ErrResourceNotFound, res.Name)
	}

	u, err := url.Parse(res.DownloadURL)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		name := schema.Filename(res.DownloadURL)
		if name == "" || name == "." {
			name = "resource"
		}
		dest := filepath.Join(workDir, name)
		if err := f.downloader.Download(ctx, res.DownloadURL, dest); err != nil {
			return "", err
		}
		return dest, nil
	}

	path := res.DownloadURL
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrResourceNotFound, path)
		}
		return "", statErr
	}
	return path, nil
}

func normaliseFormat(format string) string {
	f := strings.ToUpper(strings.TrimSpace(format))
	f = strings.TrimPrefix(f, ".")
	switch f {
	case "ZIPPED SHAPEFILE", "SHAPEFILE", "ZIPPED SHP":
		return "SHP"
	case "JSON-GEOJSON", "GEO+JSON":
		return "GEOJSON"
	}
	return f
}

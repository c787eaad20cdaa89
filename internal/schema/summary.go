package schema

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/hdx-stable-schema/pkg/hdx/models"
)

// ResourceSummary is the display projection of a resource.
type ResourceSummary struct {
	Name         string
	Format       string
	Filename     string
	InQuarantine bool
	Kind         models.ResourceKind
	Sheets       []string
	BoundingBox  string
	Checks       []ChangeEntry
}

// Summarize projects res for display. A missing complete check is returned
// as the error but the summary is still usable, just without sheet or layer
// details.
func Summarize(res *models.Resource) (ResourceSummary, error) {
	summary := ResourceSummary{
		Name:         res.Name,
		Format:       res.Format,
		Filename:     Filename(res.DownloadURL),
		InQuarantine: res.InQuarantine,
		Kind:         res.Kind,
		Checks:       ChangeHistory(res),
	}

	switch res.Kind {
	case models.KindTabular:
		check, err := LatestFSCheck(res)
		if err != nil {
			return summary, err
		}
		for _, sheet := range check.Sheets {
			summary.Sheets = append(summary.Sheets, describeSheet(sheet.Name, sheet.NCols, fmt.Sprint(sheet.NRows)))
		}
	case models.KindGeospatial:
		check, err := LatestShapeCheck(res)
		if err != nil {
			return summary, err
		}
		summary.Sheets = []string{describeSheet(ShapefileSheet, len(check.LayerFields), "N/A")}
		summary.BoundingBox = check.BoundingBox
	case models.KindNone:
		return summary, &NoCompleteCheckError{Resource: res.Name}
	}
	return summary, nil
}

func describeSheet(name string, ncols int, nrows string) string {
	return fmt.Sprintf("%s (n_columns:%d x n_rows:%s)", name, ncols, nrows)
}

// Filename returns the final path segment of a download URL.
func Filename(downloadURL string) string {
	if downloadURL == "" {
		return ""
	}
	p := downloadURL
	if u, err := url.Parse(downloadURL); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	name := path.Base(p)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

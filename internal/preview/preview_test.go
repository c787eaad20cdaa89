package preview

import (
	"archive/zip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdx-stable-schema/internal/common/config"
	"github.com/hdx-stable-schema/internal/common/logger"
	"github.com/hdx-stable-schema/internal/schema"
	"github.com/hdx-stable-schema/pkg/hdx/models"
)

const geoJSONBody = `{
  "type": "FeatureCollection",
  "name": "admin1",
  "features": [
    {"type": "Feature", "properties": {"pcode": "AF01", "name": "Kabul", "pop": 4860880, "capital": true},
     "geometry": {"type": "Point", "coordinates": [69.1, 34.5]}},
    {"type": "Feature", "properties": {"pcode": "AF02", "name": null, "pop": 1.5, "capital": false},
     "geometry": {"type": "Polygon", "coordinates": []}},
    {"type": "Feature", "properties": {"pcode": "AF03"}, "geometry": null}
  ]
}`

func newTestFetcher(t *testing.T, rows int) *Fetcher {
	t.Helper()
	cfg := config.PreviewConfig{Rows: rows, Timeout: 5 * time.Second, DownloadDir: t.TempDir()}
	return NewFetcher(cfg, NewHTTPDownloader(cfg.Timeout, "hdx-schema-test", logger.Nop()), logger.Nop())
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func writeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func tabularResource(url string, sheets ...models.Sheet) *models.Resource {
	return &models.Resource{
		Name:        "data.csv",
		Format:      "CSV",
		DownloadURL: url,
		Kind:        models.KindTabular,
		FSChecks: []models.FSCheck{{
			Timestamp: models.ParseCustomTime("2024-03-01T10:00:00"),
			Message:   models.FSCheckCompleted,
			Sheets:    sheets,
		}},
	}
}

func TestUniqueColumns(t *testing.T) {
	got := uniqueColumns([]string{"a", "", "a", " b ", "a", "a.1"})
	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "b", "a.2", "a.1.1"}, got)
}

func TestParseCSV(t *testing.T) {
	body := "\ufeffid,name,name\n1,Kabul,x\n2\n3,Herat,y\n"

	table, err := parseCSV(strings.NewReader(body), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "name.1"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, schema.Row{"id": "1", "name": "Kabul", "name.1": "x"}, table.Rows[0])

	_, present := table.Rows[1]["name"]
	assert.False(t, present, "short record should leave trailing cells null")
}

func TestParseCSVErrors(t *testing.T) {
	_, err := parseCSV(strings.NewReader(""), 10)
	assert.ErrorIs(t, err, ErrParse)

	_, err = parseCSV(strings.NewReader("a,b\n\xff\xfe,1\n"), 10)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestParseGeoJSON(t *testing.T) {
	table, err := parseGeoJSON(strings.NewReader(geoJSONBody), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"pcode", "name", "pop", "capital", "geometry"}, table.Columns)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, "4860880", table.Rows[0]["pop"])
	assert.Equal(t, "True", table.Rows[0]["capital"])
	assert.Equal(t, "POINT (69.1 34.5)", table.Rows[0]["geometry"])

	_, present := table.Rows[1]["name"]
	assert.False(t, present)
	assert.Equal(t, "1.5", table.Rows[1]["pop"])
	assert.Equal(t, "POLYGON", table.Rows[1]["geometry"])
	assert.Equal(t, "", table.Rows[2]["geometry"])
}

func TestParseGeoJSONLimit(t *testing.T) {
	table, err := parseGeoJSON(strings.NewReader(geoJSONBody), 1)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)

	_, err = parseGeoJSON(strings.NewReader(`{"type": "FeatureCollection"}`), 1)
	assert.ErrorIs(t, err, ErrParse)

	_, err = parseGeoJSON(strings.NewReader(`[1, 2]`), 1)
	assert.ErrorIs(t, err, ErrParse)
}

func TestFetchLocalCSVDropsHXLRow(t *testing.T) {
	path := writeFile(t, "data.csv", "adm1,population\n#adm1+name,#population\nKabul,100\nHerat,200\nBalkh,300\n")

	hxl := models.Sheet{Name: "data", Headers: []string{"adm1", "population"}, IsHXLated: true}
	res := tabularResource(path, hxl)

	table, status := newTestFetcher(t, 2).FetchRows(context.Background(), res, "")
	assert.Equal(t, StatusSuccess, status)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Kabul", table.Rows[0]["adm1"])
	assert.Equal(t, "Herat", table.Rows[1]["adm1"])
}

func TestFetchLocalCSVWithoutHXL(t *testing.T) {
	path := writeFile(t, "data.csv", "adm1,population\nKabul,100\nHerat,200\n")
	res := tabularResource("file://"+path, models.Sheet{Name: "data"})

	table, err := newTestFetcher(t, 10).Fetch(context.Background(), res, "")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Kabul", table.Rows[0]["adm1"])
}

func TestFetchAmbiguousSheet(t *testing.T) {
	res := tabularResource("/does/not/matter.xlsx",
		models.Sheet{Name: "one", IsHXLated: true},
		models.Sheet{Name: "two"},
	)
	res.Format = "XLSX"

	_, err := newTestFetcher(t, 10).Fetch(context.Background(), res, "")
	assert.ErrorIs(t, err, ErrAmbiguousSheet)

	_, status := newTestFetcher(t, 10).FetchRows(context.Background(), res, "")
	assert.Contains(t, status, "more than one sheet")
}

func TestFetchUnsupportedFormat(t *testing.T) {
	res := &models.Resource{Name: "report.pdf", Format: "PDF", DownloadURL: "https://example.org/report.pdf"}

	table, status := newTestFetcher(t, 10).FetchRows(context.Background(), res, "")
	assert.Equal(t, "Data in file format PDF not supported", status)
	assert.Empty(t, table.Rows)
}

func TestFetchMissingLocalFile(t *testing.T) {
	res := tabularResource(filepath.Join(t.TempDir(), "missing.csv"))

	_, status := newTestFetcher(t, 10).FetchRows(context.Background(), res, "")
	assert.True(t, strings.HasPrefix(status, "Resource not found for URL"), status)
}

func TestFetchZippedGeoJSONOverHTTP(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"README.txt":              "ignored",
		"boundaries/adm1.geojson": geoJSONBody,
	})
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write(archive)
	}))
	defer server.Close()

	res := &models.Resource{
		Name:        "adm1.zip",
		Format:      "GeoJSON",
		DownloadURL: server.URL + "/download/adm1.zip",
		Kind:        models.KindGeospatial,
	}

	table, err := newTestFetcher(t, 2).Fetch(context.Background(), res, "")
	require.NoError(t, err)
	assert.Equal(t, "hdx-schema-test", gotAgent)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, "AF01", table.Rows[0]["pcode"])
}

func TestHTTPDownloaderNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	d := NewHTTPDownloader(5*time.Second, "", logger.Nop())
	err := d.Download(context.Background(), server.URL+"/gone.csv", filepath.Join(t.TempDir(), "gone.csv"))
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestHTTPDownloaderRejectsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := t.TempDir()
	d := NewHTTPDownloader(5*time.Second, "", logger.Nop())
	err := d.Download(context.Background(), server.URL+"/data.csv", filepath.Join(dir, "data.csv"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrResourceNotFound)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHTTPDownloaderWritesFile(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Write([]byte("adm1,population\nKabul,100\n"))
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "nested", "admin1.csv")
	d := NewHTTPDownloader(5*time.Second, "hdx-schema-test", logger.Nop())
	require.NoError(t, d.Download(context.Background(), server.URL+"/admin1.csv", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "adm1,population\nKabul,100\n", string(data))
	assert.Equal(t, "hdx-schema-test", userAgent)

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "admin1.csv", entries[0].Name())
}

func TestExtractZipRejectsEscapingPaths(t *testing.T) {
	archive := writeZip(t, map[string]string{"../evil.txt": "x"})
	path := writeFile(t, "evil.zip", string(archive))

	assert.True(t, isZip(path))
	err := extractZip(path, filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestStatus(t *testing.T) {
	res := &models.Resource{Name: "data.csv", Format: "CSV", DownloadURL: "https://example.org/data.csv"}

	tests := []struct {
		err  error
		want string
	}{
		{nil, StatusSuccess},
		{ErrResourceNotFound, "Resource not found for URL https://example.org/data.csv"},
		{ErrParse, "Resource could not be parsed for URL https://example.org/data.csv"},
		{ErrDecode, "Unicode error for URL https://example.org/data.csv"},
		{ErrUnsupportedFormat, "Data in file format CSV not supported"},
		{errors.New("boom"), "Unknown failure for resource_name 'data.csv' with download_url https://example.org/data.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(res, tt.err))
	}
}

func TestNormaliseFormat(t *testing.T) {
	assert.Equal(t, "SHP", normaliseFormat("zipped shapefile"))
	assert.Equal(t, "GEOJSON", normaliseFormat("GeoJSON"))
	assert.Equal(t, "CSV", normaliseFormat(" csv "))
}

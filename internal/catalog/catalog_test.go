package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdx-stable-schema/internal/common/config"
	"github.com/hdx-stable-schema/internal/common/logger"
	"github.com/hdx-stable-schema/pkg/hdx/models"
)

const datasetBody = `{"success": true, "result": {"name": "test-dataset", "title": "Test", "resources": [
  {"name": "data.csv", "format": "CSV", "download_url": "https://example.org/data.csv",
   "fs_check_info": "[{\"message\": \"File structure check completed\", \"timestamp\": \"2024-01-01T00:00:00\", \"hxl_proxy_response\": {\"sheets\": [{\"name\": \"data\", \"headers\": [\"a\"]}]}}]"}
]}}`

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *HTTPMetadataFetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.HDXConfig{
		Site:      server.URL,
		Timeout:   5 * time.Second,
		RateLimit: 100,
		UserAgent: "hdx-schema-test",
	}
	return NewHTTPMetadataFetcher(cfg, logger.Nop())
}

func TestFetchDataset(t *testing.T) {
	var gotPath, gotID, gotAgent string
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotID = r.URL.Query().Get("id")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(datasetBody))
	})

	ds, err := fetcher.FetchDataset(context.Background(), "test-dataset")
	require.NoError(t, err)

	assert.Equal(t, "/api/3/action/package_show", gotPath)
	assert.Equal(t, "test-dataset", gotID)
	assert.Equal(t, "hdx-schema-test", gotAgent)
	assert.Equal(t, "test-dataset", ds.Name)
	require.Len(t, ds.Resources, 1)
	assert.Equal(t, models.KindTabular, ds.Resources[0].Kind)
}

func TestFetchDatasetNotFound(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success": false, "error": {"__type": "Not Found Error", "message": "Not found"}}`))
	})

	_, err := fetcher.FetchDataset(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}

func TestFetchDatasetSuccessFalse(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": {"__type": "Not Found Error", "message": "Not found"}}`))
	})

	_, err := fetcher.FetchDataset(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestFetchDatasetServerError(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := fetcher.FetchDataset(context.Background(), "any")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSourceNotFound))
	assert.Contains(t, err.Error(), "502")
}

func TestFetchDatasetCancelledContext(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(datasetBody))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.FetchDataset(ctx, "test-dataset")
	assert.Error(t, err)
}

type stubFetcher struct {
	calls []string
}

func (s *stubFetcher) FetchDataset(ctx context.Context, id string) (*models.Dataset, error) {
	s.calls = append(s.calls, id)
	return &models.Dataset{Name: id}, nil
}

func TestSourceLoaderPrefersLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(datasetBody), 0o644))

	stub := &stubFetcher{}
	loader := NewSourceLoader(stub, logger.Nop())

	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "test-dataset", ds.Name)
	assert.Empty(t, stub.calls)
}

func TestSourceLoaderFallsBackToCatalog(t *testing.T) {
	stub := &stubFetcher{}
	loader := NewSourceLoader(stub, logger.Nop())

	ds, err := loader.Load(context.Background(), "some-dataset-name")
	require.NoError(t, err)
	assert.Equal(t, "some-dataset-name", ds.Name)
	assert.Equal(t, []string{"some-dataset-name"}, stub.calls)
}

func TestSourceLoaderBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewSourceLoader(nil, logger.Nop()).Load(context.Background(), path)
	assert.Error(t, err)
}

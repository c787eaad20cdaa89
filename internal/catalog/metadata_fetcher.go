package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/hdx-stable-schema/internal/common/config"
	"github.com/hdx-stable-schema/internal/common/logger"
	"github.com/hdx-stable-schema/pkg/hdx/models"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4096
)

// HTTPMetadataFetcher reads dataset metadata from a CKAN package_show
// endpoint.
type HTTPMetadataFetcher struct {
	apiBase   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	logger    logger.Logger
}

func NewHTTPMetadataFetcher(cfg config.HDXConfig, logger logger.Logger) *HTTPMetadataFetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &HTTPMetadataFetcher{
		apiBase:   cfg.APIBase(),
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (f *HTTPMetadataFetcher) FetchDataset(ctx context.Context, id string) (*models.Dataset, error) {
	endpoint := fmt.Sprintf("%s/package_show?id=%s", f.apiBase, url.QueryEscape(id))

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	f.logger.Debug("Fetching metadata", "url", endpoint, "dataset", id)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("Failed to execute request", "url", endpoint, "error", err)
		return nil, fmt.Errorf("executing request to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}

	if resp.StatusCode != http.StatusOK {
		// Try to read the response body for error details
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		f.logger.Error("API returned error status",
			"status_code", resp.StatusCode,
			"url", endpoint,
			"response_body", string(body))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var envelope struct {
		Success bool             `json:"success"`
		Error   *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if !envelope.Success {
		if envelope.Error != nil && envelope.Error.Type == "Not Found Error" {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, id)
		}
		f.logger.Error("API returned success=false", "url", endpoint, "error_body", envelope.Error)
		return nil, fmt.Errorf("API returned success=false for dataset %s", id)
	}

	dataset, err := models.DecodeDataset(body)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Metadata fetched successfully",
		"dataset", dataset.Name,
		"resources", len(dataset.Resources))

	return dataset, nil
}

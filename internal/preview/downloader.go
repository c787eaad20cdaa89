package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hdx-stable-schema/internal/common/logger"
)

// Downloader copies a remote resource to a local path.
type Downloader interface {
	Download(ctx context.Context, url string, destPath string) error
}

type HTTPDownloader struct {
	client    *http.Client
	userAgent string
	logger    logger.Logger
}

func NewHTTPDownloader(timeout time.Duration, userAgent string, logger logger.Logger) *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Download fetches url into destPath. The body is staged in a temp file
// beside destPath and renamed into place only once fully read.
func (d *HTTPDownloader) Download(ctx context.Context, url string, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	d.logger.Debug("Requesting resource", "url", url)
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: %s returned %d", ErrResourceNotFound, url, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, url)
	}

	body := &progressReader{r: resp.Body, total: resp.ContentLength, logger: d.logger, url: url}
	if err := stageFile(destPath, body); err != nil {
		return err
	}

	d.logger.Debug("Resource downloaded", "url", url, "dest", destPath, "size_bytes", body.read)
	return nil
}

// stageFile copies r to a temp file in destPath's directory, then renames
// it to destPath. The temp file never outlives the call.
func stageFile(destPath string, r io.Reader) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "hdx_download_*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return fmt.Errorf("downloading file: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("moving file to destination: %w", err)
	}
	return nil
}

// progressReader counts bytes and logs progress at most every five seconds.
type progressReader struct {
	r       io.Reader
	total   int64
	read    int64
	lastLog time.Time
	logger  logger.Logger
	url     string
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.lastLog.IsZero() {
		p.lastLog = time.Now()
	}
	if p.total > 0 && time.Since(p.lastLog) > 5*time.Second {
		p.logger.Debug("Download progress",
			"url", p.url,
			"progress_percent", fmt.Sprintf("%.1f", float64(p.read)/float64(p.total)*100),
			"bytes_downloaded", p.read,
			"total_bytes", p.total)
		p.lastLog = time.Now()
	}
	return n, err
}

package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/hdx-stable-schema/internal/common/logger"
	"github.com/hdx-stable-schema/pkg/hdx/models"
)

// SourceLoader resolves a source to a dataset: an existing local file is
// read directly, anything else is treated as a dataset id or name and looked
// up through the fetcher.
type SourceLoader struct {
	fetcher MetadataFetcher
	logger  logger.Logger
}

func NewSourceLoader(fetcher MetadataFetcher, logger logger.Logger) *SourceLoader {
	return &SourceLoader{fetcher: fetcher, logger: logger}
}

func (l *SourceLoader) Load(ctx context.Context, source string) (*models.Dataset, error) {
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		return l.loadFile(source)
	}
	if l.fetcher == nil {
		return nil, fmt.Errorf("%w: %s is not a local file", ErrSourceNotFound, source)
	}
	return l.fetcher.FetchDataset(ctx, source)
}

func (l *SourceLoader) loadFile(path string) (*models.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}

	dataset, err := models.DecodeDataset(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Info("Metadata read from file",
		"path", path,
		"dataset", dataset.Name,
		"resources", len(dataset.Resources))

	return dataset, nil
}

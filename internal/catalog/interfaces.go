package catalog

import (
	"context"
	"errors"

	"github.com/hdx-stable-schema/pkg/hdx/models"
)

// ErrSourceNotFound is returned when a dataset id has no match in the
// catalogue.
var ErrSourceNotFound = errors.New("dataset not found")

type MetadataFetcher interface {
	FetchDataset(ctx context.Context, id string) (*models.Dataset, error)
}

type Loader interface {
	Load(ctx context.Context, source string) (*models.Dataset, error)
}

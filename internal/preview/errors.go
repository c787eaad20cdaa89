package preview

import (
	"errors"
	"fmt"

	"github.com/hdx-stable-schema/pkg/hdx/models"
)

// StatusSuccess is the status reported when rows were read.
const StatusSuccess = "Success"

var (
	ErrResourceNotFound  = errors.New("resource not found")
	ErrParse             = errors.New("resource could not be parsed")
	ErrDecode            = errors.New("resource is not valid UTF-8")
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrAmbiguousSheet is returned for a multi-sheet HXLated resource when
	// no sheet was named.
	ErrAmbiguousSheet = errors.New("more than one sheet and no sheet name given")
)

// Status turns a fetch error into the message shown for the resource.
func Status(res *models.Resource, err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrResourceNotFound):
		return fmt.Sprintf("Resource not found for URL %s", res.DownloadURL)
	case errors.Is(err, ErrParse):
		return fmt.Sprintf("Resource could not be parsed for URL %s", res.DownloadURL)
	case errors.Is(err, ErrDecode):
		return fmt.Sprintf("Unicode error for URL %s", res.DownloadURL)
	case errors.Is(err, ErrUnsupportedFormat):
		return fmt.Sprintf("Data in file format %s not supported", res.Format)
	case errors.Is(err, ErrAmbiguousSheet):
		return fmt.Sprintf("Resource '%s' has more than one sheet, choose one with --sheet", res.Name)
	default:
		return fmt.Sprintf("Unknown failure for resource_name '%s' with download_url %s", res.Name, res.DownloadURL)
	}
}

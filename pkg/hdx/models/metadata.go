package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Success sentinels written by the HDX check pipelines.
const (
	FSCheckCompleted   = "File structure check completed"
	ShapeImportSuccess = "Import successful"
)

// ResourceKind tags which check history a resource carries.
type ResourceKind int

const (
	KindNone ResourceKind = iota
	KindTabular
	KindGeospatial
)

func (k ResourceKind) String() string {
	switch k {
	case KindTabular:
		return "tabular"
	case KindGeospatial:
		return "geospatial"
	default:
		return "none"
	}
}

// DatasetResponse is the envelope returned by CKAN package_show
type DatasetResponse struct {
	Help    string    `json:"help"`
	Success bool      `json:"success"`
	Result  *Dataset  `json:"result"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// Dataset is an HDX dataset (CKAN package) with its resources.
type Dataset struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Title     string     `json:"title"`
	Resources []Resource `json:"resources"`
}

// Resource is one downloadable file of a dataset. Exactly one of FSChecks
// and ShapeChecks is populated, as indicated by Kind.
type Resource struct {
	ID           string
	Name         string
	Format       string
	DownloadURL  string
	InQuarantine bool
	Kind         ResourceKind
	FSChecks     []FSCheck
	ShapeChecks  []ShapeCheck
}

// FSCheck is one run of the file structure check on a tabular resource.
type FSCheck struct {
	Timestamp    CustomTime    `json:"timestamp"`
	State        string        `json:"state"`
	Message      string        `json:"message"`
	Sheets       []Sheet       `json:"-"`
	SheetChanges []SheetChange `json:"sheet_changes"`
}

// Complete reports whether the check finished successfully
func (c FSCheck) Complete() bool {
	return c.Message == FSCheckCompleted
}

type Sheet struct {
	Name        string   `json:"name"`
	IsHidden    bool     `json:"is_hidden"`
	NRows       int      `json:"nrows"`
	NCols       int      `json:"ncols"`
	HeaderHash  string   `json:"header_hash"`
	HashtagHash string   `json:"hashtag_hash"`
	Headers     []string `json:"headers"`
	HXLHeaders  []string `json:"hxl_headers"`
	IsHXLated   bool     `json:"is_hxlated"`
}

type SheetChange struct {
	Name          string        `json:"name,omitempty"`
	ChangedFields []FieldChange `json:"changed_fields"`
}

type FieldChange struct {
	Field string          `json:"field"`
	Old   json.RawMessage `json:"old,omitempty"`
	New   json.RawMessage `json:"new,omitempty"`
}

// ShapeCheck is one run of the geospatial import on a shape resource.
type ShapeCheck struct {
	Timestamp   CustomTime   `json:"timestamp"`
	State       string       `json:"state"`
	Message     string       `json:"message"`
	LayerFields []LayerField `json:"layer_fields"`
	BoundingBox string       `json:"bounding_box"`
}

// Complete reports whether the import succeeded
func (c ShapeCheck) Complete() bool {
	return c.Message == ShapeImportSuccess
}

type LayerField struct {
	FieldName string `json:"field_name"`
	DataType  string `json:"data_type"`
}

// FieldNames returns the layer field names in order
func (c ShapeCheck) FieldNames() []string {
	names := make([]string, 0, len(c.LayerFields))
	for _, f := range c.LayerFields {
		names = append(names, f.FieldName)
	}
	return names
}

// rawResource mirrors the CKAN resource record. fs_check_info and
// shape_info arrive as JSON documents encoded inside strings.
type rawResource struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Format       string          `json:"format"`
	DownloadURL  string          `json:"download_url"`
	URL          string          `json:"url"`
	InQuarantine flexBool        `json:"in_quarantine"`
	FSCheckInfo  json.RawMessage `json:"fs_check_info"`
	ShapeInfo    json.RawMessage `json:"shape_info"`
}

type rawFSCheck struct {
	FSCheck
	HXLProxyResponse struct {
		Sheets []rawSheet `json:"sheets"`
	} `json:"hxl_proxy_response"`
}

type rawSheet struct {
	Sheet
	HXLHeaders []*string `json:"hxl_headers"`
}

func (r *Resource) UnmarshalJSON(b []byte) error {
	var raw rawResource
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = Resource{
		ID:           raw.ID,
		Name:         raw.Name,
		Format:       raw.Format,
		DownloadURL:  raw.DownloadURL,
		InQuarantine: bool(raw.InQuarantine),
	}
	if r.DownloadURL == "" {
		r.DownloadURL = raw.URL
	}

	var shapeChecks []ShapeCheck
	if err := decodeEmbedded(raw.ShapeInfo, &shapeChecks); err != nil {
		return fmt.Errorf("decoding shape_info for resource %q: %w", raw.Name, err)
	}
	if len(shapeChecks) > 0 {
		r.Kind = KindGeospatial
		r.ShapeChecks = shapeChecks
		return nil
	}

	var fsChecks []rawFSCheck
	if err := decodeEmbedded(raw.FSCheckInfo, &fsChecks); err != nil {
		return fmt.Errorf("decoding fs_check_info for resource %q: %w", raw.Name, err)
	}
	if len(fsChecks) > 0 {
		r.Kind = KindTabular
		r.FSChecks = make([]FSCheck, 0, len(fsChecks))
		for _, rc := range fsChecks {
			check := rc.FSCheck
			for _, rs := range rc.HXLProxyResponse.Sheets {
				check.Sheets = append(check.Sheets, rs.normalise())
			}
			r.FSChecks = append(r.FSChecks, check)
		}
	}
	return nil
}

// normalise aligns hxl_headers with headers and turns nulls into "".
func (rs rawSheet) normalise() Sheet {
	sheet := rs.Sheet
	sheet.HXLHeaders = make([]string, len(sheet.Headers))
	for i := range sheet.HXLHeaders {
		if i < len(rs.HXLHeaders) && rs.HXLHeaders[i] != nil {
			sheet.HXLHeaders[i] = *rs.HXLHeaders[i]
		}
	}
	return sheet
}

// decodeEmbedded accepts either a JSON string holding a document or the
// document itself. Empty and null input leave v untouched.
func decodeEmbedded(data json.RawMessage, v interface{}) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		if inner == "" {
			return nil
		}
		data = []byte(inner)
	}
	return json.Unmarshal(data, v)
}

// flexBool accepts true/false as booleans or strings
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = flexBool(t)
	case string:
		*b = flexBool(t == "true" || t == "True")
	default:
		*b = false
	}
	return nil
}

// DecodeDataset accepts a package_show envelope or a bare dataset document.
func DecodeDataset(data []byte) (*Dataset, error) {
	var resp DatasetResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding dataset metadata: %w", err)
	}
	if resp.Result != nil {
		return resp.Result, nil
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decoding dataset metadata: %w", err)
	}
	if ds.Name == "" && len(ds.Resources) == 0 {
		return nil, fmt.Errorf("decoding dataset metadata: no result and no resources")
	}
	return &ds, nil
}

// Resource returns the named resource, or nil
func (d *Dataset) Resource(name string) *Resource {
	for i := range d.Resources {
		if d.Resources[i].Name == name {
			return &d.Resources[i]
		}
	}
	return nil
}

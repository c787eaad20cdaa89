// Package schema derives per-resource schemas from HDX check histories,
// groups resources that share a header list, summarises resources and
// infers column types from previewed rows.
package schema

import (
	"errors"
	"slices"

	"github.com/hdx-stable-schema/internal/common/logger"
	"github.com/hdx-stable-schema/pkg/hdx/models"
)

// ShapefileSheet names the single implicit sheet of a geospatial resource.
const ShapefileSheet = "__shapefile__"

// Schema is a header list shared by one or more resources. The first
// resource to produce HeaderHash owns the header, label and type content;
// later ones only extend SharedWith.
type Schema struct {
	HeaderHash string    `json:"header_hash" yaml:"header_hash"`
	SheetName  string    `json:"sheet_name" yaml:"sheet_name"`
	SharedWith []string  `json:"shared_with" yaml:"shared_with"`
	Headers    []string  `json:"headers" yaml:"headers"`
	HXLHeaders []string  `json:"hxl_headers" yaml:"hxl_headers"`
	DataTypes  []TypeTag `json:"data_types" yaml:"data_types"`
}

func (s *Schema) addResource(name string) {
	if !slices.Contains(s.SharedWith, name) {
		s.SharedWith = append(s.SharedWith, name)
	}
}

// ApplyInferredTypes fills empty data type placeholders from inferred
// column types. Columns already typed are left alone.
func (s *Schema) ApplyInferredTypes(types map[string]TypeTag) {
	for i, header := range s.Headers {
		if s.DataTypes[i] != "" {
			continue
		}
		if tag, ok := types[header]; ok {
			s.DataTypes[i] = tag
		}
	}
}

// Schemas maps header hash to schema, remembering discovery order.
type Schemas struct {
	byHash map[string]*Schema
	order  []string
}

func newSchemas() *Schemas {
	return &Schemas{byHash: make(map[string]*Schema)}
}

// Get returns the schema for hash, or nil
func (s *Schemas) Get(hash string) *Schema {
	return s.byHash[hash]
}

// Len returns the number of distinct schemas
func (s *Schemas) Len() int {
	return len(s.order)
}

// All returns schemas in the order their hash was first seen
func (s *Schemas) All() []*Schema {
	out := make([]*Schema, 0, len(s.order))
	for _, hash := range s.order {
		out = append(out, s.byHash[hash])
	}
	return out
}

// ForResource returns every schema the named resource contributes to
func (s *Schemas) ForResource(name string) []*Schema {
	var out []*Schema
	for _, schema := range s.All() {
		if slices.Contains(schema.SharedWith, name) {
			out = append(out, schema)
		}
	}
	return out
}

func (s *Schemas) add(resource, sheetName string, headers, hxlHeaders []string, dataTypes []TypeTag) *Schema {
	hash := HeaderHash(headers)
	if existing, ok := s.byHash[hash]; ok {
		existing.addResource(resource)
		return existing
	}
	schema := &Schema{
		HeaderHash: hash,
		SheetName:  sheetName,
		SharedWith: []string{resource},
		Headers:    slices.Clone(headers),
		HXLHeaders: alignStrings(hxlHeaders, len(headers)),
		DataTypes:  alignTypes(dataTypes, len(headers)),
	}
	s.byHash[hash] = schema
	s.order = append(s.order, hash)
	return schema
}

// Deriver builds Schemas from a dataset.
type Deriver struct {
	logger logger.Logger
}

func NewDeriver(logger logger.Logger) *Deriver {
	return &Deriver{logger: logger}
}

// DeriveSchemas groups the sheets and layers of every resource by header
// hash. Resources without a complete check are skipped.
func (d *Deriver) DeriveSchemas(dataset *models.Dataset) *Schemas {
	schemas := newSchemas()
	for i := range dataset.Resources {
		res := &dataset.Resources[i]
		switch res.Kind {
		case models.KindTabular:
			d.addTabular(schemas, res)
		case models.KindGeospatial:
			d.addGeospatial(schemas, res)
		case models.KindNone:
			d.logger.Debug("Resource has no check history", "resource", res.Name)
		}
	}
	d.logger.Debug("Derived schemas", "dataset", dataset.Name, "schemas", schemas.Len())
	return schemas
}

func (d *Deriver) addTabular(schemas *Schemas, res *models.Resource) {
	check, err := LatestFSCheck(res)
	if err != nil {
		d.logger.Warn("Skipping resource for schema derivation", "resource", res.Name, "error", err)
		return
	}
	for _, sheet := range check.Sheets {
		schema := schemas.add(res.Name, sheet.Name, sheet.Headers, sheet.HXLHeaders, nil)
		if sheet.HeaderHash != "" && sheet.HeaderHash != schema.HeaderHash {
			d.logger.Debug("Computed header hash differs from stored hash",
				"resource", res.Name,
				"sheet", sheet.Name,
				"stored", sheet.HeaderHash,
				"computed", schema.HeaderHash)
		}
	}
}

func (d *Deriver) addGeospatial(schemas *Schemas, res *models.Resource) {
	check, err := LatestShapeCheck(res)
	if err != nil {
		d.logger.Warn("Skipping resource for schema derivation", "resource", res.Name, "error", err)
		return
	}
	headers := check.FieldNames()
	dataTypes := make([]TypeTag, 0, len(check.LayerFields))
	for _, field := range check.LayerFields {
		tag, err := LookupShapeType(field.DataType)
		if errors.Is(err, ErrUnknownDataType) {
			d.logger.Warn("Unknown layer field data type",
				"resource", res.Name,
				"field", field.FieldName,
				"error", err)
		}
		dataTypes = append(dataTypes, tag)
	}
	schemas.add(res.Name, ShapefileSheet, headers, nil, dataTypes)
}

// DeriveSchemas is a convenience wrapper that discards log output.
func DeriveSchemas(dataset *models.Dataset) *Schemas {
	return NewDeriver(logger.Nop()).DeriveSchemas(dataset)
}

func alignStrings(values []string, n int) []string {
	out := make([]string, n)
	copy(out, values)
	return out
}

func alignTypes(values []TypeTag, n int) []TypeTag {
	out := make([]TypeTag, n)
	copy(out, values)
	return out
}

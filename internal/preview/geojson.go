package preview

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hdx-stable-schema/internal/schema"
)

const geometryColumn = "geometry"

type geoFeature struct {
	Properties json.RawMessage `json:"properties"`
	Geometry   *geoGeometry    `json:"geometry"`
}

type geoGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// readGeoJSON streams the features array of a FeatureCollection and reads
// the properties of at most limit features plus a geometry column.
func readGeoJSON(path string, limit int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceNotFound, err)
	}
	defer file.Close()

	return parseGeoJSON(bufio.NewReader(file), limit)
}

func parseGeoJSON(r io.Reader, limit int) (*Table, error) {
	dec := json.NewDecoder(r)
	if err := seekFeatures(dec); err != nil {
		return nil, err
	}

	var columns []string
	known := make(map[string]bool)
	var rows []schema.Row
	for dec.More() && (limit <= 0 || len(rows) < limit) {
		var feature geoFeature
		if err := dec.Decode(&feature); err != nil {
			return nil, fmt.Errorf("%w: decoding feature: %v", ErrParse, err)
		}
		keys, row, err := flattenProperties(feature.Properties)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if !known[k] {
				known[k] = true
				columns = append(columns, k)
			}
		}
		row[geometryColumn] = describeGeometry(feature.Geometry)
		rows = append(rows, row)
	}

	b := newBuilder(append(columns, geometryColumn), limit)
	for _, row := range rows {
		b.addRow(row)
	}
	return &b.table, nil
}

// seekFeatures advances dec to the first element of the top-level
// "features" array.
func seekFeatures(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: not a GeoJSON object", ErrParse)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		if key, _ := tok.(string); key == "features" {
			tok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrParse, err)
			}
			if delim, ok := tok.(json.Delim); !ok || delim != '[' {
				return fmt.Errorf("%w: features is not an array", ErrParse)
			}
			return nil
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
	}
	return fmt.Errorf("%w: no features array", ErrParse)
}

// flattenProperties returns property keys in document order and their
// values rendered as text. JSON nulls are left out.
func flattenProperties(raw json.RawMessage) ([]string, schema.Row, error) {
	row := make(schema.Row)
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, row, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, nil, fmt.Errorf("%w: properties is not an object", ErrParse)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		key, _ := tok.(string)
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		keys = append(keys, key)
		if text, ok := cellText(value); ok {
			row[key] = text
		}
	}
	return keys, row, nil
}

// cellText renders a decoded JSON value the way it reads in a table.
func cellText(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "True", true
		}
		return "False", true
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(out), true
	}
}

// describeGeometry gives points as WKT and other shapes by type name.
func describeGeometry(g *geoGeometry) string {
	if g == nil {
		return ""
	}
	if g.Type == "Point" {
		var xy []float64
		if err := json.Unmarshal(g.Coordinates, &xy); err == nil && len(xy) >= 2 {
			return fmt.Sprintf("POINT (%s %s)", formatCoord(xy[0]), formatCoord(xy[1]))
		}
	}
	return wktName(g.Type)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func wktName(geoType string) string {
	return strings.ToUpper(geoType)
}

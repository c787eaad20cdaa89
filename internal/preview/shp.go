package preview

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
)

// readShapefile reads the attribute table of a .shp (with its .dbf beside
// it) plus a geometry column.
func readShapefile(path string, limit int) (tbl *Table, err error) {
	defer func() {
		// go-shp panics on some truncated files
		if r := recover(); r != nil {
			tbl, err = nil, fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening shapefile: %v", ErrParse, err)
	}
	defer reader.Close()

	fields := reader.Fields()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = strings.TrimRight(f.String(), "\x00 ")
	}
	b := newBuilder(append(header, geometryColumn), limit)

	for !b.full() && reader.Next() {
		n, shape := reader.Shape()
		record := make([]string, 0, len(fields)+1)
		for i := range fields {
			record = append(record, strings.TrimSpace(strings.TrimRight(reader.ReadAttribute(n, i), "\x00")))
		}
		record = append(record, describeShape(shape))
		b.addRecord(record)
	}
	return &b.table, nil
}

func describeShape(shape shp.Shape) string {
	switch s := shape.(type) {
	case *shp.Point:
		return fmt.Sprintf("POINT (%s %s)", formatCoord(s.X), formatCoord(s.Y))
	case *shp.PolyLine:
		return "LINESTRING"
	case *shp.Polygon:
		return "POLYGON"
	case *shp.MultiPoint:
		return "MULTIPOINT"
	case *shp.Null, nil:
		return ""
	default:
		return strings.ToUpper(strings.TrimPrefix(fmt.Sprintf("%T", shape), "*shp."))
	}
}

package preview

import (
	"fmt"
	"strings"

	"github.com/hdx-stable-schema/internal/schema"
)

// Table is a bounded set of previewed rows with its column order.
type Table struct {
	Columns []string
	Rows    []schema.Row
}

// builder accumulates rows up to a limit.
type builder struct {
	table Table
	limit int
}

func newBuilder(header []string, limit int) *builder {
	return &builder{
		table: Table{Columns: uniqueColumns(header)},
		limit: limit,
	}
}

func (b *builder) full() bool {
	return b.limit > 0 && len(b.table.Rows) >= b.limit
}

// addRecord maps a positional record onto the columns. Cells past the end
// of a short record are left out and so read as null.
func (b *builder) addRecord(record []string) {
	row := make(schema.Row, len(b.table.Columns))
	for i, column := range b.table.Columns {
		if i < len(record) {
			row[column] = record[i]
		}
	}
	b.table.Rows = append(b.table.Rows, row)
}

func (b *builder) addRow(row schema.Row) {
	b.table.Rows = append(b.table.Rows, row)
}

// uniqueColumns names blank headers "Unnamed: i" and suffixes repeats with
// ".1", ".2" and so on.
func uniqueColumns(header []string) []string {
	used := make(map[string]bool, len(header))
	repeats := make(map[string]int)
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			repeats[h]++
			name = fmt.Sprintf("%s.%d", h, repeats[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

package schema

import "time"

// Row is one previewed record, column name to cell text. A column missing
// from a row is treated as null.
type Row map[string]string

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"20060102T150405",
	"20060102",
}

type inferConfig struct {
	nulls  map[string]bool
	strict bool
}

// InferOption tunes InferTypes and InferColumnType.
type InferOption func(*inferConfig)

// WithNullEquivalents replaces the default null set {""}. Missing cells are
// always null.
func WithNullEquivalents(values ...string) InferOption {
	return func(c *inferConfig) {
		c.nulls = make(map[string]bool, len(values))
		for _, v := range values {
			c.nulls[v] = true
		}
	}
}

// WithStrict resolves any column holding more than one tag to string.
func WithStrict(strict bool) InferOption {
	return func(c *inferConfig) {
		c.strict = strict
	}
}

func newInferConfig(opts []InferOption) *inferConfig {
	cfg := &inferConfig{nulls: map[string]bool{"": true}}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// InferTypes infers a type for every column named in the first row.
func InferTypes(rows []Row, opts ...InferOption) map[string]TypeTag {
	types := make(map[string]TypeTag)
	if len(rows) == 0 {
		return types
	}
	for column := range rows[0] {
		values := make([]*string, 0, len(rows))
		for _, row := range rows {
			if v, ok := row[column]; ok {
				values = append(values, &v)
			} else {
				values = append(values, nil)
			}
		}
		types[column] = inferColumn(values, newInferConfig(opts))
	}
	return types
}

// InferColumnType infers the type of a single column of cell values.
func InferColumnType(values []string, opts ...InferOption) TypeTag {
	ptrs := make([]*string, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	return inferColumn(ptrs, newInferConfig(opts))
}

func inferColumn(values []*string, cfg *inferConfig) TypeTag {
	counts := make(map[TypeTag]int)
	var seen []TypeTag
	for _, v := range values {
		if v == nil || cfg.nulls[*v] {
			continue
		}
		tag := sniff(*v)
		if counts[tag] == 0 {
			seen = append(seen, tag)
		}
		counts[tag]++
	}

	switch {
	case cfg.strict && len(counts) > 1:
		return TypeString
	case len(counts) == 2 && counts[TypeInteger] > 0 && counts[TypeFloat] > 0:
		return TypeFloat
	case len(counts) == 0:
		return TypeString
	}

	best := seen[0]
	for _, tag := range seen[1:] {
		if counts[tag] > counts[best] {
			best = tag
		}
	}
	return best
}

// sniff classifies one cell: literal, then date, then datetime, else string.
func sniff(value string) TypeTag {
	if tag, ok := ParseLiteral(value); ok {
		return tag
	}
	if _, err := time.Parse("2006-1-2", value); err == nil {
		return TypeDate
	}
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return TypeDateTime
		}
	}
	return TypeString
}

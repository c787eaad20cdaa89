package schema

// DictionaryRow is one line of a data dictionary.
type DictionaryRow struct {
	Column      string
	Type        string
	Label       string
	Description string
}

// DataDictionary lists a schema column by column. Description is left empty;
// HDX does not publish per-column descriptions.
func DataDictionary(s *Schema) []DictionaryRow {
	rows := make([]DictionaryRow, 0, len(s.Headers))
	for i, header := range s.Headers {
		rows = append(rows, DictionaryRow{
			Column: header,
			Type:   string(s.DataTypes[i]),
			Label:  s.HXLHeaders[i],
		})
	}
	return rows
}

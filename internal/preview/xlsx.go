package preview

import (
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the named sheet, or the first one when sheet is empty.
func readXLSX(path, sheet string, limit int) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: sheet %q not in workbook %v", ErrResourceNotFound, sheet, sheets)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrParse, sheet, err)
	}
	defer rows.Close()

	var b *builder
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrParse, sheet, err)
		}
		if b == nil {
			b = newBuilder(record, limit)
			continue
		}
		if b.full() {
			break
		}
		b.addRecord(record)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrParse, sheet)
	}
	return &b.table, nil
}

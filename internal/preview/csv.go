package preview

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const utf8BOM = "\ufeff"

// readCSV reads the header and at most limit records.
func readCSV(path string, limit int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceNotFound, err)
	}
	defer file.Close()

	return parseCSV(bufio.NewReader(file), limit)
}

func parseCSV(r io.Reader, limit int) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Variable number of fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrParse, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	if err := checkUTF8(header); err != nil {
		return nil, err
	}

	b := newBuilder(header, limit)
	for !b.full() {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading record: %v", ErrParse, err)
		}
		if err := checkUTF8(record); err != nil {
			return nil, err
		}
		b.addRecord(record)
	}
	return &b.table, nil
}

func checkUTF8(record []string) error {
	for _, field := range record {
		if !utf8.ValidString(field) {
			return fmt.Errorf("%w: %q", ErrDecode, field)
		}
	}
	return nil
}

// Package dataset reads event tables and reads, writes and splits JSON Lines
// description files.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c360studio/semevents/event"
)

// DefaultSeparator is the field separator of ground-truth tables.
const DefaultSeparator = '\t'

const utf8BOM = "\ufeff"

// ReadTable reads a delimited table with a header row.
// Any failure to open or parse the file wraps ErrTableUnreadable so callers can
// skip the input and continue.
func ReadTable(path string, sep rune) ([]event.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTableUnreadable, err)
	}
	defer f.Close()

	rows, err := DecodeTable(f, sep)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTableUnreadable, path, err)
	}
	return rows, nil
}

// DecodeTable parses a delimited table from r. Short rows leave their trailing
// columns missing; extra cells are ignored.
func DecodeTable(r io.Reader, sep rune) ([]event.Row, error) {
	if sep == 0 {
		sep = DefaultSeparator
	}

	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var rows []event.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}

		row := make(event.Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseSeparator converts a configured separator such as "\t", "tab" or ";"
// into a rune.
func ParseSeparator(s string) (rune, error) {
	switch s {
	case "", `\t`, "\t", "tab":
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	return runes[0], nil
}

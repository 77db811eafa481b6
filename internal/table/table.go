// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table reads and writes the delimited record tables that flow
// between the fetch and filter stages.
//
// Input files often come from spreadsheet exports, so a leading UTF-8 byte
// order mark is stripped and rows shorter or longer than the header are
// accepted. Output files are written to a temporary sibling and renamed
// into place, so a failed run never leaves a half-written result.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdiddy/wos-filter/pkg/types"
)

// NameColumn is the column holding full names in a PI name list.
const NameColumn = "Name"

// Default delimiters for record tables and name lists.
const (
	DefaultDelimiter      = ','
	DefaultNamesDelimiter = ';'
)

var (
	// ErrMissingNameColumn is returned when a name list has no Name column.
	ErrMissingNameColumn = errors.New("name list has no Name column")

	// ErrEmptyHeader is returned when an input file has no header row.
	ErrEmptyHeader = errors.New("table has no header row")
)

// ParseDelimiter converts a configured delimiter string to a rune. An empty
// string yields def; "\t" and "tab" select a tab.
func ParseDelimiter(s string, def rune) (rune, error) {
	switch s {
	case "":
		return def, nil
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// ReadCSV parses a delimited table from r. The first row is the header.
// Header cells are trimmed; a blank header cell is named "column_<n>".
// Duplicate header names keep their first occurrence.
func ReadCSV(r io.Reader, delimiter rune) (*types.Table, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		cols[i] = h
	}

	t := &types.Table{Columns: dedupe(cols)}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		if blankRow(row) {
			continue
		}
		rec := make(types.Record, len(cols))
		for i, c := range cols {
			if _, seen := rec[c]; seen {
				continue
			}
			if i < len(row) {
				rec[c] = row[i]
			} else {
				rec[c] = ""
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// ReadCSVFile opens path and calls ReadCSV.
func ReadCSVFile(path string, delimiter rune) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DropEmptyColumns removes columns whose value is blank in every record.
// Records keep their values; only the header shrinks.
func DropEmptyColumns(t *types.Table) {
	if t == nil {
		return
	}
	kept := t.Columns[:0:0]
	for _, c := range t.Columns {
		for _, rec := range t.Records {
			if strings.TrimSpace(rec[c]) != "" {
				kept = append(kept, c)
				break
			}
		}
	}
	t.Columns = kept
}

// LoadNameList reads the Name column of a delimited name list. The header
// match ignores case and surrounding space. Names are returned in file
// order; blanks are skipped.
func LoadNameList(path string, delimiter rune) ([]string, error) {
	if delimiter == 0 {
		delimiter = DefaultNamesDelimiter
	}
	t, err := ReadCSVFile(path, delimiter)
	if err != nil {
		return nil, err
	}

	col := ""
	for _, c := range t.Columns {
		if strings.EqualFold(c, NameColumn) {
			col = c
			break
		}
	}
	if col == "" {
		return nil, fmt.Errorf("%s: %w (columns: %s)", path, ErrMissingNameColumn, strings.Join(t.Columns, ", "))
	}

	var names []string
	for _, rec := range t.Records {
		if n := strings.TrimSpace(rec[col]); n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}

// WriteCSV writes header and rows to w as comma-separated values.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}

// WriteCSVFile writes header and rows to path, creating parent directories.
// The data goes to a temporary file in the same directory which is renamed
// over path once complete.
func WriteCSVFile(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, header, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// WriteTableFile writes t with its own header.
func WriteTableFile(path string, t *types.Table) error {
	rows := make([][]string, 0, t.Len())
	if t != nil {
		for _, rec := range t.Records {
			row := make([]string, len(t.Columns))
			for i, c := range t.Columns {
				row[i] = rec.Get(c)
			}
			rows = append(rows, row)
		}
	}
	var cols []string
	if t != nil {
		cols = t.Columns
	}
	return WriteCSVFile(path, cols, rows)
}

// WriteAnnotated writes annotated records with the table's columns plus the
// annotation columns.
func WriteAnnotated(path string, columns []string, recs []types.AnnotatedRecord, withPI bool) error {
	rows := make([][]string, len(recs))
	for i, a := range recs {
		rows[i] = a.Row(columns, withPI)
	}
	return WriteCSVFile(path, types.OutputColumns(columns, withPI), rows)
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func dedupe(cols []string) []string {
	seen := make(map[string]bool, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

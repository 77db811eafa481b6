// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the wos-filter pipeline:
// the record table handed between fetch, filter and output stages, the
// keyword rule set, match results, and stage configuration.
package types

import "strings"

// Record is one row of the input table, keyed by column name. Column order
// is carried by the owning Table. Records are treated as read-only once
// loaded; classification produces an AnnotatedRecord instead of mutating.
type Record map[string]string

// Get returns the value for column, or "" if the column is absent.
func (r Record) Get(column string) string {
	return r[column]
}

// Table is an ordered set of records sharing a header.
type Table struct {
	// Columns lists the header in file order.
	Columns []string `json:"columns" yaml:"columns"`

	// Records holds the rows in file order.
	Records []Record `json:"records" yaml:"records"`
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HasColumn reports whether the header contains column.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Output column names appended to accepted and PI-matched records.
const (
	ColumnMatchedTerm     = "matched_term"
	ColumnMatchedSentence = "matched_sentence"
	ColumnPINames         = "pi_names_in_funding"
)

// PINameSeparator joins matched PI names in the output column.
const PINameSeparator = "; "

// AnnotatedRecord is an accepted record together with the include match
// that admitted it and, when a name list was supplied, the PI names found
// in its funding text.
type AnnotatedRecord struct {
	// Index is the zero-based row position in the input table.
	Index int `json:"index" yaml:"index"`

	// Record is the original, unmodified row.
	Record Record `json:"record" yaml:"record"`

	// MatchedTerm is the first include term (in declaration order) found.
	MatchedTerm string `json:"matched_term" yaml:"matched_term"`

	// MatchedSentence is the sentence containing that term's first occurrence.
	MatchedSentence string `json:"matched_sentence" yaml:"matched_sentence"`

	// PINames lists confirmed PI names in name-list order.
	PINames []string `json:"pi_names,omitempty" yaml:"pi_names,omitempty"`
}

// Row returns the record's values for columns followed by the annotation
// columns. When withPI is set the joined PI names are appended as well.
func (a AnnotatedRecord) Row(columns []string, withPI bool) []string {
	row := make([]string, 0, len(columns)+3)
	for _, c := range columns {
		row = append(row, a.Record.Get(c))
	}
	row = append(row, a.MatchedTerm, a.MatchedSentence)
	if withPI {
		row = append(row, strings.Join(a.PINames, PINameSeparator))
	}
	return row
}

// OutputColumns returns the header for annotated output rows.
func OutputColumns(columns []string, withPI bool) []string {
	out := make([]string, 0, len(columns)+3)
	out = append(out, columns...)
	out = append(out, ColumnMatchedTerm, ColumnMatchedSentence)
	if withPI {
		out = append(out, ColumnPINames)
	}
	return out
}

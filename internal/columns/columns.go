// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package columns decides which table columns feed keyword matching and
// joins a record's values for those columns into one text blob.
//
// Roles are derived from column names alone, so any export whose header
// follows the usual naming (Title, Abstract, FundingText, AuthorKeywords,
// WoSCategories...) works without a schema.
package columns

import (
	"strings"

	"github.com/pdiddy/wos-filter/pkg/types"
)

// SearchableMarkers are the case-insensitive name fragments that make a
// column searchable.
var SearchableMarkers = []string{"title", "abstract", "fund", "keyword", "ack"}

// CategoryMarker is the case-insensitive name fragment of category columns.
const CategoryMarker = "categor"

// FundingMarkers select the columns searched for PI names.
var FundingMarkers = []string{"fund", "ack"}

// Roles holds the columns selected for each purpose, in header order. A
// column may appear in more than one list.
type Roles struct {
	Searchable []string
	Category   []string
	Funding    []string
}

// Select classifies column names by role. It never fails: a role that no
// column satisfies is simply empty.
func Select(columns []string) Roles {
	var r Roles
	for _, c := range columns {
		lower := strings.ToLower(c)
		if containsAny(lower, SearchableMarkers) {
			r.Searchable = append(r.Searchable, c)
		}
		if strings.Contains(lower, CategoryMarker) {
			r.Category = append(r.Category, c)
		}
		if containsAny(lower, FundingMarkers) {
			r.Funding = append(r.Funding, c)
		}
	}
	return r
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// BuildText joins the record's values for cols, in the order given, with
// single spaces. Absent and blank values are skipped so they never leave
// doubled separators behind.
func BuildText(rec types.Record, cols []string) string {
	var b strings.Builder
	for _, c := range cols {
		v := strings.TrimSpace(rec.Get(c))
		if v == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v)
	}
	return b.String()
}

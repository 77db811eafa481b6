// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pi detects acknowledged principal investigators in funding text.
//
// Detection runs in two stages per name: a cheap case-insensitive check
// that the last name occurs at all, then a stricter check that the full
// name occurs with its tokens in order. Only names passing the first stage
// reach the second.
package pi

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/wos-filter/pkg/types"
)

// tokenSeparator joins name tokens in the confirmation pattern, so
// "Anna-Karin Berg" also matches "Anna Karin Berg" and vice versa.
const tokenSeparator = `[\s\-]+`

// Name is one entry of a NameList.
type Name struct {
	// Full is the name as listed, trimmed.
	Full string

	// Last is the final whitespace-delimited token, or Full if there is none.
	Last string

	lastLower string
	full      *regexp.Regexp
}

// NameList is an ordered, duplicate-free list of PI names. It is immutable
// once built and safe to share between goroutines.
type NameList struct {
	names []Name
}

// LastName returns the final whitespace-delimited segment of name.
func LastName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// NewNameList builds a NameList. Blank entries are dropped and repeated
// names keep their first position.
func NewNameList(names []string) (*NameList, error) {
	l := &NameList{}
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		full := strings.TrimSpace(raw)
		if full == "" || seen[full] {
			continue
		}
		seen[full] = true

		tokens := strings.FieldsFunc(full, isSeparator)
		if len(tokens) == 0 {
			continue
		}
		quoted := make([]string, len(tokens))
		for i, tok := range tokens {
			quoted[i] = regexp.QuoteMeta(tok)
		}
		re, err := regexp.Compile("(?i)" + strings.Join(quoted, tokenSeparator))
		if err != nil {
			return nil, fmt.Errorf("compiling name %q: %w", full, err)
		}

		last := LastName(full)
		l.names = append(l.names, Name{
			Full:      full,
			Last:      last,
			lastLower: strings.ToLower(last),
			full:      re,
		})
	}
	return l, nil
}

// Len returns the number of names.
func (l *NameList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Names returns the full names in list order.
func (l *NameList) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.names))
	for i, n := range l.names {
		out[i] = n.Full
	}
	return out
}

// Detect returns the names confirmed in text, in list order.
func (l *NameList) Detect(text string) types.PIMatchResult {
	if l == nil || strings.TrimSpace(text) == "" {
		return types.PIMatchResult{}
	}
	lower := strings.ToLower(text)

	var res types.PIMatchResult
	for _, n := range l.names {
		if !screen(n, lower) || !confirm(n, text) {
			continue
		}
		res.Names = append(res.Names, n.Full)
	}
	res.Matched = len(res.Names) > 0
	return res
}

func isSeparator(r rune) bool {
	return r == '-' || unicode.IsSpace(r)
}

// screen is stage one: the last name occurs anywhere in lowerText.
func screen(n Name, lowerText string) bool {
	return n.lastLower != "" && strings.Contains(lowerText, n.lastLower)
}

// confirm is stage two: every token of the full name occurs, in order,
// separated only by whitespace or hyphens.
func confirm(n Name, text string) bool {
	return n.full.MatchString(text)
}

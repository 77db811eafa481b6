// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match finds the first of an ordered list of terms in a text blob
// and extracts the sentence around it.
//
// Terms compare case-insensitively unless the term itself is written in
// mixed case (e.g. "SCoRe"), in which case only an exact-case occurrence
// counts. That keeps acronyms that collide with ordinary words ("score")
// from matching the word.
package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/wos-filter/pkg/types"
)

// ErrEmptyTerm is returned by Compile for a blank term.
var ErrEmptyTerm = errors.New("empty term")

// Options tunes matching for one term list.
type Options struct {
	// WholeWord only accepts hits not flanked by a letter, digit or underscore.
	WholeWord bool
}

type term struct {
	text          string
	caseSensitive bool
	re            *regexp.Regexp
}

// Matcher holds a compiled, ordered term list. It is immutable after
// Compile and safe for concurrent use.
type Matcher struct {
	terms     []term
	wholeWord bool
}

// IsCaseSensitive reports whether term must be matched with its exact
// capitalization: true when it differs from both its lower- and
// upper-cased forms.
func IsCaseSensitive(term string) bool {
	return term != strings.ToLower(term) && term != strings.ToUpper(term)
}

// Compile prepares terms for matching, preserving their order.
func Compile(terms []string, opts Options) (*Matcher, error) {
	m := &Matcher{wholeWord: opts.WholeWord}
	for i, t := range terms {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("term %d: %w", i, ErrEmptyTerm)
		}
		cs := IsCaseSensitive(t)
		pattern := regexp.QuoteMeta(t)
		if !cs {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling term %q: %w", t, err)
		}
		m.terms = append(m.terms, term{text: t, caseSensitive: cs, re: re})
	}
	return m, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// fixed term lists.
func MustCompile(terms []string, opts Options) *Matcher {
	m, err := Compile(terms, opts)
	if err != nil {
		panic(err)
	}
	return m
}

// Len returns the number of terms.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.terms)
}

// Terms returns the terms in declaration order.
func (m *Matcher) Terms() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.terms))
	for i, t := range m.terms {
		out[i] = t.text
	}
	return out
}

// CaseSensitiveTerms returns the terms matched with exact capitalization.
func (m *Matcher) CaseSensitiveTerms() []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, t := range m.terms {
		if t.caseSensitive {
			out = append(out, t.text)
		}
	}
	return out
}

// Match returns the first term, in declaration order, that occurs in text,
// together with the sentence holding its first occurrence. Later terms are
// not tried once one hits.
func (m *Matcher) Match(text string) types.MatchResult {
	if m == nil || text == "" {
		return types.MatchResult{}
	}
	for _, t := range m.terms {
		start, ok := m.find(t, text)
		if !ok {
			continue
		}
		return types.MatchResult{
			Matched:  true,
			Term:     t.text,
			Sentence: SentenceAt(text, start),
		}
	}
	return types.MatchResult{}
}

// Contains reports whether any term occurs in text.
func (m *Matcher) Contains(text string) bool {
	return m.Match(text).Matched
}

// find returns the byte offset of the first acceptable occurrence of t.
func (m *Matcher) find(t term, text string) (int, bool) {
	if !m.wholeWord {
		loc := t.re.FindStringIndex(text)
		if loc == nil {
			return 0, false
		}
		return loc[0], true
	}
	for _, loc := range t.re.FindAllStringIndex(text, -1) {
		if isBoundary(text, loc[0], loc[1]) {
			return loc[0], true
		}
	}
	return 0, false
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

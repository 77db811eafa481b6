// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentences splits text after each '.', '!' or '?' that is followed by
// whitespace or the end of text. Sentences are trimmed; empty ones dropped.
// Text without terminal punctuation is a single sentence.
func Sentences(text string) []string {
	var out []string
	start := 0
	for _, end := range sentenceEnds(text) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = end
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// SentenceAt returns the trimmed sentence of text that contains byte
// offset pos.
func SentenceAt(text string, pos int) string {
	start := 0
	for _, end := range sentenceEnds(text) {
		if pos < end {
			return strings.TrimSpace(text[start:end])
		}
		start = end
	}
	return strings.TrimSpace(text[start:])
}

// sentenceEnds returns the exclusive end offset of every sentence that is
// closed by terminal punctuation.
func sentenceEnds(text string) []int {
	var ends []int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
		default:
			continue
		}
		next := i + 1
		if next == len(text) {
			ends = append(ends, next)
			continue
		}
		r, _ := utf8.DecodeRuneInString(text[next:])
		if unicode.IsSpace(r) {
			ends = append(ends, next)
		}
	}
	return ends
}

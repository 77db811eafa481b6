// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wos-filter/pkg/types"
)

func mustList(t *testing.T, names ...string) *NameList {
	t.Helper()
	l, err := NewNameList(names)
	require.NoError(t, err)
	return l
}

func TestLastName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Jane A. Smith", "Smith"},
		{"  Anna-Karin   Berg ", "Berg"},
		{"Madonna", "Madonna"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LastName(tt.name))
		})
	}
}

func TestNewNameListDedupesAndTrims(t *testing.T) {
	l := mustList(t, " Jane A. Smith ", "", "Lars Berg", "Jane A. Smith", "   ")
	assert.Equal(t, []string{"Jane A. Smith", "Lars Berg"}, l.Names())
	assert.Equal(t, 2, l.Len())
}

func TestDetectLastNameOnlyFailsConfirmation(t *testing.T) {
	l := mustList(t, "Jane A. Smith")

	n := l.names[0]
	text := "We thank Smith for support."
	assert.True(t, screen(n, strings.ToLower(text)), "stage 1 should pass")
	assert.False(t, confirm(n, text), "stage 2 should fail")
	assert.Equal(t, types.PIMatchResult{}, l.Detect(text))
}

func TestDetectFullNameVerbatim(t *testing.T) {
	l := mustList(t, "Jane A. Smith")

	got := l.Detect("This work was supported by a grant to Jane A. Smith (VR 2020-01).")
	assert.Equal(t, types.PIMatchResult{Matched: true, Names: []string{"Jane A. Smith"}}, got)
}

func TestDetectCaseAndSeparators(t *testing.T) {
	l := mustList(t, "Anna-Karin Berg", "Lars Olsson")

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"upper case", "FUNDED BY ANNA-KARIN BERG", []string{"Anna-Karin Berg"}},
		{"hyphen as space", "thanks to Anna Karin Berg", []string{"Anna-Karin Berg"}},
		{"line break", "Lars\nOlsson acknowledges", []string{"Lars Olsson"}},
		{"hyphen between tokens", "Lars-Olsson", []string{"Lars Olsson"}},
		{"tokens out of order", "Olsson, Lars", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Detect(tt.text)
			assert.Equal(t, tt.want, got.Names)
			assert.Equal(t, len(tt.want) > 0, got.Matched)
		})
	}
}

func TestDetectListOrder(t *testing.T) {
	l := mustList(t, "Lars Olsson", "Jane Smith", "Per Holm")

	got := l.Detect("Jane Smith and Per Holm and Lars Olsson are thanked.")
	assert.Equal(t, []string{"Lars Olsson", "Jane Smith", "Per Holm"}, got.Names)
}

func TestDetectScreenRejectionIsFinal(t *testing.T) {
	l := mustList(t, "Jane Smith")
	// Without the last name in the text the name can never be reported.
	got := l.Detect("Jane received funding.")
	assert.False(t, got.Matched)
	assert.Empty(t, got.Names)
}

func TestDetectEmpty(t *testing.T) {
	var nilList *NameList
	assert.Equal(t, types.PIMatchResult{}, nilList.Detect("Jane Smith"))

	l := mustList(t, "Jane Smith")
	assert.Equal(t, types.PIMatchResult{}, l.Detect(""))
	assert.Equal(t, types.PIMatchResult{}, l.Detect("   "))

	empty := mustList(t)
	assert.Equal(t, types.PIMatchResult{}, empty.Detect("Jane Smith"))
}

func TestDetectRegexMetacharactersInName(t *testing.T) {
	l := mustList(t, "J. (Jack) O'Neil")
	assert.True(t, l.Detect("thanks to j. (jack) o'neil").Matched)
	assert.False(t, l.Detect("thanks to Jx (Jack) O'Neil").Matched)
}

func TestDetectIdempotent(t *testing.T) {
	l := mustList(t, "Jane Smith", "Lars Olsson")
	text := "Jane Smith, Lars Olsson"
	assert.Equal(t, l.Detect(text), l.Detect(text))
}

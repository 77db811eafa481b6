// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wos-filter/pkg/types"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter rune
		wantCols  []string
		wantRecs  []types.Record
	}{
		{
			name:     "plain",
			input:    "UT,Title\nWOS:1,Soil carbon\nWOS:2,\"Climate, water\"\n",
			wantCols: []string{"UT", "Title"},
			wantRecs: []types.Record{
				{"UT": "WOS:1", "Title": "Soil carbon"},
				{"UT": "WOS:2", "Title": "Climate, water"},
			},
		},
		{
			name:     "byte order mark stripped",
			input:    "\uFEFFUT,Title\nWOS:1,A\n",
			wantCols: []string{"UT", "Title"},
			wantRecs: []types.Record{{"UT": "WOS:1", "Title": "A"}},
		},
		{
			name:      "semicolon delimiter",
			input:     "Name;Dept\nJane Smith;Physics\n",
			delimiter: ';',
			wantCols:  []string{"Name", "Dept"},
			wantRecs:  []types.Record{{"Name": "Jane Smith", "Dept": "Physics"}},
		},
		{
			name:     "ragged rows",
			input:    "A,B,C\n1\n1,2,3,4\n",
			wantCols: []string{"A", "B", "C"},
			wantRecs: []types.Record{
				{"A": "1", "B": "", "C": ""},
				{"A": "1", "B": "2", "C": "3"},
			},
		},
		{
			name:     "blank header cells and duplicates",
			input:    " A ,,A\nx,y,z\n",
			wantCols: []string{"A", "column_2"},
			wantRecs: []types.Record{{"A": "x", "column_2": "y"}},
		},
		{
			name:     "blank rows skipped",
			input:    "A\nx\n\n , \ny\n",
			wantCols: []string{"A"},
			wantRecs: []types.Record{{"A": "x"}, {"A": "y"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input), tt.delimiter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, got.Columns)
			assert.Equal(t, tt.wantRecs, got.Records)
		})
	}
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), 0)
	assert.ErrorIs(t, err, ErrEmptyHeader)
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ',', false},
		{";", ';', false},
		{`\t`, '\t', false},
		{"tab", '\t', false},
		{"|", '|', false},
		{"ab", 0, true},
		{`"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in, ',')
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDropEmptyColumns(t *testing.T) {
	tbl := &types.Table{
		Columns: []string{"A", "B", "C"},
		Records: []types.Record{
			{"A": "1", "B": " ", "C": ""},
			{"A": "", "B": "", "C": "3"},
		},
	}
	DropEmptyColumns(tbl)
	assert.Equal(t, []string{"A", "C"}, tbl.Columns)
	assert.Equal(t, " ", tbl.Records[0]["B"])

	DropEmptyColumns(nil)
}

func TestLoadNameList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.csv")
	require.NoError(t, os.WriteFile(path, []byte("\uFEFFDept; name \nPhysics;Jane Smith\nBio;\nChem; Anna-Karin Berg \n"), 0o644))

	got, err := LoadNameList(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Smith", "Anna-Karin Berg"}, got)
}

func TestLoadNameListMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.csv")
	require.NoError(t, os.WriteFile(path, []byte("Person;Dept\nJane Smith;Physics\n"), 0o644))

	_, err := LoadNameList(path, 0)
	assert.ErrorIs(t, err, ErrMissingNameColumn)
	assert.Contains(t, err.Error(), "Person")
}

func TestLoadNameListMissingFile(t *testing.T) {
	_, err := LoadNameList(filepath.Join(t.TempDir(), "nope.csv"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	err := WriteCSVFile(path, []string{"A", "B"}, [][]string{{"1", "two, three"}, {"4", "line\nbreak"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A,B\n1,\"two, three\"\n4,\"line\nbreak\"\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestWriteAnnotatedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pi.csv")
	cols := []string{"UT", "Title"}
	recs := []types.AnnotatedRecord{{
		Index:           3,
		Record:          types.Record{"UT": "WOS:1", "Title": "Climate."},
		MatchedTerm:     "climate",
		MatchedSentence: "Climate.",
		PINames:         []string{"Jane Smith", "Bo Li"},
	}}
	require.NoError(t, WriteAnnotated(path, cols, recs, true))

	got, err := ReadCSVFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"UT", "Title", "matched_term", "matched_sentence", "pi_names_in_funding"}, got.Columns)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "Jane Smith; Bo Li", got.Records[0][types.ColumnPINames])
}

func TestWriteAnnotatedEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, WriteAnnotated(path, []string{"UT"}, nil, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "UT,matched_term,matched_sentence\n", string(data))
}

func TestWriteTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wos_results.csv")
	tbl := &types.Table{
		Columns: []string{"UT", "Title"},
		Records: []types.Record{{"UT": "WOS:1", "Title": "A"}, {"UT": "WOS:2"}},
	}
	require.NoError(t, WriteTableFile(path, tbl))

	got, err := ReadCSVFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, got.Columns)
	assert.Equal(t, []types.Record{{"UT": "WOS:1", "Title": "A"}, {"UT": "WOS:2", "Title": ""}}, got.Records)
}

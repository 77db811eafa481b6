// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wos

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wos-filter/pkg/types"
)

const sampleRecord = `{
  "UID": "WOS:001234567800001",
  "static_data": {
    "summary": {
      "titles": {"title": [
        {"type": "source", "content": "JOURNAL OF SOIL SCIENCE"},
        {"type": "item", "content": "Climate change impacts on <i>soil</i> carbon"}
      ]},
      "pub_info": {"pubyear": 2025},
      "names": {"name": [
        {"full_name": "Smith, Jane", "email_addr": "jane@example.se"},
        {"full_name": "Berg, Anna-Karin", "email_addr": "jane@example.se"},
        {"role": "book_editor"}
      ]},
      "identifiers": {"identifier": [
        {"type": "issn", "value": "1234-5678"},
        {"type": "doi", "value": "10.1000/xyz.123"}
      ]}
    },
    "fullrecord_metadata": {
      "abstracts": {"abstract": {"abstract_text": {"p": ["First   paragraph.", "Second &amp; last."]}}},
      "keywords": {"keyword": ["soil", "carbon", "soil"]},
      "category_info": {"subjects": {"subject": [
        {"ascatype": "traditional", "content": "Soil Science"},
        {"ascatype": "extended", "content": "Agriculture"},
        {"ascatype": "traditional", "content": "Soil Science"}
      ]}},
      "fund_ack": {
        "fund_text": {"p": "We thank Jane Smith for funding."},
        "grants": {"grant": [
          {"grant_agency": "Swedish Research Council", "grant_ids": {"grant_id": "2020-01"}, "grant_id": "VR-2020-01"},
          {"grant_agency": "Formas", "grant_id": "F-7"},
          {"grant_agency": "Formas", "grant_id": "F-7"}
        ]}
      }
    },
    "item": {"keywords_plus": {"keyword": ["ORGANIC-MATTER", "NITROGEN"]}}
  }
}`

func decodeRecord(t *testing.T, s string) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, decode([]byte(s), &rec))
	return rec
}

func TestFlatten(t *testing.T) {
	got := Flatten(decodeRecord(t, sampleRecord))

	want := types.Record{
		types.ColumnUT:                 "WOS:001234567800001",
		types.ColumnTitle:              "Climate change impacts on soil carbon",
		types.ColumnJournal:            "JOURNAL OF SOIL SCIENCE",
		types.ColumnYear:               "2025",
		types.ColumnDOI:                "10.1000/xyz.123",
		types.ColumnAuthors:            "Smith, Jane; Berg, Anna-Karin",
		types.ColumnAuthorEmails:       "jane@example.se",
		types.ColumnAbstract:           "First paragraph. Second & last.",
		types.ColumnFundingText:        "We thank Jane Smith for funding.",
		types.ColumnFundingAgencies:    "Swedish Research Council; Formas",
		types.ColumnGrantNumbers:       "VR-2020-01; F-7",
		types.ColumnAuthorKeywords:     "soil; carbon",
		types.ColumnKeywordsPlus:       "ORGANIC-MATTER; NITROGEN",
		types.ColumnCategoriesTrad:     "Soil Science",
		types.ColumnCategoriesExtended: "Agriculture",
	}
	assert.Equal(t, want, got)
}

func TestFlattenCoversSummaryColumns(t *testing.T) {
	got := Flatten(map[string]any{})
	for _, c := range types.SummaryColumns {
		v, ok := got[c]
		assert.True(t, ok, c)
		assert.Empty(t, v, c)
	}
	assert.Len(t, got, len(types.SummaryColumns))
}

func TestFlattenDOIFallback(t *testing.T) {
	rec := decodeRecord(t, `{"UID": "WOS:1", "dynamic_data": {"links": ["https://doi.org/10.5555/ABC-def.9"]}}`)
	assert.Equal(t, "10.5555/ABC-def.9", Flatten(rec)[types.ColumnDOI])
}

func TestFlattenSingleObjectLists(t *testing.T) {
	rec := decodeRecord(t, `{
	  "uid": "WOS:2",
	  "static_data": {
	    "summary": {"titles": {"title": {"type": "item", "value": "Only title"}}},
	    "fullrecord_metadata": {
	      "category_info": {"subjects": {"subject": "Ecology"}},
	      "fund_ack": [{"grant_no": ["G1", "G2"], "fund_agency": "NSF"}]
	    }
	  }
	}`)
	got := Flatten(rec)
	assert.Equal(t, "WOS:2", got[types.ColumnUT])
	assert.Equal(t, "Only title", got[types.ColumnTitle])
	assert.Equal(t, "Ecology", got[types.ColumnCategoriesTrad])
	assert.Equal(t, "G1; G2", got[types.ColumnGrantNumbers])
	assert.Equal(t, "NSF", got[types.ColumnFundingAgencies])
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"H<sub>2</sub>O uptake", "H2O uptake"},
		{"a<br/>b", "a b"},
		{"p < 0.05 &amp; n > 3", "p < 0.05 & n > 3"},
		{"<p>one</p><p>two</p>", "one  two"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripMarkup(tt.in), tt.in)
	}
}

func TestExtractRecords(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantUTs []string
	}{
		{
			name:    "list under usual path",
			doc:     `{"Data": {"Records": {"records": {"REC": [{"UID": "A"}, {"UID": "B"}]}}}}`,
			wantUTs: []string{"A", "B"},
		},
		{
			name:    "single object under usual path",
			doc:     `{"Data": {"Records": {"records": {"REC": {"UID": "A"}}}}}`,
			wantUTs: []string{"A"},
		},
		{
			name:    "records list directly",
			doc:     `{"Data": {"Records": {"records": [{"UID": "A"}]}}}`,
			wantUTs: []string{"A"},
		},
		{
			name:    "nested elsewhere picks largest",
			doc:     `{"x": {"REC": {"UID": "lonely"}}, "y": [{"records": [{"UID": "A"}, {"UID": "B"}, {"note": 1}]}]}`,
			wantUTs: []string{"A", "B"},
		},
		{
			name:    "nothing",
			doc:     `{"QueryResult": {"RecordsFound": 0}}`,
			wantUTs: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc any
			require.NoError(t, decode([]byte(tt.doc), &doc))
			var got []string
			for _, r := range ExtractRecords(doc) {
				got = append(got, UID(r))
			}
			assert.Equal(t, tt.wantUTs, got)
		})
	}
}

func TestExtractTextKeyOrder(t *testing.T) {
	var v any
	require.NoError(t, json.NewDecoder(strings.NewReader(`{"b": "second", "a": "first", "n": 3}`)).Decode(&v))
	assert.Equal(t, "first second", extractText(v))
}

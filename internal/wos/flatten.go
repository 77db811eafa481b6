// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wos

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/wos-filter/pkg/types"
)

// ListSeparator joins multi-valued fields in the summary table.
const ListSeparator = "; "

var doiPattern = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[-._;()/:A-Z0-9]+\b`)

// Flatten converts one raw WoS record into a summary row keyed by
// types.SummaryColumns. Missing fields become empty strings.
func Flatten(rec map[string]any) types.Record {
	static := obj(rec["static_data"])
	summary := obj(static["summary"])
	fullMD := obj(static["fullrecord_metadata"])

	fundText, agencies, grants := funding(static, fullMD)
	authorKW, kwPlus := keywords(static, fullMD)
	trad, ext := categories(fullMD)

	return types.Record{
		types.ColumnUT:                 UID(rec),
		types.ColumnTitle:              pickTitle(summary, "item"),
		types.ColumnJournal:            pickTitle(summary, "source"),
		types.ColumnYear:               scalarString(obj(summary["pub_info"])["pubyear"]),
		types.ColumnDOI:                doi(rec, summary, fullMD),
		types.ColumnAuthors:            authors(summary),
		types.ColumnAuthorEmails:       emails(summary),
		types.ColumnAbstract:           abstract(fullMD),
		types.ColumnFundingText:        fundText,
		types.ColumnFundingAgencies:    agencies,
		types.ColumnGrantNumbers:       grants,
		types.ColumnAuthorKeywords:     authorKW,
		types.ColumnKeywordsPlus:       kwPlus,
		types.ColumnCategoriesTrad:     trad,
		types.ColumnCategoriesExtended: ext,
	}
}

func pickTitle(summary map[string]any, wanted string) string {
	for _, t := range asList(obj(summary["titles"])["title"]) {
		m := obj(t)
		if m != nil && strings.EqualFold(scalarString(m["type"]), wanted) {
			return stripMarkup(scalarString(firstOf(m, "content", "value")))
		}
	}
	return ""
}

func doi(rec, summary, fullMD map[string]any) string {
	for _, block := range []any{summary["identifiers"], fullMD["identifiers"]} {
		for _, it := range asList(obj(block)["identifier"]) {
			m := obj(it)
			if m == nil {
				continue
			}
			if strings.EqualFold(scalarString(firstOf(m, "type", "@type")), "doi") {
				return scalarString(firstOf(m, "value", "content"))
			}
		}
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	return doiPattern.FindString(string(raw))
}

func authors(summary map[string]any) string {
	var names []string
	for _, n := range asList(obj(summary["names"])["name"]) {
		if full := scalarString(obj(n)["full_name"]); full != "" {
			names = append(names, full)
		}
	}
	return strings.Join(names, ListSeparator)
}

func emails(summary map[string]any) string {
	var out []string
	for _, n := range asList(obj(summary["names"])["name"]) {
		m := obj(n)
		if m == nil {
			continue
		}
		if e := firstOf(m, "email_addr", "email", "emailAddress"); e != nil {
			out = append(out, extractText(e))
		}
	}
	return strings.Join(dedupe(out), ListSeparator)
}

func abstract(fullMD map[string]any) string {
	var parts []string
	for _, a := range asList(obj(fullMD["abstracts"])["abstract"]) {
		parts = append(parts, extractText(a))
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// funding returns the first funding text found plus the deduplicated
// agency names and grant numbers from every fund_ack block.
func funding(static, fullMD map[string]any) (text, agencies, grants string) {
	var blocks []map[string]any
	for _, cand := range []any{static["fund_ack"], fullMD["fund_ack"]} {
		for _, fa := range asList(cand) {
			if m := obj(fa); m != nil {
				blocks = append(blocks, m)
			}
		}
	}

	var ag, gr []string
	for _, fa := range blocks {
		if text == "" {
			text = extractText(firstOf(fa, "fund_text", "funding_text", "text"))
		}
		for _, a := range asList(fa["fund_agency"]) {
			ag = append(ag, extractText(a))
		}
		for _, g := range asList(firstOf(fa, "grant_no", "grant_number")) {
			gr = append(gr, extractText(g))
		}
		for _, g := range asList(obj(fa["grants"])["grant"]) {
			m := obj(g)
			if m == nil {
				continue
			}
			ag = append(ag, extractText(firstOf(m, "grant_agency", "agency", "funding_agency")))
			gr = append(gr, extractText(firstOf(m, "grant_id", "grant_number", "grant_no")))
		}
	}
	return text, strings.Join(dedupe(ag), ListSeparator), strings.Join(dedupe(gr), ListSeparator)
}

func keywords(static, fullMD map[string]any) (author, plus string) {
	var a, p []string
	for _, kw := range asList(obj(fullMD["keywords"])["keyword"]) {
		a = append(a, extractText(kw))
	}
	for _, kw := range asList(obj(obj(static["item"])["keywords_plus"])["keyword"]) {
		p = append(p, extractText(kw))
	}
	return strings.Join(dedupe(a), ListSeparator), strings.Join(dedupe(p), ListSeparator)
}

// categories splits subjects into traditional and extended WoS categories
// by their ascatype attribute. Subjects without one count as traditional.
func categories(fullMD map[string]any) (trad, ext string) {
	var t, e []string
	subjects := obj(obj(fullMD["category_info"])["subjects"])["subject"]
	for _, s := range asList(subjects) {
		m := obj(s)
		if m == nil {
			if txt := extractText(s); txt != "" {
				t = append(t, txt)
			}
			continue
		}
		txt := extractText(m["subject"])
		if txt == "" {
			txt = extractText(m)
		}
		if txt == "" {
			continue
		}
		if strings.EqualFold(scalarString(firstOf(m, "ascatype", "@ascatype")), "extended") {
			e = append(e, txt)
		} else {
			t = append(t, txt)
		}
	}
	return strings.Join(dedupe(t), ListSeparator), strings.Join(dedupe(e), ListSeparator)
}

// extractText renders a JSON fragment as plain text. Objects prefer their
// "p", "content" or "value" member; otherwise all member texts are joined
// in key order.
func extractText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return stripMarkup(strings.TrimSpace(t))
	case json.Number:
		return t.String()
	case []any:
		var parts []string
		for _, x := range t {
			if s := extractText(x); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		if p, ok := t["p"]; ok {
			return extractText(p)
		}
		if s, ok := t["content"].(string); ok {
			return stripMarkup(strings.TrimSpace(s))
		}
		if s, ok := t["value"].(string); ok {
			return stripMarkup(strings.TrimSpace(s))
		}
		var parts []string
		for _, k := range sortedKeys(t) {
			if s := extractText(t[k]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// stripMarkup removes inline HTML tags and decodes entities. Paragraph
// and line-break tags become spaces.
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br", "p", "div", "li":
				b.WriteByte(' ')
			}
		}
	}
}

func obj(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	}
	return []any{v}
}

// firstOf returns the first of keys whose value is non-empty.
func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v := m[k]; !empty(v) {
			return v
		}
	}
	return nil
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case bool:
		return !t
	}
	return false
}

// scalarString renders a JSON scalar. Objects and lists yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return ""
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

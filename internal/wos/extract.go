// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wos

// ExtractRecords returns the REC entries of a full-record page. The usual
// location is Data.Records.records.REC, which holds an object when the page
// has a single record. When that path is absent the document is searched
// for the largest REC or records list, preferring entries carrying a UID.
func ExtractRecords(doc any) []map[string]any {
	records := obj(obj(obj(doc)["Data"])["Records"])["records"]
	switch r := records.(type) {
	case map[string]any:
		if recs := recList(r["REC"]); len(recs) > 0 {
			return recs
		}
	case []any:
		if recs := dictList(r); len(recs) > 0 {
			return recs
		}
	}

	var candidates [][]map[string]any
	walk(doc, &candidates)
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) > len(best) {
			best = c
		}
	}

	var withUID []map[string]any
	for _, r := range best {
		if _, ok := r["UID"]; ok {
			withUID = append(withUID, r)
		} else if _, ok := r["uid"]; ok {
			withUID = append(withUID, r)
		}
	}
	if len(withUID) > 0 {
		return withUID
	}
	return best
}

// UID returns the record's unique WoS identifier (the UT).
func UID(rec map[string]any) string {
	if s := scalarString(rec["UID"]); s != "" {
		return s
	}
	return scalarString(rec["uid"])
}

func walk(v any, out *[][]map[string]any) {
	switch t := v.(type) {
	case map[string]any:
		if rec, ok := t["REC"]; ok {
			if recs := recList(rec); len(recs) > 0 {
				*out = append(*out, recs)
			}
		}
		if records, ok := t["records"]; ok {
			switch r := records.(type) {
			case []any:
				if recs := dictList(r); len(recs) > 0 {
					*out = append(*out, recs)
				}
			case map[string]any:
				if recs := recList(r["REC"]); len(recs) > 0 {
					*out = append(*out, recs)
				}
			}
		}
		for _, k := range sortedKeys(t) {
			walk(t[k], out)
		}
	case []any:
		for _, x := range t {
			walk(x, out)
		}
	}
}

// recList accepts a single record object or a list of record objects.
func recList(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		return dictList(t)
	}
	return nil
}

// dictList converts a list whose every element is an object.
func dictList(items []any) []map[string]any {
	if len(items) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil
		}
		out = append(out, m)
	}
	return out
}

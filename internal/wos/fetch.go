// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wos

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/wos-filter/pkg/types"
)

// Output file names written under the fetch output directory.
const (
	RecordsFile   = "records_full.jsonl"
	DebugPageFile = "debug_first_page.json"
	ResultsFile   = "wos_results.csv"
)

// FetchOptions controls a Fetch run.
type FetchOptions struct {
	// OutDir receives the raw JSONL dump and the debug page.
	OutDir string

	// MaxRecords caps the number of records requested. Zero means all.
	MaxRecords int

	// SaveDebugPage writes the first page as indented JSON.
	SaveDebugPage bool
}

// FetchResult summarizes a completed fetch.
type FetchResult struct {
	Info QueryInfo

	// Table is the flattened summary table, one row per fetched record.
	Table *types.Table

	// Incomplete is set when a page yielded no extractable records and
	// paging stopped early.
	Incomplete bool
}

// rawLine is one line of records_full.jsonl.
type rawLine struct {
	UT     string `json:"UT"`
	Record any    `json:"record"`
}

// Fetch runs query, writes every raw record to OutDir/records_full.jsonl
// (replacing any previous dump), and returns the flattened summary table.
// Progress lines are written to w.
func (c *Client) Fetch(ctx context.Context, query string, opts FetchOptions, w io.Writer) (*FetchResult, error) {
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	fmt.Fprintf(w, "Seed query: %s\n", query)
	info, err := c.Seed(ctx, query)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Total found: %d  QueryID: %s\n", info.RecordsFound, info.QueryID)

	res := &FetchResult{Info: info, Table: &types.Table{Columns: types.SummaryColumns}}

	jsonlPath := filepath.Join(opts.OutDir, RecordsFile)
	f, err := os.Create(jsonlPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", jsonlPath, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	total := info.RecordsFound
	if opts.MaxRecords > 0 && opts.MaxRecords < total {
		total = opts.MaxRecords
	}
	if total == 0 {
		fmt.Fprintln(w, "No records.")
		return res, bw.Flush()
	}
	fmt.Fprintf(w, "Will fetch %d record(s), page size %d\n", total, c.PageSize)

	for _, pg := range Pages(total, c.PageSize) {
		fmt.Fprintf(w, "Fetching records %d-%d ...\n", pg.First, pg.First+pg.Count-1)
		doc, err := c.Page(ctx, query, pg.First, pg.Count)
		if err != nil {
			bw.Flush()
			return nil, err
		}

		if opts.SaveDebugPage && pg.First == 1 {
			if err := writeDebugPage(filepath.Join(opts.OutDir, DebugPageFile), doc); err != nil {
				return nil, err
			}
		}

		recs := ExtractRecords(doc)
		c.log.Info("page fetched",
			zap.Int("first", pg.First),
			zap.Int("count", pg.Count),
			zap.Int("extracted", len(recs)))
		if len(recs) == 0 {
			fmt.Fprintf(w, "  no records extracted from page at %d; see %s\n", pg.First, DebugPageFile)
			res.Incomplete = true
			break
		}

		for _, rec := range recs {
			if err := enc.Encode(rawLine{UT: UID(rec), Record: rec}); err != nil {
				return nil, fmt.Errorf("writing %s: %w", jsonlPath, err)
			}
			res.Table.Records = append(res.Table.Records, Flatten(rec))
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("writing %s: %w", jsonlPath, err)
	}
	fmt.Fprintf(w, "Total summary rows: %d\n", res.Table.Len())
	return res, nil
}

// Page is one request window.
type Page struct {
	First int
	Count int
}

// Pages splits [1, total] into windows of at most size records.
func Pages(total, size int) []Page {
	if total <= 0 || size <= 0 {
		return nil
	}
	pages := make([]Page, 0, (total+size-1)/size)
	for first := 1; first <= total; first += size {
		pages = append(pages, Page{First: first, Count: min(size, total-first+1)})
	}
	return pages
}

func writeDebugPage(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding debug page: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wos fetches records from the Web of Science Expanded API and
// flattens them into the summary table the filter stage reads.
//
// A fetch starts with a seed query (count=0) that reports how many records
// match, then pages through them with full-record view. Every raw record is
// appended to records_full.jsonl before flattening, so the summary table can
// be rebuilt without hitting the API again.
package wos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/wos-filter/internal/httputil"
	"github.com/pdiddy/wos-filter/pkg/types"
)

// apiBase is the default WoS Expanded endpoint. Declared as a var so tests
// can substitute an httptest server.
var apiBase = "https://api.clarivate.com/api/wos"

// Defaults applied by NewClient.
const (
	DefaultDatabaseID      = "WOS"
	DefaultPageSize        = 100
	MaxPageSize            = 100
	DefaultRequestInterval = 250 * time.Millisecond
	DefaultTimeout         = 60 * time.Second
)

var (
	// ErrMissingAPIKey is returned when no API key was configured.
	ErrMissingAPIKey = errors.New("missing WoS API key (set .secrets/wos-api-key or WOS_API_KEY)")

	// ErrUnexpectedStatus wraps non-2xx responses that were not retried away.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// QueryInfo is the result of a seed query.
type QueryInfo struct {
	QueryID      string
	RecordsFound int
}

// Client talks to the WoS Expanded API.
type Client struct {
	HTTP       *http.Client
	APIKey     string
	DatabaseID string
	UserAgent  string
	PageSize   int
	MaxRetries int

	baseURL string
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewClient builds a client from cfg. The logger may be nil.
func NewClient(cfg types.FetchConfig, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if log == nil {
		log = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		return nil, fmt.Errorf("page size %d exceeds the API maximum of %d", pageSize, MaxPageSize)
	}
	db := cfg.DatabaseID
	if db == "" {
		db = DefaultDatabaseID
	}
	base := cfg.BaseURL
	if base == "" {
		base = apiBase
	}
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = DefaultRequestInterval
	}

	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		APIKey:     cfg.APIKey,
		DatabaseID: db,
		UserAgent:  cfg.UserAgent,
		PageSize:   pageSize,
		MaxRetries: cfg.MaxRetries,
		baseURL:    base,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		log:        log,
	}, nil
}

// Seed runs query with count=0 and reports the number of matching records.
func (c *Client) Seed(ctx context.Context, query string) (QueryInfo, error) {
	params := url.Values{
		"databaseId":  {c.DatabaseID},
		"usrQuery":    {query},
		"count":       {"0"},
		"firstRecord": {"1"},
		"optionView":  {"SR"},
	}
	body, err := c.get(ctx, params)
	if err != nil {
		return QueryInfo{}, fmt.Errorf("seed query: %w", err)
	}

	var seed struct {
		QueryResult map[string]any `json:"QueryResult"`
	}
	if err := decode(body, &seed); err != nil {
		return QueryInfo{}, fmt.Errorf("parsing seed response: %w", err)
	}
	return parseQueryResult(seed.QueryResult), nil
}

// Page fetches count full records starting at first (1-based) and returns
// the decoded response document.
func (c *Client) Page(ctx context.Context, query string, first, count int) (any, error) {
	params := url.Values{
		"databaseId":  {c.DatabaseID},
		"usrQuery":    {query},
		"count":       {strconv.Itoa(count)},
		"firstRecord": {strconv.Itoa(first)},
		"optionView":  {"FR"},
		"links":       {"true"},
	}
	body, err := c.get(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("records %d-%d: %w", first, first+count-1, err)
	}
	var doc any
	if err := decode(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing records %d-%d: %w", first, first+count-1, err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-ApiKey", c.APIKey)
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries, c.log)
	if err != nil {
		return nil, fmt.Errorf("WoS API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: WoS API returned HTTP %d: %s", ErrUnexpectedStatus, resp.StatusCode, head(body, 1200))
	}
	return body, nil
}

// parseQueryResult reads RecordsFound and the query id, which the API has
// spelled several ways.
func parseQueryResult(qr map[string]any) QueryInfo {
	var info QueryInfo
	info.RecordsFound, _ = strconv.Atoi(scalarString(qr["RecordsFound"]))
	for _, k := range []string{"QueryID", "QueryId", "queryId", "queryID"} {
		if v, ok := qr[k]; ok {
			info.QueryID = scalarString(v)
			break
		}
	}
	return info
}

func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

func head(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}

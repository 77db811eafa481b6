package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "wos-filter/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for the WoS fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the WoS Expanded API endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is sent as the X-ApiKey header. Usually supplied through
	// .secrets/wos-api-key or WOS_API_KEY rather than the config file.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Query is the WoS advanced search expression (e.g. "CU=(Sweden) AND PY=2025").
	Query string `json:"query" yaml:"query" mapstructure:"query"`

	// DatabaseID selects the WoS collection (default "WOS").
	DatabaseID string `json:"database_id" yaml:"database_id" mapstructure:"database_id"`

	// PageSize is the number of records per page request (1-100, default 100).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// MaxRecords caps the number of records fetched. Zero fetches everything found.
	MaxRecords int `json:"max_records" yaml:"max_records" mapstructure:"max_records"`

	// MaxRetries is the number of retries on 429 and 5xx responses (default 8).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestInterval is the minimum spacing between page requests (default 250ms).
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval" mapstructure:"request_interval"`

	// OutDir receives records_full.jsonl, debug_first_page.json and wos_results.csv.
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`

	// SaveDebugPage writes the first raw page to debug_first_page.json.
	SaveDebugPage bool `json:"save_debug_page" yaml:"save_debug_page" mapstructure:"save_debug_page"`
}

// FilterConfig holds settings for the classification stage.
type FilterConfig struct {
	// Input is the record table (CSV) to classify.
	Input string `json:"input" yaml:"input" mapstructure:"input"`

	// Delimiter is the input CSV field separator (default ",").
	Delimiter string `json:"delimiter" yaml:"delimiter" mapstructure:"delimiter"`

	// Rules is the keyword rule YAML file.
	Rules string `json:"rules" yaml:"rules" mapstructure:"rules"`

	// Names is the optional PI name list (CSV with a "Name" column).
	Names string `json:"names,omitempty" yaml:"names,omitempty" mapstructure:"names"`

	// NamesDelimiter is the name list field separator (default ";").
	NamesDelimiter string `json:"names_delimiter" yaml:"names_delimiter" mapstructure:"names_delimiter"`

	// WholeWordInclude restricts include-term hits to whole words.
	WholeWordInclude bool `json:"whole_word_include" yaml:"whole_word_include" mapstructure:"whole_word_include"`

	// PIScope selects which records PI detection is reported for.
	PIScope PIScope `json:"pi_scope" yaml:"pi_scope" mapstructure:"pi_scope"`

	// Workers is the classification worker pool size. Values below 2 classify sequentially.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// OutputConfig holds settings for where results are written.
type OutputConfig struct {
	// Results is the CSV receiving accepted records (default "filtered_results.csv").
	Results string `json:"results" yaml:"results" mapstructure:"results"`

	// PIChecked is the CSV receiving PI-matched records (default "pi_names_checked.csv").
	PIChecked string `json:"pi_checked" yaml:"pi_checked" mapstructure:"pi_checked"`

	// SQLite is an optional database file that receives the same tables.
	SQLite string `json:"sqlite,omitempty" yaml:"sqlite,omitempty" mapstructure:"sqlite"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all stage configurations.
type Config struct {
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Filter FilterConfig `json:"filter" yaml:"filter" mapstructure:"filter"`
	Output OutputConfig `json:"output" yaml:"output" mapstructure:"output"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

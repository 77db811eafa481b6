// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/wos-filter/internal/wos"
	"github.com/pdiddy/wos-filter/pkg/types"
)

const (
	envPrefix        = "WOS_FILTER"
	defaultUserAgent = "wos-filter/0.1"
)

// setDefaults registers every config key so env vars resolve through
// AutomaticEnv and Unmarshal sees a complete tree.
func setDefaults(v *viper.Viper) {
	v.SetDefault("fetch.timeout", wos.DefaultTimeout)
	v.SetDefault("fetch.user_agent", defaultUserAgent)
	v.SetDefault("fetch.base_url", "")
	v.SetDefault("fetch.api_key", "")
	v.SetDefault("fetch.query", "")
	v.SetDefault("fetch.database_id", wos.DefaultDatabaseID)
	v.SetDefault("fetch.page_size", wos.DefaultPageSize)
	v.SetDefault("fetch.max_records", 0)
	v.SetDefault("fetch.max_retries", 8)
	v.SetDefault("fetch.request_interval", wos.DefaultRequestInterval)
	v.SetDefault("fetch.out_dir", "WOS_fetched_results")
	v.SetDefault("fetch.save_debug_page", true)

	v.SetDefault("filter.input", "")
	v.SetDefault("filter.delimiter", ",")
	v.SetDefault("filter.rules", "keyword.yml")
	v.SetDefault("filter.names", "")
	v.SetDefault("filter.names_delimiter", ";")
	v.SetDefault("filter.whole_word_include", false)
	v.SetDefault("filter.pi_scope", string(types.PIScopeAccepted))
	v.SetDefault("filter.workers", 1)

	v.SetDefault("output.results", "filtered_results.csv")
	v.SetDefault("output.pi_checked", "pi_names_checked.csv")
	v.SetDefault("output.sqlite", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// bindEnv maps WOS_FILTER_FILTER_RULES style variables onto nested keys.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig decodes the merged flag, env, file and default values.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if !cfg.Filter.PIScope.Valid() {
		return types.Config{}, fmt.Errorf("filter.pi_scope %q: want %q, %q or %q", cfg.Filter.PIScope,
			types.PIScopeAccepted, types.PIScopeNotExcluded, types.PIScopeAll)
	}
	return cfg, nil
}

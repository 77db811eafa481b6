// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wos-filter/internal/logging"
	"github.com/pdiddy/wos-filter/internal/secrets"
	"github.com/pdiddy/wos-filter/internal/table"
	"github.com/pdiddy/wos-filter/internal/wos"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download records from the Web of Science Expanded API",
	Long: `Fetch runs an advanced search query against the WoS Expanded API, pages
through every matching record, and writes:

  records_full.jsonl     one raw record per line
  debug_first_page.json  the first raw page (unless disabled)
  wos_results.csv        the flattened summary table for the filter stage

The API key is read from WOS_API_KEY, .secrets/wos-api-key, or a .env file.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("query", "", `WoS advanced search query, e.g. "CU=(Sweden) AND PY=2025"`)
	fetchCmd.Flags().String("out-dir", "", "output directory (default WOS_fetched_results)")
	fetchCmd.Flags().Int("max-records", 0, "stop after this many records (default all)")
	fetchCmd.Flags().Int("page-size", 0, "records per request, at most 100 (default 100)")
	fetchCmd.Flags().String("database", "", "WoS database id (default WOS)")

	viper.BindPFlag("fetch.query", fetchCmd.Flags().Lookup("query"))
	viper.BindPFlag("fetch.out_dir", fetchCmd.Flags().Lookup("out-dir"))
	viper.BindPFlag("fetch.max_records", fetchCmd.Flags().Lookup("max-records"))
	viper.BindPFlag("fetch.page_size", fetchCmd.Flags().Lookup("page-size"))
	viper.BindPFlag("fetch.database_id", fetchCmd.Flags().Lookup("database"))

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	fc := cfg.Fetch
	if fc.Query == "" {
		return fmt.Errorf("provide a query with --query or fetch.query")
	}

	if fc.APIKey == "" {
		key, err := secrets.WoSAPIKey(secrets.DefaultDir, secrets.DefaultDotEnv)
		if err != nil {
			return err
		}
		fc.APIKey = key
	}

	client, err := wos.NewClient(fc, logging.Component(logger, "wos"))
	if err != nil {
		return err
	}

	res, err := client.Fetch(cmd.Context(), fc.Query, wos.FetchOptions{
		OutDir:        fc.OutDir,
		MaxRecords:    fc.MaxRecords,
		SaveDebugPage: fc.SaveDebugPage,
	}, os.Stdout)
	if err != nil {
		return err
	}

	out := filepath.Join(fc.OutDir, wos.ResultsFile)
	if err := table.WriteTableFile(out, res.Table); err != nil {
		return err
	}
	fmt.Printf("Raw records:   %s\n", filepath.Join(fc.OutDir, wos.RecordsFile))
	fmt.Printf("CSV results:   %s\n", out)

	if res.Incomplete {
		return fmt.Errorf("paging stopped early: a page had no extractable records (see %s)", wos.DebugPageFile)
	}
	return nil
}

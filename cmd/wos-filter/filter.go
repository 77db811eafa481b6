// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/wos-filter/internal/classify"
	"github.com/pdiddy/wos-filter/internal/logging"
	"github.com/pdiddy/wos-filter/internal/pi"
	"github.com/pdiddy/wos-filter/internal/rules"
	"github.com/pdiddy/wos-filter/internal/store"
	"github.com/pdiddy/wos-filter/internal/table"
	"github.com/pdiddy/wos-filter/pkg/types"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Classify records by keyword rules and detect PIs in funding text",
	Long: `Filter reads a record table (for example wos_results.csv from fetch) and a
YAML rule file with include_terms, exclude_terms and exclude_terms_category.

A record is kept when an include term occurs in its title, abstract,
keyword or funding columns, no exclude term occurs there, and no
category-exclude term occurs in its category columns. Kept records are
written with the matched term and the sentence it appeared in.

With --names, each record in PI scope is searched for listed names in its
funding columns; matches are written to a second file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		return runFilter(cmd.Context(), cfg, logging.Component(logger, "filter"), os.Stdout)
	},
}

func init() {
	filterCmd.Flags().String("input", "", "record table to classify (CSV)")
	filterCmd.Flags().String("delimiter", "", `input field separator (default ",")`)
	filterCmd.Flags().String("rules", "", "keyword rule file (default keyword.yml)")
	filterCmd.Flags().String("names", "", "PI name list with a Name column (optional)")
	filterCmd.Flags().String("names-delimiter", "", `name list field separator (default ";")`)
	filterCmd.Flags().Bool("whole-word", false, "match include terms on word boundaries only")
	filterCmd.Flags().String("pi-scope", "", "records searched for PIs: accepted, not_excluded, all")
	filterCmd.Flags().Int("workers", 0, "classification workers (default 1)")
	filterCmd.Flags().String("output", "", "accepted records CSV (default filtered_results.csv)")
	filterCmd.Flags().String("pi-output", "", "PI-matched records CSV (default pi_names_checked.csv)")
	filterCmd.Flags().String("sqlite", "", "also record the run in this SQLite database")

	viper.BindPFlag("filter.input", filterCmd.Flags().Lookup("input"))
	viper.BindPFlag("filter.delimiter", filterCmd.Flags().Lookup("delimiter"))
	viper.BindPFlag("filter.rules", filterCmd.Flags().Lookup("rules"))
	viper.BindPFlag("filter.names", filterCmd.Flags().Lookup("names"))
	viper.BindPFlag("filter.names_delimiter", filterCmd.Flags().Lookup("names-delimiter"))
	viper.BindPFlag("filter.whole_word_include", filterCmd.Flags().Lookup("whole-word"))
	viper.BindPFlag("filter.pi_scope", filterCmd.Flags().Lookup("pi-scope"))
	viper.BindPFlag("filter.workers", filterCmd.Flags().Lookup("workers"))
	viper.BindPFlag("output.results", filterCmd.Flags().Lookup("output"))
	viper.BindPFlag("output.pi_checked", filterCmd.Flags().Lookup("pi-output"))
	viper.BindPFlag("output.sqlite", filterCmd.Flags().Lookup("sqlite"))

	rootCmd.AddCommand(filterCmd)
}

// runFilter loads every input before writing anything, so a bad rule file
// or name list leaves existing outputs untouched.
func runFilter(ctx context.Context, cfg types.Config, log *zap.Logger, w io.Writer) error {
	fc := cfg.Filter
	if fc.Input == "" {
		return fmt.Errorf("provide a record table with --input or filter.input")
	}

	rs, err := rules.Load(fc.Rules)
	if err != nil {
		return err
	}

	var names *pi.NameList
	if fc.Names != "" {
		delim, err := table.ParseDelimiter(fc.NamesDelimiter, table.DefaultNamesDelimiter)
		if err != nil {
			return fmt.Errorf("filter.names_delimiter: %w", err)
		}
		list, err := table.LoadNameList(fc.Names, delim)
		if err != nil {
			return err
		}
		if names, err = pi.NewNameList(list); err != nil {
			return fmt.Errorf("%s: %w", fc.Names, err)
		}
		log.Info("name list loaded", zap.String("path", fc.Names), zap.Int("names", names.Len()))
	}

	delim, err := table.ParseDelimiter(fc.Delimiter, table.DefaultDelimiter)
	if err != nil {
		return fmt.Errorf("filter.delimiter: %w", err)
	}
	tbl, err := table.ReadCSVFile(fc.Input, delim)
	if err != nil {
		return err
	}
	table.DropEmptyColumns(tbl)

	c, err := classify.New(rs, tbl.Columns, classify.Options{
		WholeWordInclude: fc.WholeWordInclude,
		Names:            names,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", fc.Rules, err)
	}

	roles := c.Roles()
	log.Debug("column roles",
		zap.Strings("searchable", roles.Searchable),
		zap.Strings("category", roles.Category),
		zap.Strings("funding", roles.Funding))
	if len(roles.Searchable) == 0 {
		log.Warn("no searchable columns; every record will be rejected", zap.Strings("columns", tbl.Columns))
	}

	res, err := classify.Run(ctx, c, tbl, classify.RunOptions{
		Workers: fc.Workers,
		PIScope: fc.PIScope,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	withPI := names != nil
	if err := table.WriteAnnotated(cfg.Output.Results, res.Columns, res.Accepted, withPI); err != nil {
		return err
	}
	if withPI {
		if err := table.WriteAnnotated(cfg.Output.PIChecked, res.Columns, res.PIMatches, true); err != nil {
			return err
		}
	}

	if cfg.Output.SQLite != "" {
		if err := recordRun(ctx, cfg, res); err != nil {
			return err
		}
	}

	classify.FormatSummary(res.Summary, w)
	fmt.Fprintf(w, "Results:    %s\n", cfg.Output.Results)
	if withPI {
		fmt.Fprintf(w, "PI matches: %s\n", cfg.Output.PIChecked)
	}
	return nil
}

func recordRun(ctx context.Context, cfg types.Config, res *classify.Result) error {
	s, err := store.Open(cfg.Output.SQLite)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.BeginRun(ctx, store.RunMeta{
		Input:   cfg.Filter.Input,
		Rules:   cfg.Filter.Rules,
		Names:   cfg.Filter.Names,
		PIScope: cfg.Filter.PIScope,
	}, res.Columns)
	if err != nil {
		return err
	}
	if err := s.WriteResults(ctx, id, res.Accepted, res.PIMatches); err != nil {
		return err
	}
	return s.FinishRun(ctx, id, res.Summary)
}

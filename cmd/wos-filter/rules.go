// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wos-filter/internal/match"
	"github.com/pdiddy/wos-filter/internal/rules"
	"github.com/pdiddy/wos-filter/pkg/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect keyword rule files",
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a rule file and list case-sensitive terms",
	Long: `Check parses a keyword rule file and prints how many terms each list
holds. Terms written in mixed case (for example "SCoRe") are matched
case-sensitively; they are listed so an accidental capital is easy to spot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := rules.Load(args[0])
		if err != nil {
			return err
		}
		return describeRules(rs, os.Stdout)
	},
}

func init() {
	rulesCmd.AddCommand(rulesCheckCmd)
	rootCmd.AddCommand(rulesCmd)
}

func describeRules(rs types.RuleSet, w io.Writer) error {
	lists := []struct {
		key   string
		terms []string
	}{
		{"include_terms", rs.IncludeTerms},
		{"exclude_terms", rs.ExcludeTerms},
		{"exclude_terms_category", rs.ExcludeTermsCategory},
	}
	for _, l := range lists {
		m, err := match.Compile(l.terms, match.Options{})
		if err != nil {
			return fmt.Errorf("%s: %w", l.key, err)
		}
		fmt.Fprintf(w, "%-24s %d term(s)\n", l.key+":", m.Len())
		if cs := m.CaseSensitiveTerms(); len(cs) > 0 {
			fmt.Fprintf(w, "  case-sensitive: %s\n", strings.Join(cs, ", "))
		}
	}
	return nil
}

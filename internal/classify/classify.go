// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides, per record, whether a bibliographic record is
// relevant under a keyword RuleSet, and reports acknowledged PIs.
//
// A record is accepted when an include term occurs in its searchable text,
// no exclude term occurs there, and no category-exclude term occurs in its
// category columns. The checks run in that order and stop at the first
// rejection. Category exclusion only ever looks at category columns, so a
// broad discipline name used as a category-exclude term does not reject
// records that merely mention it in an abstract.
package classify

import (
	"fmt"

	"github.com/pdiddy/wos-filter/internal/columns"
	"github.com/pdiddy/wos-filter/internal/match"
	"github.com/pdiddy/wos-filter/internal/pi"
	"github.com/pdiddy/wos-filter/pkg/types"
)

// Options configures a Classifier.
type Options struct {
	// WholeWordInclude restricts include-term hits to whole words.
	WholeWordInclude bool

	// Names enables PI detection when non-nil.
	Names *pi.NameList
}

// Classifier holds compiled rules and the column roles of one table. It has
// no mutable state and may be used from several goroutines at once.
type Classifier struct {
	include  *match.Matcher
	exclude  *match.Matcher
	category *match.Matcher
	roles    columns.Roles
	names    *pi.NameList
}

// New compiles rs for a table with the given header.
func New(rs types.RuleSet, header []string, opts Options) (*Classifier, error) {
	include, err := match.Compile(rs.IncludeTerms, match.Options{WholeWord: opts.WholeWordInclude})
	if err != nil {
		return nil, fmt.Errorf("include_terms: %w", err)
	}
	exclude, err := match.Compile(rs.ExcludeTerms, match.Options{})
	if err != nil {
		return nil, fmt.Errorf("exclude_terms: %w", err)
	}
	category, err := match.Compile(rs.ExcludeTermsCategory, match.Options{})
	if err != nil {
		return nil, fmt.Errorf("exclude_terms_category: %w", err)
	}
	return &Classifier{
		include:  include,
		exclude:  exclude,
		category: category,
		roles:    columns.Select(header),
		names:    opts.Names,
	}, nil
}

// Roles returns the column roles the classifier was built with.
func (c *Classifier) Roles() columns.Roles {
	return c.roles
}

// HasNames reports whether PI detection is enabled.
func (c *Classifier) HasNames() bool {
	return c.names != nil
}

// SearchableText returns the blob include and exclude terms are matched against.
func (c *Classifier) SearchableText(rec types.Record) string {
	return columns.BuildText(rec, c.roles.Searchable)
}

// CategoryText returns the blob category-exclude terms are matched against.
func (c *Classifier) CategoryText(rec types.Record) string {
	return columns.BuildText(rec, c.roles.Category)
}

// FundingText returns the blob PI names are searched in.
func (c *Classifier) FundingText(rec types.Record) string {
	return columns.BuildText(rec, c.roles.Funding)
}

// Classify evaluates include, exclude and category-exclude in that order,
// stopping at the first rejection.
func (c *Classifier) Classify(rec types.Record) types.Classification {
	text := c.SearchableText(rec)

	inc := c.include.Match(text)
	if !inc.Matched {
		return types.Classification{Decision: types.DecisionRejected, Reason: types.ReasonNoInclude}
	}
	if c.exclude.Contains(text) {
		return types.Classification{Decision: types.DecisionRejected, Reason: types.ReasonExcludeTerm, Include: inc}
	}
	if c.ExcludedByCategory(rec) {
		return types.Classification{Decision: types.DecisionRejected, Reason: types.ReasonExcludeCategory, Include: inc}
	}
	return types.Classification{Decision: types.DecisionAccepted, Include: inc}
}

// ExcludedByCategory reports whether a category-exclude term occurs in the
// record's category columns.
func (c *Classifier) ExcludedByCategory(rec types.Record) bool {
	return c.category.Contains(c.CategoryText(rec))
}

// Excluded runs only the two exclusion checks, regardless of include
// terms, and returns the reason of the first that hits.
func (c *Classifier) Excluded(rec types.Record) types.RejectReason {
	if c.exclude.Contains(c.SearchableText(rec)) {
		return types.ReasonExcludeTerm
	}
	if c.ExcludedByCategory(rec) {
		return types.ReasonExcludeCategory
	}
	return types.ReasonNone
}

// DetectPI searches the record's funding columns for listed names. It
// returns an empty result when no name list was configured.
func (c *Classifier) DetectPI(rec types.Record) types.PIMatchResult {
	if c.names == nil {
		return types.PIMatchResult{}
	}
	return c.names.Detect(c.FundingText(rec))
}

// InPIScope reports whether a record with classification cl is reported
// under scope. For PIScopeNotExcluded a record rejected for lack of an
// include term is re-checked against the exclusion lists, because
// classification stopped before reaching them.
func (c *Classifier) InPIScope(scope types.PIScope, rec types.Record, cl types.Classification) bool {
	switch scope {
	case types.PIScopeAll:
		return true
	case types.PIScopeNotExcluded:
		switch cl.Reason {
		case types.ReasonExcludeTerm, types.ReasonExcludeCategory:
			return false
		case types.ReasonNoInclude:
			return c.Excluded(rec) == types.ReasonNone
		}
		return true
	default:
		return cl.Accepted()
	}
}

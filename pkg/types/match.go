// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RuleSet holds the keyword rules for one run. All three lists are ordered;
// declaration order decides which term a multiply-matching record reports.
type RuleSet struct {
	// IncludeTerms must match the searchable text for a record to be kept.
	IncludeTerms []string `json:"include_terms" yaml:"include_terms"`

	// ExcludeTerms reject a record when found in the searchable text.
	ExcludeTerms []string `json:"exclude_terms" yaml:"exclude_terms"`

	// ExcludeTermsCategory reject a record when found in category columns only.
	ExcludeTermsCategory []string `json:"exclude_terms_category" yaml:"exclude_terms_category"`
}

// MatchResult is the outcome of matching one text blob against one term list.
type MatchResult struct {
	Matched  bool   `json:"matched" yaml:"matched"`
	Term     string `json:"matched_term,omitempty" yaml:"matched_term,omitempty"`
	Sentence string `json:"matched_sentence,omitempty" yaml:"matched_sentence,omitempty"`
}

// PIMatchResult is the outcome of PI name detection for one record.
type PIMatchResult struct {
	Matched bool     `json:"matched" yaml:"matched"`
	Names   []string `json:"matched_names" yaml:"matched_names"`
}

// Decision is the classifier verdict for a record.
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// RejectReason names the classification step that rejected a record.
type RejectReason string

const (
	ReasonNone            RejectReason = ""
	ReasonNoInclude       RejectReason = "no_include"
	ReasonExcludeTerm     RejectReason = "exclude_term"
	ReasonExcludeCategory RejectReason = "exclude_category"
)

// Classification is the classifier output for one record. Include carries
// the include match whenever one was found, even if a later step rejected
// the record.
type Classification struct {
	Decision Decision     `json:"decision" yaml:"decision"`
	Reason   RejectReason `json:"reason,omitempty" yaml:"reason,omitempty"`
	Include  MatchResult  `json:"include" yaml:"include"`
}

// Accepted reports whether the record was kept.
func (c Classification) Accepted() bool {
	return c.Decision == DecisionAccepted
}

// PIScope selects which records PI detection is reported for.
type PIScope string

const (
	// PIScopeAccepted reports PI matches among accepted records only.
	PIScopeAccepted PIScope = "accepted"

	// PIScopeNotExcluded reports PI matches among records that were not
	// rejected by an exclude or category-exclude term, regardless of
	// whether an include term matched.
	PIScopeNotExcluded PIScope = "not_excluded"

	// PIScopeAll reports PI matches among all records.
	PIScopeAll PIScope = "all"
)

// Valid reports whether s is a known scope.
func (s PIScope) Valid() bool {
	switch s {
	case PIScopeAccepted, PIScopeNotExcluded, PIScopeAll:
		return true
	}
	return false
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/wos-filter/pkg/types"
)

// RunOptions configures Run.
type RunOptions struct {
	// Workers is the pool size. Values below 2 classify on the calling goroutine.
	Workers int

	// PIScope selects the records PI matches are reported for. Empty means accepted.
	PIScope types.PIScope

	// Logger receives the run summary. Nil disables logging.
	Logger *zap.Logger
}

// Outcome is the full evaluation of one record.
type Outcome struct {
	Classification types.Classification
	PI             types.PIMatchResult
	InPIScope      bool
}

// Result holds the annotated output sets of one run, in input order.
type Result struct {
	Columns   []string
	Outcomes  []Outcome
	Accepted  []types.AnnotatedRecord
	PIMatches []types.AnnotatedRecord
	Summary   Summary
}

// Evaluate classifies rec and, when a name list is configured and the
// record falls in scope, runs PI detection.
func (c *Classifier) Evaluate(rec types.Record, scope types.PIScope) Outcome {
	out := Outcome{Classification: c.Classify(rec)}
	if !c.HasNames() {
		return out
	}
	out.InPIScope = c.InPIScope(scope, rec, out.Classification)
	if out.InPIScope {
		out.PI = c.DetectPI(rec)
	}
	return out
}

// Run classifies every record of table. Records are independent, so with
// Workers > 1 they are evaluated on an ants pool; outcomes are stored by
// row index and the output sets keep input order either way.
func Run(ctx context.Context, c *Classifier, table *types.Table, opts RunOptions) (*Result, error) {
	if opts.PIScope == "" {
		opts.PIScope = types.PIScopeAccepted
	}
	if !opts.PIScope.Valid() {
		return nil, fmt.Errorf("unknown PI scope %q", opts.PIScope)
	}

	start := time.Now()
	outcomes := make([]Outcome, table.Len())

	var err error
	if opts.Workers < 2 {
		err = runSequential(ctx, c, table, opts.PIScope, outcomes)
	} else {
		err = runPool(ctx, c, table, opts.PIScope, opts.Workers, outcomes)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: table.Columns, Outcomes: outcomes}
	for i, o := range outcomes {
		res.Summary.add(o, c.HasNames())
		if !o.Classification.Accepted() && !o.PI.Matched {
			continue
		}
		ann := types.AnnotatedRecord{
			Index:           i,
			Record:          table.Records[i],
			MatchedTerm:     o.Classification.Include.Term,
			MatchedSentence: o.Classification.Include.Sentence,
			PINames:         o.PI.Names,
		}
		if o.Classification.Accepted() {
			res.Accepted = append(res.Accepted, ann)
		}
		if o.PI.Matched {
			res.PIMatches = append(res.PIMatches, ann)
		}
	}

	if opts.Logger != nil {
		opts.Logger.Info("classification finished",
			zap.Int("records", res.Summary.Total),
			zap.Int("include_matches", res.Summary.IncludeMatches),
			zap.Int("excluded_terms", res.Summary.ExcludedByTerm),
			zap.Int("excluded_category", res.Summary.ExcludedByCategory),
			zap.Int("accepted", res.Summary.Accepted),
			zap.Int("pi_matches", res.Summary.PIMatches),
			zap.Int("workers", opts.Workers),
			zap.Duration("duration", time.Since(start)))
	}
	return res, nil
}

func runSequential(ctx context.Context, c *Classifier, table *types.Table, scope types.PIScope, outcomes []Outcome) error {
	for i, rec := range table.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcomes[i] = c.Evaluate(rec, scope)
	}
	return nil
}

func runPool(ctx context.Context, c *Classifier, table *types.Table, scope types.PIScope, workers int, outcomes []Outcome) error {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var submitErr error
	for i, rec := range table.Records {
		if submitErr = ctx.Err(); submitErr != nil {
			break
		}
		wg.Add(1)
		if submitErr = pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = c.Evaluate(rec, scope)
		}); submitErr != nil {
			wg.Done()
			submitErr = fmt.Errorf("submitting record %d: %w", i, submitErr)
			break
		}
	}
	wg.Wait()
	return submitErr
}

// Summary counts records by classification step.
type Summary struct {
	Total              int `json:"total" yaml:"total"`
	IncludeMatches     int `json:"include_matches" yaml:"include_matches"`
	NoInclude          int `json:"no_include" yaml:"no_include"`
	ExcludedByTerm     int `json:"excluded_terms" yaml:"excluded_terms"`
	ExcludedByCategory int `json:"excluded_category" yaml:"excluded_category"`
	Accepted           int `json:"accepted" yaml:"accepted"`
	PIChecked          int `json:"pi_checked" yaml:"pi_checked"`
	PIMatches          int `json:"pi_matches" yaml:"pi_matches"`
}

func (s *Summary) add(o Outcome, withNames bool) {
	s.Total++
	if o.Classification.Include.Matched {
		s.IncludeMatches++
	}
	switch o.Classification.Reason {
	case types.ReasonNoInclude:
		s.NoInclude++
	case types.ReasonExcludeTerm:
		s.ExcludedByTerm++
	case types.ReasonExcludeCategory:
		s.ExcludedByCategory++
	}
	if o.Classification.Accepted() {
		s.Accepted++
	}
	if withNames && o.InPIScope {
		s.PIChecked++
	}
	if o.PI.Matched {
		s.PIMatches++
	}
}

// FormatSummary writes the run counts to w.
func FormatSummary(s Summary, w io.Writer) {
	fmt.Fprintf(w, "Records read:                           %d\n", s.Total)
	fmt.Fprintf(w, "Total INCLUDE matches:                  %d\n", s.IncludeMatches)
	fmt.Fprintf(w, "Excluded due to EXCLUSION terms:        %d\n", s.ExcludedByTerm)
	fmt.Fprintf(w, "Excluded due to CATEGORY exclusions:    %d\n", s.ExcludedByCategory)
	fmt.Fprintf(w, "FINAL kept:                             %d\n", s.Accepted)
	if s.PIChecked > 0 || s.PIMatches > 0 {
		fmt.Fprintf(w, "PI names found:                         %d of %d checked\n", s.PIMatches, s.PIChecked)
	}
}

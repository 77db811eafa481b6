// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wos-filter/internal/classify"
	"github.com/pdiddy/wos-filter/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "out", "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"runs", "filtered_results", "pi_matches"} {
		var n int
		err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	id, err := s.BeginRun(ctx, RunMeta{Input: "wos.csv", Rules: "keyword.yml", PIScope: types.PIScopeAccepted}, []string{"UT", "Title"})
	require.NoError(t, err)
	parsed, err := ulid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(base), parsed.Time())

	accepted := []types.AnnotatedRecord{
		{Index: 4, Record: types.Record{"UT": "WOS:4", "Title": "Climate."}, MatchedTerm: "climate", MatchedSentence: "Climate.", PINames: []string{"Jane Smith", "Bo Li"}},
		{Index: 1, Record: types.Record{"UT": "WOS:1", "Title": "Warming."}, MatchedTerm: "warming", MatchedSentence: "Warming."},
	}
	piMatches := accepted[:1]
	require.NoError(t, s.WriteResults(ctx, id, accepted, piMatches))

	s.now = func() time.Time { return base.Add(time.Minute) }
	summary := classify.Summary{Total: 10, IncludeMatches: 2, Accepted: 2, PIChecked: 2, PIMatches: 1}
	require.NoError(t, s.FinishRun(ctx, id, summary))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "keyword.yml", runs[0].Rules)
	assert.Equal(t, summary, runs[0].Summary)
	assert.Equal(t, base.Add(time.Minute), runs[0].FinishedAt)

	got, err := s.AcceptedRecords(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, accepted[1], got[0])
	assert.Equal(t, accepted[0], got[1])

	var piCount int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM pi_matches WHERE run_id = ?`, id).Scan(&piCount))
	assert.Equal(t, 1, piCount)
}

func TestWriteResultsIsAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.BeginRun(ctx, RunMeta{}, nil)
	require.NoError(t, err)

	dup := []types.AnnotatedRecord{
		{Index: 0, Record: types.Record{"UT": "A"}, MatchedTerm: "x", MatchedSentence: "x"},
		{Index: 0, Record: types.Record{"UT": "B"}, MatchedTerm: "y", MatchedSentence: "y"},
	}
	assert.Error(t, s.WriteResults(ctx, id, dup, nil))

	got, err := s.AcceptedRecords(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFinishUnknownRun(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.FinishRun(context.Background(), "nope", classify.Summary{}))
}

func TestRunsOrderedByStart(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		id, err := s.BeginRun(ctx, RunMeta{Input: "in.csv"}, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for i, r := range runs {
		assert.Equal(t, ids[i], r.ID)
		assert.True(t, r.FinishedAt.IsZero())
	}
}

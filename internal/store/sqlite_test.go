package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/decision-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	return s
}

func testRecord(title string, depth model.Depth, created time.Time) *model.DecisionRecord {
	fw := model.Framework{
		DecisionType: "career_choice",
		Title:        title,
		ScenarioText: title + " scenario",
		Depth:        depth,
		Options:      []model.Option{{Name: "Job A"}, {Name: "Job B"}},
		Criteria:     []model.Criterion{{Name: "Salary", Weight: 1}},
		Questions: []model.Question{
			{ID: "q0", Text: "Salary?", Spec: model.ScaleSpec{Min: 1, Max: 10}},
		},
		ContextFactors: []string{},
	}
	eval := model.Evaluation{
		OptionScores: map[string]model.OptionScore{
			"Job A": {TotalScore: 7.8, Confidence: model.ConfidenceHigh},
			"Job B": {TotalScore: 6.4, Confidence: model.ConfidenceMedium},
		},
		Recommendation: model.Recommendation{PrimaryChoice: "Job A"},
	}
	result := model.MergedResult{
		Title: title,
		Options: []model.RankedOption{
			{Name: "Job A", Score: 7.8, Confidence: model.ConfidenceHigh},
			{Name: "Job B", Score: 6.4, Confidence: model.ConfidenceMedium},
		},
		PrimaryChoice: "Job A",
	}
	rec := model.NewDecisionRecord(model.ScenarioInput{Text: fw.ScenarioText, Depth: fw.Depth}, fw, model.Responses{0: 8}, eval, result)
	rec.CreatedAt = created
	return &rec
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := testRecord("Job A or Job B", model.DepthBalanced, time.Time{})
	require.NoError(t, s.SaveDecision(ctx, rec))
	require.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := s.GetDecision(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "Job A or Job B scenario", got.Scenario.Text)
	assert.Equal(t, model.DepthBalanced, got.Scenario.Depth)
	assert.Equal(t, rec.Framework.Title, got.Framework.Title)
	assert.Equal(t, model.ScaleSpec{Min: 1, Max: 10}, got.Framework.Questions[0].Spec)
	assert.Equal(t, "Job A", got.Evaluation.Recommendation.PrimaryChoice)
	assert.Equal(t, "Job A", got.Result.Options[0].Name)
	// Responses come back through JSON, so numbers decode as float64.
	assert.InDelta(t, 8, got.Responses[0], 0.001)
	assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetDecision(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListDecisions(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveDecision(ctx, testRecord("Relocate to Denver", model.DepthQuick, base)))
	require.NoError(t, s.SaveDecision(ctx, testRecord("Job offer", model.DepthBalanced, base.Add(time.Hour))))
	require.NoError(t, s.SaveDecision(ctx, testRecord("Buy a car", model.DepthBalanced, base.Add(2*time.Hour))))

	all, err := s.ListDecisions(ctx, DecisionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Buy a car", all[0].Title)
	assert.Equal(t, "Relocate to Denver", all[2].Title)
	assert.Equal(t, "Job A", all[0].TopOption)
	assert.InDelta(t, 7.8, all[0].TopScore, 0.001)
	assert.True(t, all[0].Agrees())

	balanced, err := s.ListDecisions(ctx, DecisionFilter{Depth: model.DepthBalanced})
	require.NoError(t, err)
	assert.Len(t, balanced, 2)

	search, err := s.ListDecisions(ctx, DecisionFilter{Search: "denver"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, model.DepthQuick, search[0].Depth)

	page, err := s.ListDecisions(ctx, DecisionFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Job offer", page[0].Title)
}

func TestSQLiteStore_DeleteDecision(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := testRecord("Job offer", model.DepthBalanced, time.Time{})
	require.NoError(t, s.SaveDecision(ctx, rec))

	require.NoError(t, s.DeleteDecision(ctx, rec.ID))
	assert.ErrorIs(t, s.DeleteDecision(ctx, rec.ID), ErrNotFound)

	_, err := s.GetDecision(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestDecisionSummary_Agrees(t *testing.T) {
	assert.True(t, DecisionSummary{PrimaryChoice: "A", TopOption: "A"}.Agrees())
	assert.False(t, DecisionSummary{PrimaryChoice: "B", TopOption: "A"}.Agrees())
	assert.False(t, DecisionSummary{}.Agrees())
}

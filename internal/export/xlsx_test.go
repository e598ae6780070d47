package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/decision-cli/internal/model"
)

func testDecision() *model.DecisionRecord {
	fw := model.Framework{
		DecisionType: "career_choice",
		Title:        "Job A or Job B",
		ScenarioText: "Job A pays more; Job B has better culture",
		Depth:        model.DepthBalanced,
		Options:      []model.Option{{Name: "Job A"}, {Name: "Job B"}},
		Questions: []model.Question{
			{ID: "q0", Text: "How important is salary?", CriteriaLink: "Salary", Spec: model.ScaleSpec{Min: 1, Max: 10}},
			{ID: "q1", Text: "Remote ok?", Spec: model.BooleanSpec{Labels: model.DefaultBooleanLabels}},
			{ID: "q2", Text: "Rank these", Spec: model.RankSpec{Options: []string{"Pay", "Team"}}},
		},
		ContextFactors: []string{"Commute"},
	}
	result := model.MergedResult{
		Title: "Job A or Job B",
		Options: []model.RankedOption{
			{Name: "Job A", Score: 7.8, Confidence: model.ConfidenceHigh, Pros: []string{"Pay", "Stability"}},
			{Name: "Job B", Score: 6.4, Confidence: model.ConfidenceMedium, Inferred: true},
		},
		Criteria: []model.CriterionSummary{
			{Name: "Salary", Category: "financial", WeightPercent: 60, Scores: map[string]float64{"Job A": 9, "Job B": 5}},
			{Name: "Culture", Category: "personal", WeightPercent: 40, Scores: map[string]float64{"Job A": 6}},
		},
		PrimaryChoice:  "Job A",
		Recommendation: "Salary carries the most weight",
		Alternatives:   []string{"Job B"},
	}
	rec := model.NewDecisionRecord(model.ScenarioInput{Text: fw.ScenarioText, Depth: fw.Depth}, fw, model.Responses{0: 8, 1: true, 2: []any{"Team", "Pay"}}, model.Evaluation{}, result)
	rec.ID = "dec-1"
	rec.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &rec
}

func sheetRows(t *testing.T, f *xlsx.File, name string) [][]string {
	t.Helper()
	sheet, ok := f.Sheet[name]
	require.True(t, ok, "sheet %s", name)
	var rows [][]string
	for _, row := range sheet.Rows {
		var cells []string
		for _, c := range row.Cells {
			cells = append(cells, c.String())
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestSaveXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decision.xlsx")
	require.NoError(t, SaveXLSX(path, testDecision()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 4)
	assert.Equal(t, SheetSummary, f.Sheets[0].Name)
	assert.Equal(t, SheetQuestions, f.Sheets[3].Name)

	summary := sheetRows(t, f, SheetSummary)
	assert.Equal(t, []string{"Decision", "dec-1"}, summary[0])
	assert.Equal(t, []string{"Primary choice", "Job A"}, summary[6])
	assert.Equal(t, "Top option", summary[8][0])
	assert.Equal(t, "Job A", summary[8][1])

	options := sheetRows(t, f, SheetOptions)
	require.Len(t, options, 3)
	assert.Equal(t, "Option", options[0][1])
	assert.Equal(t, "Job A", options[1][1])
	assert.Equal(t, "Pay\nStability", options[1][5])
	assert.Equal(t, "Job B", options[2][1])

	optSheet := f.Sheet[SheetOptions]
	score, err := optSheet.Rows[1].Cells[2].Float()
	require.NoError(t, err)
	assert.InDelta(t, 7.8, score, 0.001)
	assert.True(t, optSheet.Rows[2].Cells[4].Bool())

	criteria := sheetRows(t, f, SheetCriteria)
	assert.Equal(t, []string{"Criterion", "Category", "Weight %", "Job A", "Job B"}, criteria[0])
	assert.Equal(t, "Salary", criteria[1][0])
	assert.Equal(t, "60", criteria[1][2])

	questions := sheetRows(t, f, SheetQuestions)
	require.Len(t, questions, 4)
	assert.Equal(t, []string{"1", "scale", "How important is salary?", "Salary", "8"}, questions[1])
	assert.Equal(t, "Yes", questions[2][4])
	assert.Equal(t, "Team > Pay", questions[3][4])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testDecision()))
	assert.NotZero(t, buf.Len())

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 4)
}

func TestWorkbook_Nil(t *testing.T) {
	_, err := Workbook(nil)
	assert.Error(t, err)
}

func TestFormatAnswer(t *testing.T) {
	boolQ := model.Question{Spec: model.BooleanSpec{Labels: [2]string{"Stay", "Go"}}}
	tests := []struct {
		name string
		q    model.Question
		v    any
		want string
	}{
		{"nil", model.Question{}, nil, ""},
		{"bool label true", boolQ, true, "Go"},
		{"bool label false", boolQ, false, "Stay"},
		{"bool without spec", model.Question{}, true, "true"},
		{"int", model.Question{}, 7, "7"},
		{"float from json", model.Question{}, 7.0, "7"},
		{"strings", model.Question{}, []string{"a", "b"}, "a > b"},
		{"text", model.Question{}, "hello", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAnswer(tt.q, tt.v))
		})
	}
}

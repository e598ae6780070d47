package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleSpecMidpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		min, max int
		want     int
	}{
		{"one to ten", 1, 10, 5},
		{"one to five", 1, 5, 3},
		{"zero to hundred", 0, 100, 50},
		{"single point", 4, 4, 4},
		{"negative range", -5, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := ScaleSpec{Min: tt.min, Max: tt.max}
			assert.Equal(t, tt.want, s.Midpoint())
			assert.True(t, s.Contains(s.Midpoint()))
		})
	}
}

func TestScaleSpecContains(t *testing.T) {
	t.Parallel()
	s := ScaleSpec{Min: 1, Max: 10}
	assert.True(t, s.Contains(1))
	assert.True(t, s.Contains(10))
	assert.False(t, s.Contains(0))
	assert.False(t, s.Contains(11))
}

func TestQuestionID(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "q_0", QuestionID(0))
	assert.Equal(t, "q_12", QuestionID(12))
}

func TestQuestionJSON(t *testing.T) {
	t.Parallel()

	questions := []Question{
		{ID: "q_0", Text: "How important is salary?", CriteriaLink: "salary",
			Spec: ScaleSpec{Min: 1, Max: 10, MinLabel: "Low", MaxLabel: "High"}},
		{ID: "q_1", Text: "Rank these", Spec: RankSpec{Options: []string{"A", "B"}}},
		{ID: "q_2", Text: "Remote ok?", Spec: BooleanSpec{Labels: DefaultBooleanLabels}},
		{ID: "q_3", Text: "Anything else?", Spec: TextSpec{Placeholder: DefaultTextPlaceholder}},
		{ID: "q_4", Text: "Pick one", Spec: ChoiceSpec{Options: []string{"x", "y"}}},
	}

	data, err := json.Marshal(questions)
	require.NoError(t, err)

	var flat []map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "scale", flat[0]["type"])
	assert.Equal(t, "How important is salary?", flat[0]["question"])
	assert.EqualValues(t, 10, flat[0]["max"])
	assert.Equal(t, "mcq", flat[4]["type"])

	var back []Question
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, questions, back)
}

func TestQuestionJSON_Errors(t *testing.T) {
	t.Parallel()

	_, err := json.Marshal(Question{ID: "q_0"})
	assert.Error(t, err)

	var q Question
	err = json.Unmarshal([]byte(`{"id":"q_0","type":"slider"}`), &q)
	assert.Error(t, err)
}

func TestDefaultAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     QuestionSpec
		want     AnswerValue
		answered bool
	}{
		{"scale", ScaleSpec{Min: 1, Max: 10}, ScaleAnswer(5), true},
		{"rank", RankSpec{Options: []string{"A", "B"}}, RankAnswer{"A", "B"}, true},
		{"boolean", BooleanSpec{Labels: DefaultBooleanLabels}, BooleanAnswer{}, false},
		{"text", TextSpec{}, TextAnswer(""), false},
		{"mcq", ChoiceSpec{Options: []string{"x"}}, ChoiceAnswer{}, false},
		{"nil spec", nil, TextAnswer(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DefaultAnswer(Question{ID: "q_0", Spec: tt.spec})
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.answered, got.Answered())
		})
	}
}

func TestDefaultAnswer_RankCopiesOptions(t *testing.T) {
	t.Parallel()
	opts := []string{"A", "B", "C"}
	got := DefaultAnswer(Question{Spec: RankSpec{Options: opts}}).(RankAnswer)
	got[0] = "Z"
	assert.Equal(t, "A", opts[0])
}

func TestAnswerWire(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 7, ScaleAnswer(7).Wire())
	assert.Equal(t, []string{"B", "A"}, RankAnswer{"B", "A"}.Wire())
	assert.Nil(t, BooleanAnswer{}.Wire())
	assert.Equal(t, false, BooleanAnswer{Set: true}.Wire())
	assert.Equal(t, "hi", TextAnswer("hi").Wire())
	assert.Nil(t, ChoiceAnswer{}.Wire())
	assert.Equal(t, "x", ChoiceAnswer{Set: true, Value: "x"}.Wire())
}

func TestTextAnswerWhitespace(t *testing.T) {
	t.Parallel()
	assert.False(t, TextAnswer("   \t\n").Answered())
	assert.True(t, TextAnswer(" ok ").Answered())
}

package answer

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/decision-cli/internal/model"
)

func questions() []model.Question {
	return []model.Question{
		{ID: "q_0", Text: "Salary?", Spec: model.ScaleSpec{Min: 1, Max: 10}},
		{ID: "q_1", Text: "Rank", Spec: model.RankSpec{Options: []string{"A", "B", "C", "D"}}},
		{ID: "q_2", Text: "Remote?", Spec: model.BooleanSpec{Labels: model.DefaultBooleanLabels}},
		{ID: "q_3", Text: "Other?", Spec: model.TextSpec{Placeholder: model.DefaultTextPlaceholder}},
		{ID: "q_4", Text: "Pick", Spec: model.ChoiceSpec{Options: []string{"x", "y"}}},
	}
}

func TestNewStore_Defaults(t *testing.T) {
	t.Parallel()
	s := NewStore(questions())

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 2, s.Answered())
	assert.False(t, s.Complete())
	assert.Equal(t, []string{"q_2", "q_3", "q_4"}, s.Missing())

	v, err := s.Get("q_0")
	require.NoError(t, err)
	assert.Equal(t, model.ScaleAnswer(5), v)
}

func TestDefaultsCompleteOnlyWithoutBooleanTextChoice(t *testing.T) {
	t.Parallel()

	onlyScaleRank := []model.Question{
		{ID: "q_0", Spec: model.ScaleSpec{Min: 0, Max: 4}},
		{ID: "q_1", Spec: model.RankSpec{Options: []string{"A"}}},
	}
	assert.True(t, NewStore(onlyScaleRank).Complete())
	assert.True(t, NewStore(nil).Complete())

	for _, extra := range []model.QuestionSpec{
		model.BooleanSpec{Labels: model.DefaultBooleanLabels},
		model.TextSpec{},
		model.ChoiceSpec{Options: []string{"x"}},
	} {
		qs := append(slices.Clone(onlyScaleRank), model.Question{ID: "q_2", Spec: extra})
		assert.False(t, NewStore(qs).Complete(), "%T", extra)
	}
}

func TestStore_CompletesAfterAllAnswered(t *testing.T) {
	t.Parallel()
	s := NewStore(questions())

	require.NoError(t, s.SetBoolean("q_2", false))
	require.NoError(t, s.SetText("q_3", "flexible hours"))
	assert.False(t, s.Complete())
	require.NoError(t, s.SetChoice("q_4", "y"))
	assert.True(t, s.Complete())

	require.NoError(t, s.SetText("q_3", "   "))
	assert.False(t, s.Complete())
	assert.Equal(t, []string{"q_3"}, s.Missing())
}

func TestStore_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edit func(*Store) error
		want error
	}{
		{"unknown id", func(s *Store) error { return s.SetScale("q_9", 3) }, ErrUnknownQuestion},
		{"scale too low", func(s *Store) error { return s.SetScale("q_0", 0) }, ErrOutOfRange},
		{"scale too high", func(s *Store) error { return s.SetScale("q_0", 11) }, ErrOutOfRange},
		{"text on scale", func(s *Store) error { return s.SetText("q_0", "x") }, ErrTypeMismatch},
		{"bool on text", func(s *Store) error { return s.SetBoolean("q_3", true) }, ErrTypeMismatch},
		{"choice not an option", func(s *Store) error { return s.SetChoice("q_4", "z") }, ErrInvalidChoice},
		{"move out of range", func(s *Store) error { return s.MoveRank("q_1", 0, 4) }, ErrOutOfRange},
		{"move negative", func(s *Store) error { return s.MoveRank("q_1", -1, 0) }, ErrOutOfRange},
		{"move on choice", func(s *Store) error { return s.MoveRank("q_4", 0, 1) }, ErrTypeMismatch},
		{"rank not permutation", func(s *Store) error { return s.SetRank("q_1", []string{"A", "A", "B", "C"}) }, ErrInvalidChoice},
		{"rank too short", func(s *Store) error { return s.SetRank("q_1", []string{"A"}) }, ErrInvalidChoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewStore(questions())
			before := s.Snapshot()
			err := tt.edit(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestMoveRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to int
		want     model.RankAnswer
	}{
		{0, 2, model.RankAnswer{"B", "C", "A", "D"}},
		{3, 0, model.RankAnswer{"D", "A", "B", "C"}},
		{1, 1, model.RankAnswer{"A", "B", "C", "D"}},
		{2, 3, model.RankAnswer{"A", "B", "D", "C"}},
	}
	for _, tt := range tests {
		s := NewStore(questions())
		require.NoError(t, s.MoveRank("q_1", tt.from, tt.to))
		v, err := s.Get("q_1")
		require.NoError(t, err)
		assert.Equal(t, tt.want, v, "move %d->%d", tt.from, tt.to)
	}
}

func TestMoveRank_AlwaysPermutation(t *testing.T) {
	t.Parallel()
	s := NewStore(questions())
	opts := []string{"A", "B", "C", "D"}

	for step := range 50 {
		from, to := (step*7)%4, (step*3+1)%4
		require.NoError(t, s.MoveRank("q_1", from, to))
		v, _ := s.Get("q_1")
		got := slices.Clone([]string(v.(model.RankAnswer)))
		slices.Sort(got)
		assert.Equal(t, opts, got)
	}
	assert.True(t, s.Snapshot()["q_1"].Answered())
}

func TestSnapshotIsIndependent(t *testing.T) {
	t.Parallel()
	s := NewStore(questions())
	snap := s.Snapshot()
	snap["q_1"].(model.RankAnswer)[0] = "Z"

	v, _ := s.Get("q_1")
	assert.Equal(t, "A", v.(model.RankAnswer)[0])
}

func TestResponses(t *testing.T) {
	t.Parallel()
	s := NewStore(questions())
	require.NoError(t, s.SetScale("q_0", 9))
	require.NoError(t, s.SetBoolean("q_2", true))
	require.NoError(t, s.SetChoice("q_4", "x"))

	r := s.Responses()
	assert.Equal(t, 9, r[0])
	assert.Equal(t, []string{"A", "B", "C", "D"}, r[1])
	assert.Equal(t, true, r[2])
	assert.Equal(t, "", r[3])
	assert.Equal(t, "x", r[4])
}

func TestReset(t *testing.T) {
	t.Parallel()
	s := NewStore(questions())
	require.NoError(t, s.SetScale("q_0", 2))

	s.Reset(questions()[:1])
	assert.Equal(t, 1, s.Len())
	v, _ := s.Get("q_0")
	assert.Equal(t, model.ScaleAnswer(5), v)
	_, err := s.Get("q_1")
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestSet_Dispatch(t *testing.T) {
	t.Parallel()
	s := NewStore(questions())

	require.NoError(t, s.Set("q_0", model.ScaleAnswer(7)))
	require.NoError(t, s.Set("q_1", model.RankAnswer{"D", "C", "B", "A"}))
	require.NoError(t, s.Set("q_2", model.BooleanAnswer{Set: true, Value: true}))
	require.NoError(t, s.Set("q_3", model.TextAnswer("ok")))
	require.NoError(t, s.Set("q_4", model.ChoiceAnswer{Set: true, Value: "x"}))
	assert.True(t, s.Complete())

	require.NoError(t, s.Set("q_4", model.ChoiceAnswer{}))
	assert.False(t, s.Complete())
	assert.ErrorIs(t, s.Set("q_0", model.ChoiceAnswer{}), ErrTypeMismatch)
}

func TestDecode(t *testing.T) {
	t.Parallel()
	qs := questions()

	tests := []struct {
		name    string
		q       model.Question
		raw     any
		want    model.AnswerValue
		wantErr bool
	}{
		{"scale float", qs[0], float64(7), model.ScaleAnswer(7), false},
		{"scale int", qs[0], 3, model.ScaleAnswer(3), false},
		{"scale string", qs[0], " 4 ", model.ScaleAnswer(4), false},
		{"scale fraction", qs[0], 4.5, nil, true},
		{"scale bool", qs[0], true, nil, true},
		{"rank any list", qs[1], []any{"B", "A", "C", "D"}, model.RankAnswer{"B", "A", "C", "D"}, false},
		{"rank bad item", qs[1], []any{"B", 1}, nil, true},
		{"boolean true", qs[2], true, model.BooleanAnswer{Set: true, Value: true}, false},
		{"boolean label", qs[2], "No", model.BooleanAnswer{Set: true}, false},
		{"boolean nil", qs[2], nil, model.BooleanAnswer{}, false},
		{"boolean junk", qs[2], "maybe", nil, true},
		{"text", qs[3], "hi", model.TextAnswer("hi"), false},
		{"text number", qs[3], 3, nil, true},
		{"choice", qs[4], "x", model.ChoiceAnswer{Set: true, Value: "x"}, false},
		{"choice nil", qs[4], nil, model.ChoiceAnswer{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode(tt.q, tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTypeMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

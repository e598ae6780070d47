// Package answer holds the user's answers to a normalized question set and
// tracks whether every question has been answered.
package answer

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/decision-cli/internal/model"
)

// Sentinel errors. Every rejected edit leaves the store unchanged.
var (
	ErrUnknownQuestion = eris.New("answer: unknown question")
	ErrTypeMismatch    = eris.New("answer: value does not match question type")
	ErrOutOfRange      = eris.New("answer: value out of range")
	ErrInvalidChoice   = eris.New("answer: invalid choice")
)

// Store maps question IDs to answers. It is not safe for concurrent use;
// the wizard serializes access.
type Store struct {
	questions []model.Question
	index     map[string]int
	values    []model.AnswerValue
	answered  int
}

// NewStore returns a store seeded with the default answer of every question.
func NewStore(questions []model.Question) *Store {
	s := &Store{}
	s.Reset(questions)
	return s
}

// Reset discards all answers and reseeds defaults for questions.
func (s *Store) Reset(questions []model.Question) {
	s.questions = slices.Clone(questions)
	s.index = make(map[string]int, len(questions))
	s.values = make([]model.AnswerValue, len(questions))
	for i, q := range questions {
		s.index[q.ID] = i
		s.values[i] = model.DefaultAnswer(q)
	}
	s.recount()
}

// Len is the number of questions.
func (s *Store) Len() int { return len(s.questions) }

// Questions returns the question set the store was seeded with.
func (s *Store) Questions() []model.Question { return slices.Clone(s.questions) }

// Get returns the current answer for id.
func (s *Store) Get(id string) (model.AnswerValue, error) {
	i, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return cloneValue(s.values[i]), nil
}

// SetScale answers a scale question. v must lie within the bounds.
func (s *Store) SetScale(id string, v int) error {
	i, spec, err := specFor[model.ScaleSpec](s, id)
	if err != nil {
		return err
	}
	if !spec.Contains(v) {
		return eris.Wrapf(ErrOutOfRange, "answer: %s: %d not in %d..%d", id, v, spec.Min, spec.Max)
	}
	s.put(i, model.ScaleAnswer(v))
	return nil
}

// SetText answers a text question. Whitespace-only text leaves it unanswered.
func (s *Store) SetText(id, text string) error {
	i, _, err := specFor[model.TextSpec](s, id)
	if err != nil {
		return err
	}
	s.put(i, model.TextAnswer(text))
	return nil
}

// SetBoolean answers a boolean question.
func (s *Store) SetBoolean(id string, v bool) error {
	i, _, err := specFor[model.BooleanSpec](s, id)
	if err != nil {
		return err
	}
	s.put(i, model.BooleanAnswer{Set: true, Value: v})
	return nil
}

// SetChoice answers an mcq question with one of its options.
func (s *Store) SetChoice(id, option string) error {
	i, spec, err := specFor[model.ChoiceSpec](s, id)
	if err != nil {
		return err
	}
	if !slices.Contains(spec.Options, option) {
		return eris.Wrapf(ErrInvalidChoice, "answer: %s: %q is not an option", id, option)
	}
	s.put(i, model.ChoiceAnswer{Set: true, Value: option})
	return nil
}

// MoveRank moves the item at position from to position to, shifting the
// items in between. The result is always a permutation of the options.
func (s *Store) MoveRank(id string, from, to int) error {
	i, _, err := specFor[model.RankSpec](s, id)
	if err != nil {
		return err
	}
	cur := s.values[i].(model.RankAnswer)
	n := len(cur)
	if from < 0 || from >= n || to < 0 || to >= n {
		return eris.Wrapf(ErrOutOfRange, "answer: %s: move %d->%d outside 0..%d", id, from, to, n-1)
	}

	next := slices.Clone(cur)
	item := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, item)
	s.put(i, model.RankAnswer(next))
	return nil
}

// SetRank replaces a rank answer with order, which must be a permutation of
// the question's options.
func (s *Store) SetRank(id string, order []string) error {
	i, spec, err := specFor[model.RankSpec](s, id)
	if err != nil {
		return err
	}
	if !isPermutation(order, spec.Options) {
		return eris.Wrapf(ErrInvalidChoice, "answer: %s: ranking must order exactly the options %v", id, spec.Options)
	}
	s.put(i, model.RankAnswer(slices.Clone(order)))
	return nil
}

// Set applies any answer value, dispatching on its variant.
func (s *Store) Set(id string, v model.AnswerValue) error {
	switch a := v.(type) {
	case model.ScaleAnswer:
		return s.SetScale(id, int(a))
	case model.RankAnswer:
		return s.SetRank(id, a)
	case model.BooleanAnswer:
		if !a.Set {
			return s.clear(id, model.QuestionBoolean)
		}
		return s.SetBoolean(id, a.Value)
	case model.TextAnswer:
		return s.SetText(id, string(a))
	case model.ChoiceAnswer:
		if !a.Set {
			return s.clear(id, model.QuestionChoice)
		}
		return s.SetChoice(id, a.Value)
	default:
		return eris.Wrapf(ErrTypeMismatch, "answer: %s: unsupported value %T", id, v)
	}
}

// Complete reports whether every question is answered. An empty question
// set is complete.
func (s *Store) Complete() bool {
	return s.answered == len(s.questions)
}

// Answered is the number of answered questions.
func (s *Store) Answered() int { return s.answered }

// Missing lists the IDs of unanswered questions in order.
func (s *Store) Missing() []string {
	var out []string
	for i, v := range s.values {
		if !v.Answered() {
			out = append(out, s.questions[i].ID)
		}
	}
	return out
}

// Snapshot returns an independent copy of the answers keyed by question ID.
func (s *Store) Snapshot() map[string]model.AnswerValue {
	out := make(map[string]model.AnswerValue, len(s.values))
	for i, v := range s.values {
		out[s.questions[i].ID] = cloneValue(v)
	}
	return out
}

// Responses re-keys the answers by question position for the evaluate call.
func (s *Store) Responses() model.Responses {
	out := make(model.Responses, len(s.values))
	for i, v := range s.values {
		out[i] = v.Wire()
	}
	return out
}

func (s *Store) clear(id string, typ model.QuestionType) error {
	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	if s.questions[i].Type() != typ {
		return eris.Wrapf(ErrTypeMismatch, "answer: %s is %s, not %s", id, s.questions[i].Type(), typ)
	}
	s.put(i, model.DefaultAnswer(s.questions[i]))
	return nil
}

func (s *Store) lookup(id string) (int, error) {
	i, ok := s.index[id]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownQuestion, "answer: %q", id)
	}
	return i, nil
}

func (s *Store) put(i int, v model.AnswerValue) {
	s.values[i] = v
	s.recount()
}

func (s *Store) recount() {
	n := 0
	for _, v := range s.values {
		if v.Answered() {
			n++
		}
	}
	s.answered = n
}

func specFor[T model.QuestionSpec](s *Store, id string) (int, T, error) {
	var zero T
	i, err := s.lookup(id)
	if err != nil {
		return 0, zero, err
	}
	spec, ok := s.questions[i].Spec.(T)
	if !ok {
		return 0, zero, eris.Wrapf(ErrTypeMismatch, "answer: %s is %s, not %s", id, s.questions[i].Type(), zero.Type())
	}
	return i, spec, nil
}

func cloneValue(v model.AnswerValue) model.AnswerValue {
	if r, ok := v.(model.RankAnswer); ok {
		return slices.Clone(r)
	}
	return v
}

func isPermutation(order, options []string) bool {
	if len(order) != len(options) {
		return false
	}
	a, b := slices.Clone(order), slices.Clone(options)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

//go:build !integration

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/render"
	"github.com/sells-group/decision-cli/internal/stub"
	"github.com/sells-group/decision-cli/internal/wizard"
	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

const travelScenario = "Planning a tropical trip for fall break"

// newTestSession returns a session talking to the stub service, reading
// input from stdin.
func newTestSession(t *testing.T, stdin string) (*wizardSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(stub.New().Handler())
	t.Cleanup(srv.Close)

	var prompt, out bytes.Buffer
	s := &wizardSession{
		in:          bufio.NewReader(strings.NewReader(stdin)),
		prompt:      &prompt,
		out:         &out,
		format:      render.FormatText,
		interactive: true,
	}
	client := decisionapi.NewClient(decisionapi.WithBaseURL(srv.URL + "/api"))
	s.m = wizard.New(client, wizard.WithCompletion(func(_ context.Context, rec model.DecisionRecord) {
		s.last = &rec
	}))
	return s, &prompt, &out
}

func TestLoadAnswerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenario: Job A pays more; Job B has better culture
depth: quick
answers:
  q_0: 8
  1: yes
  2: [Team, Pay]
`), 0o600))

	af, err := loadAnswerFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Job A pays more; Job B has better culture", af.Scenario)
	assert.Equal(t, "quick", af.Depth)
	assert.Equal(t, 8, af.Answers["q_0"])
	assert.Equal(t, "yes", af.Answers["q_1"])
	assert.Equal(t, []any{"Team", "Pay"}, af.Answers["q_2"])
}

func TestLoadAnswerFile_Errors(t *testing.T) {
	_, err := loadAnswerFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("answers: [unclosed"), 0o600))
	_, err = loadAnswerFile(path)
	assert.Error(t, err)
}

func TestParseInput(t *testing.T) {
	choice := model.Question{ID: "q_0", Spec: model.ChoiceSpec{Options: []string{"First week", "Second week", "Either"}}}
	rank := model.Question{ID: "q_1", Spec: model.RankSpec{Options: []string{"Budget", "Weather", "Safety"}}}
	scale := model.Question{ID: "q_2", Spec: model.ScaleSpec{Min: 1, Max: 10}}

	tests := []struct {
		name    string
		q       model.Question
		cur     model.AnswerValue
		line    string
		want    any
		wantErr bool
	}{
		{"choice by number", choice, nil, "2", "Second week", false},
		{"choice by name", choice, nil, "Either", "Either", false},
		{"choice number out of range passes through", choice, nil, "9", "9", false},
		{"rank by positions", rank, model.RankAnswer{"Budget", "Weather", "Safety"}, "3,1,2", []string{"Safety", "Budget", "Weather"}, false},
		{"rank uses current order", rank, model.RankAnswer{"Safety", "Budget", "Weather"}, "2 1 3", []string{"Budget", "Safety", "Weather"}, false},
		{"rank without current", rank, nil, "1,2,3", []string{"Budget", "Weather", "Safety"}, false},
		{"rank bad position", rank, nil, "1,4", nil, true},
		{"rank not a number", rank, nil, "Budget", nil, true},
		{"scale passes through", scale, nil, "7", "7", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInput(tt.q, tt.cur, tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWizardSession_Interactive(t *testing.T) {
	stdin := strings.Join([]string{
		travelScenario,
		"quick",
		"",      // keep budget default
		"8",     // adventure
		"maybe", // rejected, asked again
		"yes",
		"", // finish
	}, "\n") + "\n"
	s, prompt, out := newTestSession(t, stdin)

	require.NoError(t, s.run(context.Background()))

	st := s.m.State()
	assert.Equal(t, wizard.PhaseResults, st.Phase)
	assert.Equal(t, model.DepthQuick, st.Scenario.Depth)
	assert.Equal(t, 8, st.Values["q_1"])
	assert.Equal(t, true, st.Values["q_2"])
	assert.Contains(t, prompt.String(), "[1/3]")
	assert.Contains(t, prompt.String(), "is not yes or no")
	assert.Contains(t, out.String(), "Recommendation: "+st.Result.PrimaryChoice)
	require.NotNil(t, s.last)
	assert.Equal(t, st.DecisionID, s.last.ID)
}

func TestWizardSession_BackAndRestart(t *testing.T) {
	stdin := strings.Join([]string{
		travelScenario,
		"quick",
		backCommand,
		"", // keep scenario text
		"", // keep depth
		"", "", "no",
		"r", // start over
		"Job A pays more; Job B has better culture",
		"quick",
		"", "yes", "",
		"",
	}, "\n") + "\n"
	s, prompt, _ := newTestSession(t, stdin)

	require.NoError(t, s.run(context.Background()))

	st := s.m.State()
	assert.Equal(t, wizard.PhaseResults, st.Phase)
	assert.Equal(t, "career_choice", st.Framework.DecisionType)
	assert.Contains(t, prompt.String(), "["+travelScenario+"]")
}

func TestWizardSession_InputClosed(t *testing.T) {
	s, _, _ := newTestSession(t, travelScenario+"\nquick\n")
	err := s.run(context.Background())
	assert.ErrorIs(t, err, errInputClosed)
	assert.Equal(t, wizard.PhaseQuestions, s.m.Phase())
}

func TestWizardSession_AnswerFile(t *testing.T) {
	s, _, out := newTestSession(t, "")
	s.interactive = false
	s.format = render.FormatJSON
	s.scenario = travelScenario
	s.exportPath = filepath.Join(t.TempDir(), "decision.xlsx")
	s.answers = map[string]any{"q_2": "yes", "q_0": 2500, "q_9": "ignored"}
	require.Equal(t, wizard.OutcomeApplied, s.m.SetDepth(model.DepthQuick))

	require.NoError(t, s.run(context.Background()))

	var result model.MergedResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.NotEmpty(t, result.PrimaryChoice)
	assert.Equal(t, 2500, s.m.State().Values["q_0"])

	f, err := xlsx.OpenFile(s.exportPath)
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 4)
}

func TestWizardSession_AnswerFileIncomplete(t *testing.T) {
	s, _, _ := newTestSession(t, "")
	s.interactive = false
	s.scenario = travelScenario
	s.m.SetDepth(model.DepthQuick)

	err := s.run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q_2")
}

func TestWizardSession_BlankScenario(t *testing.T) {
	s, _, _ := newTestSession(t, "")
	s.interactive = false
	err := s.run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario is required")
}

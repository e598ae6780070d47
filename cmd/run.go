package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/decision-cli/internal/export"
	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/monitoring"
	"github.com/sells-group/decision-cli/internal/render"
	"github.com/sells-group/decision-cli/internal/store"
	"github.com/sells-group/decision-cli/internal/wizard"
)

var (
	errInputClosed = eris.New("run: input closed")
	errWentBack    = eris.New("run: back to scenario")
)

// backCommand typed at any question prompt returns to the scenario.
const backCommand = ":back"

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Walk through a decision in the terminal",
	Long: `Describe a decision, answer the clarifying questions, and get a ranked
recommendation. Without --answers the wizard prompts on stdin; with it the
run is fully non-interactive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		depthFlag, _ := cmd.Flags().GetString("depth")
		formatFlag, _ := cmd.Flags().GetString("format")
		answersPath, _ := cmd.Flags().GetString("answers")
		exportPath, _ := cmd.Flags().GetString("export")
		noSave, _ := cmd.Flags().GetBool("no-save")

		format, err := render.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		sess := &wizardSession{
			in:          bufio.NewReader(cmd.InOrStdin()),
			prompt:      cmd.ErrOrStderr(),
			out:         cmd.OutOrStdout(),
			format:      format,
			useColor:    format == render.FormatText && render.ColorEnabled(os.Stdout),
			exportPath:  exportPath,
			interactive: answersPath == "",
			depthFixed:  depthFlag != "",
		}
		if len(args) > 0 {
			sess.scenario = args[0]
		}

		depthInput := depthFlag
		if answersPath != "" {
			af, err := loadAnswerFile(answersPath)
			if err != nil {
				return err
			}
			sess.answers = af.Answers
			if sess.scenario == "" {
				sess.scenario = af.Scenario
			}
			if depthInput == "" {
				depthInput = af.Depth
			}
		}
		if depthInput == "" {
			depthInput = cfg.Wizard.DefaultDepth
		}
		depth, err := model.ParseDepth(depthInput)
		if err != nil {
			return err
		}

		var st store.Store
		if !noSave {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		recorder := monitoring.NewRecorder()
		opts := wizardOptions(depth, recorder, nil)
		opts = append(opts, wizard.WithCompletion(func(ctx context.Context, rec model.DecisionRecord) {
			sess.last = &rec
			if st != nil {
				persistDecision(st)(ctx, rec)
			}
		}))
		sess.m = wizard.New(initClient(), opts...)

		if err := sess.run(ctx); err != nil {
			return err
		}
		if n := recorder.Total(); n > 0 {
			zap.L().Warn("upstream responses needed repair", zap.Int("violations", n))
		}
		return nil
	},
}

// answerFile drives a non-interactive run. Answer keys are question IDs
// (q_0, q_1, ...) or bare question positions.
type answerFile struct {
	Scenario string         `yaml:"scenario"`
	Depth    string         `yaml:"depth"`
	Answers  map[string]any `yaml:"answers"`
}

func loadAnswerFile(path string) (*answerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "run: read answers %s", path)
	}
	var af answerFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, eris.Wrapf(err, "run: parse answers %s", path)
	}

	norm := make(map[string]any, len(af.Answers))
	for k, v := range af.Answers {
		if i, err := strconv.Atoi(k); err == nil {
			k = model.QuestionID(i)
		}
		norm[k] = v
	}
	af.Answers = norm
	return &af, nil
}

// wizardSession drives one machine from the terminal.
type wizardSession struct {
	m      *wizard.Machine
	in     *bufio.Reader
	prompt io.Writer
	out    io.Writer

	format      render.Format
	useColor    bool
	exportPath  string
	interactive bool
	depthFixed  bool

	scenario string
	answers  map[string]any
	last     *model.DecisionRecord
}

func (s *wizardSession) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch s.m.Phase() {
		case wizard.PhaseScenario:
			if err := s.describe(ctx); err != nil {
				return err
			}
		case wizard.PhaseQuestions:
			err := s.answerQuestions()
			if errors.Is(err, errWentBack) {
				continue
			}
			if err != nil {
				return err
			}
			if err := s.evaluate(ctx); err != nil {
				return err
			}
		case wizard.PhaseResults:
			if err := s.show(); err != nil {
				return err
			}
			again, err := s.again()
			if err != nil || !again {
				return err
			}
		}
	}
}

// describe collects the scenario and depth and submits them for analysis.
func (s *wizardSession) describe(ctx context.Context) error {
	text := s.scenario
	if s.interactive {
		current := s.m.State().Scenario
		if text == "" {
			text = current.Text
		}
		var err error
		if text, err = s.askScenario(text); err != nil {
			return err
		}
		if !s.depthFixed {
			d, err := s.askDepth(current.Depth)
			if err != nil {
				return err
			}
			s.m.SetDepth(d)
		}
	}
	s.scenario = ""

	for {
		var (
			out wizard.Outcome
			err error
		)
		withSpinner("Analyzing your decision...", func() {
			out, err = s.m.SubmitScenario(ctx, model.ScenarioInput{Text: text})
		})
		if err == nil && out == wizard.OutcomeRejected {
			return eris.New("run: a scenario is required")
		}
		if err == nil {
			break
		}
		if retry, rerr := s.confirmRetry(err); rerr != nil || !retry {
			return errors.Join(err, rerr)
		}
	}

	st := s.m.State()
	s.printf("\n%s\n", st.Framework.Title)
	s.printf("Options: %s\n", strings.Join(st.Framework.OptionNames(), ", "))
	if len(st.Violations) > 0 {
		s.printf("Note: %d issue(s) in the generated questions were repaired.\n", len(st.Violations))
	}
	if s.interactive {
		s.printf("Type %s at any question to edit the scenario.\n", backCommand)
	}
	return nil
}

func (s *wizardSession) askScenario(current string) (string, error) {
	s.printf("\nDescribe the decision you're facing.\n")
	for {
		prompt := "> "
		if current != "" {
			prompt = fmt.Sprintf("[%s]\n> ", current)
		}
		line, err := s.readLine(prompt)
		if err != nil {
			return "", err
		}
		if line == "" {
			line = current
		}
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
		s.printf("  a scenario is required\n")
	}
}

func (s *wizardSession) askDepth(current model.Depth) (model.Depth, error) {
	if current == "" {
		current = model.DefaultDepth
	}
	for {
		line, err := s.readLine(fmt.Sprintf("Depth (quick, balanced, thorough) [%s]: ", current))
		if err != nil {
			return "", err
		}
		if line == "" {
			return current, nil
		}
		d, err := model.ParseDepth(line)
		if err == nil {
			return d, nil
		}
		s.printf("  %v\n", err)
	}
}

// answerQuestions applies the answer file, or prompts for every question
// in order when interactive.
func (s *wizardSession) answerQuestions() error {
	st := s.m.State()
	fw := st.Framework

	if !s.interactive {
		for _, id := range slices.Sorted(maps.Keys(s.answers)) {
			if fw.QuestionIndex(id) < 0 {
				zap.L().Warn("ignoring answer for unknown question", zap.String("question_id", id))
				continue
			}
			if err := s.set(id, s.answers[id]); err != nil {
				return eris.Wrapf(err, "run: answer %s", id)
			}
		}
		if st = s.m.State(); !st.Complete {
			return eris.Errorf("run: unanswered questions: %s", strings.Join(st.Missing, ", "))
		}
		return nil
	}

	for i, q := range fw.Questions {
		if err := s.ask(i, len(fw.Questions), q); err != nil {
			return err
		}
	}
	return nil
}

// ask prompts for one question until an acceptable answer is given. Empty
// input keeps the current answer when there is one.
func (s *wizardSession) ask(i, n int, q model.Question) error {
	s.printf("\n[%d/%d] %s\n", i+1, n, q.Text)
	for {
		cur := s.m.State().Answers[q.ID]
		line, err := s.readLine(s.hint(q, cur))
		if err != nil {
			return err
		}
		if line == backCommand {
			s.m.Back()
			return errWentBack
		}
		if line == "" {
			if cur != nil && cur.Answered() {
				return nil
			}
			s.printf("  an answer is required\n")
			continue
		}

		raw, err := parseInput(q, cur, line)
		if err == nil {
			err = s.set(q.ID, raw)
		}
		if err == nil {
			return nil
		}
		s.printf("  %v\n", err)
	}
}

// hint prints any option list for q and returns the input prompt.
func (s *wizardSession) hint(q model.Question, cur model.AnswerValue) string {
	switch spec := q.Spec.(type) {
	case model.ScaleSpec:
		p := fmt.Sprintf("(%d-%d", spec.Min, spec.Max)
		if spec.MinLabel != "" || spec.MaxLabel != "" {
			p += fmt.Sprintf(", %s to %s", spec.MinLabel, spec.MaxLabel)
		}
		p += ")"
		if v, ok := cur.(model.ScaleAnswer); ok {
			p += fmt.Sprintf(" [%d]", int(v))
		}
		return p + ": "
	case model.BooleanSpec:
		p := fmt.Sprintf("(%s/%s)", spec.Labels[1], spec.Labels[0])
		if v, ok := cur.(model.BooleanAnswer); ok && v.Set {
			p += fmt.Sprintf(" [%s]", spec.Labels[boolIndex(v.Value)])
		}
		return p + ": "
	case model.ChoiceSpec:
		for j, o := range spec.Options {
			s.printf("  %d) %s\n", j+1, o)
		}
		if v, ok := cur.(model.ChoiceAnswer); ok && v.Set {
			return fmt.Sprintf("choice [%s]: ", v.Value)
		}
		return "choice: "
	case model.RankSpec:
		if order, ok := cur.(model.RankAnswer); ok {
			for j, o := range order {
				s.printf("  %d) %s\n", j+1, o)
			}
		}
		return "new order, most important first (e.g. 2,1,3) [keep]: "
	case model.TextSpec:
		if v, ok := cur.(model.TextAnswer); ok && v.Answered() {
			return fmt.Sprintf("[%s]\n> ", string(v))
		}
		if spec.Placeholder != "" {
			return fmt.Sprintf("(%s)\n> ", spec.Placeholder)
		}
		return "> "
	default:
		return "> "
	}
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseInput turns a typed line into a raw value for DecodeAnswer. Choice
// and rank questions accept option numbers as shown in the prompt.
func parseInput(q model.Question, cur model.AnswerValue, line string) (any, error) {
	switch spec := q.Spec.(type) {
	case model.ChoiceSpec:
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(spec.Options) {
			return spec.Options[n-1], nil
		}
		return line, nil
	case model.RankSpec:
		order, _ := cur.(model.RankAnswer)
		if len(order) == 0 {
			order = spec.Options
		}
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' })
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil || n < 1 || n > len(order) {
				return nil, eris.Errorf("enter positions between 1 and %d, such as 2,1,3", len(order))
			}
			names = append(names, order[n-1])
		}
		return names, nil
	default:
		return line, nil
	}
}

func (s *wizardSession) set(id string, raw any) error {
	v, err := s.m.DecodeAnswer(id, raw)
	if err != nil {
		return err
	}
	out, err := s.m.SetAnswer(id, v)
	if err != nil {
		return err
	}
	if out != wizard.OutcomeApplied {
		return eris.Errorf("run: answer %s was %s", id, out)
	}
	return nil
}

func (s *wizardSession) evaluate(ctx context.Context) error {
	for {
		var (
			out wizard.Outcome
			err error
		)
		withSpinner("Evaluating options...", func() {
			out, err = s.m.Submit(ctx)
		})
		if err == nil && out != wizard.OutcomeApplied {
			return eris.Errorf("run: evaluation was %s", out)
		}
		if err == nil {
			return nil
		}
		if retry, rerr := s.confirmRetry(err); rerr != nil || !retry {
			return errors.Join(err, rerr)
		}
	}
}

func (s *wizardSession) show() error {
	st := s.m.State()
	if s.format == render.FormatText {
		_, _ = fmt.Fprintln(s.out)
	}
	if err := render.Result(s.out, s.format, st.Result, s.useColor); err != nil {
		return err
	}

	if s.exportPath != "" && s.last != nil {
		if err := export.SaveXLSX(s.exportPath, s.last); err != nil {
			return err
		}
		s.printf("Exported to %s\n", s.exportPath)
	}
	return nil
}

// again offers to start over after a result. Non-interactive runs stop.
func (s *wizardSession) again() (bool, error) {
	if !s.interactive {
		return false, nil
	}
	line, err := s.readLine("\n[r] start over, Enter to finish: ")
	if errors.Is(err, errInputClosed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if strings.EqualFold(line, "r") {
		depth := s.m.State().Scenario.Depth
		s.m.Restart()
		if s.depthFixed {
			s.m.SetDepth(depth)
		}
		return true, nil
	}
	return false, nil
}

// confirmRetry reports a failed call and, when interactive, asks whether
// to try again.
func (s *wizardSession) confirmRetry(callErr error) (bool, error) {
	if !s.interactive {
		return false, nil
	}
	msg := fmt.Sprintf("  %v\n", callErr)
	if s.useColor {
		msg = color.RedString(msg)
	}
	s.printf("%s", msg)
	line, err := s.readLine("Try again? [Y/n]: ")
	if err != nil {
		return false, err
	}
	return line == "" || strings.EqualFold(line, "y") || strings.EqualFold(line, "yes"), nil
}

func (s *wizardSession) readLine(prompt string) (string, error) {
	s.printf("%s", prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", errInputClosed
		}
		return "", eris.Wrap(err, "run: read input")
	}
	return strings.TrimSpace(line), nil
}

func (s *wizardSession) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.prompt, format, args...)
}

func init() {
	runCmd.Flags().String("depth", "", "analysis depth: quick, balanced or thorough (default from config)")
	runCmd.Flags().String("format", "text", "output format: text, json or yaml")
	runCmd.Flags().String("answers", "", "YAML file with scenario, depth and answers; disables prompts")
	runCmd.Flags().String("export", "", "write the decision to an .xlsx workbook")
	runCmd.Flags().Bool("no-save", false, "do not record the decision in history")
	rootCmd.AddCommand(runCmd)
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/monitoring"
	"github.com/sells-group/decision-cli/internal/render"
	"github.com/sells-group/decision-cli/internal/resilience"
	"github.com/sells-group/decision-cli/internal/store"
	"github.com/sells-group/decision-cli/internal/wizard"
	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

// initStore opens and migrates the configured decision history.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "decisions.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// initClient builds the upstream client with retries, circuit breaking and
// rate limiting from config.
func initClient() decisionapi.Client {
	return decisionapi.NewClient(
		decisionapi.WithBaseURL(cfg.Upstream.BaseURL),
		decisionapi.WithTimeout(time.Duration(cfg.Upstream.TimeoutSecs)*time.Second),
		decisionapi.WithGuard(resilience.NewGuard(cfg.Upstream.Guard())),
	)
}

// wizardOptions returns the machine options shared by every entry point.
// st may be nil, in which case completed decisions are not persisted.
func wizardOptions(depth model.Depth, rec *monitoring.Recorder, st store.Store) []wizard.Option {
	opts := []wizard.Option{
		wizard.WithStrictContract(cfg.Wizard.StrictContract),
		wizard.WithDefaultDepth(depth),
	}
	if rec != nil {
		opts = append(opts, wizard.WithViolationRecorder(rec))
	}
	if st != nil {
		opts = append(opts, wizard.WithCompletion(persistDecision(st)))
	}
	return opts
}

// persistDecision saves each completed decision. Failures are logged only;
// the wizard result stands either way.
func persistDecision(st store.Store) wizard.CompletionFunc {
	return func(ctx context.Context, rec model.DecisionRecord) {
		if err := st.SaveDecision(context.WithoutCancel(ctx), &rec); err != nil {
			zap.L().Error("failed to save decision",
				zap.String("decision_id", rec.ID),
				zap.Error(err),
			)
			return
		}
		zap.L().Info("decision saved",
			zap.String("decision_id", rec.ID),
			zap.String("primary_choice", rec.Result.PrimaryChoice),
		)
	}
}

// withSpinner runs fn while a spinner animates on stderr. Nothing is drawn
// when stderr is not a terminal.
func withSpinner(label string, fn func()) {
	if !render.ColorEnabled(os.Stderr) {
		fn()
		return
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + label
	s.Start()
	defer s.Stop()
	fn()
}

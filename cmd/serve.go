package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/decision-cli/internal/api"
	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/monitoring"
	"github.com/sells-group/decision-cli/internal/wizard"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wizard session API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		depth, err := model.ParseDepth(cfg.Wizard.DefaultDepth)
		if err != nil {
			return err
		}

		recorder := monitoring.NewRecorder()
		client := initClient()
		opts := wizardOptions(depth, recorder, st)
		ttl := time.Duration(cfg.Server.SessionTTLMins) * time.Minute
		sessions := wizard.NewRegistry(func() *wizard.Machine {
			return wizard.New(client, opts...)
		}, ttl)

		srv := api.New(sessions, client,
			api.WithHistory(st),
			api.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		)

		var background []func(context.Context) error
		if ttl > 0 {
			background = append(background, func(ctx context.Context) error {
				return sessions.Run(ctx, time.Minute)
			})
		}
		if cfg.Monitoring.WebhookURL != "" {
			checker := monitoring.NewChecker(
				monitoring.NewCollector(st, recorder),
				monitoring.NewAlerter(cfg.Monitoring),
				cfg.Monitoring,
			)
			background = append(background, checker.Run)
		}

		return runServer(ctx, cfg.Server.Port, srv.Handler(), background...)
	},
}

// runServer serves h on port until ctx is cancelled, running each
// background task alongside it. The server drains in-flight requests
// before returning.
func runServer(ctx context.Context, port int, h http.Handler, background ...func(context.Context) error) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
	})
	for _, fn := range background {
		g.Go(func() error { return fn(gctx) })
	}
	return g.Wait()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

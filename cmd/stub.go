package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/decision-cli/internal/stub"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve a canned decision analysis service",
	Long:  "Answers /api/analyze, /api/evaluate and /api/test with canned frameworks and deterministic scores, for demos and offline runs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Stub.Port = port
		}
		if cmd.Flags().Changed("latency") {
			latency, _ := cmd.Flags().GetDuration("latency")
			cfg.Stub.LatencyMs = int(latency / time.Millisecond)
		}
		if err := cfg.Validate("stub"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s := stub.New(stub.WithLatency(time.Duration(cfg.Stub.LatencyMs) * time.Millisecond))
		return runServer(ctx, cfg.Stub.Port, s.Handler())
	},
}

func init() {
	stubCmd.Flags().Int("port", 0, "stub port (default from config)")
	stubCmd.Flags().Duration("latency", 0, "artificial delay per analyze/evaluate call (default from config)")
	rootCmd.AddCommand(stubCmd)
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/decision-cli/internal/export"
	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/monitoring"
	"github.com/sells-group/decision-cli/internal/render"
	"github.com/sells-group/decision-cli/internal/store"
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Inspect decision history",
	Long:  "Commands for listing, viewing, exporting, and summarizing completed decisions.",
}

// -- decisions list --

var decisionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List completed decisions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		depthStr, _ := cmd.Flags().GetString("depth")
		search, _ := cmd.Flags().GetString("search")
		since, _ := cmd.Flags().GetDuration("since")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		filter := store.DecisionFilter{
			Search: search,
			Limit:  limit,
			Offset: offset,
		}
		if depthStr != "" {
			if filter.Depth, err = model.ParseDepth(depthStr); err != nil {
				return err
			}
		}
		if since > 0 {
			filter.Since = time.Now().Add(-since)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ds, err := st.ListDecisions(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "decisions list")
		}
		return render.Decisions(cmd.OutOrStdout(), format, ds)
	},
}

// -- decisions show --

var decisionsShowCmd = &cobra.Command{
	Use:   "show <decision-id>",
	Short: "Show the full result of a decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec, err := st.GetDecision(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "decisions show")
		}

		w := cmd.OutOrStdout()
		if format != render.FormatText {
			return render.Encode(w, format, rec)
		}
		_, _ = fmt.Fprintf(w, "Decision %s (%s, %s)\n", rec.ID, rec.Scenario.Depth, rec.CreatedAt.Local().Format(time.DateTime))
		_, _ = fmt.Fprintf(w, "Scenario: %s\n\n", rec.Scenario.Text)
		return render.Result(w, format, &rec.Result, render.ColorEnabled(os.Stdout))
	},
}

// -- decisions export --

var decisionsExportCmd = &cobra.Command{
	Use:   "export <decision-id>",
	Short: "Export a decision to an .xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec, err := st.GetDecision(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "decisions export")
		}

		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = rec.ID + ".xlsx"
		}
		if err := export.SaveXLSX(path, rec); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported decision %s to %s\n", rec.ID, path)
		return nil
	},
}

// -- decisions delete --

var decisionsDeleteCmd = &cobra.Command{
	Use:   "delete <decision-id>",
	Short: "Delete a decision from history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteDecision(ctx, args[0]); err != nil {
			return eris.Wrap(err, "decisions delete")
		}
		fmt.Fprintf(os.Stderr, "Deleted decision %s\n", args[0])
		return nil
	},
}

// -- decisions stats --

var decisionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recent decisions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		hours, _ := cmd.Flags().GetInt("hours")
		if !cmd.Flags().Changed("hours") {
			hours = cfg.Monitoring.LookbackWindowHours
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := monitoring.NewCollector(st, nil).Collect(ctx, hours)
		if err != nil {
			return eris.Wrap(err, "decisions stats")
		}
		return render.Snapshot(cmd.OutOrStdout(), format, snap, render.ColorEnabled(os.Stdout))
	},
}

func formatFlag(cmd *cobra.Command) (render.Format, error) {
	s, _ := cmd.Flags().GetString("format")
	return render.ParseFormat(s)
}

func init() {
	decisionsListCmd.Flags().String("depth", "", "filter by depth (quick, balanced, thorough)")
	decisionsListCmd.Flags().String("search", "", "filter by scenario or title text")
	decisionsListCmd.Flags().Duration("since", 0, "only decisions newer than this (e.g. 24h, 168h)")
	decisionsListCmd.Flags().Int("limit", 50, "max number of decisions to display")
	decisionsListCmd.Flags().Int("offset", 0, "number of decisions to skip")

	decisionsExportCmd.Flags().StringP("output", "o", "", "workbook path (default <decision-id>.xlsx)")

	decisionsStatsCmd.Flags().Int("hours", 24, "lookback window in hours; 0 covers all history (default from config)")

	for _, c := range []*cobra.Command{decisionsListCmd, decisionsShowCmd, decisionsStatsCmd} {
		c.Flags().String("format", "text", "output format: text, json or yaml")
	}

	decisionsCmd.AddCommand(decisionsListCmd)
	decisionsCmd.AddCommand(decisionsShowCmd)
	decisionsCmd.AddCommand(decisionsExportCmd)
	decisionsCmd.AddCommand(decisionsDeleteCmd)
	decisionsCmd.AddCommand(decisionsStatsCmd)
	rootCmd.AddCommand(decisionsCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/decision-cli/internal/render"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the decision analysis service is reachable",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := render.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		status, err := initClient().TestConnection(cmd.Context())
		if err != nil {
			return eris.Wrapf(err, "ping %s", cfg.Upstream.BaseURL)
		}

		if format != render.FormatText {
			return render.Encode(cmd.OutOrStdout(), format, status)
		}
		ok := color.New(color.FgGreen)
		if !render.ColorEnabled(os.Stdout) {
			ok.DisableColor()
		}
		_, _ = ok.Fprintf(cmd.OutOrStdout(), "%s", status.Status)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), " %s (%s)\n", status.Message, status.Timestamp)
		return nil
	},
}

func init() {
	pingCmd.Flags().String("format", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(pingCmd)
}

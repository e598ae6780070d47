package render

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/monitoring"
	"github.com/sells-group/decision-cli/internal/store"
)

// Decisions writes a decision history listing.
func Decisions(w io.Writer, f Format, ds []store.DecisionSummary) error {
	if f != FormatText {
		if ds == nil {
			ds = []store.DecisionSummary{}
		}
		return Encode(w, f, ds)
	}
	if len(ds) == 0 {
		fmt.Fprintln(w, "No decisions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tDEPTH\tTITLE\tTOP OPTION\tSCORE\tPRIMARY CHOICE")
	for _, d := range ds {
		title := d.Title
		if title == "" {
			title = truncate(d.Scenario, 40)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			d.ID, d.CreatedAt.Local().Format(time.DateTime), d.Depth, title, d.TopOption, d.TopScore, d.PrimaryChoice)
	}
	return tw.Flush()
}

// Snapshot writes a monitoring snapshot.
func Snapshot(w io.Writer, f Format, s *monitoring.MetricsSnapshot, useColor bool) error {
	if f != FormatText {
		return Encode(w, f, s)
	}
	p := New(w, useColor)

	window := "all time"
	if s.LookbackHours > 0 {
		window = fmt.Sprintf("last %dh", s.LookbackHours)
	}
	p.heading(fmt.Sprintf("Decisions (%s)", window))
	p.printf("  Total:           %d\n", s.DecisionsTotal)

	depths := []model.Depth{model.DepthQuick, model.DepthBalanced, model.DepthThorough}
	for _, d := range depths {
		if n := s.ByDepth[d]; n > 0 {
			p.printf("    %-14s %d\n", p.label(string(d))+":", n)
		}
	}
	if s.DecisionsTotal > 0 {
		p.printf("  Avg top score:   %.1f\n", s.AvgTopScore)
		p.printf("  Agreement:       %.0f%% (%d of %d)\n", s.AgreementRate*100, s.Agreed, s.DecisionsTotal)
	}

	if s.ViolationsTotal > 0 {
		p.println()
		p.heading("Contract violations")
		kinds := make([]string, 0, len(s.Violations))
		for k := range s.Violations {
			kinds = append(kinds, string(k))
		}
		slices.Sort(kinds)
		for _, k := range kinds {
			_, _ = p.amber.Fprintf(p.w, "  %-28s %d\n", k, s.Violations[model.ViolationKind(k)])
		}
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

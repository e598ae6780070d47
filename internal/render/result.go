package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/sells-group/decision-cli/internal/model"
)

const barWidth = 20

// Result writes a merged result in the given format.
func Result(w io.Writer, f Format, r *model.MergedResult, useColor bool) error {
	if f != FormatText {
		return Encode(w, f, r)
	}
	New(w, useColor).Result(r)
	return nil
}

// Result prints a human-readable report: verdict, ranked options, criteria
// weights, then alternatives and red flags.
func (p *Printer) Result(r *model.MergedResult) {
	if r == nil {
		return
	}
	if r.Title != "" {
		_, _ = p.cyan.Fprintln(p.w, r.Title)
		_, _ = p.dim.Fprintln(p.w, strings.Repeat("━", max(len(r.Title), 20)))
	}

	if r.PrimaryChoice != "" {
		p.printf("Recommendation: ")
		_, _ = p.pick.Fprintln(p.w, r.PrimaryChoice)
		if r.Recommendation != "" {
			p.printf("  %s\n", r.Recommendation)
		}
		if top := r.Top(); top != nil && top.Name != r.PrimaryChoice {
			_, _ = p.amber.Fprintf(p.w, "  Note: %s has the highest score (%.1f).\n", top.Name, top.Score)
		}
		p.println()
	}

	p.heading("Ranked options")
	nameWidth := 0
	for _, o := range r.Options {
		nameWidth = max(nameWidth, len(o.Name))
	}
	for i, o := range r.Options {
		name := o.Name
		if o.Inferred {
			name += "*"
		}
		p.printf("%2d. %-*s %4.1f  ", i+1, nameWidth+1, name, o.Score)
		p.bar(o.Score)
		_, _ = p.dim.Fprintf(p.w, "  %s confidence\n", p.label(string(o.Confidence)))
		for _, s := range o.Pros {
			_, _ = p.green.Fprintf(p.w, "      + %s\n", s)
		}
		for _, s := range o.Cons {
			_, _ = p.red.Fprintf(p.w, "      - %s\n", s)
		}
	}
	if slices.ContainsFunc(r.Options, func(o model.RankedOption) bool { return o.Inferred }) {
		_, _ = p.dim.Fprintln(p.w, "    * suggested by the analysis")
	}
	p.println()

	if len(r.Criteria) > 0 {
		p.heading("Criteria")
		for _, c := range r.Criteria {
			p.printf("  %-*s %3d%%", p.criterionWidth(r.Criteria), c.Name, c.WeightPercent)
			if c.Category != "" {
				_, _ = p.dim.Fprintf(p.w, "  %s", p.label(c.Category))
			}
			p.println()
			if len(c.Scores) > 0 {
				var parts []string
				for _, o := range r.Options {
					if s, ok := c.Scores[o.Name]; ok {
						parts = append(parts, fmt.Sprintf("%s %.1f", o.Name, s))
					}
				}
				_, _ = p.dim.Fprintf(p.w, "      %s\n", strings.Join(parts, " · "))
			}
		}
		p.println()
	}

	p.list("Alternatives", "•", r.Alternatives, nil)
	p.list("Red flags", "!", r.RedFlags, p.red)

	if len(r.CriticalFactors) > 0 || r.RobustChoice != "" {
		p.heading("Sensitivity")
		if len(r.CriticalFactors) > 0 {
			p.printf("  Critical factors: %s\n", strings.Join(r.CriticalFactors, ", "))
		}
		if r.RobustChoice != "" {
			p.printf("  Robust choice: %s\n", r.RobustChoice)
		}
	}
}

func (p *Printer) criterionWidth(cs []model.CriterionSummary) int {
	w := 0
	for _, c := range cs {
		w = max(w, len(c.Name))
	}
	return w
}

func (p *Printer) list(title, bullet string, items []string, c *color.Color) {
	if len(items) == 0 {
		return
	}
	p.heading(title)
	for _, it := range items {
		if c != nil {
			_, _ = c.Fprintf(p.w, "  %s %s\n", bullet, it)
			continue
		}
		p.printf("  %s %s\n", bullet, it)
	}
	p.println()
}

// bar draws a 0..10 score as a fixed-width gauge.
func (p *Printer) bar(score float64) {
	filled := int(score / 10 * barWidth)
	filled = min(max(filled, 0), barWidth)

	c := p.red
	switch {
	case score >= 7.5:
		c = p.green
	case score >= 5:
		c = p.amber
	}
	_, _ = c.Fprint(p.w, strings.Repeat("█", filled))
	_, _ = p.dim.Fprint(p.w, strings.Repeat("░", barWidth-filled))
}

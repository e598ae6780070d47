// Package render writes decision results for the terminal or for machines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format flag value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", eris.Errorf("render: unknown format %q (want text, json or yaml)", s)
	}
}

// ColorEnabled reports whether f is an interactive terminal.
func ColorEnabled(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer renders values to a writer.
type Printer struct {
	w     io.Writer
	title cases.Caser

	bold  *color.Color
	dim   *color.Color
	green *color.Color
	amber *color.Color
	red   *color.Color
	cyan  *color.Color
	pick  *color.Color
}

// New creates a Printer. Colors are only emitted when useColor is set.
func New(w io.Writer, useColor bool) *Printer {
	p := &Printer{
		w:     w,
		title: cases.Title(language.English),
		bold:  color.New(color.Bold),
		dim:   color.New(color.FgHiBlack),
		green: color.New(color.FgGreen),
		amber: color.New(color.FgYellow),
		red:   color.New(color.FgRed),
		cyan:  color.New(color.FgCyan, color.Bold),
		pick:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.bold, p.dim, p.green, p.amber, p.red, p.cyan, p.pick} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Encode writes v as JSON or YAML. Text is not handled here.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "render: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "render: encode yaml")
		}
		return eris.Wrap(enc.Close(), "render: close yaml encoder")
	default:
		return eris.Errorf("render: format %q is not an encoding", f)
	}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) println(args ...any) {
	fmt.Fprintln(p.w, args...)
}

func (p *Printer) heading(s string) {
	_, _ = p.bold.Fprintln(p.w, s)
}

// label title-cases identifiers such as "career_choice" or "high".
func (p *Printer) label(s string) string {
	return p.title.String(strings.ReplaceAll(s, "_", " "))
}

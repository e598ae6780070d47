package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Depth controls how much analysis the upstream service performs.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthBalanced Depth = "balanced"
	DepthThorough Depth = "thorough"
)

// DefaultDepth is the depth a fresh wizard starts with.
const DefaultDepth = DepthBalanced

// Valid reports whether d is one of the known depths.
func (d Depth) Valid() bool {
	switch d {
	case DepthQuick, DepthBalanced, DepthThorough:
		return true
	default:
		return false
	}
}

// ParseDepth converts user input into a Depth. Empty input yields the default.
func ParseDepth(s string) (Depth, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultDepth, nil
	}
	d := Depth(s)
	if !d.Valid() {
		return "", eris.Errorf("model: unknown depth %q (want quick, balanced or thorough)", s)
	}
	return d, nil
}

// ScenarioInput is the free-text decision description submitted in phase 1.
type ScenarioInput struct {
	Text  string `json:"scenario" yaml:"scenario"`
	Depth Depth  `json:"depth" yaml:"depth"`
}

// Blank reports whether the scenario text is empty after trimming.
func (s ScenarioInput) Blank() bool {
	return strings.TrimSpace(s.Text) == ""
}

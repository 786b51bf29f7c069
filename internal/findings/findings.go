package findings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgallion1/docview/internal/geom"
)

// DefaultHighlightLines is how many visual lines a highlight spans when the
// finding doesn't say otherwise.
const DefaultHighlightLines = 3

// Fallback position fractions are clamped so the approximate highlight is
// never flush with the page edges.
const (
	minFallbackPos = 0.05
	maxFallbackPos = 0.95
)

// Finding is a single analyst observation bound to a location in the document.
type Finding struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"` // Markdown
	Page        int     `json:"page"`         // 1-based
	FallbackPos float64 `json:"fallback_pos"` // Fraction of page height in [0,1]

	// AnchorText is a snippet expected to appear in the page's extracted
	// text. Empty means the fallback position is all we have.
	AnchorText string `json:"anchor_text,omitempty"`

	// HighlightLines is how many visual lines the highlight should span.
	HighlightLines int `json:"highlight_lines,omitempty"`

	// Fallback overrides the default approximate rectangle.
	Fallback *FallbackRect `json:"fallback_rect,omitempty"`
}

// FallbackRect is an author-supplied approximate highlight, in page-relative
// percentages.
type FallbackRect struct {
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Lines  int     `json:"lines,omitempty"`
}

// Evidence is a supporting excerpt; its ID is usable as a selection target
// and resolves to its finding.
type Evidence struct {
	ID        string `json:"id"`
	FindingID string `json:"finding_id"`
	Quote     string `json:"quote"`
	Page      int    `json:"page"`
}

// AnalysisNote is one statement of the analyst commentary.
type AnalysisNote struct {
	Text string `json:"text"` // Markdown
}

// Payload is the static configuration the viewer presents. Entries are kept
// in their configured order.
type Payload struct {
	Findings []Finding      `json:"findings"`
	Evidence []Evidence     `json:"evidence"`
	Analysis []AnalysisNote `json:"analysis"`
}

// Load reads a payload from a JSON file. Beyond structural shape, entries are
// not validated: a malformed finding degrades to fallback geometry at
// resolution time rather than failing the load.
func Load(path string, defaultLines int) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read findings: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse findings: %w", err)
	}
	if defaultLines <= 0 {
		defaultLines = DefaultHighlightLines
	}
	for i := range p.Findings {
		if p.Findings[i].HighlightLines <= 0 {
			p.Findings[i].HighlightLines = defaultLines
		}
	}
	return &p, nil
}

// First returns the first configured finding.
func (p *Payload) First() (Finding, bool) {
	if len(p.Findings) == 0 {
		return Finding{}, false
	}
	return p.Findings[0], true
}

// ByID looks up a finding by its own identifier.
func (p *Payload) ByID(id string) (Finding, bool) {
	for _, f := range p.Findings {
		if f.ID == id {
			return f, true
		}
	}
	return Finding{}, false
}

// ResolveTarget maps a selection target to a finding. Targets may be a
// finding ID or an evidence ID; evidence resolves through its finding.
func (p *Payload) ResolveTarget(id string) (Finding, bool) {
	if f, ok := p.ByID(id); ok {
		return f, true
	}
	for _, e := range p.Evidence {
		if e.ID == id {
			return p.ByID(e.FindingID)
		}
	}
	return Finding{}, false
}

// Position returns the fallback vertical position clamped into the usable
// range, never flush to the page edges.
func (f Finding) Position() float64 {
	return geom.Clamp(f.FallbackPos, minFallbackPos, maxFallbackPos)
}

// Lines returns the highlight line span, defaulted when unset.
func (f Finding) Lines() int {
	if f.HighlightLines <= 0 {
		return DefaultHighlightLines
	}
	return f.HighlightLines
}

// Package anchor locates a finding's supporting text on a rendered page and
// converts the matched geometry into a page-relative highlight rectangle.
package anchor

import (
	"math"
	"strings"

	"github.com/dgallion1/docview/internal/findings"
	"github.com/dgallion1/docview/internal/geom"
	"github.com/dgallion1/docview/internal/surface"
)

// Source records which construction path produced a highlight.
type Source string

const (
	SourceMatched  Source = "matched"
	SourceFallback Source = "fallback"
)

// Highlight is an ephemeral overlay rectangle in percentages relative to the
// rendered page extent. Computed fresh on every selection and every viewport
// change, never persisted.
type Highlight struct {
	Page   int     `json:"page"`
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Source Source  `json:"source"`
}

// Display clamp bounds keep the rectangle visible and non-degenerate even on
// edge-case geometry such as a match on the very last line of a page.
const (
	minTop, maxTop       = 2.0, 98.0
	minHeight, maxHeight = 4.0, 40.0
	minLeft, maxLeft     = 0.0, 95.0
	minWidth             = 5.0
)

// Fragments whose vertical midpoints differ by less than this factor of the
// larger fragment height share a visual line. Exact-equality grouping fails
// on sub-pixel and kerning variance.
const rowTolerance = 0.65

// Resolve locates the finding's anchor text within the page surface and
// returns the highlight covering the matched visual line. ok is false when
// the text cannot be found or the surface is not usable yet; that is an
// ordinary outcome, the caller falls back to the approximate position.
func Resolve(s surface.Surface, f findings.Finding) (Highlight, bool) {
	if s == nil || f.AnchorText == "" {
		return Highlight{}, false
	}
	ext, ok := s.Extent()
	if !ok || ext.Empty() {
		return Highlight{}, false
	}
	frags := s.Fragments()
	if len(frags) == 0 {
		return Highlight{}, false
	}
	want := Normalize(f.AnchorText)
	if want == "" {
		return Highlight{}, false
	}

	// First fragment containing the anchor wins; no ranking.
	matched := -1
	for i := range frags {
		if strings.Contains(Normalize(frags[i].Text), want) {
			matched = i
			break
		}
	}
	if matched == -1 {
		return Highlight{}, false
	}

	// Horizontal envelope of every fragment sharing the matched line, so
	// the highlight covers the full visual line rather than one word.
	m := frags[matched].Extent
	left, right := m.Left(), m.Right()
	for i := range frags {
		fr := frags[i].Extent
		tol := rowTolerance * math.Max(fr.Height, m.Height)
		if math.Abs(fr.MidY()-m.MidY()) <= tol {
			left = math.Min(left, fr.Left())
			right = math.Max(right, fr.Right())
		}
	}

	topPct := (m.MidY() - ext.Top()) / ext.Height * 100
	heightPct := m.Height * float64(f.Lines()) / ext.Height * 100
	leftPct := (left - ext.Left()) / ext.Width * 100
	widthPct := (right - left) / ext.Width * 100

	return clamped(f.Page, topPct, leftPct, widthPct, heightPct, SourceMatched), true
}

// Fallback builds the approximate highlight from the finding's stored
// position. It always succeeds; it is the safety net behind Resolve.
func Fallback(f findings.Finding) Highlight {
	top := f.Position() * 100
	left, width, height := 8.0, 84.0, 6.0
	if fb := f.Fallback; fb != nil {
		if fb.Left > 0 {
			left = fb.Left
		}
		if fb.Width > 0 {
			width = fb.Width
		}
		if fb.Height > 0 {
			height = fb.Height
		}
		if fb.Lines > 0 && fb.Height > 0 {
			height = fb.Height * float64(fb.Lines)
		}
	}
	return clamped(f.Page, top, left, width, height, SourceFallback)
}

func clamped(page int, top, left, width, height float64, src Source) Highlight {
	top = geom.Clamp(top, minTop, maxTop)
	height = geom.Clamp(height, minHeight, maxHeight)
	left = geom.Clamp(left, minLeft, maxLeft)
	width = geom.Clamp(width, minWidth, 100-left)
	return Highlight{Page: page, Top: top, Left: left, Width: width, Height: height, Source: src}
}

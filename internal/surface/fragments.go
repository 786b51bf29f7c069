package surface

import (
	"math"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docview/internal/geom"
)

// Text operators arrive as per-glyph or per-word runs. Runs whose baselines
// sit within half a font size of each other belong to the same visual line;
// a horizontal gap wider than one font size starts a new fragment (column
// boundary), a smaller gap becomes a space.
const (
	sameLineFactor = 0.5
	splitGapFactor = 1.0
	spaceGapFactor = 0.25
)

// buildFragments merges raw text runs into line fragments and converts them
// from PDF point space (origin bottom-left) to rendered pixel space (origin
// top-left) at the given scale.
func buildFragments(texts []pdflib.Text, pageH, scale float64) []Fragment {
	runs := make([]pdflib.Text, 0, len(texts))
	for _, t := range texts {
		if t.S == "" || t.FontSize <= 0 {
			continue
		}
		runs = append(runs, t)
	}
	if len(runs) == 0 {
		return nil
	}

	// Reading order: top line first, left to right within a line.
	sort.SliceStable(runs, func(i, j int) bool {
		tol := sameLineFactor * math.Max(runs[i].FontSize, runs[j].FontSize)
		if math.Abs(runs[i].Y-runs[j].Y) > tol {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var frags []Fragment
	cur := newRun(runs[0])
	for _, t := range runs[1:] {
		sameLine := math.Abs(t.Y-cur.y) <= sameLineFactor*math.Max(t.FontSize, cur.fontSize)
		gap := t.X - cur.maxX
		if sameLine && gap <= splitGapFactor*cur.fontSize {
			if gap > spaceGapFactor*cur.fontSize {
				cur.text.WriteString(" ")
			}
			cur.append(t)
			continue
		}
		frags = append(frags, cur.fragment(pageH, scale))
		cur = newRun(t)
	}
	frags = append(frags, cur.fragment(pageH, scale))
	return frags
}

type run struct {
	minX, maxX float64
	y          float64 // baseline, PDF coordinates
	fontSize   float64
	text       strings.Builder
}

func newRun(t pdflib.Text) *run {
	r := &run{minX: t.X, maxX: t.X + t.W, y: t.Y, fontSize: t.FontSize}
	r.text.WriteString(t.S)
	return r
}

func (r *run) append(t pdflib.Text) {
	if right := t.X + t.W; right > r.maxX {
		r.maxX = right
	}
	if t.X < r.minX {
		r.minX = t.X
	}
	if t.FontSize > r.fontSize {
		r.fontSize = t.FontSize
	}
	r.text.WriteString(t.S)
}

func (r *run) fragment(pageH, scale float64) Fragment {
	// Baseline to top edge: ascenders reach roughly one font size above
	// the baseline.
	top := pageH - r.y - r.fontSize
	return Fragment{
		Extent: geom.Rect{
			X:      r.minX * scale,
			Y:      top * scale,
			Width:  (r.maxX - r.minX) * scale,
			Height: r.fontSize * scale,
		},
		Text: r.text.String(),
	}
}

package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docview/internal/findings"
	"github.com/dgallion1/docview/internal/geom"
	"github.com/dgallion1/docview/internal/surface"
)

type fakeSurface struct {
	extent geom.Rect
	ok     bool
	frags  []surface.Fragment
}

func (f *fakeSurface) Extent() (geom.Rect, bool)     { return f.extent, f.ok }
func (f *fakeSurface) Fragments() []surface.Fragment { return f.frags }

func page(w, h float64, frags ...surface.Fragment) *fakeSurface {
	return &fakeSurface{extent: geom.Rect{Width: w, Height: h}, ok: true, frags: frags}
}

func frag(x, y, w, h float64, text string) surface.Fragment {
	return surface.Fragment{Extent: geom.Rect{X: x, Y: y, Width: w, Height: h}, Text: text}
}

func TestResolve_WorkedExample(t *testing.T) {
	// Anchor "EBITDA of USD 2.3 bn" against a fragment with collapsible
	// whitespace on a 600x800 page.
	s := page(600, 800,
		frag(50, 100, 400, 14, "...EBITDA  of   USD 2.3 bn  (USD 2.1 bn)..."),
	)
	f := findings.Finding{Page: 3, AnchorText: "EBITDA of USD 2.3 bn", HighlightLines: 3}

	hl, ok := Resolve(s, f)
	require.True(t, ok)
	assert.Equal(t, 3, hl.Page)
	assert.Equal(t, SourceMatched, hl.Source)
	assert.InDelta(t, 13.375, hl.Top, 0.001)    // (100+7)/800*100
	assert.InDelta(t, 5.25, hl.Height, 0.001)   // 14*3/800*100
	assert.InDelta(t, 8.3333, hl.Left, 0.001)   // 50/600*100
	assert.InDelta(t, 66.6667, hl.Width, 0.001) // 400/600*100
}

func TestResolve_RowEnvelopeCoversFullLine(t *testing.T) {
	// The matched word sits mid-line; neighbours within the 0.65x height
	// tolerance widen the envelope, a fragment on another line does not.
	s := page(600, 800,
		frag(40, 101, 60, 14, "Revenue"),
		frag(120, 100, 80, 14, "EBITDA margin"),
		frag(420, 99, 100, 14, "improved"),
		frag(40, 300, 500, 14, "unrelated line"),
	)
	f := findings.Finding{Page: 1, AnchorText: "ebitda margin"}

	hl, ok := Resolve(s, f)
	require.True(t, ok)
	assert.InDelta(t, 40.0/600*100, hl.Left, 0.001)
	assert.InDelta(t, (520.0-40)/600*100, hl.Width, 0.001)
}

func TestResolve_NoAnchorText(t *testing.T) {
	s := page(600, 800, frag(0, 0, 100, 10, "anything"))
	_, ok := Resolve(s, findings.Finding{Page: 1})
	assert.False(t, ok, "missing anchor text must never attempt matching")
}

func TestResolve_EmptyTextLayer(t *testing.T) {
	_, ok := Resolve(page(600, 800), findings.Finding{Page: 1, AnchorText: "anything"})
	assert.False(t, ok)
}

func TestResolve_MissingOrDegenerateExtent(t *testing.T) {
	noExtent := &fakeSurface{ok: false, frags: []surface.Fragment{frag(0, 0, 10, 10, "text")}}
	_, ok := Resolve(noExtent, findings.Finding{AnchorText: "text"})
	assert.False(t, ok)

	zeroHeight := &fakeSurface{extent: geom.Rect{Width: 600}, ok: true,
		frags: []surface.Fragment{frag(0, 0, 10, 10, "text")}}
	_, ok = Resolve(zeroHeight, findings.Finding{AnchorText: "text"})
	assert.False(t, ok)
}

func TestResolve_NoMatch(t *testing.T) {
	s := page(600, 800, frag(50, 100, 400, 14, "completely different content"))
	_, ok := Resolve(s, findings.Finding{Page: 1, AnchorText: "EBITDA"})
	assert.False(t, ok)
}

func TestResolve_FirstMatchWins(t *testing.T) {
	s := page(600, 800,
		frag(50, 100, 100, 14, "EBITDA up"),
		frag(50, 500, 100, 14, "EBITDA down"),
	)
	hl, ok := Resolve(s, findings.Finding{Page: 1, AnchorText: "EBITDA", HighlightLines: 1})
	require.True(t, ok)
	assert.InDelta(t, (107.0)/800*100, hl.Top, 0.001)
}

func TestResolve_ClampsDegenerateGeometry(t *testing.T) {
	cases := []struct {
		name string
		s    surface.Surface
		f    findings.Finding
	}{
		{
			"zero-height fragment",
			page(600, 800, frag(50, 100, 400, 0, "needle")),
			findings.Finding{Page: 1, AnchorText: "needle"},
		},
		{
			"match on the very last line",
			page(600, 800, frag(50, 795, 400, 14, "needle")),
			findings.Finding{Page: 1, AnchorText: "needle", HighlightLines: 9},
		},
		{
			"fragment wider than the page",
			page(600, 800, frag(-50, 400, 900, 14, "needle")),
			findings.Finding{Page: 1, AnchorText: "needle"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hl, ok := Resolve(tc.s, tc.f)
			require.True(t, ok)
			assertWithinBounds(t, hl)
		})
	}
}

func TestFallback_AlwaysWithinBounds(t *testing.T) {
	cases := []findings.Finding{
		{Page: 1, FallbackPos: 0},
		{Page: 2, FallbackPos: 1},
		{Page: 3, FallbackPos: 0.5},
		{Page: 4, FallbackPos: 0.5, Fallback: &findings.FallbackRect{Left: 20, Width: 200, Height: 90}},
		{Page: 5, FallbackPos: 0.5, Fallback: &findings.FallbackRect{Left: 99, Width: 1, Height: 1}},
		{Page: 6, FallbackPos: 0.3, Fallback: &findings.FallbackRect{Left: 10, Width: 60, Height: 3, Lines: 4}},
	}
	for _, f := range cases {
		hl := Fallback(f)
		assert.Equal(t, f.Page, hl.Page)
		assert.Equal(t, SourceFallback, hl.Source)
		assertWithinBounds(t, hl)
	}
}

func TestFallback_UsesExplicitRect(t *testing.T) {
	f := findings.Finding{Page: 2, FallbackPos: 0.4,
		Fallback: &findings.FallbackRect{Left: 12, Width: 70, Height: 2.5, Lines: 3}}
	hl := Fallback(f)
	assert.InDelta(t, 40, hl.Top, 0.001)
	assert.InDelta(t, 12, hl.Left, 0.001)
	assert.InDelta(t, 70, hl.Width, 0.001)
	assert.InDelta(t, 7.5, hl.Height, 0.001)
}

func assertWithinBounds(t *testing.T, hl Highlight) {
	t.Helper()
	assert.GreaterOrEqual(t, hl.Top, 2.0)
	assert.LessOrEqual(t, hl.Top, 98.0)
	assert.GreaterOrEqual(t, hl.Height, 4.0)
	assert.LessOrEqual(t, hl.Height, 40.0)
	assert.GreaterOrEqual(t, hl.Left, 0.0)
	assert.LessOrEqual(t, hl.Left, 95.0)
	assert.GreaterOrEqual(t, hl.Width, 5.0)
	assert.LessOrEqual(t, hl.Left+hl.Width, 100.0)
}

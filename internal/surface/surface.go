package surface

import "github.com/dgallion1/docview/internal/geom"

// Fragment is one positioned run of extracted text, in the same pixel
// coordinate space as the page extent.
type Fragment struct {
	Extent geom.Rect `json:"extent"`
	Text   string    `json:"text"`
}

// Surface is a single rendered page: its pixel extent and its text layer.
// The anchor resolver only ever sees this interface, so tests inject fakes.
type Surface interface {
	// Extent returns the rendered page rectangle. ok is false when the
	// page image is not available or degenerate.
	Extent() (geom.Rect, bool)
	// Fragments returns the positioned text layer. Empty until text
	// extraction for the page completes.
	Fragments() []Fragment
}

// Provider maps 1-based page numbers to live surfaces. A page that is not
// yet rendered, or whose surface is mid-replacement after a viewport change,
// reports ok=false; that is an expected transient, not an error.
type Provider interface {
	Page(n int) (Surface, bool)
}

package surface

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docview/internal/geom"
)

// Status tracks document lifecycle. A load failure is reported upward as a
// displayed message; it is never fatal to the process.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

const maxConcurrentPages = 4

// Document owns the page-number → surface map for a single PDF. Render
// replaces the map wholesale; readers that catch it mid-replacement simply
// see pages as unavailable.
type Document struct {
	mu sync.RWMutex

	log    *slog.Logger
	path   string
	file   *os.File
	reader *pdflib.Reader

	status    Status
	loadErr   string
	pageCount int
	width     float64
	pages     map[int]*pageSurface
}

// Open loads the PDF at path. Open never fails hard: a broken document
// yields a Document in StatusFailed whose pages are all unavailable.
func Open(path string, log *slog.Logger) *Document {
	d := &Document{
		log:    log,
		path:   path,
		status: StatusLoading,
		pages:  make(map[int]*pageSurface),
	}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		d.status = StatusFailed
		d.loadErr = err.Error()
		log.Error("document load failed", "path", path, "error", err)
		return d
	}

	d.file = f
	d.reader = reader
	d.pageCount = reader.NumPage()
	d.status = StatusReady
	log.Info("document ready", "path", path, "pages", d.pageCount)
	return d
}

// Close releases the underlying file.
func (d *Document) Close() {
	if d.file != nil {
		d.file.Close()
	}
}

// Render extracts every page's text layer at the given viewport width and
// swaps in the new surfaces. All prior fragment extents are invalidated by
// the swap; callers re-resolve against the new geometry.
func (d *Document) Render(ctx context.Context, width float64) error {
	d.mu.RLock()
	reader := d.reader
	count := d.pageCount
	status := d.status
	d.mu.RUnlock()

	if status != StatusReady {
		return fmt.Errorf("document not ready: %s", status)
	}
	if width <= 0 {
		return fmt.Errorf("invalid render width: %v", width)
	}

	surfaces := make([]*pageSurface, count+1)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPages)
	for n := 1; n <= count; n++ {
		n := n
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			surfaces[n] = renderPage(reader.Page(n), width)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("render pages: %w", err)
	}

	pages := make(map[int]*pageSurface, count)
	for n := 1; n <= count; n++ {
		if surfaces[n] != nil {
			pages[n] = surfaces[n]
		}
	}

	d.mu.Lock()
	d.width = width
	d.pages = pages
	d.mu.Unlock()

	d.log.Info("rendered document", "width", width, "pages", len(pages))
	return nil
}

// Page returns the live surface for a 1-based page number.
func (d *Document) Page(n int) (Surface, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.pages[n]
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

// PageCount returns the total page count, 0 when the document failed.
func (d *Document) PageCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pageCount
}

// Width returns the current render width.
func (d *Document) Width() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.width
}

// Status returns the document lifecycle state and, when failed, the error
// description to display.
func (d *Document) Status() (Status, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status, d.loadErr
}

type pageSurface struct {
	extent geom.Rect
	frags  []Fragment
}

func (p *pageSurface) Extent() (geom.Rect, bool) {
	if p.extent.Empty() {
		return geom.Rect{}, false
	}
	return p.extent, true
}

func (p *pageSurface) Fragments() []Fragment {
	return p.frags
}

func renderPage(page pdflib.Page, width float64) *pageSurface {
	if page.V.IsNull() {
		return nil
	}
	pageW, pageH, ok := mediaBox(page)
	if !ok {
		return nil
	}
	scale := width / pageW
	return &pageSurface{
		extent: geom.Rect{Width: pageW * scale, Height: pageH * scale},
		frags:  buildFragments(pageContent(page), pageH, scale),
	}
}

// pageContent reads the page's text operators. Malformed content streams can
// panic deep inside the pdf library; a page whose text layer cannot be read
// just has no fragments, which the resolver treats as NotFound.
func pageContent(page pdflib.Page) (texts []pdflib.Text) {
	defer func() {
		if r := recover(); r != nil {
			texts = nil
		}
	}()
	return page.Content().Text
}

// mediaBox walks up the page tree for an inherited MediaBox and returns the
// page size in PDF points.
func mediaBox(page pdflib.Page) (w, h float64, ok bool) {
	v := page.V
	for !v.IsNull() {
		if mb := v.Key("MediaBox"); !mb.IsNull() && mb.Len() == 4 {
			w = mb.Index(2).Float64() - mb.Index(0).Float64()
			h = mb.Index(3).Float64() - mb.Index(1).Float64()
			return w, h, w > 0 && h > 0
		}
		v = v.Key("Parent")
	}
	return 0, 0, false
}

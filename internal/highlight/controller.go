// Package highlight owns the active finding selection and drives anchor
// resolution against asynchronous render completion.
package highlight

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docview/internal/anchor"
	"github.com/dgallion1/docview/internal/findings"
	"github.com/dgallion1/docview/internal/surface"
)

// State is the controller's position in the probe lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateProbing State = "probing"
	StateSettled State = "settled"
)

// Defaults for the bounded probe loop.
const (
	DefaultProbeAttempts = 8
	DefaultProbeInterval = 250 * time.Millisecond
)

// Scroller is asked to bring a page into view. Invoked on every probe
// attempt with an available surface, not just the first, since layout may
// shift while other pages render.
type Scroller func(page int)

// Config bounds the probe loop.
type Config struct {
	Attempts int
	Interval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = DefaultProbeAttempts
	}
	if c.Interval <= 0 {
		c.Interval = DefaultProbeInterval
	}
	return c
}

// Snapshot is the read-only view the presentation layer renders from. The
// pulse generation is an explicit animation trigger: it increases on every
// commit and on every re-selection, so the viewer can restart the pulse
// without any reflow tricks.
type Snapshot struct {
	ActiveFindingID string            `json:"active_finding_id"`
	State           State             `json:"state"`
	Rect            *anchor.Highlight `json:"rect,omitempty"`
	PulseGen        uint64            `json:"pulse_gen"`
	ScrollPage      int               `json:"scroll_page"`
	ScrollGen       uint64            `json:"scroll_gen"`
}

// Controller holds exactly one active finding at a time and commits exactly
// one highlight rectangle per selection: the matched one when the resolver
// succeeds within the attempt budget, the fallback otherwise. Resolution
// failure is silent degradation, never an error.
type Controller struct {
	mu sync.Mutex

	cfg      Config
	provider surface.Provider
	payload  *findings.Payload
	log      *slog.Logger
	scroll   Scroller

	active     string
	state      State
	committed  *anchor.Highlight
	pulseGen   uint64
	scrollPage int
	scrollGen  uint64

	// epoch identifies the current probe context. A probe loop may only
	// mutate state while its epoch is still current; superseded loops are
	// cancelled and their late results discarded.
	epoch  uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a controller over the given surfaces and findings.
func New(provider surface.Provider, payload *findings.Payload, cfg Config, log *slog.Logger) *Controller {
	return &Controller{
		cfg:      cfg.withDefaults(),
		provider: provider,
		payload:  payload,
		log:      log,
		state:    StateIdle,
	}
}

// SetScroller installs the scroll-into-view callback.
func (c *Controller) SetScroller(s Scroller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scroll = s
}

// SelectInitial activates the first configured finding, if any.
func (c *Controller) SelectInitial() {
	c.Select("")
}

// Select activates a finding by id (finding or evidence id). An unknown id
// degrades to the first configured finding; with an empty list the selection
// clears. Re-selecting the already-active finding restarts the pulse without
// recomputing the rectangle.
func (c *Controller) Select(id string) {
	f, ok := c.payload.ResolveTarget(id)
	if !ok {
		if f, ok = c.payload.First(); !ok {
			c.clear()
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if f.ID == c.active && c.state != StateIdle {
		// Same finding again: the committed rectangle (or in-flight
		// probe) stands, only the pulse restarts.
		c.pulseGen++
		return
	}
	c.startProbeLocked(f)
}

// Invalidate re-enters Probing for the active finding. Called after the page
// surfaces were replaced at a new viewport width, which voids all previously
// computed geometry.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active == "" {
		return
	}
	f, ok := c.payload.ByID(active)
	if !ok {
		// Active id no longer refers to an existing finding.
		c.Select("")
		return
	}
	c.mu.Lock()
	if c.active == active {
		c.startProbeLocked(f)
	}
	c.mu.Unlock()
}

// Snapshot returns the current selection state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		ActiveFindingID: c.active,
		State:           c.state,
		PulseGen:        c.pulseGen,
		ScrollPage:      c.scrollPage,
		ScrollGen:       c.scrollGen,
	}
	if c.committed != nil {
		rect := *c.committed
		snap.Rect = &rect
	}
	return snap
}

// Close cancels any in-flight probe and waits for it to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.epoch++
	c.active = ""
	c.state = StateIdle
	c.committed = nil
}

// startProbeLocked tears down the previous probe loop and starts a new one
// for f. Cancellation before start is what guarantees a slow earlier probe
// can never clobber this selection's state.
func (c *Controller) startProbeLocked(f findings.Finding) {
	if c.cancel != nil {
		c.cancel()
	}
	c.epoch++
	epoch := c.epoch

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.active = f.ID
	c.state = StateProbing

	// Safety net computed up front; committed only on attempt exhaustion.
	fb := anchor.Fallback(f)

	c.wg.Add(1)
	go c.probe(ctx, epoch, f, fb)
}

func (c *Controller) probe(ctx context.Context, epoch uint64, f findings.Finding, fb anchor.Highlight) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for attempt := 0; attempt < c.cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}

		s, ok := c.provider.Page(f.Page)
		if !ok {
			// Page not rendered yet, or mid-replacement. Counts as
			// a failed attempt.
			continue
		}

		c.requestScroll(epoch, f.Page)

		if hl, resolved := anchor.Resolve(s, f); resolved {
			c.commit(epoch, hl)
			return
		}
	}

	c.log.Debug("anchor not found, committing fallback", "finding", f.ID, "page", f.Page)
	c.commit(epoch, fb)
}

func (c *Controller) commit(epoch uint64, hl anchor.Highlight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return // superseded by a newer selection
	}
	c.committed = &hl
	c.state = StateSettled
	c.pulseGen++
}

func (c *Controller) requestScroll(epoch uint64, page int) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.scrollPage = page
	c.scrollGen++
	scroll := c.scroll
	c.mu.Unlock()

	if scroll != nil {
		scroll(page)
	}
}

package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/app/system/viewdata"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"go.uber.org/zap"
)

var (
	// ErrUnknownDisease is returned when a selection tag is not a known disease.
	ErrUnknownDisease = errors.New("unknown disease")
	// ErrViewNotFound is returned when a view ID is not (or no longer) registered.
	ErrViewNotFound = errors.New("dashboard view not found")
)

// Fetcher lists the records for one disease. diseaseapi.Client implements it.
type Fetcher interface {
	FetchRecords(ctx context.Context, d models.Disease) ([]models.DiseaseRecord, error)
}

// SlotState is the fetch state of one disease's cached records.
type SlotState int

const (
	SlotIdle SlotState = iota
	SlotLoading
	SlotLoaded
	SlotFailed
)

func (s SlotState) String() string {
	switch s {
	case SlotLoading:
		return "loading"
	case SlotLoaded:
		return "loaded"
	case SlotFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Slot caches the last record set received for one disease.
type Slot struct {
	Records   []models.DiseaseRecord
	State     SlotState
	Err       string
	FetchedAt time.Time
}

// State is an immutable snapshot of a view, safe to render while fetches
// continue in the background.
type State struct {
	ViewID          string
	Selected        models.Disease
	ReportsMenuOpen bool
	Prefs           models.Preferences
	Theme           viewdata.Theme
	// Slot is the selected disease's slot; zero when nothing is selected.
	Slot Slot
}

// Controller owns the transient state of one open dashboard view.
type Controller struct {
	id      string
	fetcher Fetcher
	log     *zap.Logger

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	prefs    models.Preferences
	selected models.Disease
	menuOpen bool
	slots    map[models.Disease]*Slot
	gen      uint64
	inflight models.Disease
	cancel   context.CancelFunc
	closed   bool
}

// NewController creates a view with default preferences and nothing selected.
func NewController(id string, f Fetcher, logger *zap.Logger) *Controller {
	base, stop := context.WithCancel(context.Background())
	return &Controller{
		id:      id,
		fetcher: f,
		log:     logger.With(zap.String("view", id)),
		base:    base,
		stop:    stop,
		prefs:   models.DefaultPreferences(),
		slots:   make(map[models.Disease]*Slot, len(models.Diseases)),
	}
}

// ID returns the view ID.
func (c *Controller) ID() string { return c.id }

// Initialize reads the preferences from s. It may be called again on every
// full page load; selection and cached records are left alone, so a
// language or theme change takes effect without a fetch.
func (c *Controller) Initialize(ctx context.Context, s prefs.Store) {
	p := prefs.Load(ctx, s, c.log)

	c.mu.Lock()
	c.prefs = p
	c.mu.Unlock()
}

// SelectDisease makes d the active disease and starts fetching its records.
// A fetch still running for an earlier selection is cancelled and its
// result, should it arrive anyway, is discarded.
func (c *Controller) SelectDisease(d models.Disease) error {
	d, ok := models.ParseDisease(string(d))
	if !ok {
		return ErrUnknownDisease
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrViewNotFound
	}

	c.abandonLocked()

	c.gen++
	gen := c.gen
	c.selected = d

	slot := c.slotLocked(d)
	slot.State = SlotLoading
	slot.Err = ""

	ctx, cancel := context.WithTimeout(c.base, timeouts.Fetch())
	c.cancel = cancel
	c.inflight = d

	c.wg.Add(1)
	go c.fetch(ctx, cancel, d, gen)
	return nil
}

// abandonLocked cancels the in-flight fetch, if any, and settles its slot
// back to what it held before the fetch started.
func (c *Controller) abandonLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil

	if slot, ok := c.slots[c.inflight]; ok && slot.State == SlotLoading {
		if slot.FetchedAt.IsZero() {
			slot.State = SlotIdle
		} else {
			slot.State = SlotLoaded
		}
	}
	c.inflight = models.DiseaseNone
}

func (c *Controller) slotLocked(d models.Disease) *Slot {
	s, ok := c.slots[d]
	if !ok {
		s = &Slot{}
		c.slots[d] = s
	}
	return s
}

func (c *Controller) fetch(ctx context.Context, cancel context.CancelFunc, d models.Disease, gen uint64) {
	defer c.wg.Done()
	defer cancel()

	recs, err := c.fetcher.FetchRecords(ctx, d)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.closed {
		c.log.Debug("discarding stale fetch",
			zap.String("disease", d.String()),
			zap.Uint64("generation", gen),
			zap.Uint64("current", c.gen))
		return
	}
	c.cancel = nil
	c.inflight = models.DiseaseNone

	slot := c.slotLocked(d)
	if err != nil {
		c.log.Error("fetch records failed",
			zap.String("disease", d.String()),
			zap.Error(err))
		slot.State = SlotFailed
		slot.Err = err.Error()
		return
	}

	slot.Records = recs
	slot.State = SlotLoaded
	slot.FetchedAt = time.Now().UTC()
	c.log.Debug("records loaded",
		zap.String("disease", d.String()),
		zap.Int("count", len(recs)))
}

// ToggleReportsMenu flips the reports submenu and returns the new value.
func (c *Controller) ToggleReportsMenu() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menuOpen = !c.menuOpen
	return c.menuOpen
}

// State returns a snapshot of the view.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		ViewID:          c.id,
		Selected:        c.selected,
		ReportsMenuOpen: c.menuOpen,
		Prefs:           c.prefs,
		Theme:           viewdata.ThemeFor(c.prefs.DarkMode),
	}
	if slot, ok := c.slots[c.selected]; ok {
		st.Slot = *slot
		st.Slot.Records = append([]models.DiseaseRecord(nil), slot.Records...)
	}
	return st
}

// Close cancels in-flight fetches. A closed view rejects new selections.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancel = nil
	c.mu.Unlock()
	c.stop()
}

// Wait blocks until every fetch started so far has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

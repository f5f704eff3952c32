package picker

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/eightam/acf-ofm-location/internal/geocoder"
	"github.com/eightam/acf-ofm-location/internal/metrics"
	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	DebounceDelay  = 300 * time.Millisecond
	MinQueryLength = 3
	SelectedZoom   = 13

	LabelEmpty   = "No location set"
	LabelUnnamed = "Location set"

	requestTimeout = 10 * time.Second
)

// Container is one location field on a page: its settings and its bound form.
// Settings holds the global values; Field holds the field's own overrides,
// where empty or zero values inherit.
type Container struct {
	ID       string
	Settings models.Settings
	Field    models.Settings
	Form     Form
}

// Option customises a widget.
type Option func(*Widget)

// WithDebounce overrides the search quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Widget) { w.debounce = d }
}

// WithRequestTimeout bounds every geocoding request.
func WithRequestTimeout(d time.Duration) Option {
	return func(w *Widget) { w.timeout = d }
}

// WithOnChange registers a hook called with a fresh snapshot after every state change.
func WithOnChange(fn func(State)) Option {
	return func(w *Widget) { w.onChange = fn }
}

// Widget keeps a map, its marker, a search box and the bound form consistent
// with the most recent selection. Geocoding runs on background goroutines;
// every request carries a sequence number and only the latest one may update
// the widget.
type Widget struct {
	id       string
	form     Form
	searcher geocoder.Searcher
	reverser geocoder.Reverser
	doc      *Document

	debounce time.Duration
	timeout  time.Duration
	onChange func(State)

	ctx     context.Context
	cancel  context.CancelFunc
	pending sync.WaitGroup

	mu        sync.Mutex
	state     State
	timer     *time.Timer
	searchSeq uint64
	selectSeq uint64
	closed    bool
}

func newWidget(c Container, searcher geocoder.Searcher, reverser geocoder.Reverser, doc *Document, opts ...Option) *Widget {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Widget{
		id:       c.ID,
		form:     c.Form,
		searcher: searcher,
		reverser: reverser,
		doc:      doc,
		debounce: DebounceDelay,
		timeout:  requestTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.state.Map = MapView{
		StyleURL: c.Settings.StyleURL,
		Center:   Point{Lat: c.Settings.DefaultLat, Lng: c.Settings.DefaultLng},
		Zoom:     float64(c.Settings.DefaultZoom),
	}
	w.state.Label = LabelEmpty

	values := readForm(c.Form)
	if loc, ok := models.LocationFromValues(values); ok && models.ValidateCoordinates(loc.Latitude, loc.Longitude) == nil {
		p := Point{Lat: loc.Latitude, Lng: loc.Longitude}
		w.state.Map.Center = p
		w.state.Map.Zoom = SelectedZoom
		w.state.Marker = &Marker{Position: p, Draggable: true}
		w.state.Label = labelFor(loc.FullAddress)
	}

	return w
}

// ID returns the container ID the widget is bound to.
func (w *Widget) ID() string { return w.id }

// Snapshot returns a copy of the current state.
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Wait blocks until pending debounce timers and geocoding requests settle.
func (w *Widget) Wait() {
	w.pending.Wait()
}

// SelectLocation makes loc the current selection: the form, label, map,
// marker and search box are all updated, and any request still in flight
// is superseded.
func (w *Widget) SelectLocation(loc models.Location) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.selectSeq++
	w.selectLocationLocked(loc)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
}

// OnSearchResultClick selects a search result.
func (w *Widget) OnSearchResultClick(loc models.Location) {
	w.SelectLocation(loc)
}

// OnMapClick places or moves the marker and resolves the clicked point.
func (w *Widget) OnMapClick(lat, lng float64) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.placeMarkerLocked(Point{Lat: lat, Lng: lng})
	w.startReverseLocked(lat, lng)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
}

// OnMarkerDragEnd resolves the position the marker was dropped at.
func (w *Widget) OnMarkerDragEnd(lat, lng float64) {
	w.mu.Lock()
	if w.closed || w.state.Marker == nil {
		w.mu.Unlock()
		return
	}
	w.state.Marker.Position = Point{Lat: lat, Lng: lng}
	w.startReverseLocked(lat, lng)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
}

// OnSearchInput handles a change of the search box. Queries shorter than
// MinQueryLength clear the results immediately; longer ones are searched
// once the input has been quiet for the debounce period.
func (w *Widget) OnSearchInput(input string) {
	query := strings.TrimSpace(input)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.state.SearchInput = input
	w.stopTimerLocked()
	w.searchSeq++

	if utf8.RuneCountInString(query) < MinQueryLength {
		w.clearResultsLocked()
		if w.state.Phase == PhaseSearching || w.state.Phase == PhaseResultsShown {
			w.state.Phase = PhaseIdle
		}
	} else {
		seq := w.searchSeq
		w.state.Phase = PhaseSearching
		w.pending.Add(1)
		w.timer = time.AfterFunc(w.debounce, func() {
			w.runSearch(seq, query)
		})
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
}

// Close stops timers, drops in-flight responses and removes the click-away listener.
func (w *Widget) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.stopTimerLocked()
	w.doc.unsubscribe(w)
	w.mu.Unlock()

	w.cancel()
}

func (w *Widget) runSearch(seq uint64, query string) {
	defer w.pending.Done()

	w.mu.Lock()
	if w.closed || seq != w.searchSeq {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	results, err := w.searcher.Search(ctx, query)
	cancel()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if seq != w.searchSeq {
		w.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("search").Inc()
		log.Debug().Str("widget", w.id).Str("query", query).Msg("discarding stale search response")
		return
	}

	if err != nil {
		log.Warn().Err(err).Str("widget", w.id).Str("query", query).Msg("forward geocoding failed")
	}
	if err != nil || len(results) == 0 {
		w.clearResultsLocked()
		w.state.Phase = PhaseIdle
	} else {
		if len(results) > geocoder.MaxResults {
			results = results[:geocoder.MaxResults]
		}
		w.state.Results = results
		w.state.ResultsVisible = true
		w.state.Phase = PhaseResultsShown
		w.doc.subscribe(w)
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
}

func (w *Widget) startReverseLocked(lat, lng float64) {
	w.selectSeq++
	seq := w.selectSeq
	w.state.Phase = PhaseGeocoding

	w.pending.Add(1)
	go w.runReverse(seq, lat, lng)
}

func (w *Widget) runReverse(seq uint64, lat, lng float64) {
	defer w.pending.Done()

	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	loc, err := w.reverser.Reverse(ctx, lat, lng)
	cancel()

	if err != nil {
		log.Warn().Err(err).Str("widget", w.id).Float64("lat", lat).Float64("lng", lng).Msg("reverse geocoding failed, keeping coordinates only")
		loc = models.CoordinatesOnly(lat, lng)
	}
	loc.Latitude = lat
	loc.Longitude = lng
	if loc.FullAddress == "" {
		loc.FullAddress = models.FormatCoordinates(lat, lng)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if seq != w.selectSeq {
		w.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("reverse").Inc()
		log.Debug().Str("widget", w.id).Msg("discarding stale reverse response")
		return
	}
	w.selectLocationLocked(loc)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
}

func (w *Widget) selectLocationLocked(loc models.Location) {
	values := loc.Values()
	for _, k := range models.Components {
		w.form.SetValue(k, values[k])
	}

	w.state.Label = labelFor(loc.FullAddress)

	p := Point{Lat: loc.Latitude, Lng: loc.Longitude}
	w.state.Map.Center = p
	w.state.Map.Zoom = SelectedZoom
	w.state.Map.Animated = true
	w.placeMarkerLocked(p)

	// a selection supersedes whatever was being searched
	w.searchSeq++
	w.stopTimerLocked()
	w.clearResultsLocked()
	w.state.SearchInput = ""
	w.state.Phase = PhaseIdle
}

func (w *Widget) placeMarkerLocked(p Point) {
	if w.state.Marker == nil {
		w.state.Marker = &Marker{Position: p, Draggable: true}
		return
	}
	w.state.Marker.Position = p
}

func (w *Widget) clearResultsLocked() {
	w.state.Results = nil
	w.state.ResultsVisible = false
	w.doc.unsubscribe(w)
}

func (w *Widget) stopTimerLocked() {
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.timer = nil
}

func (w *Widget) onDocumentClick(target ClickTarget) {
	w.mu.Lock()
	if w.closed || !w.state.ResultsVisible || (target.WidgetID == w.id && target.InSearch) {
		w.mu.Unlock()
		return
	}
	w.state.ResultsVisible = false
	if w.state.Phase == PhaseResultsShown {
		w.state.Phase = PhaseIdle
	}
	w.doc.unsubscribe(w)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
}

func (w *Widget) snapshotLocked() State {
	s := w.state
	if s.Marker != nil {
		m := *s.Marker
		s.Marker = &m
	}
	if s.Results != nil {
		s.Results = append([]models.Location(nil), s.Results...)
	}
	return s
}

func (w *Widget) notify(s State) {
	if w.onChange != nil {
		w.onChange(s)
	}
}

func labelFor(fullAddress string) string {
	if fullAddress == "" {
		return LabelUnnamed
	}
	return fullAddress
}

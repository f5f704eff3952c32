package picker

import (
	"fmt"
	"sync"

	"github.com/eightam/acf-ofm-location/internal/geocoder"
)

// Registry owns the widgets of one page. Each container is initialised at
// most once; all widgets share the page's click-away Document.
type Registry struct {
	mu       sync.Mutex
	widgets  map[string]*Widget
	doc      *Document
	searcher map[string]geocoder.Searcher
	reverser geocoder.Reverser
	opts     []Option
}

// NewRegistry creates a registry. searchers maps provider names to search
// backends; reverser answers every reverse lookup whatever the provider.
func NewRegistry(searchers map[string]geocoder.Searcher, reverser geocoder.Reverser, opts ...Option) *Registry {
	return &Registry{
		widgets:  make(map[string]*Widget),
		doc:      NewDocument(),
		searcher: searchers,
		reverser: reverser,
		opts:     opts,
	}
}

// Document returns the page level click dispatcher.
func (r *Registry) Document() *Document { return r.doc }

// Init binds a widget to c, or returns the one already bound to c.ID.
func (r *Registry) Init(c Container) (*Widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.widgets[c.ID]; ok {
		return w, nil
	}

	c.Settings = c.Settings.Override(c.Field)
	c.Settings.Sanitize()
	searcher, ok := r.searcher[c.Settings.GeocodingAPI]
	if !ok {
		return nil, fmt.Errorf("picker: no searcher for provider %q", c.Settings.GeocodingAPI)
	}
	if c.Form == nil {
		c.Form = NewMapForm(nil)
	}

	w := newWidget(c, searcher, r.reverser, r.doc, r.opts...)
	r.widgets[c.ID] = w
	return w, nil
}

// Get returns the widget bound to id.
func (r *Registry) Get(id string) (*Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[id]
	return w, ok
}

// Teardown closes and forgets the widget bound to id.
func (r *Registry) Teardown(id string) {
	r.mu.Lock()
	w, ok := r.widgets[id]
	delete(r.widgets, id)
	r.mu.Unlock()

	if ok {
		w.Close()
	}
}

// SearchersFor builds the searcher map from provider instances.
func SearchersFor(providers ...geocoder.Provider) map[string]geocoder.Searcher {
	m := make(map[string]geocoder.Searcher, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return m
}

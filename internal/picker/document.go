package picker

import "sync"

// ClickTarget describes where a document click landed.
type ClickTarget struct {
	// WidgetID is the container the click landed in, empty when outside every widget.
	WidgetID string
	// InSearch is set when the click landed inside that widget's search box or results.
	InSearch bool
}

// Document dispatches page level clicks to widgets with an open results
// panel. Widgets are only subscribed while their panel is open.
type Document struct {
	mu   sync.Mutex
	open map[*Widget]struct{}
}

func NewDocument() *Document {
	return &Document{open: make(map[*Widget]struct{})}
}

// Listening reports whether any widget currently needs click-away dismissal.
func (d *Document) Listening() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.open) > 0
}

// Click hides the results of every open widget the click is outside of.
func (d *Document) Click(target ClickTarget) {
	d.mu.Lock()
	widgets := make([]*Widget, 0, len(d.open))
	for w := range d.open {
		widgets = append(widgets, w)
	}
	d.mu.Unlock()

	for _, w := range widgets {
		w.onDocumentClick(target)
	}
}

func (d *Document) subscribe(w *Widget) {
	d.mu.Lock()
	d.open[w] = struct{}{}
	d.mu.Unlock()
}

func (d *Document) unsubscribe(w *Widget) {
	d.mu.Lock()
	delete(d.open, w)
	d.mu.Unlock()
}

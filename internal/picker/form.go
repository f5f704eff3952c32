package picker

import (
	"sync"

	"github.com/eightam/acf-ofm-location/internal/models"
)

// Form is the host-owned set of bound output fields. The widget writes a
// complete location into it on every selection; the host persists it.
type Form interface {
	Value(key string) string
	SetValue(key, value string)
}

// MapForm is an in-memory Form safe for concurrent use.
type MapForm struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMapForm returns a form pre-filled with values.
func NewMapForm(values map[string]string) *MapForm {
	f := &MapForm{values: make(map[string]string, len(models.Components))}
	for k, v := range values {
		f.values[k] = v
	}
	return f
}

func (f *MapForm) Value(key string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[key]
}

func (f *MapForm) SetValue(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}

// Values returns a copy of every component value.
func (f *MapForm) Values() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(models.Components))
	for _, k := range models.Components {
		out[k] = f.values[k]
	}
	return out
}

func readForm(f Form) map[string]string {
	values := make(map[string]string, len(models.Components))
	for _, k := range models.Components {
		values[k] = f.Value(k)
	}
	return values
}

package picker

import "github.com/eightam/acf-ofm-location/internal/models"

// Phase is where a widget is in its interaction cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSearching
	PhaseResultsShown
	PhaseGeocoding
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhaseResultsShown:
		return "results"
	case PhaseGeocoding:
		return "geocoding"
	default:
		return "unknown"
	}
}

type Point struct {
	Lat float64
	Lng float64
}

// MapView is the visible map viewport.
type MapView struct {
	StyleURL string
	Center   Point
	Zoom     float64
	// Animated is set when the last move was a fly-to transition.
	Animated bool
}

type Marker struct {
	Position  Point
	Draggable bool
}

// State is a point-in-time copy of what a widget displays.
type State struct {
	Phase          Phase
	Label          string
	Map            MapView
	Marker         *Marker
	SearchInput    string
	Results        []models.Location
	ResultsVisible bool
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eightam/acf-ofm-location/internal/models"
	"github.com/eightam/acf-ofm-location/internal/picker"

	"github.com/fatih/color"
)

const help = `commands:
  type <text>        type into the search box
  pick <n>           choose the n-th search result
  click <lat> <lng>  click the map
  drag <lat> <lng>   drop the marker
  focus              click inside the search box
  away               click outside every widget
  use <id>           switch the active widget
  show               print the widget state
  form               print the bound form values
  quit               leave`

var (
	errUsage       = errors.New("usage")
	errQuit        = errors.New("quit")
	heading        = color.New(color.FgCyan, color.Bold)
	faint          = color.New(color.Faint)
	highlightLabel = color.New(color.FgGreen)
)

// session drives the widgets of one simulated page from text commands.
type session struct {
	reg    *picker.Registry
	forms  map[string]*picker.MapForm
	active *picker.Widget
	out    io.Writer
}

func newSession(reg *picker.Registry, settings models.Settings, fields map[string]models.Settings, ids []string, out io.Writer) (*session, error) {
	if len(ids) == 0 {
		return nil, errors.New("at least one container is required")
	}

	s := &session{reg: reg, forms: make(map[string]*picker.MapForm), out: out}
	for _, id := range ids {
		form := picker.NewMapForm(nil)
		w, err := reg.Init(picker.Container{ID: id, Settings: settings, Field: fields[id], Form: form})
		if err != nil {
			return nil, err
		}
		s.forms[id] = form
		if s.active == nil {
			s.active = w
		}
	}
	return s, nil
}

func (s *session) close() {
	for id := range s.forms {
		s.reg.Teardown(id)
	}
}

func (s *session) run(in io.Reader) error {
	fmt.Fprintln(s.out, help)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(s.out, "%s> ", s.active.ID())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		err := s.exec(scanner.Text())
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			color.New(color.FgRed).Fprintln(s.out, err)
		}
	}
}

func (s *session) exec(line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	w := s.active

	switch cmd {
	case "":
		return nil
	case "type":
		w.OnSearchInput(arg)
		w.Wait()
		s.printResults(w.Snapshot())
	case "pick":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: pick <n>", errUsage)
		}
		st := w.Snapshot()
		if !st.ResultsVisible || n < 1 || n > len(st.Results) {
			return fmt.Errorf("no result %d", n)
		}
		w.OnSearchResultClick(st.Results[n-1])
		s.printState(w.Snapshot())
	case "click", "drag":
		lat, lng, err := parsePoint(arg)
		if err != nil {
			return fmt.Errorf("%w: %s <lat> <lng>", errUsage, cmd)
		}
		if cmd == "click" {
			w.OnMapClick(lat, lng)
		} else {
			w.OnMarkerDragEnd(lat, lng)
		}
		w.Wait()
		s.printState(w.Snapshot())
	case "focus":
		s.reg.Document().Click(picker.ClickTarget{WidgetID: w.ID(), InSearch: true})
		s.printResults(w.Snapshot())
	case "away":
		s.reg.Document().Click(picker.ClickTarget{})
		s.printResults(w.Snapshot())
	case "use":
		next, ok := s.reg.Get(arg)
		if !ok {
			return fmt.Errorf("unknown container %q", arg)
		}
		s.active = next
	case "show":
		s.printState(w.Snapshot())
	case "form":
		s.printForm(s.forms[w.ID()])
	case "help":
		fmt.Fprintln(s.out, help)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// parseFieldSettings reads per-container overrides written as
// "<id>:<key>=<value>[,<key>=<value>...]".
func parseFieldSettings(specs []string) (map[string]models.Settings, error) {
	fields := make(map[string]models.Settings, len(specs))
	for _, spec := range specs {
		id, pairs, ok := strings.Cut(spec, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("field settings %q: missing container id", spec)
		}
		f := fields[id]
		for _, pair := range strings.Split(pairs, ",") {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("field settings %q: expected key=value", spec)
			}
			var err error
			switch strings.TrimSpace(key) {
			case "geocoding_api":
				f.GeocodingAPI = strings.ToLower(strings.TrimSpace(value))
			case "style_url":
				f.StyleURL = strings.TrimSpace(value)
			case "default_lat":
				f.DefaultLat, err = strconv.ParseFloat(strings.TrimSpace(value), 64)
			case "default_lng":
				f.DefaultLng, err = strconv.ParseFloat(strings.TrimSpace(value), 64)
			case "default_zoom":
				f.DefaultZoom, err = strconv.Atoi(strings.TrimSpace(value))
			default:
				return nil, fmt.Errorf("field settings %q: unknown key %q", spec, key)
			}
			if err != nil {
				return nil, fmt.Errorf("field settings %q: %s: %w", spec, key, err)
			}
		}
		fields[id] = f
	}
	return fields, nil
}

func parsePoint(arg string) (float64, float64, error) {
	fields := strings.Fields(strings.ReplaceAll(arg, ",", " "))
	if len(fields) != 2 {
		return 0, 0, errUsage
	}
	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, err
	}
	lng, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func (s *session) printResults(st picker.State) {
	if !st.ResultsVisible {
		faint.Fprintln(s.out, "(no results shown)")
		return
	}
	heading.Fprintf(s.out, "%d result(s)\n", len(st.Results))
	for i, r := range st.Results {
		fmt.Fprintf(s.out, "  %d. %s ", i+1, r.FullAddress)
		faint.Fprintf(s.out, "(%s)\n", models.FormatCoordinates(r.Latitude, r.Longitude))
	}
}

func (s *session) printState(st picker.State) {
	heading.Fprintf(s.out, "%s ", st.Phase)
	highlightLabel.Fprintln(s.out, st.Label)
	fmt.Fprintf(s.out, "  map:    %s zoom %g\n", models.FormatCoordinates(st.Map.Center.Lat, st.Map.Center.Lng), st.Map.Zoom)
	if st.Marker != nil {
		fmt.Fprintf(s.out, "  marker: %s\n", models.FormatCoordinates(st.Marker.Position.Lat, st.Marker.Position.Lng))
	} else {
		fmt.Fprintln(s.out, "  marker: none")
	}
}

func (s *session) printForm(form *picker.MapForm) {
	values := form.Values()
	for _, c := range models.Components {
		fmt.Fprintf(s.out, "  %-12s %s\n", c, values[c])
	}
}

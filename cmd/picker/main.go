package main

import (
	"os"
	"time"

	"github.com/eightam/acf-ofm-location/internal/config"
	"github.com/eightam/acf-ofm-location/internal/geocoder"
	"github.com/eightam/acf-ofm-location/internal/models"
	"github.com/eightam/acf-ofm-location/internal/picker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	containers := pflag.StringSlice("containers", []string{"ofm-location"}, "Container IDs to initialise")
	provider := pflag.String("provider", "", "Geocoding provider (defaults to GEOCODING_API)")
	fieldSpecs := pflag.StringArray("field", nil, "Per-container settings, e.g. b:geocoding_api=nominatim,default_zoom=12")
	debounce := pflag.Duration("debounce", picker.DebounceDelay, "Search debounce delay")
	verbose := pflag.BoolP("verbose", "v", false, "Log debug output")
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	settings := cfg.Settings()
	if *provider != "" {
		settings.GeocodingAPI = *provider
	}

	fields, err := parseFieldSettings(*fieldSpecs)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid --field")
	}

	photon, err := geocoder.New(models.ProviderPhoton, cfg.Geocoder())
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create photon provider")
	}
	nominatim, err := geocoder.New(models.ProviderNominatim, cfg.Geocoder())
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create nominatim provider")
	}

	reg := picker.NewRegistry(picker.SearchersFor(photon, nominatim), nominatim, picker.WithDebounce(*debounce))

	s, err := newSession(reg, settings, fields, *containers, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot initialise picker")
	}
	defer s.close()

	if err := s.run(os.Stdin); err != nil {
		log.Fatal().Err(err).Msg("session failed")
	}
}

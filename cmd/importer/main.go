package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/eightam/acf-ofm-location/internal/config"
	"github.com/eightam/acf-ofm-location/internal/geocoder"
	"github.com/eightam/acf-ofm-location/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	file := flag.String("file", "", "Path to the CSV file to import")
	provider := flag.String("provider", "", "Geocoding provider for rows missing an address or coordinates (defaults to GEOCODING_API)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if *file == "" {
		log.Fatal().Msg("--file flag is required")
	}

	log.Info().Str("file", *file).Msg("starting import")

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open file")
	}
	rows, err := parseCSV(f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse CSV")
	}
	log.Info().Int("rows", len(rows)).Msg("parsed rows")

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	name := *provider
	if name == "" {
		name = cfg.Settings().GeocodingAPI
	}
	geo, err := geocoder.New(name, cfg.Geocoder())
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create geocoding provider")
	}

	ctx := context.Background()
	records, skipped := resolve(ctx, geo, rows)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("some rows could not be resolved")
	}

	// Connect to DB
	pool, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer pool.Close()

	repo := repository.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("cannot prepare schema")
	}

	copied, err := repo.ImportLocations(ctx, records)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot import locations")
	}

	// Verify data
	if err := verifyCopied(copied, len(records)); err != nil {
		log.Fatal().Err(err).Msg("import incomplete")
	}
	count, err := repo.CountLocations(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot count stored locations")
	}

	log.Info().Int("locations", len(records)).Int64("rows", copied).Int("stored", count).Msg("import finished")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eightam/acf-ofm-location/internal/cache"
	"github.com/eightam/acf-ofm-location/internal/config"
	"github.com/eightam/acf-ofm-location/internal/geocoder"
	"github.com/eightam/acf-ofm-location/internal/handler"
	"github.com/eightam/acf-ofm-location/internal/repository"
	"github.com/eightam/acf-ofm-location/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", config.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	conn, err := pgxpool.New(ctx, config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	repo := repository.NewRepository(conn)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("cannot prepare schema")
	}

	// Geocode cache is optional
	var geoCache service.Cache
	if config.RedisAddr != "" {
		rc, err := cache.New(ctx, config.RedisAddr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", config.RedisAddr).Msg("cannot connect to redis")
		}
		defer rc.Close()
		geoCache = rc
	} else {
		log.Info().Msg("REDIS_ADDR not set, geocode cache disabled")
	}

	settings := config.Settings()
	provider, err := geocoder.New(settings.GeocodingAPI, config.Geocoder())
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create geocoding provider")
	}

	// Initialize layers
	geoCodeService := service.NewGeoCodeService(provider, geoCache, config.CacheTTL)
	reverseGeocodeService := service.NewReverseGeoCodeService(provider, geoCache, config.CacheTTL)
	locationService := service.NewLocationService(repo)

	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(handler.Handlers{
		GeoCode:        handler.NewGeoCodeHandler(geoCodeService),
		ReverseGeocode: handler.NewReverseGeocodeHandler(reverseGeocodeService),
		Location:       handler.NewLocationHandler(locationService),
		Settings:       handler.NewSettingsHandler(settings),
		Limiter:        handler.NewIPRateLimiter(rate.Limit(config.RateLimit), config.RateBurst),
	})

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", config.ServerAddress).Str("provider", provider.Name()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// README: Entry point; loads config, wires the maps providers and pricing services, serves HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ridebook/internal/config"
	httptransport "ridebook/internal/http"
	"ridebook/internal/infra"
	"ridebook/internal/maps"
	"ridebook/internal/modules/booking"
	"ridebook/internal/modules/payment"
	"ridebook/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("ridebook-api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return fmt.Errorf("firebase init: %w", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() { _ = redisClient.Close() }()

	geocoder, router, err := newMapsProviders(cfg.Maps)
	if err != nil {
		return err
	}
	geocoder = maps.NewCachedGeocoder(geocoder, redisClient, cfg.Maps.GeocodeCacheTTL, logger)

	rates, err := pricing.NewRateTable(cfg.Pricing)
	if err != nil {
		return fmt.Errorf("rate table: %w", err)
	}
	pricingSvc := pricing.NewService(geocoder, router, rates, cfg.Maps.Timeout, logger)

	paymentSvc := payment.NewService(payment.NewStore(dbPool))
	bookingSvc := booking.NewService(booking.NewStore(dbPool), pricingSvc, paymentSvc, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Pricing:        pricingSvc,
		Bookings:       bookingSvc,
		Verifier:       verifier,
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	logger.Info("starting ridebook-api",
		zap.String("env", cfg.Env),
		zap.String("maps_provider", cfg.Maps.Provider),
	)
	return httptransport.NewServer(cfg.HTTP.Addr, handler, cfg.HTTP.ShutdownTimeout, logger).Run(ctx)
}

func newMapsProviders(cfg config.MapsConfig) (maps.Geocoder, maps.Router, error) {
	switch cfg.Provider {
	case config.ProviderGoogle:
		g, err := maps.NewGoogle(cfg.GoogleAPIKey, cfg.CountryCodes)
		if err != nil {
			return nil, nil, fmt.Errorf("google maps client: %w", err)
		}
		return g, g, nil
	default:
		geocoder := maps.NewNominatim(maps.NominatimOptions{
			BaseURL:       cfg.NominatimURL,
			UserAgent:     cfg.UserAgent,
			CountryCodes:  cfg.CountryCodes,
			Timeout:       cfg.Timeout,
			RatePerSecond: cfg.RatePerSecond,
		})
		return geocoder, maps.NewOSRM(cfg.OSRMURL, cfg.Timeout), nil
	}
}

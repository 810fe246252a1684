package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"donatrack/internal/adapter/repo"
	"donatrack/internal/http/handlers"
	"donatrack/internal/http/httpapi"
	"donatrack/internal/infra"
	"donatrack/internal/infra/geoip"
	"donatrack/internal/middleware"
	"donatrack/internal/storage"
	"donatrack/internal/tracking"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	db, err := infra.OpenDB(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := infra.InitSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to init schema")
	}

	donations := repo.NewDonationRepository(db)
	users := repo.NewUserRepository(db)

	created, err := users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to seed admin account")
	}
	if created {
		logger.Info().Str("username", cfg.AdminUsername).Msg("default admin account created")
	}

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init file store")
	}
	issuer := tracking.NewIssuer(store, cfg.BaseURL)
	sessions := middleware.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL)

	var lookup middleware.CountryLookup
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	app := handlers.NewApp(logger, cfg, donations, users, sessions, store, issuer)
	router := httpapi.NewRouter(app, cfg, logger, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("donation tracker listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ski-search/internal/api"
	"ski-search/internal/config"
	"ski-search/internal/db"
	"ski-search/internal/normalize"
	"ski-search/internal/observability"
)

func main() {
	cfg := config.Load()
	observability.SetupLogging(cfg.AppEnv)

	// Parse command line flags
	addr := flag.String("addr", cfg.HTTPAddr, "Address to listen on")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Separate metrics listener (empty serves /metrics on -addr)")
	dbPath := flag.String("db", cfg.DBPath, "Path to SQLite database")
	profileName := flag.String("profile", config.ProfileName(cfg.ScrapeConfig), "Conversion profile: alpine or usa")
	flag.Parse()

	profile, err := normalize.ProfileByName(*profileName)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid profile")
	}

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close()

	count, err := database.GetResortCount()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to count resorts")
	}
	log.Info().Str("path", *dbPath).Int("resorts", count).Str("profile", profile.Name).Msg("database ready")

	reg := observability.InitRegistry()
	servers := []*http.Server{}
	if *metricsAddr != "" && *metricsAddr != *addr {
		servers = append(servers, &http.Server{Addr: *metricsAddr, Handler: observability.MetricsHandler(reg)})
		reg = nil
	}
	servers = append(servers, &http.Server{
		Addr:              *addr,
		Handler:           api.NewRouter(database, profile, reg),
		ReadHeaderTimeout: 10 * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.Info().Str("addr", srv.Addr).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Str("addr", srv.Addr).Msg("shutdown failed")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

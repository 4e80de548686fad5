package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yegors/vatmap/internal/api"
	"github.com/yegors/vatmap/internal/config"
	"github.com/yegors/vatmap/internal/feed"
	"github.com/yegors/vatmap/internal/relay"
	"github.com/yegors/vatmap/internal/storage/sqlite"
	"github.com/yegors/vatmap/internal/weather"
	"github.com/yegors/vatmap/internal/ws"
	"github.com/yegors/vatmap/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting vatmap",
		logger.String("config", *configPath),
		logger.String("feed_url", cfg.Feed.URL))

	static, err := feed.LoadStatic(cfg.Feed.AirportsFile, cfg.Feed.BoundariesFile, log)
	if err != nil {
		log.Error("failed to load static data", logger.Error(err))
		os.Exit(1)
	}

	var tracks *sqlite.TrackStorage
	if cfg.Tracks.Enabled {
		db, err := sqlite.Open(cfg.Tracks.DBPath)
		if err != nil {
			log.Error("failed to open track database", logger.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		tracks, err = sqlite.NewTrackStorage(db, cfg.TrackRetention(), log)
		if err != nil {
			log.Error("failed to initialize track storage", logger.Error(err))
			os.Exit(1)
		}
	}

	var wx feed.WeatherSource
	if cfg.Weather.Enabled {
		wx = weather.NewProvider(weather.Config{
			APIBaseURL:     cfg.Weather.APIBaseURL,
			RequestTimeout: time.Duration(cfg.Weather.RequestTimeoutSeconds) * time.Second,
			CacheTTL:       time.Duration(cfg.Weather.CacheExpiryMinutes) * time.Minute,
			NegativeTTL:    time.Duration(cfg.Weather.NegativeExpiryMinutes) * time.Minute,
			BatchSize:      cfg.Weather.BatchSize,
		}, log)
	}

	r := relay.New(relay.Options{
		Workers:      cfg.Relay.Workers,
		SessionQueue: cfg.Relay.SessionQueue,
	}, log)

	client := feed.NewClient(cfg.Feed.URL, cfg.FeedTimeout(), log)
	var trackRecorder feed.TrackRecorder
	if tracks != nil {
		trackRecorder = tracks
	}
	poller := feed.NewPoller(client, static, wx, trackRecorder, r, cfg.PollInterval(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	wsServer := ws.NewServer(r, log)
	router := api.NewRouter(r, tracks, wsServer, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router.Routes(),
	}

	go func() {
		log.Info("http server listening", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", logger.Error(err))
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", logger.Error(err))
	}
	log.Info("shutdown complete")
}

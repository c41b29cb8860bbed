package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/geokshitij/flowData/internal/adapter/http"
	kafkaadapter "github.com/geokshitij/flowData/internal/adapter/kafka"
	"github.com/geokshitij/flowData/internal/adapter/nldi"
	"github.com/geokshitij/flowData/internal/adapter/nwis"
	"github.com/geokshitij/flowData/internal/config"
	"github.com/geokshitij/flowData/internal/downloader"
	"github.com/geokshitij/flowData/internal/observability"
	"github.com/geokshitij/flowData/internal/resolver"
	"github.com/geokshitij/flowData/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st, err := store.New(cfg.DataDir, logger)
	if err != nil {
		logger.Error("failed to create artifact store", "error", err)
		os.Exit(1)
	}

	nwisClient := nwis.NewClient(cfg.NWISSiteURL, cfg.NWISDailyURL, cfg.UpstreamTimeout, cfg.RequestsPerSecond, metrics, logger)

	var basins nldi.Fetcher = nldi.NewClient(cfg.NLDIBaseURL, cfg.UpstreamTimeout, metrics, logger)
	basins = nldi.NewCachedFetcher(basins, cfg.BasinCacheSize, metrics)

	// Progress audit sink (feature-flagged via KAFKA_ENABLED).
	var sink downloader.EventSink
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		sink = kafkaWriter
		logger.Info("kafka progress audit enabled", "topic", cfg.KafkaTopic)
	}

	res := resolver.New(nwisClient, st, metrics, logger)
	dl := downloader.New(nwisClient, basins, st, sink, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, res, dl, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

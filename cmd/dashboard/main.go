package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tripgrid/taxi-hotspots/internal/adapter/csvstore"
	httpadapter "github.com/tripgrid/taxi-hotspots/internal/adapter/http"
	"github.com/tripgrid/taxi-hotspots/internal/adapter/kafkapub"
	"github.com/tripgrid/taxi-hotspots/internal/adapter/pdfreport"
	"github.com/tripgrid/taxi-hotspots/internal/config"
	"github.com/tripgrid/taxi-hotspots/internal/domain"
	"github.com/tripgrid/taxi-hotspots/internal/observability"
	"github.com/tripgrid/taxi-hotspots/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := csvstore.NewLoader(cfg, logger, metrics)
	trips, err := loader.Load()
	if err != nil {
		logger.Error("failed to load trip dataset", "error", err)
		os.Exit(1)
	}

	var distance domain.DistanceFunc
	if cfg.HotspotMetric == "haversine" {
		distance = domain.HaversineMeters
	}
	clusterer := domain.NewDBSCAN(cfg.HotspotEps, cfg.HotspotMinPoints, distance)

	// Snapshot publishing is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher pipeline.SnapshotPublisher
	var kafkaPub *kafkapub.Publisher
	if cfg.KafkaEnabled {
		kafkaPub = kafkapub.NewPublisher(cfg, logger)
		publisher = kafkaPub
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	p := pipeline.New(trips, clusterer, publisher, logger, metrics)
	reporter := pdfreport.NewReporter(cfg.PDFRowLimit)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, reporter, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	fmt.Printf("Dashboard running at %s\n", localURL(cfg.HTTPAddr))

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// localURL turns a listen address like ":8080" into a browsable URL.
func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonwraymond/pyrolink/config"
	"github.com/jonwraymond/pyrolink/demo"
	"github.com/jonwraymond/pyrolink/health"
	"github.com/jonwraymond/pyrolink/observe"
	"github.com/jonwraymond/pyrolink/profiler"
	"github.com/jonwraymond/pyrolink/pyroscope"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (optional, env fills the rest)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: cfg.ServiceName,
		Token:       cfg.Token,
		Endpoint:    cfg.OTLPEndpoint,
		Protocol:    cfg.OTLPProtocol,
		Tracing:     observe.TracingConfig{Enabled: cfg.EnableTraces, SamplePct: 1.0},
		Metrics:     observe.MetricsConfig{Enabled: cfg.EnableMetrics},
		Logging:     observe.LoggingConfig{Enabled: cfg.EnableLogs, Level: "info", OTLP: cfg.EnableLogs},
	})
	if err != nil {
		log.Fatalf("observer: %v", err)
	}
	logger := obs.Logger().WithComponent("main")

	agg := health.NewAggregator()
	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))

	var prof *profiler.Profiler
	if cfg.EnableProfiling {
		exporter, err := pyroscope.NewExporter(pyroscope.Config{
			ServiceName:     cfg.ServiceName,
			AuthToken:       cfg.Token,
			Endpoint:        cfg.ProfilingEndpoint,
			MaxRetryElapsed: cfg.MaxRetryElapsed,
			Logger:          obs.Logger(),
		})
		if err != nil {
			log.Fatalf("profile exporter: %v", err)
		}

		prof, err = profiler.New(profiler.Config{
			Period:                cfg.ProfilingPeriod,
			EnableMemoryProfiling: cfg.EnableMemoryProfiling,
			Logger:                obs.Logger(),
		}, profiler.WithExporter(exporter))
		if err != nil {
			log.Fatalf("profiler: %v", err)
		}
		if err := prof.Start(); err != nil {
			log.Fatalf("profiler start: %v", err)
		}
		agg.Register(health.NewExportChecker("profile_export", prof.LastExportError))
	}

	server, err := demo.NewServer(cfg.ServiceName, obs, agg)
	if err != nil {
		log.Fatalf("server: %v", err)
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info(ctx, "http server listening", observe.Field{Key: "address", Value: cfg.HTTPAddress})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	querier := demo.NewQuerier(demo.QuerierConfig{
		URL: "http://" + cfg.HTTPAddress + "/helloworld",
	}, obs)
	querier.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
	<-sig
	logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := querier.Stop(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "querier shutdown", observe.Field{Key: "error", Value: err.Error()})
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "http shutdown", observe.Field{Key: "error", Value: err.Error()})
	}
	if prof != nil {
		if err := prof.Stop(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "profiler shutdown", observe.Field{Key: "error", Value: err.Error()})
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Printf("observer shutdown: %v", err)
	}
}

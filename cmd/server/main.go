package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	lookuphandler "npi-gateway/internal/lookup/handler"
	lookupmetrics "npi-gateway/internal/lookup/metrics"
	lookupservice "npi-gateway/internal/lookup/service"
	"npi-gateway/internal/lookup/upstream"
	"npi-gateway/internal/platform/config"
	"npi-gateway/internal/platform/httpserver"
	"npi-gateway/internal/platform/logger"
	platformredis "npi-gateway/internal/platform/redis"
	ratelimitmetrics "npi-gateway/internal/ratelimit/metrics"
	ratelimitmw "npi-gateway/internal/ratelimit/middleware"
	"npi-gateway/internal/ratelimit/store/bucket"
	httptransport "npi-gateway/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var buckets ratelimitmw.BucketStore
	if redisClient != nil {
		buckets = bucket.NewRedisBucketStore(redisClient.Client)
		log.Info("rate limiting backed by redis")
	} else {
		buckets = bucket.NewInMemoryBucketStore()
		log.Info("rate limiting backed by in-memory store")
	}

	registry := upstream.NewHTTPClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)

	lookupSvc, err := lookupservice.New(registry,
		lookupservice.WithLogger(log),
		lookupservice.WithMetrics(lookupmetrics.New()),
	)
	if err != nil {
		log.Error("lookup service init failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Lookup:         lookuphandler.New(lookupSvc, log),
		RateLimit:      ratelimitmw.New(buckets, log, cfg.RateLimit, cfg.RateLimitWindow, ratelimitmw.WithMetrics(ratelimitmetrics.New())),
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := httpserver.New(cfg.Addr, router)
	opsSrv := httpserver.New(cfg.OpsAddr, httptransport.NewOpsRouter(redisClient))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting npi-gateway", "addr", cfg.Addr, "upstream", cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting ops server", "addr", cfg.OpsAddr)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return opsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"memberd/internal/member/device"
	memberhandler "memberd/internal/member/handler"
	membermetrics "memberd/internal/member/metrics"
	"memberd/internal/member/password"
	"memberd/internal/member/service"
	"memberd/internal/member/store"
	"memberd/internal/platform/config"
	"memberd/internal/platform/httpserver"
	"memberd/internal/platform/logger"
	"memberd/internal/platform/metrics"
	"memberd/internal/platform/middleware"
	platformpg "memberd/internal/platform/postgres"
	platformredis "memberd/internal/platform/redis"
	"memberd/internal/token"
	httptransport "memberd/internal/transport/http"
	"memberd/pkg/platform/audit"
	auditkafka "memberd/pkg/platform/audit/kafka"
	"memberd/pkg/platform/audit/publisher"
	auditmemory "memberd/pkg/platform/audit/store/memory"
	auditpg "memberd/pkg/platform/audit/store/postgres"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(os.Getenv("MEMBERD_DEBUG") == "true")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httptransport.HealthChecker{}

	// Member persistence: postgres when configured, in-memory otherwise.
	var members store.MemberStore = store.NewInMemory()
	if cfg.Database.URL != "" {
		pool, err := platformpg.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			log.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		members = store.NewPostgres(pool)
	}

	// Optional Redis decorator for login-id availability checks.
	redisClient, err := platformredis.New(cfg.Redis.URL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		members = store.NewCached(members, redisClient.Client, cfg.Redis.AvailabilityTTL, log)
		checks["redis"] = redisClient
	}

	// Audit trail: postgres-backed when a database is configured, with an
	// optional Kafka stream for downstream consumers.
	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if cfg.Database.URL != "" {
		db, err := platformpg.NewDB(ctx, cfg.Database.URL)
		if err != nil {
			log.Error("connect postgres for audit", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		auditStore = auditpg.New(db)
	}

	publisherOpts := []publisher.Option{publisher.WithAsyncBuffer(1024)}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		publisherOpts = append(publisherOpts, publisher.WithSink(sink))
	}
	auditor := publisher.NewPublisher(auditStore, publisherOpts...)
	defer auditor.Close()

	// Domain services.
	hasher := password.NewBcryptHasher(cfg.Password.BcryptCost)
	memberSvc := service.NewService(members, hasher, auditor,
		service.WithMetrics(membermetrics.New()),
		service.WithLogger(log),
	)
	tokens := token.NewService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.TTL)
	devices := device.NewService(cfg.Device.FingerprintEnabled)

	// HTTP surface.
	var validator middleware.TokenValidator = tokens
	h := memberhandler.New(memberSvc, tokens, validator, devices, log)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  log,
		Metrics: metrics.New(),
		Devices: devices,
		Members: h,
		Checks:  checks,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting memberd", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("memberd stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/okestore/storefront-sync/internal/consumers/approvals"
	"github.com/okestore/storefront-sync/internal/consumers/audit"
	"github.com/okestore/storefront-sync/internal/verification"
	"github.com/okestore/storefront-sync/pkg/bigquery"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/events"
	"github.com/okestore/storefront-sync/pkg/idempotency"
	"github.com/okestore/storefront-sync/pkg/instance"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/metrics"
	"github.com/okestore/storefront-sync/pkg/pubsub"
	"github.com/okestore/storefront-sync/pkg/redis"
	"github.com/okestore/storefront-sync/pkg/remote/firestore"
)

const serviceName = "worker"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(ctx, cfg.Redis, cfg.LocalStore.Namespace, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	remoteClient, err := firestore.New(ctx, cfg.GCP, cfg.Firestore, logg)
	requireResource(ctx, logg, "firestore", err)
	defer func() {
		if err := remoteClient.Close(); err != nil {
			logg.Error(ctx, "failed to close firestore client", err)
		}
	}()

	subscription := pubsubClient.ApprovalsSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "approvals subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	reg := prometheus.DefaultRegisterer
	syncMetrics := metrics.NewSyncMetrics(reg)

	// The worker holds no session, so approvals only touch remote orders and profiles.
	verifications, err := verification.NewService(verification.Params{
		Remote:    remoteClient.Backend(),
		Publisher: events.NewPubSubPublisher(pubsubClient.EventRoutes(), logg),
		Logger:    logg,
		Metrics:   syncMetrics,
	})
	requireResource(ctx, logg, "verification service", err)

	consumer, err := approvals.NewService(subscription, verifications, manager, logg)
	requireResource(ctx, logg, "approvals consumer", err)
	consumer.WithMetrics(metrics.NewJobMetrics(reg))

	params := ServiceParams{
		Logger:    logg,
		Redis:     redisClient,
		PubSub:    pubsubClient,
		Remote:    remoteClient,
		Approvals: consumer,
	}

	if cfg.BigQuery.Enabled() {
		bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		requireResource(ctx, logg, "bigquery", err)
		defer func() {
			if err := bqClient.Close(); err != nil {
				logg.Error(ctx, "failed to close bigquery client", err)
			}
		}()

		requireResource(ctx, logg, "audit table", audit.EnsureTable(ctx, bqClient, cfg.BigQuery.CreateTables))

		auditSub := pubsubClient.AuditSubscription()
		if auditSub == nil {
			requireResource(ctx, logg, "audit subscription", errors.New("subscription not configured"))
		}
		writer, err := audit.NewWriter(bqClient, audit.WriterConfig{})
		requireResource(ctx, logg, "audit writer", err)
		auditConsumer, err := audit.NewService(auditSub, writer, manager, logg)
		requireResource(ctx, logg, "audit consumer", err)

		params.Audit = auditConsumer
		params.BigQuery = bqClient
	}

	service, err := NewService(params)
	requireResource(ctx, logg, "worker service", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})
	logg.Info(runCtx, "worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "worker failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

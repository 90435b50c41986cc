package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okestore/storefront-sync/api"
	"github.com/okestore/storefront-sync/api/controllers"
	"github.com/okestore/storefront-sync/api/routes"
	"github.com/okestore/storefront-sync/internal/cron"
	"github.com/okestore/storefront-sync/internal/identity"
	"github.com/okestore/storefront-sync/internal/notifications"
	"github.com/okestore/storefront-sync/internal/orders"
	"github.com/okestore/storefront-sync/internal/preferences"
	"github.com/okestore/storefront-sync/internal/session"
	"github.com/okestore/storefront-sync/internal/social"
	"github.com/okestore/storefront-sync/internal/support"
	"github.com/okestore/storefront-sync/internal/verification"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/db"
	"github.com/okestore/storefront-sync/pkg/events"
	"github.com/okestore/storefront-sync/pkg/instance"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/metrics"
	"github.com/okestore/storefront-sync/pkg/migrate"
	"github.com/okestore/storefront-sync/pkg/pubsub"
	"github.com/okestore/storefront-sync/pkg/redis"
	"github.com/okestore/storefront-sync/pkg/remote/firestore"
)

const serviceName = "api"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, cfg.LocalStore.Namespace, logg)
		requireResource(ctx, logg, "redis", err)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
	}

	store, closeStore, err := localstore.Open(ctx, cfg.LocalStore, redisClient)
	requireResource(ctx, logg, "local store", err)
	defer func() {
		if err := closeStore(); err != nil {
			logg.Error(ctx, "error closing local store", err)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()
	requireResource(ctx, logg, "migrations", migrate.OnBoot(ctx, cfg.DB.AutoMigrate, dbClient, logg))

	remoteClient, err := firestore.New(ctx, cfg.GCP, cfg.Firestore, logg)
	requireResource(ctx, logg, "firestore", err)
	defer func() {
		if err := remoteClient.Close(); err != nil {
			logg.Error(ctx, "error closing firestore", err)
		}
	}()

	// The API only publishes; subscriptions belong to the worker.
	pubsubCfg := cfg.PubSub
	pubsubCfg.ApprovalsSubscription = ""
	pubsubCfg.AuditSubscription = ""
	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, pubsubCfg, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "error closing pubsub", err)
		}
	}()
	publisher := events.NewPubSubPublisher(pubsubClient.EventRoutes(), logg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	syncMetrics := metrics.NewSyncMetrics(registry)

	provider := identity.NewProvider(identity.Params{
		Accounts: identity.NewRepository(dbClient.DB()),
		Password: cfg.Password,
		JWT:      cfg.JWT,
		Logger:   logg,
	})

	manager, err := session.NewManager(ctx, session.Params{
		Identity:         provider,
		Remote:           remoteClient.Backend(),
		Store:            store,
		Logger:           logg,
		Metrics:          syncMetrics,
		WriteTimeout:     cfg.Sync.RemoteWriteTimeout,
		FreeChatMessages: cfg.Sync.FreeChatMessages,
	})
	requireResource(ctx, logg, "session manager", err)
	defer manager.Close()

	verifications, err := verification.NewService(verification.Params{
		Remote:    remoteClient.Backend(),
		Store:     store,
		Orders:    manager,
		Publisher: publisher,
		Logger:    logg,
		Metrics:   syncMetrics,
	})
	requireResource(ctx, logg, "verification service", err)

	checkout, err := orders.NewService(manager, verifications, logg, nil)
	requireResource(ctx, logg, "checkout service", err)

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(store, logg), notifications.Options{Logger: logg})
	requireResource(ctx, logg, "notifications service", err)

	supportSvc, err := support.NewService(store, logg, nil)
	requireResource(ctx, logg, "support service", err)

	socialSvc, err := social.NewService(store, logg, nil)
	requireResource(ctx, logg, "social service", err)

	ready := map[string]controllers.Pinger{
		"database":  dbClient,
		"firestore": remoteClient,
		"pubsub":    pubsubClient,
	}
	if redisClient != nil {
		ready["redis"] = redisClient
	}

	handler := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		Auth:          manager,
		Session:       manager,
		Verifications: verifications,
		Orders:        checkout,
		Notifications: notificationsSvc,
		Support:       supportSvc,
		Social:        socialSvc,
		Preferences:   preferences.New(store),
		Publisher:     publisher,
		Redis:         redisClient,
		Ready:         ready,
		Metrics:       registry,
	})

	server := api.NewServer(cfg, handler)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(),
	})

	go func() {
		if err := manager.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(runCtx, "session loop stopped", err)
			stop()
		}
	}()

	if cfg.Scheduler.Enabled {
		scheduler := newScheduler(runCtx, cfg, logg, redisClient, registry, notificationsSvc, verifications)
		go func() {
			if err := scheduler.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(runCtx, "scheduler stopped", err)
			}
		}()
	}

	logg.Info(runCtx, "starting api server")
	if err := api.Serve(runCtx, server, nil, cfg.HTTP.ShutdownTimeout); err != nil {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func newScheduler(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	reg prometheus.Registerer,
	notificationsSvc notifications.Service,
	verifications *verification.Service,
) *cron.Service {
	dailyJob, err := cron.NewDailyNotificationJob(logg, notificationsSvc)
	requireResource(ctx, logg, "daily notification job", err)
	backlogJob, err := cron.NewVerificationBacklogJob(cron.VerificationBacklogJobParams{
		Logger:        logg,
		Verifications: verifications,
		Threshold:     cfg.Scheduler.BacklogThreshold,
	})
	requireResource(ctx, logg, "verification backlog job", err)

	var lock cron.Lock = &cron.LocalLock{}
	if redisClient != nil {
		lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey("scheduler"), cfg.Scheduler.Interval-time.Minute)
		requireResource(ctx, logg, "scheduler lock", err)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   cron.NewRegistry(dailyJob, backlogJob),
		Lock:       lock,
		Metrics:    metrics.NewJobMetrics(reg),
		Interval:   cfg.Scheduler.Interval,
		JobTimeout: cfg.Scheduler.JobTimeout,
	})
	requireResource(ctx, logg, "scheduler", err)
	return service
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

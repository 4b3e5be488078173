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

	"github.com/ejidepharmacy/pharmabot-backend/internal/adherence"
	"github.com/ejidepharmacy/pharmabot-backend/internal/cron"
	"github.com/ejidepharmacy/pharmabot-backend/internal/purchases"
	"github.com/ejidepharmacy/pharmabot-backend/internal/reports"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/config"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/metrics"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/migrate"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/queue"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/redis"
)

const lockName = "cron-worker:%s"

// guard is satisfied by both the redis client and cron.MemoryGuard.
type guard interface {
	Once(ctx context.Context, scope, period string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, scope, period string) error
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	loc, err := cfg.App.Location()
	if err != nil {
		logg.Error(context.Background(), "failed to load time zone", err)
		os.Exit(1)
	}
	clk := clock.System{Location: loc}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		lock        cron.Lock = &cron.LocalLock{}
		periodGuard guard     = cron.NewMemoryGuard()
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(fmt.Sprintf(lockName, envOrLocal(cfg.App.Env))), 0)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
		lock, periodGuard = redisLock, redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, run a single cron worker")
	}

	purchaseRepo := purchases.NewRepository(dbClient.DB())
	scheduler, err := adherence.NewService(purchaseRepo, dbClient, clk, metrics.NewReminderMetrics(prometheus.DefaultRegisterer), logg)
	requireResource(logg, "adherence service", err)
	reportService, err := reports.NewService(reports.NewRepository(dbClient.DB()), clk)
	requireResource(logg, "reports service", err)

	if cfg.Reminders.AMQPURL == "" {
		logg.Error(context.Background(), "amqp not configured, reminders would never reach customers", cron.ErrNoPublisher)
		os.Exit(1)
	}
	publisher, err := queue.NewPublisher(cfg.Reminders.AMQPURL, cfg.Reminders.Queue, logg)
	requireResource(logg, "queue publisher", err)
	defer func() {
		if err := publisher.Close(); err != nil {
			logg.Error(context.Background(), "error closing queue publisher", err)
		}
	}()

	registry, err := cron.NewWorkerRegistry(cron.WorkerJobsParams{
		Logger:            logg,
		Scheduler:         scheduler,
		Reports:           reportService,
		Publisher:         publisher,
		Guard:             periodGuard,
		Clock:             clk,
		AdminNumbers:      cfg.Reminders.AdminNumbers,
		ReminderStartHour: cfg.Reminders.StartHour,
		WeeklyWeekday:     time.Weekday(cfg.Reminders.WeeklyWeekday),
		WeeklyHour:        cfg.Reminders.WeeklyHour,
		DigestEnabled:     cfg.Reminders.DigestEnabled,
		DigestHour:        cfg.Reminders.DigestHour,
	})
	requireResource(logg, "cron registry", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Reminders.CronInterval,
	})
	requireResource(logg, "cron service", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"jobs": registry.Names(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func envOrLocal(env string) string {
	if env == "" {
		return "local"
	}
	return env
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}

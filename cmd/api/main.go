package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ejidepharmacy/pharmabot-backend/api/routes"
	"github.com/ejidepharmacy/pharmabot-backend/internal/adherence"
	"github.com/ejidepharmacy/pharmabot-backend/internal/cart"
	"github.com/ejidepharmacy/pharmabot-backend/internal/chat"
	"github.com/ejidepharmacy/pharmabot-backend/internal/checkout"
	"github.com/ejidepharmacy/pharmabot-backend/internal/conversations"
	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/internal/purchases"
	"github.com/ejidepharmacy/pharmabot-backend/internal/reports"
	"github.com/ejidepharmacy/pharmabot-backend/internal/responder"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/config"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/metrics"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/migrate"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/queue"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, chat rate limiting disabled")
	}

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	purchaseRepo := purchases.NewRepository(dbClient.DB())

	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, logg)
	requireService(logg, "inventory", err)
	if cfg.FeatureFlags.SeedInventory {
		seeded, err := inventoryService.Seed(context.Background())
		if err != nil {
			logg.Error(context.Background(), "failed to seed inventory", err)
			os.Exit(1)
		}
		if seeded > 0 {
			logg.Info(logg.WithField(context.Background(), "drugs", seeded), "seeded default inventory")
		}
	}

	cartService, err := cart.NewService(cartRepo, inventoryService, logg)
	requireService(logg, "cart", err)
	checkoutService, err := checkout.NewService(dbClient, cartRepo, inventoryRepo, purchaseRepo, clk, cfg.Store.OrderPrefix, logg)
	requireService(logg, "checkout", err)
	purchaseService, err := purchases.NewService(purchaseRepo)
	requireService(logg, "purchases", err)
	conversationService, err := conversations.NewService(conversations.NewRepository(dbClient.DB()), clk)
	requireService(logg, "conversations", err)
	reportService, err := reports.NewService(reports.NewRepository(dbClient.DB()), clk)
	requireService(logg, "reports", err)
	reminderService, err := adherence.NewService(purchaseRepo, dbClient, clk, metrics.NewReminderMetrics(prometheus.DefaultRegisterer), logg)
	requireService(logg, "adherence", err)

	systemPrompt := cfg.AI.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = responder.DefaultSystemPrompt(cfg.Store.Name, cfg.Store.PaymentLines())
	}
	stages, err := responder.StagesFromConfig(cfg.AI, systemPrompt)
	requireService(logg, "responder stages", err)
	pipeline, err := responder.NewPipeline(
		stages,
		responder.NewFallback(cfg.Store.Name),
		cfg.AI.StageTimeout,
		metrics.NewResponderMetrics(prometheus.DefaultRegisterer),
		logg,
	)
	requireService(logg, "responder pipeline", err)

	chatService, err := chat.NewService(chat.Deps{
		Inventory:     inventoryService,
		Carts:         cartService,
		Checkout:      checkoutService,
		Purchases:     purchaseService,
		Conversations: conversationService,
		Reports:       reportService,
		Pipeline:      pipeline,
		StoreName:     cfg.Store.Name,
		PaymentLines:  cfg.Store.PaymentLines(),
		Logger:        logg,
	})
	requireService(logg, "chat", err)

	var deliverer adherence.Deliverer = adherence.NewLogDeliverer(logg)
	if cfg.Reminders.AMQPURL != "" {
		publisher, err := queue.NewPublisher(cfg.Reminders.AMQPURL, cfg.Reminders.Queue, logg)
		requireService(logg, "reminder publisher", err)
		defer func() {
			if err := publisher.Close(); err != nil {
				logg.Error(context.Background(), "error closing reminder publisher", err)
			}
		}()
		deliverer = adherence.NewQueueDeliverer(publisher)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"stages": cfg.AI.Stages,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Gatherer:  prometheus.DefaultGatherer,
			Chat:      chatService,
			Reminders: reminderService,
			Deliverer: deliverer,
			Inventory: inventoryService,
			Reports:   reportService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}

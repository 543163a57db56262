package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lokapasar/lokapasar-backend/api/routes"
	"github.com/lokapasar/lokapasar-backend/internal/cart"
	"github.com/lokapasar/lokapasar-backend/internal/catalog"
	"github.com/lokapasar/lokapasar-backend/internal/chat"
	discounts "github.com/lokapasar/lokapasar-backend/internal/discounts"
	"github.com/lokapasar/lokapasar-backend/internal/orders"
	"github.com/lokapasar/lokapasar-backend/internal/payments"
	"github.com/lokapasar/lokapasar-backend/internal/users"
	"github.com/lokapasar/lokapasar-backend/pkg/auth/session"
	"github.com/lokapasar/lokapasar-backend/pkg/config"
	"github.com/lokapasar/lokapasar-backend/pkg/db"
	"github.com/lokapasar/lokapasar-backend/pkg/images"
	"github.com/lokapasar/lokapasar-backend/pkg/logger"
	"github.com/lokapasar/lokapasar-backend/pkg/metrics"
	"github.com/lokapasar/lokapasar-backend/pkg/migrate"
	"github.com/lokapasar/lokapasar-backend/pkg/redis"
)

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
	})

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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewStore(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	imageStore, err := images.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxUploadMB)
	if err != nil {
		logg.Error(context.Background(), "failed to create image store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

	gormDB := dbClient.DB()
	catalogRepo := catalog.NewRepository(gormDB)
	discountRepo := discounts.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)
	userRepo := users.NewRepository(gormDB)
	chatRepo := chat.NewRepository(gormDB)

	discountSvc, err := discounts.NewService(discountRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create discount service", err)
		os.Exit(1)
	}
	catalogSvc, err := catalog.NewService(catalogRepo, dbClient, discountRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	cartSvc, err := cart.NewService(cartRepo, catalogRepo, discountRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	orderSvc, err := orders.NewService(
		dbClient, orderRepo, cartRepo, userRepo, paymentRepo,
		catalogRepo, discountRepo, imageStore, orderMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	paymentSvc, err := payments.NewService(paymentRepo, orderRepo, imageStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}
	chatSvc, err := chat.NewService(chatRepo, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}
	userSvc, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:    cfg,
		Logger:    logg,
		DBPinger:  dbClient,
		Redis:     redisClient,
		Sessions:  sessions,
		Images:    imageStore,
		Registry:  registry,
		Catalog:   catalogSvc,
		Discounts: discountSvc,
		Cart:      cartSvc,
		Orders:    orderSvc,
		Payments:  paymentSvc,
		Chat:      chatSvc,
		Users:     userSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-shutdown
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

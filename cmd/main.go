package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/sisterly-service/internal/auth"
	"github.com/senyabanana/sisterly-service/internal/db"
	"github.com/senyabanana/sisterly-service/internal/handlers"
	"github.com/senyabanana/sisterly-service/internal/logger"
	"github.com/senyabanana/sisterly-service/internal/notification"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/router"
	"github.com/senyabanana/sisterly-service/internal/router/config"
	"github.com/senyabanana/sisterly-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.String("config-path", ".", "directory containing app.env")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("cannot create logger:", err)
	}
	defer zapLogger.Sync()

	runDBMigration(zapLogger, cfg.MigrationURL, cfg.PostgresConn)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("error initializing database", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient, err := db.InitRedis(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("error initializing redis", zap.Error(err))
	}
	defer redisClient.Close()

	productRepo := repository.NewPostgresProductRepository(dbPool)
	orderRepo := repository.NewPostgresOrderRepository(dbPool)
	mediaRepo := repository.NewPostgresMediaRepository(dbPool)
	userRepo := repository.NewPostgresUserRepository(dbPool)
	addressRepo := repository.NewPostgresAddressRepository(dbPool)
	favoriteRepo := repository.NewPostgresFavoriteRepository(dbPool)
	taxonomyRepo := repository.NewPostgresTaxonomyRepository(dbPool)
	availabilityCache := repository.NewRedisAvailabilityCache(redisClient, cfg.AvailabilityCacheTTL)

	pushClient := notification.NewPushClient(cfg.PushAPIURL, cfg.PushAppID, cfg.PushAPIKey, cfg.RequestTimeout)
	dispatcher := notification.NewDispatcher(userRepo, pushClient, zapLogger, cfg.NotifyQueueSize, cfg.RequestTimeout)
	dispatcher.Start(cfg.NotifyWorkers)

	productService := services.NewProductService(productRepo, mediaRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, availabilityCache, dispatcher, zapLogger, cfg.AvailabilityMinYear)
	moderationService := services.NewModerationService(productRepo, dispatcher)
	favoriteService := services.NewFavoriteService(favoriteRepo, productRepo, dispatcher)
	searchService := services.NewSearchService(productRepo, userRepo)
	userService := services.NewUserService(userRepo, addressRepo, productRepo)
	mediaService := services.NewMediaService(mediaRepo)
	catalogService := services.NewCatalogService(taxonomyRepo)

	timeout := cfg.RequestTimeout
	healthChecks := map[string]handlers.HealthCheck{
		"postgres": dbPool.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
	routes := router.InitRoutes(router.Handlers{
		Ping:      handlers.NewPingHandler(healthChecks, zapLogger, timeout),
		Products:  handlers.NewProductHandler(productService, zapLogger, timeout),
		Orders:    handlers.NewOrderHandler(orderService, zapLogger, timeout),
		Admin:     handlers.NewAdminHandler(moderationService, zapLogger, timeout),
		Favorites: handlers.NewFavoriteHandler(favoriteService, zapLogger, timeout),
		Search:    handlers.NewSearchHandler(searchService, zapLogger, timeout),
		Users:     handlers.NewUserHandler(userService, zapLogger, timeout),
		Media:     handlers.NewMediaHandler(mediaService, catalogService, zapLogger, timeout),
	}, auth.NewAuthenticator(cfg.JWTSecret, zapLogger))

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zapLogger.Info("server is listening", zap.String("address", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}
	dispatcher.Close()
}

func runDBMigration(logger *zap.Logger, migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		logger.Fatal("cannot create a new migrate instance", zap.Error(err))
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Fatal("failed to run migrate up", zap.Error(err))
	}
	logger.Info("db migrated successfully")
}

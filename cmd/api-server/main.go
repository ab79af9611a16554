package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/huger6/filseries/database"
	"github.com/huger6/filseries/internal/catalog"
	"github.com/huger6/filseries/internal/config"
	"github.com/huger6/filseries/internal/microservices/http-api/handler"
	"github.com/huger6/filseries/internal/microservices/http-api/middleware"
	"github.com/huger6/filseries/internal/microservices/http-api/repository"
	"github.com/huger6/filseries/internal/microservices/http-api/service"
)

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid redis url: %v", err)
	}
	if cfg.RedisPassword != "" {
		redisOpts.Password = cfg.RedisPassword
	}
	rdb := redis.NewClient(redisOpts)

	// Catalog client with a redis cache in front of TMDB.
	var catalogClient catalog.Client = catalog.NewCachedClient(
		catalog.NewTMDBClient(cfg.TMDBAPIKey), rdb, cfg.CacheTTL, logger)

	markRepo := repository.NewMarkRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	markSvc := service.NewMarkService(markRepo, catalogClient, cfg.MetadataTimeout, logger)
	statsSvc := service.NewStatsService(statsRepo)
	notificationSvc := service.NewNotificationService(notificationRepo)

	markHandler := handler.NewMarkHandler(markSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimitMiddleware(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	r.GET("/check-conn", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is alive"})
	})

	api := r.Group("/api")

	titles := api.Group("/titles")
	titles.Use(middleware.OptionalAuthMiddleware(cfg.JWTSecret))
	markHandler.RegisterTitleRoutes(titles)

	marks := api.Group("/marks")
	marks.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	markHandler.RegisterRoutes(marks)

	users := api.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	statsHandler.RegisterRoutes(users)

	notifications := api.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationHandler.RegisterRoutes(notifications)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("starting api server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huger6/filseries/database"
	"github.com/huger6/filseries/internal/catalog"
	"github.com/huger6/filseries/internal/config"
	"github.com/huger6/filseries/internal/ingestion/seasonsync"
	"github.com/huger6/filseries/internal/microservices/http-api/repository"
	"github.com/huger6/filseries/internal/microservices/http-api/service"
)

func main() {
	once := flag.Bool("once", false, "run a single sync pass and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid redis url: %v", err)
	}
	rdb := redis.NewClient(redisOpts)

	var catalogClient catalog.Client = catalog.NewCachedClient(
		catalog.NewTMDBClient(cfg.TMDBAPIKey), rdb, cfg.CacheTTL, logger)

	markRepo := repository.NewMarkRepository(db)
	notificationSvc := service.NewNotificationService(repository.NewNotificationRepository(db))

	sync := seasonsync.NewSyncService(markRepo, catalogClient, notificationSvc, cfg.SeasonSyncWorkers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := sync.Run(ctx); err != nil {
			log.Fatalf("season sync failed: %v", err)
		}
		return
	}

	ticker := time.NewTicker(cfg.SeasonSyncInterval)
	defer ticker.Stop()

	if err := sync.Run(ctx); err != nil {
		logger.Error("season sync pass failed", "error", err)
	}
	for {
		select {
		case <-ticker.C:
			if err := sync.Run(ctx); err != nil {
				logger.Error("season sync pass failed", "error", err)
			}
		case <-ctx.Done():
			logger.Info("season sync stopping")
			return
		}
	}
}

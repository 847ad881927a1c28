package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/activity-feed/config"
	"github.com/d60-Lab/activity-feed/internal/api"
	"github.com/d60-Lab/activity-feed/internal/api/handler"
	"github.com/d60-Lab/activity-feed/internal/cache"
	"github.com/d60-Lab/activity-feed/internal/queue"
	"github.com/d60-Lab/activity-feed/internal/repository"
	"github.com/d60-Lab/activity-feed/internal/service"
	"github.com/d60-Lab/activity-feed/pkg/database"
	"github.com/d60-Lab/activity-feed/pkg/logger"
	"github.com/d60-Lab/activity-feed/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.SampleRate,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg)
	if err != nil {
		logger.Error("tracing init failed", zap.Error(err))
	} else {
		defer func() { _ = shutdownTracing(ctx) }()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("init db failed", zap.Error(err))
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed", zap.Error(err))
		os.Exit(1)
	}

	activityRepo := repository.NewActivityRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	itemRepo := repository.NewFeedItemRepository(db)
	scorer := service.NewRelevanceScorer(cfg.Feed)

	var index *cache.SubscriberCache
	if cfg.Feed.SubscriberCacheTTL > 0 {
		index = cache.NewSubscriberCache(rdb, cfg.Feed.SubscriberCacheTTL)
	}

	notifier := service.NewRedisNotifier(rdb, 0)
	stopNotifier := notifier.Start(2)
	defer func() { _ = stopNotifier(ctx) }()

	q := queue.New(rdb, cfg.Queue)
	distributor := service.NewDistributor(
		activityRepo, subRepo, itemRepo, scorer,
		indexOrNil(index), notifier,
		cfg.Feed.FanoutWorkers, cfg.Feed.FanoutPageSize, cfg.Feed.FanoutBatchSize,
	)
	q.Register(service.JobDistributeActivity, distributor.HandleJob)
	stopQueue := q.Start()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = stopQueue(sctx)
	}()

	activitySvc := service.NewActivityService(activityRepo, q, cfg.Feed.AggregationWindow)
	feedSvc := service.NewFeedService(itemRepo, cfg.Feed)
	subSvc := service.NewSubscriptionService(subRepo, subIndexOrNil(index))

	h := handler.New(activitySvc, feedSvc, subSvc)
	r := api.NewRouter(cfg, h)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}

// nil 接口不能直接传带类型的 nil 指针，这里统一收敛
func indexOrNil(c *cache.SubscriberCache) service.SubscriberPager {
	if c == nil {
		return nil
	}
	return c
}

func subIndexOrNil(c *cache.SubscriberCache) service.SubscriberIndex {
	if c == nil {
		return nil
	}
	return c
}

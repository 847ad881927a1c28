package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/activity-feed/config"
	"github.com/d60-Lab/activity-feed/internal/model"
	"github.com/d60-Lab/activity-feed/internal/queue"
	"github.com/d60-Lab/activity-feed/internal/repository"
	"github.com/d60-Lab/activity-feed/internal/service"
	"github.com/d60-Lab/activity-feed/pkg/database"
	"github.com/d60-Lab/activity-feed/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	_ = logger.Init("warn")
	db := must(database.InitDB(cfg))

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		panic(err)
	}

	N := envInt("N", 20000)           // subscribers of the publisher
	ACTIVITIES := envInt("ACTS", 100) // activities to publish
	WORKERS := envInt("WORKERS", 8)   // fanout write workers
	PAGE := envInt("PAGE", 500)       // subscriber page size
	BATCH := envInt("BATCH", 500)     // feed item upsert batch

	// clean tables for a reproducible run (ok for local bench)
	_ = db.Exec("DELETE FROM feed_items").Error
	_ = db.Exec("DELETE FROM activity_targets").Error
	_ = db.Exec("DELETE FROM activities").Error
	_ = db.Exec("DELETE FROM feed_subscriptions").Error
	_ = rdb.FlushDB(ctx).Err()

	activityRepo := repository.NewActivityRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	itemRepo := repository.NewFeedItemRepository(db)
	scorer := service.NewRelevanceScorer(cfg.Feed)

	// seed one publisher and N subscribers
	publisher := "publisher0"
	subscribers := make([]string, N)
	for i := 0; i < N; i++ {
		subscribers[i] = uuid.New().String()
		_ = must(subRepo.Upsert(ctx, subscribers[i], publisher, 1.0))
	}

	q := queue.New(rdb, cfg.Queue)
	distributor := service.NewDistributor(activityRepo, subRepo, itemRepo, scorer, nil, nil, WORKERS, PAGE, BATCH)
	q.Register(service.JobDistributeActivity, distributor.HandleJob)
	stop := q.Start()
	defer stop(context.Background())

	activitySvc := service.NewActivityService(activityRepo, q, cfg.Feed.AggregationWindow)

	// publish ACTIVITIES and measure commit latency
	pubDurations := make([]time.Duration, 0, ACTIVITIES)
	for i := 0; i < ACTIVITIES; i++ {
		st := time.Now()
		_ = must(activitySvc.Publish(ctx, service.PublishRequest{
			Type:     model.TypePostCreate,
			ActorID:  publisher,
			Payload:  fmt.Sprintf(`{"text":"hello %d"}`, i),
			IsPublic: true,
		}))
		pubDurations = append(pubDurations, time.Since(st))
	}

	// wait until the queue drains
	fanoutStart := time.Now()
	deadline := time.After(2 * time.Minute)
	for {
		pending := must(q.PendingCount(ctx))
		if pending == 0 {
			break
		}
		select {
		case <-deadline:
			fmt.Printf("timeout while draining queue: pending=%d\n", pending)
			os.Exit(1)
		default:
			time.Sleep(50 * time.Millisecond)
		}
	}
	fanoutTotal := time.Since(fanoutStart)

	var pubSum time.Duration
	for _, d := range pubDurations {
		pubSum += d
	}
	fmt.Printf("N=%d ACTS=%d WORKERS=%d PAGE=%d BATCH=%d\n", N, ACTIVITIES, WORKERS, PAGE, BATCH)
	fmt.Printf("Publish tx latency: avg=%v p95=%v p99=%v\n",
		pubSum/time.Duration(len(pubDurations)), pct(pubDurations, 0.95), pct(pubDurations, 0.99))
	fmt.Printf("Fanout drain: %v for %d activities x %d subscribers\n", fanoutTotal, ACTIVITIES, N)

	// measure one subscriber's first feed page
	feedSvc := service.NewFeedService(itemRepo, cfg.Feed)
	st := time.Now()
	page := must(feedSvc.GenerateFeed(ctx, subscribers[0], service.FeedQuery{Limit: 50}))
	fmt.Printf("Feed read (subscriber0, limit=50): %v, rows=%d hasMore=%v\n", time.Since(st), len(page.Items), page.HasMore)
}

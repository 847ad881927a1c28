// Package queue 提供基于 Redis 的 at-least-once 任务队列：
// ready list + delayed zset + dead list，worker 按 ticker 轮询。
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/activity-feed/config"
	"github.com/d60-Lab/activity-feed/pkg/logger"
)

// Handler 处理一种任务；返回 nil 表示任务完成并移除
type Handler func(ctx context.Context, job *Job) error

type Job struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

type Queue struct {
	rdb          *redis.Client
	workers      int
	pollInterval time.Duration
	maxAttempts  int
	backoffBase  time.Duration

	mu       sync.RWMutex
	handlers map[string]Handler
}

const (
	readyKey   = "jobs:ready"
	delayedKey = "jobs:delayed"
	deadKey    = "jobs:dead"
)

func New(rdb *redis.Client, cfg config.QueueConfig) *Queue {
	q := &Queue{
		rdb:          rdb,
		workers:      cfg.Workers,
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxAttempts,
		backoffBase:  cfg.BackoffBase,
		handlers:     make(map[string]Handler),
	}
	if q.workers <= 0 {
		q.workers = 4
	}
	if q.pollInterval <= 0 {
		q.pollInterval = 50 * time.Millisecond
	}
	if q.maxAttempts <= 0 {
		q.maxAttempts = 3
	}
	if q.backoffBase <= 0 {
		q.backoffBase = time.Second
	}
	return q
}

// Register 按任务名挂接处理函数，须在 Start 之前调用
func (q *Queue) Register(name string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[name] = h
}

// Enqueue 序列化任务并推入 ready 队列，返回任务 id
func (q *Queue) Enqueue(ctx context.Context, name string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := Job{
		ID:         uuid.New().String(),
		Name:       name,
		Payload:    data,
		EnqueuedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := q.rdb.LPush(ctx, readyKey, raw).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Start 启动 worker 轮询；返回停止函数
func (q *Queue) Start() func(context.Context) error {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.loop(stop)
		}()
	}
	return func(ctx context.Context) error {
		close(stop)
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *Queue) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx := context.Background()
			q.promoteDelayed(ctx)
			// 一次 tick 清空 ready，避免空轮询浪费
			for q.processOne(ctx) {
			}
		}
	}
}

// promoteDelayed 把到期的延迟任务搬回 ready
func (q *Queue) promoteDelayed(ctx context.Context) {
	now := fmt.Sprintf("%d", time.Now().UnixMilli())
	raws, err := q.rdb.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil || len(raws) == 0 {
		return
	}
	pipe := q.rdb.Pipeline()
	for _, raw := range raws {
		pipe.ZRem(ctx, delayedKey, raw)
		pipe.LPush(ctx, readyKey, raw)
	}
	_, _ = pipe.Exec(ctx)
}

func (q *Queue) processOne(ctx context.Context) bool {
	raw, err := q.rdb.RPop(ctx, readyKey).Result()
	if err != nil {
		return false
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		logger.Error("queue: drop malformed job", zap.Error(err))
		_ = q.rdb.LPush(ctx, deadKey, raw).Err()
		return true
	}

	q.mu.RLock()
	h, ok := q.handlers[job.Name]
	q.mu.RUnlock()
	if !ok {
		logger.Error("queue: no handler for job", zap.String("name", job.Name), zap.String("id", job.ID))
		q.bury(ctx, &job)
		return true
	}

	job.Attempts++
	if err := h(ctx, &job); err != nil {
		if job.Attempts >= q.maxAttempts {
			logger.Error("queue: job failed permanently",
				zap.String("name", job.Name), zap.String("id", job.ID),
				zap.Int("attempts", job.Attempts), zap.Error(err))
			sentry.CaptureException(fmt.Errorf("job %s (%s) failed after %d attempts: %w", job.Name, job.ID, job.Attempts, err))
			q.bury(ctx, &job)
			return true
		}
		delay := q.backoff(job.Attempts)
		logger.Warn("queue: job failed, retrying",
			zap.String("name", job.Name), zap.String("id", job.ID),
			zap.Int("attempt", job.Attempts), zap.Duration("delay", delay), zap.Error(err))
		q.delayRetry(ctx, &job, delay)
		return true
	}
	// 成功即移除（RPop 已经出队）
	return true
}

// backoff 指数退避：base, 2*base, 4*base, ...
func (q *Queue) backoff(attempt int) time.Duration {
	d := q.backoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

func (q *Queue) delayRetry(ctx context.Context, job *Job, delay time.Duration) {
	raw, err := json.Marshal(job)
	if err != nil {
		return
	}
	at := float64(time.Now().Add(delay).UnixMilli())
	if err := q.rdb.ZAdd(ctx, delayedKey, redis.Z{Score: at, Member: raw}).Err(); err != nil {
		logger.Error("queue: defer failed", zap.String("id", job.ID), zap.Error(err))
	}
}

// bury 进死信队列，等运维排查，绝不静默丢弃
func (q *Queue) bury(ctx context.Context, job *Job) {
	raw, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := q.rdb.LPush(ctx, deadKey, raw).Err(); err != nil {
		logger.Error("queue: bury failed", zap.String("id", job.ID), zap.Error(err))
	}
}

// DeadJobs 返回死信队列内容（按入队先后）
func (q *Queue) DeadJobs(ctx context.Context) ([]*Job, error) {
	raws, err := q.rdb.LRange(ctx, deadKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	jobs := make([]*Job, 0, len(raws))
	for _, raw := range raws {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

// PendingCount ready + delayed 的任务总数（采样值）
func (q *Queue) PendingCount(ctx context.Context) (int64, error) {
	ready, err := q.rdb.LLen(ctx, readyKey).Result()
	if err != nil {
		return 0, err
	}
	delayed, err := q.rdb.ZCard(ctx, delayedKey).Result()
	if err != nil {
		return 0, err
	}
	return ready + delayed, nil
}

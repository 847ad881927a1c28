package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/activity-feed/internal/cache"
	"github.com/d60-Lab/activity-feed/internal/model"
	"github.com/d60-Lab/activity-feed/internal/queue"
	"github.com/d60-Lab/activity-feed/internal/repository"
	"github.com/d60-Lab/activity-feed/pkg/logger"
)

// SubscriberPager 订阅者列表的分页读取（带缓存实现见 internal/cache）
type SubscriberPager interface {
	Page(ctx context.Context, publisherID string, offset, limit int, load func(ctx context.Context) ([]cache.SubscriberEntry, error)) ([]cache.SubscriberEntry, error)
}

// Distributor 消费 distribute-activity 任务：解析订阅者集合并幂等写入收件箱。
// 扇出不包在一个大事务里，(user_id, activity_id) 唯一键是真正的序列化点，
// 重试/并发 worker 都会收敛到同一份结果。
type Distributor struct {
	activities repository.ActivityRepository
	subs       repository.SubscriptionRepository
	items      repository.FeedItemRepository
	scorer     *RelevanceScorer
	index      SubscriberPager // 可为 nil（缓存关闭）
	notifier   Notifier
	pool       pond.Pool
	pageSize   int
	batchSize  int
	now        func() time.Time
}

func NewDistributor(
	activities repository.ActivityRepository,
	subs repository.SubscriptionRepository,
	items repository.FeedItemRepository,
	scorer *RelevanceScorer,
	index SubscriberPager,
	notifier Notifier,
	workers, pageSize, batchSize int,
) *Distributor {
	if workers <= 0 {
		workers = 8
	}
	if pageSize <= 0 {
		pageSize = 500
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Distributor{
		activities: activities,
		subs:       subs,
		items:      items,
		scorer:     scorer,
		index:      index,
		notifier:   notifier,
		pool:       pond.NewPool(workers),
		pageSize:   pageSize,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// HandleJob 队列侧适配：反序列化载荷后执行扇出
func (d *Distributor) HandleJob(ctx context.Context, job *queue.Job) error {
	var payload DistributeActivityPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// 载荷坏了重试也没用
		logger.Error("distribute: malformed payload", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}
	return d.Distribute(ctx, payload.ActivityID)
}

// Distribute 公共扇出 + 显式目标投递；整体可安全重放
func (d *Distributor) Distribute(ctx context.Context, activityID string) error {
	tracer := otel.Tracer("distributor")
	ctx, span := tracer.Start(ctx, "distribute_activity",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("activity.id", activityID)),
	)
	defer span.End()

	act, err := d.activities.GetWithTargets(ctx, activityID)
	if errors.Is(err, repository.ErrNotFound) {
		// 终态：活动已不存在，重试无意义
		logger.Warn("distribute: activity gone", zap.String("activity_id", activityID))
		return nil
	}
	if err != nil {
		span.RecordError(err)
		return err
	}

	now := d.now()
	age := now.Sub(act.CreatedAt)
	delivered := 0

	// 显式目标先投递：目标同时是订阅者时也要拿满分行
	n, err := d.deliverTargets(ctx, act, now)
	if err != nil {
		span.RecordError(err)
		return err
	}
	delivered += n

	if act.IsPublic {
		n, err := d.fanoutPublic(ctx, act, age, now)
		if err != nil {
			span.RecordError(err)
			return err
		}
		delivered += n
	}

	span.SetAttributes(attribute.Int("fanout.delivered", delivered))
	d.notifier.FanoutCompleted(FanoutEvent{
		ActivityID:  act.ID,
		Delivered:   delivered,
		CompletedAt: now,
	})
	return nil
}

// fanoutPublic 逐页读订阅者，批量幂等写入；批与批之间并发
func (d *Distributor) fanoutPublic(ctx context.Context, act *model.Activity, age time.Duration, now time.Time) (int, error) {
	total := 0
	group := d.pool.NewGroup()
	for offset := 0; ; offset += d.pageSize {
		entries, err := d.listSubscribers(ctx, act.ActorID, offset, d.pageSize)
		if err != nil {
			return total, err
		}
		if len(entries) == 0 {
			break
		}

		items := make([]model.FeedItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, model.FeedItem{
				ID:         uuid.New().String(),
				UserID:     e.SubscriberID,
				ActivityID: act.ID,
				Score:      d.scorer.Score(act.Type, e.Weight, age),
				CreatedAt:  now,
			})
		}
		for start := 0; start < len(items); start += d.batchSize {
			end := start + d.batchSize
			if end > len(items) {
				end = len(items)
			}
			batch := items[start:end]
			group.SubmitErr(func() error {
				return d.items.UpsertBatch(ctx, batch)
			})
		}
		total += len(items)
		if len(entries) < d.pageSize {
			break
		}
	}
	if err := group.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

// deliverTargets 显式目标恒定满分，与订阅状态无关
func (d *Distributor) deliverTargets(ctx context.Context, act *model.Activity, now time.Time) (int, error) {
	items := make([]model.FeedItem, 0, len(act.Targets))
	for _, t := range act.Targets {
		if t.TargetType != model.TargetTypeUser {
			continue
		}
		items = append(items, model.FeedItem{
			ID:         uuid.New().String(),
			UserID:     t.TargetID,
			ActivityID: act.ID,
			Score:      MaxScore,
			CreatedAt:  now,
		})
	}
	if err := d.items.UpsertBatch(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (d *Distributor) listSubscribers(ctx context.Context, publisherID string, offset, limit int) ([]cache.SubscriberEntry, error) {
	if d.index != nil {
		return d.index.Page(ctx, publisherID, offset, limit, func(ctx context.Context) ([]cache.SubscriberEntry, error) {
			return d.loadAllSubscribers(ctx, publisherID)
		})
	}
	subs, err := d.subs.ListActiveByPublisher(ctx, publisherID, offset, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]cache.SubscriberEntry, len(subs))
	for i, s := range subs {
		entries[i] = cache.SubscriberEntry{SubscriberID: s.SubscriberID, Weight: s.Weight}
	}
	return entries, nil
}

// loadAllSubscribers 缓存 miss 时整表重建（热点 publisher 随后全走 LRANGE）
func (d *Distributor) loadAllSubscribers(ctx context.Context, publisherID string) ([]cache.SubscriberEntry, error) {
	var all []cache.SubscriberEntry
	for offset := 0; ; offset += d.pageSize {
		subs, err := d.subs.ListActiveByPublisher(ctx, publisherID, offset, d.pageSize)
		if err != nil {
			return nil, err
		}
		for _, s := range subs {
			all = append(all, cache.SubscriberEntry{SubscriberID: s.SubscriberID, Weight: s.Weight})
		}
		if len(subs) < d.pageSize {
			break
		}
	}
	return all, nil
}

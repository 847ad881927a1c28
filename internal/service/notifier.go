package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/activity-feed/pkg/logger"
)

// FanoutEvent 一次扇出完成的通知
type FanoutEvent struct {
	ActivityID  string    `json:"activity_id"`
	Delivered   int       `json:"delivered"`
	CompletedAt time.Time `json:"completed_at"`
}

// Notifier 外部通知协作方（实时推送等都挂在这之后，本核心不建模连接）
type Notifier interface {
	FanoutCompleted(ev FanoutEvent)
}

// NopNotifier 测试/关闭场景
type NopNotifier struct{}

func (NopNotifier) FanoutCompleted(FanoutEvent) {}

// RedisNotifier 异步把完成事件发到 Redis Pub/Sub 频道
// 队列满直接丢（通知是尽力而为，不能拖住扇出）
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
	ch      chan FanoutEvent
}

const fanoutChannel = "feed.fanout.completed"

func NewRedisNotifier(rdb *redis.Client, queueSize int) *RedisNotifier {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &RedisNotifier{rdb: rdb, channel: fanoutChannel, ch: make(chan FanoutEvent, queueSize)}
}

func (n *RedisNotifier) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case ev := <-n.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					n.publish(ctx, ev)
					cancel()
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(n.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (n *RedisNotifier) FanoutCompleted(ev FanoutEvent) {
	select {
	case n.ch <- ev:
	default:
		logger.Warn("notifier queue full, drop event", zap.String("activity", ev.ActivityID))
	}
}

func (n *RedisNotifier) publish(ctx context.Context, ev FanoutEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := n.rdb.Publish(ctx, n.channel, raw).Err(); err != nil {
		logger.Warn("notifier publish failed", zap.String("activity", ev.ActivityID), zap.Error(err))
	}
}

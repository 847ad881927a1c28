package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/activity-feed/internal/model"
	"github.com/d60-Lab/activity-feed/internal/repository"
	"github.com/d60-Lab/activity-feed/pkg/logger"
)

// JobDistributeActivity 扇出任务名
const JobDistributeActivity = "distribute-activity"

// DistributeActivityPayload 扇出任务载荷
type DistributeActivityPayload struct {
	ActivityID string `json:"activityId"`
}

var ErrInvalidActivityType = errors.New("unknown activity type")

// jobEnqueuer 队列客户端的窄接口（内部实现见 internal/queue）
type jobEnqueuer interface {
	Enqueue(ctx context.Context, name string, payload interface{}) (string, error)
}

type PublishRequest struct {
	Type     model.ActivityType
	ActorID  string
	Payload  string
	IsPublic bool
	GroupKey string
	Targets  []PublishTarget
}

type PublishTarget struct {
	TargetType string
	TargetID   string
}

type ActivityService interface {
	Publish(ctx context.Context, req PublishRequest) (*model.Activity, error)
	Get(ctx context.Context, id string) (*model.Activity, error)
	Delete(ctx context.Context, id string) error
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*model.Activity, error)
	ListByTarget(ctx context.Context, targetType, targetID string, limit, offset int) ([]*model.Activity, error)
}

type activityService struct {
	repo   repository.ActivityRepository
	queue  jobEnqueuer
	window time.Duration
}

func NewActivityService(repo repository.ActivityRepository, queue jobEnqueuer, aggregationWindow time.Duration) ActivityService {
	return &activityService{repo: repo, queue: queue, window: aggregationWindow}
}

var validTypes = map[model.ActivityType]struct{}{
	model.TypePostCreate:  {},
	model.TypePostLike:    {},
	model.TypePostComment: {},
	model.TypeUserFollow:  {},
	model.TypeUserMention: {},
}

// Publish 事务内完成聚合查找 + 合并或新建 + 目标落库；提交后才入队扇出任务，
// worker 不会看到半写的活动。
func (s *activityService) Publish(ctx context.Context, req PublishRequest) (*model.Activity, error) {
	if _, ok := validTypes[req.Type]; !ok {
		return nil, ErrInvalidActivityType
	}

	act := &model.Activity{
		ID:       uuid.New().String(),
		Type:     req.Type,
		ActorID:  req.ActorID,
		Payload:  req.Payload,
		IsPublic: req.IsPublic,
		GroupKey: req.GroupKey,
	}
	for _, t := range req.Targets {
		act.Targets = append(act.Targets, model.ActivityTarget{
			ID:         uuid.New().String(),
			TargetType: t.TargetType,
			TargetID:   t.TargetID,
		})
	}

	result, merged, err := s.repo.CreateOrAggregate(ctx, act, s.window)
	if err != nil {
		return nil, err
	}

	// 合并路径也重新入队：扇出幂等，新订阅者能补齐
	if _, err := s.queue.Enqueue(ctx, JobDistributeActivity, DistributeActivityPayload{ActivityID: result.ID}); err != nil {
		// 活动已提交，投递降级；记录并交由运维补偿
		logger.Error("enqueue distribute-activity failed",
			zap.String("activity_id", result.ID), zap.Bool("merged", merged), zap.Error(err))
	}
	return result, nil
}

func (s *activityService) Get(ctx context.Context, id string) (*model.Activity, error) {
	return s.repo.GetWithTargets(ctx, id)
}

func (s *activityService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *activityService) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*model.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByActor(ctx, actorID, limit, offset)
}

func (s *activityService) ListByTarget(ctx context.Context, targetType, targetID string, limit, offset int) ([]*model.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByTarget(ctx, targetType, targetID, limit, offset)
}

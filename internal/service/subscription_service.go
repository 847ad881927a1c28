package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/d60-Lab/activity-feed/internal/model"
	"github.com/d60-Lab/activity-feed/internal/repository"
	"github.com/d60-Lab/activity-feed/pkg/logger"
)

var (
	ErrSubscribeSelf = errors.New("cannot subscribe to self")
	ErrInvalidWeight = errors.New("weight must be in (0, 1]")
)

// SubscriberIndex 订阅者列表缓存的窄接口（实现见 internal/cache）
type SubscriberIndex interface {
	Invalidate(ctx context.Context, publisherID string) error
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, subscriberID, publisherID string, weight float64) (*model.FeedSubscription, error)
	Unsubscribe(ctx context.Context, subscriberID, publisherID string) error
}

type subscriptionService struct {
	repo  repository.SubscriptionRepository
	index SubscriberIndex // 可为 nil（缓存关闭）
}

func NewSubscriptionService(repo repository.SubscriptionRepository, index SubscriberIndex) SubscriptionService {
	return &subscriptionService{repo: repo, index: index}
}

func (s *subscriptionService) Subscribe(ctx context.Context, subscriberID, publisherID string, weight float64) (*model.FeedSubscription, error) {
	if subscriberID == publisherID {
		return nil, ErrSubscribeSelf
	}
	if weight == 0 {
		weight = 1.0
	}
	if weight < 0 || weight > 1 {
		return nil, ErrInvalidWeight
	}
	sub, err := s.repo.Upsert(ctx, subscriberID, publisherID, weight)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, publisherID)
	return sub, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriberID, publisherID string) error {
	if err := s.repo.Deactivate(ctx, subscriberID, publisherID); err != nil {
		return err
	}
	s.invalidate(ctx, publisherID)
	return nil
}

func (s *subscriptionService) invalidate(ctx context.Context, publisherID string) {
	if s.index == nil {
		return
	}
	if err := s.index.Invalidate(ctx, publisherID); err != nil {
		logger.Warn("subscriber index invalidate failed", zap.String("publisher", publisherID), zap.Error(err))
	}
}

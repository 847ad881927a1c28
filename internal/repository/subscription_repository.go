package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/activity-feed/internal/model"
)

type SubscriptionRepository interface {
	// Upsert 幂等：已有行只翻转 active 并覆盖 weight，行 id 不变
	Upsert(ctx context.Context, subscriberID, publisherID string, weight float64) (*model.FeedSubscription, error)
	// Deactivate 不存在时是 no-op，不报错
	Deactivate(ctx context.Context, subscriberID, publisherID string) error
	Get(ctx context.Context, subscriberID, publisherID string) (*model.FeedSubscription, error)
	ListActiveByPublisher(ctx context.Context, publisherID string, offset, limit int) ([]*model.FeedSubscription, error)
}

type subscriptionRepository struct{ db *gorm.DB }

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, subscriberID, publisherID string, weight float64) (*model.FeedSubscription, error) {
	sub := &model.FeedSubscription{
		ID:           uuid.New().String(),
		SubscriberID: subscriberID,
		PublisherID:  publisherID,
		Active:       true,
		Weight:       weight,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "subscriber_id"}, {Name: "publisher_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"active":     true,
			"weight":     weight,
			"updated_at": time.Now(),
		}),
	}).Create(sub).Error
	if err != nil {
		return nil, err
	}
	// 回读拿到真实行（冲突路径下 id 是旧行的）
	return r.Get(ctx, subscriberID, publisherID)
}

func (r *subscriptionRepository) Deactivate(ctx context.Context, subscriberID, publisherID string) error {
	return r.db.WithContext(ctx).Model(&model.FeedSubscription{}).
		Where("subscriber_id = ? AND publisher_id = ?", subscriberID, publisherID).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()}).Error
}

func (r *subscriptionRepository) Get(ctx context.Context, subscriberID, publisherID string) (*model.FeedSubscription, error) {
	var sub model.FeedSubscription
	err := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND publisher_id = ?", subscriberID, publisherID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListActiveByPublisher(ctx context.Context, publisherID string, offset, limit int) ([]*model.FeedSubscription, error) {
	var res []*model.FeedSubscription
	err := r.db.WithContext(ctx).
		Where("publisher_id = ? AND active = ?", publisherID, true).
		Order("created_at").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

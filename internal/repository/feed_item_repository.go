package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/activity-feed/internal/model"
)

// FeedPage 排序键检索条件；After* 为上一页末行的 (score, created_at)
type FeedPage struct {
	UserID       string
	IncludeRead  bool
	Types        []model.ActivityType
	AfterScore   float64
	AfterCreated time.Time
	HasCursor    bool
	Limit        int
}

type FeedItemRepository interface {
	// UpsertBatch 幂等写入：(user_id, activity_id) 已存在的行保持原样
	UpsertBatch(ctx context.Context, items []model.FeedItem) error
	// ListPage 按 (score DESC, created_at DESC) 返回一页
	ListPage(ctx context.Context, page FeedPage) ([]*model.FeedItem, error)
	Get(ctx context.Context, userID, id string) (*model.FeedItem, error)
	MarkRead(ctx context.Context, userID, id string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type feedItemRepository struct{ db *gorm.DB }

func NewFeedItemRepository(db *gorm.DB) FeedItemRepository { return &feedItemRepository{db: db} }

func (r *feedItemRepository) UpsertBatch(ctx context.Context, items []model.FeedItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error
}

func (r *feedItemRepository) ListPage(ctx context.Context, page FeedPage) ([]*model.FeedItem, error) {
	q := r.db.WithContext(ctx).Model(&model.FeedItem{}).
		Where("feed_items.user_id = ?", page.UserID)
	if !page.IncludeRead {
		q = q.Where("feed_items.read = ?", false)
	}
	if len(page.Types) > 0 {
		q = q.Joins("JOIN activities ON activities.id = feed_items.activity_id").
			Where("activities.type IN ?", page.Types)
	}
	if page.HasCursor {
		// 严格小于上一页末行的排序键，跨页不重不漏
		q = q.Where(
			"feed_items.score < ? OR (feed_items.score = ? AND feed_items.created_at < ?)",
			page.AfterScore, page.AfterScore, page.AfterCreated,
		)
	}
	var res []*model.FeedItem
	err := q.Order("feed_items.score DESC, feed_items.created_at DESC").
		Limit(page.Limit).
		Find(&res).Error
	return res, err
}

func (r *feedItemRepository) Get(ctx context.Context, userID, id string) (*model.FeedItem, error) {
	var item model.FeedItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *feedItemRepository) MarkRead(ctx context.Context, userID, id string) error {
	item, err := r.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if item.Read {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.FeedItem{}).
		Where("id = ?", item.ID).
		Update("read", true).Error
}

func (r *feedItemRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.FeedItem{}).
		Where("user_id = ?", userID).
		Count(&cnt).Error
	return cnt, err
}

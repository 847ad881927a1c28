package service

import (
	"context"

	"github.com/d60-Lab/activity-feed/config"
	"github.com/d60-Lab/activity-feed/internal/model"
	"github.com/d60-Lab/activity-feed/internal/repository"
)

type FeedQuery struct {
	Cursor      string
	Limit       int
	IncludeRead bool
	Types       []model.ActivityType
}

type FeedPage struct {
	Items      []*model.FeedItem `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

type FeedService interface {
	GenerateFeed(ctx context.Context, userID string, q FeedQuery) (*FeedPage, error)
	MarkAsRead(ctx context.Context, userID, feedItemID string) error
}

type feedService struct {
	repo        repository.FeedItemRepository
	defaultSize int
	maxSize     int
}

func NewFeedService(repo repository.FeedItemRepository, cfg config.FeedConfig) FeedService {
	return &feedService{
		repo:        repo,
		defaultSize: cfg.DefaultPageSize,
		maxSize:     cfg.MaxPageSize,
	}
}

// GenerateFeed 按 (score DESC, created_at DESC) 的全序分页。
// 取 limit+1 行判断 hasMore；游标只编码已物化的排序键，并发插入不会让翻页重复或漏项。
func (s *feedService) GenerateFeed(ctx context.Context, userID string, q FeedQuery) (*FeedPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = s.defaultSize
	}
	if limit > s.maxSize {
		limit = s.maxSize
	}

	page := repository.FeedPage{
		UserID:      userID,
		IncludeRead: q.IncludeRead,
		Types:       q.Types,
		Limit:       limit + 1,
	}
	if q.Cursor != "" {
		score, createdAt, err := decodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		page.AfterScore = score
		page.AfterCreated = createdAt
		page.HasCursor = true
	}

	items, err := s.repo.ListPage(ctx, page)
	if err != nil {
		return nil, err
	}

	out := &FeedPage{Items: items}
	if len(items) > limit {
		out.Items = items[:limit]
		out.HasMore = true
		last := out.Items[len(out.Items)-1]
		out.NextCursor = encodeCursor(last.Score, last.CreatedAt)
	}
	return out, nil
}

func (s *feedService) MarkAsRead(ctx context.Context, userID, feedItemID string) error {
	return s.repo.MarkRead(ctx, userID, feedItemID)
}

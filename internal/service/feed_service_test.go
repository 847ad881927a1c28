package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/activity-feed/internal/model"
	"github.com/d60-Lab/activity-feed/internal/repository"
)

func newFeedService(db *gorm.DB) FeedService {
	cfg := testFeedConfig()
	cfg.DefaultPageSize = 20
	cfg.MaxPageSize = 100
	return NewFeedService(repository.NewFeedItemRepository(db), cfg)
}

// seedFeedItem 直接落库一条收件箱行，活动行一并补齐（类型过滤要 JOIN）
func seedFeedItem(t *testing.T, db *gorm.DB, userID string, typ model.ActivityType, score float64, at time.Time, read bool) *model.FeedItem {
	t.Helper()
	act := &model.Activity{
		ID: uuid.New().String(), Type: typ, ActorID: "seed-actor",
		IsPublic: true, CreatedAt: at, UpdatedAt: at,
	}
	require.NoError(t, db.Create(act).Error)
	item := &model.FeedItem{
		ID: uuid.New().String(), UserID: userID, ActivityID: act.ID,
		Score: score, Read: read, CreatedAt: at,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestGenerateFeedCursorWalk(t *testing.T) {
	db := setupDB(t)
	svc := newFeedService(db)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	for i := 0; i < 5; i++ {
		seedFeedItem(t, db, "u1", model.TypePostCreate, 0.1*float64(i+1), base.Add(time.Duration(i)*time.Minute), false)
	}

	var seen []string
	var prevScore = MaxScore + 1
	cursor := ""
	pages := 0
	for {
		page, err := svc.GenerateFeed(ctx, "u1", FeedQuery{Cursor: cursor, Limit: 2})
		require.NoError(t, err)
		pages++
		for _, it := range page.Items {
			// 全序严格下降（分数各不相同）
			assert.Less(t, it.Score, prevScore)
			prevScore = it.Score
			seen = append(seen, it.ID)
		}
		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}
		require.NotEmpty(t, page.NextCursor)
		cursor = page.NextCursor
	}

	assert.Equal(t, 3, pages) // 2 + 2 + 1
	assert.Len(t, seen, 5)
	uniq := map[string]struct{}{}
	for _, id := range seen {
		uniq[id] = struct{}{}
	}
	assert.Len(t, uniq, 5)
}

func TestGenerateFeedEqualScoreTieBreak(t *testing.T) {
	db := setupDB(t)
	svc := newFeedService(db)
	ctx := context.Background()

	// 同分行靠 created_at DESC 决定次序，游标落在同分边界也不重不漏
	base := time.Unix(1700000000, 0)
	for i := 0; i < 4; i++ {
		seedFeedItem(t, db, "u1", model.TypePostCreate, 0.5, base.Add(time.Duration(i)*time.Second), false)
	}

	first, err := svc.GenerateFeed(ctx, "u1", FeedQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.True(t, first.HasMore)
	assert.True(t, first.Items[0].CreatedAt.After(first.Items[1].CreatedAt))

	second, err := svc.GenerateFeed(ctx, "u1", FeedQuery{Cursor: first.NextCursor, Limit: 2})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.False(t, second.HasMore)

	seen := map[string]struct{}{}
	for _, it := range append(first.Items, second.Items...) {
		seen[it.ID] = struct{}{}
	}
	assert.Len(t, seen, 4)
}

func TestGenerateFeedReadFilter(t *testing.T) {
	db := setupDB(t)
	svc := newFeedService(db)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	seedFeedItem(t, db, "u1", model.TypePostCreate, 0.9, base, false)
	readItem := seedFeedItem(t, db, "u1", model.TypePostCreate, 0.8, base, true)

	page, err := svc.GenerateFeed(ctx, "u1", FeedQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.NotEqual(t, readItem.ID, page.Items[0].ID)

	page, err = svc.GenerateFeed(ctx, "u1", FeedQuery{IncludeRead: true})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestGenerateFeedTypeFilter(t *testing.T) {
	db := setupDB(t)
	svc := newFeedService(db)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	seedFeedItem(t, db, "u1", model.TypePostCreate, 0.9, base, false)
	seedFeedItem(t, db, "u1", model.TypePostLike, 0.8, base, false)
	seedFeedItem(t, db, "u1", model.TypeUserFollow, 0.7, base, false)

	page, err := svc.GenerateFeed(ctx, "u1", FeedQuery{
		Types: []model.ActivityType{model.TypePostCreate, model.TypeUserFollow},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.InDelta(t, 0.9, page.Items[0].Score, 1e-9)
	assert.InDelta(t, 0.7, page.Items[1].Score, 1e-9)
}

func TestGenerateFeedScopedToUser(t *testing.T) {
	db := setupDB(t)
	svc := newFeedService(db)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	seedFeedItem(t, db, "u1", model.TypePostCreate, 0.9, base, false)
	seedFeedItem(t, db, "u2", model.TypePostCreate, 0.9, base, false)

	page, err := svc.GenerateFeed(ctx, "u1", FeedQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].UserID)
}

func TestGenerateFeedLimitClamping(t *testing.T) {
	db := setupDB(t)
	cfg := testFeedConfig()
	cfg.DefaultPageSize = 2
	cfg.MaxPageSize = 3
	svc := NewFeedService(repository.NewFeedItemRepository(db), cfg)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	for i := 0; i < 5; i++ {
		seedFeedItem(t, db, "u1", model.TypePostCreate, 0.1*float64(i+1), base, false)
	}

	page, err := svc.GenerateFeed(ctx, "u1", FeedQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2) // 默认页长

	page, err = svc.GenerateFeed(ctx, "u1", FeedQuery{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3) // 上限截断
}

func TestGenerateFeedBadCursor(t *testing.T) {
	db := setupDB(t)
	svc := newFeedService(db)
	_, err := svc.GenerateFeed(context.Background(), "u1", FeedQuery{Cursor: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestMarkAsRead(t *testing.T) {
	db := setupDB(t)
	svc := newFeedService(db)
	ctx := context.Background()

	item := seedFeedItem(t, db, "u1", model.TypePostCreate, 0.9, time.Unix(1700000000, 0), false)

	require.NoError(t, svc.MarkAsRead(ctx, "u1", item.ID))
	// 重复标记是 no-op
	require.NoError(t, svc.MarkAsRead(ctx, "u1", item.ID))

	var got model.FeedItem
	require.NoError(t, db.First(&got, "id = ?", item.ID).Error)
	assert.True(t, got.Read)

	// 别人的条目不可见
	err := svc.MarkAsRead(ctx, "u2", item.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = svc.MarkAsRead(ctx, "u1", fmt.Sprintf("missing-%s", uuid.New().String()))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

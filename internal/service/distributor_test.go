package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/activity-feed/internal/model"
	"github.com/d60-Lab/activity-feed/internal/queue"
	"github.com/d60-Lab/activity-feed/internal/repository"
)

type distFixture struct {
	db    *gorm.DB
	acts  repository.ActivityRepository
	subs  repository.SubscriptionRepository
	items repository.FeedItemRepository
	dist  *Distributor
}

func newDistFixture(t *testing.T) *distFixture {
	db := setupDB(t)
	f := &distFixture{
		db:    db,
		acts:  repository.NewActivityRepository(db),
		subs:  repository.NewSubscriptionRepository(db),
		items: repository.NewFeedItemRepository(db),
	}
	scorer := NewRelevanceScorer(testFeedConfig())
	f.dist = NewDistributor(f.acts, f.subs, f.items, scorer, nil, nil, 1, 100, 100)
	return f
}

func (f *distFixture) publish(t *testing.T, req PublishRequest) *model.Activity {
	t.Helper()
	svc := NewActivityService(f.acts, &fakeQueue{}, 24*time.Hour)
	act, err := svc.Publish(context.Background(), req)
	require.NoError(t, err)
	return act
}

func TestDistributeScoresBySubscriptionWeight(t *testing.T) {
	f := newDistFixture(t)
	ctx := context.Background()

	_, err := f.subs.Upsert(ctx, "subscriber-a", "publisher-b", 0.8)
	require.NoError(t, err)

	act := f.publish(t, PublishRequest{Type: model.TypePostCreate, ActorID: "publisher-b", IsPublic: true})
	// 零滞后扇出
	f.dist.now = func() time.Time { return act.CreatedAt }

	require.NoError(t, f.dist.Distribute(ctx, act.ID))

	item, err := f.items.Get(ctx, "subscriber-a", f.onlyItemID(t, "subscriber-a"))
	require.NoError(t, err)
	assert.InDelta(t, 0.8, item.Score, 1e-9)
	assert.False(t, item.Read)
}

func TestDistributeReplayIsIdempotent(t *testing.T) {
	f := newDistFixture(t)
	ctx := context.Background()

	for _, sub := range []string{"s1", "s2", "s3"} {
		_, err := f.subs.Upsert(ctx, sub, "pub", 1.0)
		require.NoError(t, err)
	}
	act := f.publish(t, PublishRequest{
		Type: model.TypePostCreate, ActorID: "pub", IsPublic: true,
		Targets: []PublishTarget{{TargetType: model.TargetTypeUser, TargetID: "s9"}},
	})

	require.NoError(t, f.dist.Distribute(ctx, act.ID))

	var before []model.FeedItem
	require.NoError(t, f.db.Order("id").Find(&before).Error)

	// 重放同一个任务（更晚的 now 会算出更低分，但已有行必须原样保留）
	f.dist.now = func() time.Time { return time.Now().Add(12 * time.Hour) }
	require.NoError(t, f.dist.Distribute(ctx, act.ID))

	var after []model.FeedItem
	require.NoError(t, f.db.Order("id").Find(&after).Error)

	require.Len(t, after, 4)
	require.Equal(t, len(before), len(after))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Score, after[i].Score)
	}
}

func TestDistributePrivateSkipsPublicFanout(t *testing.T) {
	f := newDistFixture(t)
	ctx := context.Background()

	_, err := f.subs.Upsert(ctx, "watcher", "pub", 1.0)
	require.NoError(t, err)

	act := f.publish(t, PublishRequest{
		Type: model.TypeUserMention, ActorID: "pub", IsPublic: false,
		Targets: []PublishTarget{{TargetType: model.TargetTypeUser, TargetID: "mentioned"}},
	})
	require.NoError(t, f.dist.Distribute(ctx, act.ID))

	var cnt int64
	require.NoError(t, f.db.Model(&model.FeedItem{}).Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)

	item, err := f.items.Get(ctx, "mentioned", f.onlyItemID(t, "mentioned"))
	require.NoError(t, err)
	assert.Equal(t, MaxScore, item.Score)
}

func TestDistributeDirectTargetBeatsSubscriptionScore(t *testing.T) {
	f := newDistFixture(t)
	ctx := context.Background()

	// 目标同时是低权重订阅者：仍然拿满分
	_, err := f.subs.Upsert(ctx, "both", "pub", 0.3)
	require.NoError(t, err)

	act := f.publish(t, PublishRequest{
		Type: model.TypePostCreate, ActorID: "pub", IsPublic: true,
		Targets: []PublishTarget{{TargetType: model.TargetTypeUser, TargetID: "both"}},
	})
	require.NoError(t, f.dist.Distribute(ctx, act.ID))

	item, err := f.items.Get(ctx, "both", f.onlyItemID(t, "both"))
	require.NoError(t, err)
	assert.Equal(t, MaxScore, item.Score)

	var cnt int64
	require.NoError(t, f.db.Model(&model.FeedItem{}).Where("user_id = ?", "both").Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)
}

func TestDistributeNonUserTargetsIgnored(t *testing.T) {
	f := newDistFixture(t)
	ctx := context.Background()

	act := f.publish(t, PublishRequest{
		Type: model.TypePostComment, ActorID: "pub", IsPublic: false,
		Targets: []PublishTarget{{TargetType: "post", TargetID: "p1"}},
	})
	require.NoError(t, f.dist.Distribute(ctx, act.ID))

	var cnt int64
	require.NoError(t, f.db.Model(&model.FeedItem{}).Count(&cnt).Error)
	assert.Equal(t, int64(0), cnt)
}

func TestDistributeMissingActivityIsTerminal(t *testing.T) {
	f := newDistFixture(t)
	// 活动不存在：任务不应该重试
	assert.NoError(t, f.dist.Distribute(context.Background(), "no-such-activity"))
}

func TestHandleJobMalformedPayloadIsTerminal(t *testing.T) {
	f := newDistFixture(t)
	job := &queue.Job{ID: "j1", Name: JobDistributeActivity, Payload: json.RawMessage(`{`)}
	assert.NoError(t, f.dist.HandleJob(context.Background(), job))
}

func (f *distFixture) onlyItemID(t *testing.T, userID string) string {
	t.Helper()
	var items []model.FeedItem
	require.NoError(t, f.db.Where("user_id = ?", userID).Find(&items).Error)
	require.Len(t, items, 1)
	return items[0].ID
}

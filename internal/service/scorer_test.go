package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/activity-feed/config"
	"github.com/d60-Lab/activity-feed/internal/model"
)

func testFeedConfig() config.FeedConfig {
	return config.FeedConfig{
		AggregationWindow: 24 * time.Hour,
		HalfLife:          24 * time.Hour,
		DefaultTypeWeight: 0.5,
		TypeWeights: map[string]float64{
			string(model.TypeUserFollow):  1.0,
			string(model.TypePostCreate):  1.0,
			string(model.TypeUserMention): 0.9,
			string(model.TypePostComment): 0.6,
			string(model.TypePostLike):    0.4,
		},
		FanoutPageSize:  500,
		FanoutBatchSize: 500,
		FanoutWorkers:   1,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

func TestScoreZeroLagMatchesWeights(t *testing.T) {
	s := NewRelevanceScorer(testFeedConfig())

	// 零滞后：post-create 类型权重 1.0 × 订阅权重 0.8
	got := s.Score(model.TypePostCreate, 0.8, 0)
	assert.InDelta(t, 0.8, got, 1e-9)

	got = s.Score(model.TypePostLike, 1.0, 0)
	assert.InDelta(t, 0.4, got, 1e-9)
}

func TestScoreHalfLife(t *testing.T) {
	s := NewRelevanceScorer(testFeedConfig())

	// 滞后恰好一个半衰期 → 分数减半
	fresh := s.Score(model.TypePostCreate, 1.0, 0)
	aged := s.Score(model.TypePostCreate, 1.0, 24*time.Hour)
	assert.InDelta(t, fresh/2, aged, 1e-9)
}

func TestScoreMonotonicInAge(t *testing.T) {
	s := NewRelevanceScorer(testFeedConfig())

	prev := s.Score(model.TypePostComment, 0.7, 0)
	for _, age := range []time.Duration{time.Minute, time.Hour, 6 * time.Hour, 24 * time.Hour, 72 * time.Hour} {
		cur := s.Score(model.TypePostComment, 0.7, age)
		assert.Less(t, cur, prev, "score must strictly decrease with age %v", age)
		prev = cur
	}
}

func TestScoreMonotonicInWeight(t *testing.T) {
	s := NewRelevanceScorer(testFeedConfig())

	prev := 0.0
	for _, w := range []float64{0.1, 0.25, 0.5, 0.75, 1.0} {
		cur := s.Score(model.TypeUserMention, w, 3*time.Hour)
		assert.Greater(t, cur, prev, "score must strictly increase with weight %v", w)
		prev = cur
	}
}

func TestScoreNegativeAgeClamped(t *testing.T) {
	s := NewRelevanceScorer(testFeedConfig())
	assert.Equal(t, s.Score(model.TypePostCreate, 1.0, 0), s.Score(model.TypePostCreate, 1.0, -time.Hour))
}

func TestScoreDefaultTypeWeight(t *testing.T) {
	s := NewRelevanceScorer(testFeedConfig())
	got := s.Score(model.ActivityType("something-new"), 1.0, 0)
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestMaxScoreDominatesPublicFanout(t *testing.T) {
	s := NewRelevanceScorer(testFeedConfig())

	for _, typ := range []model.ActivityType{
		model.TypePostCreate, model.TypePostLike, model.TypePostComment,
		model.TypeUserFollow, model.TypeUserMention,
	} {
		got := s.Score(typ, 1.0, time.Second)
		assert.Less(t, got, MaxScore, "decayed public score for %s must stay below MaxScore", typ)
	}
}

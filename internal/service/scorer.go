package service

import (
	"math"
	"time"

	"github.com/d60-Lab/activity-feed/config"
	"github.com/d60-Lab/activity-feed/internal/model"
)

// MaxScore 直达目标的固定分，保证置顶（公共扇出在 weight ≤ 1 下不会超过它）
const MaxScore = 1.0

// RelevanceScorer 纯函数打分器：类型权重 × 订阅权重 × 半衰期衰减
// 分数在扇出时一次性算定，之后不随时间重算
type RelevanceScorer struct {
	halfLife      time.Duration
	typeWeights   map[model.ActivityType]float64
	defaultWeight float64
}

func NewRelevanceScorer(cfg config.FeedConfig) *RelevanceScorer {
	weights := make(map[model.ActivityType]float64, len(cfg.TypeWeights))
	for t, w := range cfg.TypeWeights {
		weights[model.ActivityType(t)] = w
	}
	return &RelevanceScorer{
		halfLife:      cfg.HalfLife,
		typeWeights:   weights,
		defaultWeight: cfg.DefaultTypeWeight,
	}
}

// Score age 为发布到扇出的滞后；对 age 严格递减，对 weight 严格递增
func (s *RelevanceScorer) Score(t model.ActivityType, weight float64, age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	decay := math.Exp(-math.Ln2 * age.Seconds() / s.halfLife.Seconds())
	return s.TypeWeight(t) * weight * decay
}

func (s *RelevanceScorer) TypeWeight(t model.ActivityType) float64 {
	if w, ok := s.typeWeights[t]; ok {
		return w
	}
	return s.defaultWeight
}

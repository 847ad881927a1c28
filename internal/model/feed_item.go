package model

import "time"

// FeedItem 单个订阅者收件箱里的一条动态
// score 在扇出时一次性计算，之后不再重算
type FeedItem struct {
	ID         string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string  `gorm:"type:varchar(36);uniqueIndex:ux_feed_user_activity;index:idx_feed_user_rank" json:"user_id"`
	ActivityID string  `gorm:"type:varchar(36);uniqueIndex:ux_feed_user_activity;not null" json:"activity_id"`
	Score      float64 `gorm:"not null;index:idx_feed_user_rank" json:"score"`
	Read       bool    `gorm:"not null;default:false" json:"read"`
	// ux_feed_user_activity = (user_id, activity_id) 扇出重试的幂等锚点
	// idx_feed_user_rank = (user_id, score, created_at) 排序读取用
	CreatedAt time.Time `gorm:"index:idx_feed_user_rank" json:"created_at"`
}

func (FeedItem) TableName() string { return "feed_items" }

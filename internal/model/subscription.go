package model

import "time"

// FeedSubscription 订阅边（subscriber 订阅 publisher 的动态）
// 复合唯一键保证每对至多一行，退订/重订只翻转 active
type FeedSubscription struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SubscriberID string  `gorm:"type:varchar(36);index:idx_sub_pair,unique;not null" json:"subscriber_id"`
	PublisherID  string  `gorm:"type:varchar(36);not null;index:idx_sub_pair,unique;index:idx_sub_publisher_active" json:"publisher_id"`
	Active       bool    `gorm:"not null;default:true;index:idx_sub_publisher_active" json:"active"`
	Weight       float64 `gorm:"not null;default:1" json:"weight"`
	// idx_sub_pair = (subscriber_id, publisher_id)
	// idx_sub_publisher_active = (publisher_id, active) 扇出查询用
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FeedSubscription) TableName() string { return "feed_subscriptions" }

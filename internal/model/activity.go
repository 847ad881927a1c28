package model

import "time"

// ActivityType 活动类型（闭集）
type ActivityType string

const (
	TypePostCreate  ActivityType = "post-create"
	TypePostLike    ActivityType = "post-like"
	TypePostComment ActivityType = "post-comment"
	TypeUserFollow  ActivityType = "user-follow"
	TypeUserMention ActivityType = "user-mention"
)

// TargetTypeUser 显式投递目标为用户
const TargetTypeUser = "user"

// Activity 一条已发布的活动
// 聚合命中时只递增 aggregation_count / updated_at，不新建行
type Activity struct {
	ID               string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Type             ActivityType `gorm:"type:varchar(32);index:idx_activity_agg;not null" json:"type"`
	ActorID          string       `gorm:"type:varchar(36);index:idx_activity_actor;index:idx_activity_agg;not null" json:"actor_id"`
	Payload          string       `gorm:"type:text" json:"payload"`
	IsPublic         bool         `gorm:"not null;default:true" json:"is_public"`
	GroupKey         string       `gorm:"type:varchar(128);index:idx_activity_agg" json:"group_key,omitempty"`
	AggregationCount int64        `gorm:"not null;default:0" json:"aggregation_count"`
	// idx_activity_agg = (actor_id, type, group_key) + created_at 范围过滤
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Targets []ActivityTarget `gorm:"foreignKey:ActivityID" json:"targets,omitempty"`
}

func (Activity) TableName() string { return "activities" }

// ActivityTarget 活动的显式投递目标，随活动一起创建/删除
type ActivityTarget struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ActivityID string `gorm:"type:varchar(36);index:idx_target_activity;not null" json:"activity_id"`
	TargetType string `gorm:"type:varchar(32);index:idx_target_lookup;not null" json:"target_type"`
	TargetID   string `gorm:"type:varchar(36);index:idx_target_lookup;not null" json:"target_id"`
	// idx_target_lookup = (target_type, target_id)
	CreatedAt time.Time `json:"created_at"`
}

func (ActivityTarget) TableName() string { return "activity_targets" }

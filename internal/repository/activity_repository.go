package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/activity-feed/internal/model"
)

type ActivityRepository interface {
	// CreateOrAggregate 在一个事务内完成窗口查找、合并或新建、目标落库。
	// 返回最终活动与是否命中聚合。
	CreateOrAggregate(ctx context.Context, act *model.Activity, window time.Duration) (*model.Activity, bool, error)
	GetWithTargets(ctx context.Context, id string) (*model.Activity, error)
	Delete(ctx context.Context, id string) error
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*model.Activity, error)
	ListByTarget(ctx context.Context, targetType, targetID string, limit, offset int) ([]*model.Activity, error)
}

type activityRepository struct{ db *gorm.DB }

func NewActivityRepository(db *gorm.DB) ActivityRepository { return &activityRepository{db: db} }

func (r *activityRepository) CreateOrAggregate(ctx context.Context, act *model.Activity, window time.Duration) (*model.Activity, bool, error) {
	var (
		result *model.Activity
		merged bool
	)
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if act.GroupKey != "" {
			var existing model.Activity
			// 窗口必须是范围比较（created_at >= now-window），不是时间点相等
			err := tx.Where(
				"actor_id = ? AND type = ? AND group_key = ? AND created_at >= ?",
				act.ActorID, act.Type, act.GroupKey, now.Add(-window),
			).Order("created_at DESC").First(&existing).Error
			switch {
			case err == nil:
				if err := tx.Model(&model.Activity{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
					"aggregation_count": gorm.Expr("aggregation_count + 1"),
					"updated_at":        now,
				}).Error; err != nil {
					return err
				}
				var out model.Activity
				if err := tx.Preload("Targets").First(&out, "id = ?", existing.ID).Error; err != nil {
					return err
				}
				result, merged = &out, true
				return nil
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}
		if err := tx.Create(act).Error; err != nil {
			return err
		}
		result = act
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, ErrConflict
		}
		return nil, false, err
	}
	return result, merged, nil
}

func (r *activityRepository) GetWithTargets(ctx context.Context, id string) (*model.Activity, error) {
	var act model.Activity
	err := r.db.WithContext(ctx).Preload("Targets").First(&act, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &act, nil
}

// Delete 连同 targets 一起删除
func (r *activityRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&model.ActivityTarget{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Activity{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *activityRepository) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*model.Activity, error) {
	var res []*model.Activity
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *activityRepository) ListByTarget(ctx context.Context, targetType, targetID string, limit, offset int) ([]*model.Activity, error) {
	var res []*model.Activity
	err := r.db.WithContext(ctx).
		Joins("JOIN activity_targets ON activity_targets.activity_id = activities.id").
		Where("activity_targets.target_type = ? AND activity_targets.target_id = ?", targetType, targetID).
		Order("activities.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

package activity

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"plugu/internal/common"
	"plugu/internal/dbsql"
)

type Activities interface {
	ListUserActivities(ctx context.Context, userID string) ([]*dbsql.Activity, error)
	ListUserActivitiesSince(ctx context.Context, userID string, since time.Time) ([]*dbsql.Activity, error)
	GetActivity(ctx context.Context, id string) (*dbsql.Activity, error)
	CreateActivity(ctx context.Context, a *dbsql.Activity) error
	UpdateActivity(ctx context.Context, a *dbsql.Activity, updates map[string]interface{}) error
	DeleteActivity(ctx context.Context, id string) error
	CountUserActivities(ctx context.Context, userID string) (int64, error)
}

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) ListUserActivities(ctx context.Context, userID string) ([]*dbsql.Activity, error) {
	var out []*dbsql.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// ListUserActivitiesSince filters on creation time, not due date.
func (r *ActivityRepository) ListUserActivitiesSince(ctx context.Context, userID string, since time.Time) ([]*dbsql.Activity, error) {
	var out []*dbsql.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *ActivityRepository) GetActivity(ctx context.Context, id string) (*dbsql.Activity, error) {
	var a dbsql.Activity
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, common.FromGorm(err)
	}
	return &a, nil
}

func (r *ActivityRepository) CreateActivity(ctx context.Context, a *dbsql.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ActivityRepository) UpdateActivity(ctx context.Context, a *dbsql.Activity, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(a).Updates(updates).Error
}

func (r *ActivityRepository) DeleteActivity(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&dbsql.Activity{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("activity %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *ActivityRepository) CountUserActivities(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbsql.Activity{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

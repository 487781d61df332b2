package crop

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plugu/internal/common"
	"plugu/internal/dbsql"
)

type CropRepository struct {
	db *gorm.DB
}

func NewCropRepository(db *gorm.DB) *CropRepository {
	return &CropRepository{db: db}
}

// --------- CROPS ---------
type Crops interface {
	ListUserCrops(ctx context.Context, userID string) ([]*dbsql.UserCrop, error)
	CountUserCrops(ctx context.Context, userID string) (int64, error)
	CountCropsByStatus(ctx context.Context, userID, status string) (int64, error)
	GetCrop(ctx context.Context, cropID string) (*dbsql.UserCrop, error)
	CreateCrop(ctx context.Context, crop *dbsql.UserCrop) error
	UpdateCrop(ctx context.Context, crop *dbsql.UserCrop, updates map[string]interface{}) error
	DeleteCrop(ctx context.Context, cropID string) error
	UpsertCrops(ctx context.Context, crops []*dbsql.UserCrop) error
}

func (r *CropRepository) ListUserCrops(ctx context.Context, userID string) ([]*dbsql.UserCrop, error) {
	var crops []*dbsql.UserCrop
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&crops).Error
	return crops, err
}

func (r *CropRepository) CountUserCrops(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbsql.UserCrop{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *CropRepository) CountCropsByStatus(ctx context.Context, userID, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbsql.UserCrop{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&n).Error
	return n, err
}

func (r *CropRepository) GetCrop(ctx context.Context, cropID string) (*dbsql.UserCrop, error) {
	var crop dbsql.UserCrop
	if err := r.db.WithContext(ctx).First(&crop, "user_crop_id = ?", cropID).Error; err != nil {
		return nil, common.FromGorm(err)
	}
	return &crop, nil
}

func (r *CropRepository) CreateCrop(ctx context.Context, crop *dbsql.UserCrop) error {
	return r.db.WithContext(ctx).Create(crop).Error
}

// UpdateCrop writes the given columns and mirrors them onto crop.
func (r *CropRepository) UpdateCrop(ctx context.Context, crop *dbsql.UserCrop, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(crop).Updates(updates).Error
}

func (r *CropRepository) DeleteCrop(ctx context.Context, cropID string) error {
	res := r.db.WithContext(ctx).Delete(&dbsql.UserCrop{}, "user_crop_id = ?", cropID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("crop %s: %w", cropID, common.ErrNotFound)
	}
	return nil
}

// UpsertCrops writes all rows in one statement, replacing existing ones by id.
func (r *CropRepository) UpsertCrops(ctx context.Context, crops []*dbsql.UserCrop) error {
	if len(crops) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_crop_id"}},
			UpdateAll: true,
		}).
		Create(&crops).Error
}

// --------- LOGS ---------
type Logs interface {
	ListCropLogs(ctx context.Context, cropID string) ([]*dbsql.CropLog, error)
	ListUserLogs(ctx context.Context, userID string) ([]*dbsql.CropLog, error)
	GetLog(ctx context.Context, logID string) (*dbsql.CropLog, error)
	CreateLog(ctx context.Context, log *dbsql.CropLog) error
	UpdateLog(ctx context.Context, log *dbsql.CropLog, updates map[string]interface{}) error
	DeleteLog(ctx context.Context, logID string) error
	ListLogsByActivityType(ctx context.Context, cropID, activityType string) ([]*dbsql.CropLog, error)
	ListLogsByDateRange(ctx context.Context, cropID string, start, end time.Time) ([]*dbsql.CropLog, error)
	CreateLogs(ctx context.Context, logs []*dbsql.CropLog) error
}

func (r *CropRepository) ListCropLogs(ctx context.Context, cropID string) ([]*dbsql.CropLog, error) {
	var logs []*dbsql.CropLog
	err := r.db.WithContext(ctx).
		Where("user_crop_id = ?", cropID).
		Order("log_date DESC").
		Find(&logs).Error
	return logs, err
}

// ListUserLogs returns every log of the user's crops with the crop attached.
func (r *CropRepository) ListUserLogs(ctx context.Context, userID string) ([]*dbsql.CropLog, error) {
	var logs []*dbsql.CropLog
	err := r.db.WithContext(ctx).
		Preload("Crop").
		Where("user_id = ?", userID).
		Order("log_date DESC").
		Find(&logs).Error
	return logs, err
}

func (r *CropRepository) GetLog(ctx context.Context, logID string) (*dbsql.CropLog, error) {
	var log dbsql.CropLog
	if err := r.db.WithContext(ctx).Preload("Crop").First(&log, "log_id = ?", logID).Error; err != nil {
		return nil, common.FromGorm(err)
	}
	return &log, nil
}

func (r *CropRepository) CreateLog(ctx context.Context, log *dbsql.CropLog) error {
	return r.db.WithContext(ctx).Omit("Crop").Create(log).Error
}

func (r *CropRepository) UpdateLog(ctx context.Context, log *dbsql.CropLog, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(log).Omit("Crop").Updates(updates).Error
}

func (r *CropRepository) DeleteLog(ctx context.Context, logID string) error {
	res := r.db.WithContext(ctx).Delete(&dbsql.CropLog{}, "log_id = ?", logID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("log %s: %w", logID, common.ErrNotFound)
	}
	return nil
}

func (r *CropRepository) ListLogsByActivityType(ctx context.Context, cropID, activityType string) ([]*dbsql.CropLog, error) {
	var logs []*dbsql.CropLog
	err := r.db.WithContext(ctx).
		Where("user_crop_id = ? AND activity_type = ?", cropID, activityType).
		Order("log_date DESC").
		Find(&logs).Error
	return logs, err
}

// ListLogsByDateRange includes both bounds.
func (r *CropRepository) ListLogsByDateRange(ctx context.Context, cropID string, start, end time.Time) ([]*dbsql.CropLog, error) {
	var logs []*dbsql.CropLog
	err := r.db.WithContext(ctx).
		Where("user_crop_id = ? AND log_date >= ? AND log_date <= ?", cropID, start, end).
		Order("log_date DESC").
		Find(&logs).Error
	return logs, err
}

func (r *CropRepository) CreateLogs(ctx context.Context, logs []*dbsql.CropLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Crop").Create(&logs).Error
}

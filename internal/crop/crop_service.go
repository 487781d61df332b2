package crop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"plugu/internal/common"
	"plugu/internal/dbsql"
	"plugu/internal/stats"
	"plugu/internal/view"
)

// CropUpdate is a partial edit; nil fields are left alone.
type CropUpdate struct {
	CropName            *string `json:"crop_name"`
	Variety             *string `json:"variety"`
	Location            *string `json:"location"`
	PlantedDate         *string `json:"planted_date"`
	ExpectedHarvestDate *string `json:"expected_harvest_date"`
	GrowthPercentage    *int    `json:"growth_percentage"`
	DaysToHarvest       *int    `json:"days_to_harvest"`
	Status              *string `json:"status"`
	Notes               *string `json:"notes"`
}

// CropBatchItem is one entry of a batch update; the id selects the crop.
type CropBatchItem struct {
	UserCropID string `json:"user_crop_id"`
	CropUpdate
}

type CropUsecase interface {
	ListCrops(ctx context.Context, userID string) ([]view.CropView, error)
	CountCrops(ctx context.Context, userID string) (int64, error)
	CountCropsByStatus(ctx context.Context, userID, status string) (int64, error)
	GetCrop(ctx context.Context, userID, cropID string) (*view.CropView, error)
	CreateCrop(ctx context.Context, userID string, in CropInput) (*dbsql.UserCrop, error)
	UpdateCrop(ctx context.Context, userID, cropID string, upd CropUpdate) (*dbsql.UserCrop, error)
	DeleteCrop(ctx context.Context, userID, cropID string) error
	UpdateStatus(ctx context.Context, userID, cropID, status string) (*dbsql.UserCrop, error)
	UpdateGrowth(ctx context.Context, userID, cropID string, growth int) (*dbsql.UserCrop, error)
	UpdateDaysToHarvest(ctx context.Context, userID, cropID string, days int) (*dbsql.UserCrop, error)
	UpdateCrops(ctx context.Context, userID string, items []CropBatchItem) ([]*dbsql.UserCrop, error)

	ListLogs(ctx context.Context, userID, cropID string) ([]*dbsql.CropLog, error)
	ListUserLogs(ctx context.Context, userID string) ([]*dbsql.CropLog, error)
	GetLog(ctx context.Context, userID, logID string) (*dbsql.CropLog, error)
	CreateLog(ctx context.Context, userID string, in LogInput) (*dbsql.CropLog, error)
	UpdateLog(ctx context.Context, userID, logID string, in LogInput) (*dbsql.CropLog, error)
	DeleteLog(ctx context.Context, userID, logID string) error
	LogsByActivityType(ctx context.Context, userID, cropID, activityType string) ([]*dbsql.CropLog, error)
	LogsByDateRange(ctx context.Context, userID, cropID string, start, end time.Time) ([]*dbsql.CropLog, error)
	CreateLogs(ctx context.Context, userID string, in []LogInput) ([]*dbsql.CropLog, error)

	Statistics(ctx context.Context, userID string) (stats.CropStatistics, error)
	LogStatistics(ctx context.Context, userID, cropID string) (stats.LogStatistics, error)
}

type CropService struct {
	crops Crops
	logs  Logs
	now   func() time.Time
}

func NewCropService(c Crops, l Logs) *CropService {
	return &CropService{crops: c, logs: l, now: time.Now}
}

// --------- CROPS ---------

func (s *CropService) ListCrops(ctx context.Context, userID string) ([]view.CropView, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	crops, err := s.crops.ListUserCrops(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list crops: %w", err)
	}

	now := s.now()
	out := make([]view.CropView, 0, len(crops))
	for _, c := range crops {
		out = append(out, view.ToCropView(c, now))
	}
	return out, nil
}

func (s *CropService) CountCrops(ctx context.Context, userID string) (int64, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return 0, err
	}
	return s.crops.CountUserCrops(ctx, userID)
}

func (s *CropService) CountCropsByStatus(ctx context.Context, userID, status string) (int64, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return 0, err
	}
	if errs := checkStatus(status); status == "" || errs != nil {
		return 0, common.Invalidf("unknown crop status %q", status)
	}
	return s.crops.CountCropsByStatus(ctx, userID, status)
}

// ownedCrop loads a crop and checks it belongs to userID.
func (s *CropService) ownedCrop(ctx context.Context, userID, cropID string) (*dbsql.UserCrop, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	if err := common.RequireID("crop id", cropID); err != nil {
		return nil, err
	}
	crop, err := s.crops.GetCrop(ctx, cropID)
	if err != nil {
		return nil, fmt.Errorf("fetch crop: %w", err)
	}
	if crop.UserID != userID {
		return nil, fmt.Errorf("crop %s: %w", cropID, common.ErrPermissionDenied)
	}
	return crop, nil
}

func (s *CropService) GetCrop(ctx context.Context, userID, cropID string) (*view.CropView, error) {
	crop, err := s.ownedCrop(ctx, userID, cropID)
	if err != nil {
		return nil, err
	}
	v := view.ToCropView(crop, s.now())
	return &v, nil
}

func (s *CropService) CreateCrop(ctx context.Context, userID string, in CropInput) (*dbsql.UserCrop, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	if err := ValidateCropData(in).Err(); err != nil {
		return nil, err
	}

	planted, _ := common.ParseDate(in.PlantedDate)
	harvest, _ := common.ParseDate(in.ExpectedHarvestDate)
	crop := &dbsql.UserCrop{
		UserID:              userID,
		CropName:            strings.TrimSpace(in.CropName),
		Variety:             strings.TrimSpace(in.Variety),
		Location:            strings.TrimSpace(in.Location),
		PlantedDate:         &planted,
		ExpectedHarvestDate: &harvest,
		GrowthPercentage:    in.GrowthPercentage,
		DaysToHarvest:       in.DaysToHarvest,
		Status:              in.Status,
		Notes:               in.Notes,
	}
	if crop.Status == "" {
		crop.Status = dbsql.CropStatusHealthy
	}

	if err := s.crops.CreateCrop(ctx, crop); err != nil {
		return nil, fmt.Errorf("create crop: %w", err)
	}
	log.Debug().Str("crop_id", crop.UserCropID).Str("user_id", userID).Msg("crop created")
	return crop, nil
}

// columns validates upd against the current row and returns the columns to
// write.
func (upd CropUpdate) columns(current *dbsql.UserCrop) (map[string]interface{}, error) {
	cols := make(map[string]interface{})
	var errs []string

	text := func(col, label string, v *string) {
		if v == nil {
			return
		}
		if common.IsBlank(*v) {
			errs = append(errs, label+" is required")
			return
		}
		cols[col] = strings.TrimSpace(*v)
	}
	text("crop_name", "Crop name", upd.CropName)
	text("variety", "Variety", upd.Variety)
	text("location", "Location", upd.Location)

	planted, harvest := current.PlantedDate, current.ExpectedHarvestDate
	if upd.PlantedDate != nil {
		var t time.Time
		var ok bool
		if errs, t, ok = requiredDate(errs, "Planted date", *upd.PlantedDate); ok {
			planted = &t
			cols["planted_date"] = t
		}
	}
	if upd.ExpectedHarvestDate != nil {
		var t time.Time
		var ok bool
		if errs, t, ok = requiredDate(errs, "Expected harvest date", *upd.ExpectedHarvestDate); ok {
			harvest = &t
			cols["expected_harvest_date"] = t
		}
	}
	if (upd.PlantedDate != nil || upd.ExpectedHarvestDate != nil) &&
		planted != nil && harvest != nil && !harvest.After(*planted) {
		errs = append(errs, "Expected harvest date must be after planted date")
	}

	if upd.Status != nil {
		if *upd.Status == "" {
			errs = append(errs, "Status is required")
		} else if e := checkStatus(*upd.Status); e != nil {
			errs = append(errs, e...)
		} else {
			cols["status"] = *upd.Status
		}
	}
	if upd.GrowthPercentage != nil {
		if e := checkGrowth(upd.GrowthPercentage); e != nil {
			errs = append(errs, e...)
		} else {
			cols["growth_percentage"] = *upd.GrowthPercentage
		}
	}
	if upd.DaysToHarvest != nil {
		cols["days_to_harvest"] = *upd.DaysToHarvest
	}
	if upd.Notes != nil {
		cols["notes"] = *upd.Notes
	}

	if len(errs) > 0 {
		return nil, &common.ValidationError{Errors: errs}
	}
	if len(cols) == 0 {
		return nil, common.Invalidf("no fields to update")
	}
	return cols, nil
}

func (s *CropService) UpdateCrop(ctx context.Context, userID, cropID string, upd CropUpdate) (*dbsql.UserCrop, error) {
	crop, err := s.ownedCrop(ctx, userID, cropID)
	if err != nil {
		return nil, err
	}
	cols, err := upd.columns(crop)
	if err != nil {
		return nil, err
	}
	if err := s.crops.UpdateCrop(ctx, crop, cols); err != nil {
		return nil, fmt.Errorf("update crop: %w", err)
	}
	return crop, nil
}

func (s *CropService) UpdateStatus(ctx context.Context, userID, cropID, status string) (*dbsql.UserCrop, error) {
	return s.UpdateCrop(ctx, userID, cropID, CropUpdate{Status: &status})
}

func (s *CropService) UpdateGrowth(ctx context.Context, userID, cropID string, growth int) (*dbsql.UserCrop, error) {
	return s.UpdateCrop(ctx, userID, cropID, CropUpdate{GrowthPercentage: &growth})
}

func (s *CropService) UpdateDaysToHarvest(ctx context.Context, userID, cropID string, days int) (*dbsql.UserCrop, error) {
	return s.UpdateCrop(ctx, userID, cropID, CropUpdate{DaysToHarvest: &days})
}

func (s *CropService) DeleteCrop(ctx context.Context, userID, cropID string) error {
	if _, err := s.ownedCrop(ctx, userID, cropID); err != nil {
		return err
	}
	if err := s.crops.DeleteCrop(ctx, cropID); err != nil {
		return fmt.Errorf("delete crop: %w", err)
	}
	return nil
}

// UpdateCrops validates every item before writing any of them, then
// upserts the merged rows in a single statement.
func (s *CropService) UpdateCrops(ctx context.Context, userID string, items []CropBatchItem) ([]*dbsql.UserCrop, error) {
	if len(items) == 0 {
		return nil, common.Invalidf("no crops to update")
	}

	merged := make([]*dbsql.UserCrop, 0, len(items))
	for _, item := range items {
		crop, err := s.ownedCrop(ctx, userID, item.UserCropID)
		if err != nil {
			return nil, err
		}
		cols, err := item.CropUpdate.columns(crop)
		if err != nil {
			return nil, fmt.Errorf("crop %s: %w", item.UserCropID, err)
		}
		applyColumns(crop, cols)
		merged = append(merged, crop)
	}

	if err := s.crops.UpsertCrops(ctx, merged); err != nil {
		return nil, fmt.Errorf("update crops: %w", err)
	}
	return merged, nil
}

func applyColumns(c *dbsql.UserCrop, cols map[string]interface{}) {
	for col, v := range cols {
		switch col {
		case "crop_name":
			c.CropName = v.(string)
		case "variety":
			c.Variety = v.(string)
		case "location":
			c.Location = v.(string)
		case "planted_date":
			t := v.(time.Time)
			c.PlantedDate = &t
		case "expected_harvest_date":
			t := v.(time.Time)
			c.ExpectedHarvestDate = &t
		case "status":
			c.Status = v.(string)
		case "growth_percentage":
			g := v.(int)
			c.GrowthPercentage = &g
		case "days_to_harvest":
			d := v.(int)
			c.DaysToHarvest = &d
		case "notes":
			c.Notes = v.(string)
		}
	}
}

// --------- LOGS ---------

func (s *CropService) ListLogs(ctx context.Context, userID, cropID string) ([]*dbsql.CropLog, error) {
	if _, err := s.ownedCrop(ctx, userID, cropID); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListCropLogs(ctx, cropID)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}

func (s *CropService) ListUserLogs(ctx context.Context, userID string) ([]*dbsql.CropLog, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListUserLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}

func (s *CropService) ownedLog(ctx context.Context, userID, logID string) (*dbsql.CropLog, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	if err := common.RequireID("log id", logID); err != nil {
		return nil, err
	}
	entry, err := s.logs.GetLog(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("fetch log: %w", err)
	}
	if entry.UserID != userID {
		return nil, fmt.Errorf("log %s: %w", logID, common.ErrPermissionDenied)
	}
	return entry, nil
}

func (s *CropService) GetLog(ctx context.Context, userID, logID string) (*dbsql.CropLog, error) {
	return s.ownedLog(ctx, userID, logID)
}

func (s *CropService) newLog(ctx context.Context, userID string, in LogInput) (*dbsql.CropLog, error) {
	if err := ValidateLogData(in).Err(); err != nil {
		return nil, err
	}
	if _, err := s.ownedCrop(ctx, userID, in.UserCropID); err != nil {
		return nil, err
	}
	logDate, _ := common.ParseDate(in.LogDate)
	return &dbsql.CropLog{
		UserCropID:     in.UserCropID,
		UserID:         userID,
		ActivityType:   strings.TrimSpace(in.ActivityType),
		Description:    strings.TrimSpace(in.Description),
		PlantCondition: strings.TrimSpace(in.PlantCondition),
		LogDate:        logDate,
		Notes:          in.Notes,
	}, nil
}

func (s *CropService) CreateLog(ctx context.Context, userID string, in LogInput) (*dbsql.CropLog, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	entry, err := s.newLog(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.logs.CreateLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}
	return entry, nil
}

// UpdateLog replaces the editable fields; the owning crop cannot change.
func (s *CropService) UpdateLog(ctx context.Context, userID, logID string, in LogInput) (*dbsql.CropLog, error) {
	entry, err := s.ownedLog(ctx, userID, logID)
	if err != nil {
		return nil, err
	}
	in.UserCropID = entry.UserCropID
	if err := ValidateLogData(in).Err(); err != nil {
		return nil, err
	}

	logDate, _ := common.ParseDate(in.LogDate)
	cols := map[string]interface{}{
		"activity_type":   strings.TrimSpace(in.ActivityType),
		"description":     strings.TrimSpace(in.Description),
		"plant_condition": strings.TrimSpace(in.PlantCondition),
		"log_date":        logDate,
		"notes":           in.Notes,
	}
	if err := s.logs.UpdateLog(ctx, entry, cols); err != nil {
		return nil, fmt.Errorf("update log: %w", err)
	}
	return entry, nil
}

func (s *CropService) DeleteLog(ctx context.Context, userID, logID string) error {
	if _, err := s.ownedLog(ctx, userID, logID); err != nil {
		return err
	}
	if err := s.logs.DeleteLog(ctx, logID); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	return nil
}

func (s *CropService) LogsByActivityType(ctx context.Context, userID, cropID, activityType string) ([]*dbsql.CropLog, error) {
	if common.IsBlank(activityType) {
		return nil, common.Invalidf("activity type is required")
	}
	if _, err := s.ownedCrop(ctx, userID, cropID); err != nil {
		return nil, err
	}
	return s.logs.ListLogsByActivityType(ctx, cropID, activityType)
}

func (s *CropService) LogsByDateRange(ctx context.Context, userID, cropID string, start, end time.Time) ([]*dbsql.CropLog, error) {
	if end.Before(start) {
		return nil, common.Invalidf("end date must not be before start date")
	}
	if _, err := s.ownedCrop(ctx, userID, cropID); err != nil {
		return nil, err
	}
	return s.logs.ListLogsByDateRange(ctx, cropID, start, end)
}

// CreateLogs inserts all entries or none; any invalid entry rejects the batch.
func (s *CropService) CreateLogs(ctx context.Context, userID string, in []LogInput) ([]*dbsql.CropLog, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, common.Invalidf("no logs to create")
	}

	entries := make([]*dbsql.CropLog, 0, len(in))
	for i, item := range in {
		entry, err := s.newLog(ctx, userID, item)
		if err != nil {
			return nil, fmt.Errorf("log %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	if err := s.logs.CreateLogs(ctx, entries); err != nil {
		return nil, fmt.Errorf("create logs: %w", err)
	}
	return entries, nil
}

// --------- STATISTICS ---------

func (s *CropService) Statistics(ctx context.Context, userID string) (stats.CropStatistics, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return stats.CropStatistics{}, err
	}
	crops, err := s.crops.ListUserCrops(ctx, userID)
	if err != nil {
		return stats.CropStatistics{}, fmt.Errorf("crop statistics: %w", err)
	}
	return stats.ComputeCropStatistics(crops), nil
}

func (s *CropService) LogStatistics(ctx context.Context, userID, cropID string) (stats.LogStatistics, error) {
	logs, err := s.ListLogs(ctx, userID, cropID)
	if err != nil {
		return stats.LogStatistics{}, err
	}
	return stats.ComputeLogStatistics(logs, s.now()), nil
}

package dbsql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CropStatusHealthy   = "healthy"
	CropStatusWarning   = "warning"
	CropStatusCritical  = "critical"
	CropStatusHarvested = "harvested"
)

// UserCrop is a crop planted by a user. GrowthPercentage and DaysToHarvest
// are manual overrides; nil means derive from the dates.
type UserCrop struct {
	UserCropID          string     `gorm:"column:user_crop_id;primaryKey;size:36" json:"user_crop_id"`
	UserID              string     `gorm:"column:user_id;index;size:36;not null" json:"user_id"`
	CropName            string     `gorm:"column:crop_name;size:100;not null" json:"crop_name"`
	Variety             string     `gorm:"column:variety;size:100" json:"variety"`
	Location            string     `gorm:"column:location;size:255" json:"location"`
	PlantedDate         *time.Time `gorm:"column:planted_date" json:"planted_date"`
	ExpectedHarvestDate *time.Time `gorm:"column:expected_harvest_date" json:"expected_harvest_date"`
	GrowthPercentage    *int       `gorm:"column:growth_percentage" json:"growth_percentage"`
	DaysToHarvest       *int       `gorm:"column:days_to_harvest" json:"days_to_harvest"`
	Status              string     `gorm:"column:status;size:20" json:"status"`
	Notes               string     `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *UserCrop) BeforeCreate(tx *gorm.DB) error {
	if c.UserCropID == "" {
		c.UserCropID = uuid.NewString()
	}
	return nil
}

// CropLog is a dated field note owned by a crop.
type CropLog struct {
	LogID          string    `gorm:"column:log_id;primaryKey;size:36" json:"log_id"`
	UserCropID     string    `gorm:"column:user_crop_id;index;size:36;not null" json:"user_crop_id"`
	UserID         string    `gorm:"column:user_id;index;size:36" json:"user_id"`
	ActivityType   string    `gorm:"column:activity_type;size:50;not null" json:"activity_type"`
	Description    string    `gorm:"column:description;type:text" json:"description"`
	PlantCondition string    `gorm:"column:plant_condition;size:50" json:"plant_condition"`
	LogDate        time.Time `gorm:"column:log_date;index" json:"log_date"`
	Notes          string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Crop *UserCrop `gorm:"foreignKey:UserCropID;references:UserCropID" json:"user_crops,omitempty"`
}

func (l *CropLog) BeforeCreate(tx *gorm.DB) error {
	if l.LogID == "" {
		l.LogID = uuid.NewString()
	}
	return nil
}

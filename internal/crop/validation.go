package crop

import (
	"time"

	"plugu/internal/common"
	"plugu/internal/dbsql"
)

// CropInput is the create payload. Dates are accepted in any layout
// common.ParseDate understands.
type CropInput struct {
	CropName            string `json:"crop_name"`
	Variety             string `json:"variety"`
	Location            string `json:"location"`
	PlantedDate         string `json:"planted_date"`
	ExpectedHarvestDate string `json:"expected_harvest_date"`
	GrowthPercentage    *int   `json:"growth_percentage"`
	DaysToHarvest       *int   `json:"days_to_harvest"`
	Status              string `json:"status"`
	Notes               string `json:"notes"`
}

type LogInput struct {
	UserCropID     string `json:"user_crop_id"`
	ActivityType   string `json:"activity_type"`
	Description    string `json:"description"`
	PlantCondition string `json:"plant_condition"`
	LogDate        string `json:"log_date"`
	Notes          string `json:"notes"`
}

// ValidationResult lists every failed rule, not just the first.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Err is nil for a valid result.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &common.ValidationError{Errors: r.Errors}
}

func newResult(errs []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// requiredDate appends "<label> is required" for a blank value and
// "<label> is not a valid date" for one that does not parse.
func requiredDate(errs []string, label, value string) ([]string, time.Time, bool) {
	if common.IsBlank(value) {
		return append(errs, label+" is required"), time.Time{}, false
	}
	t, ok := common.ParseDate(value)
	if !ok {
		return append(errs, label+" is not a valid date"), time.Time{}, false
	}
	return errs, t, true
}

func ValidateCropData(in CropInput) ValidationResult {
	var errs []string

	if common.IsBlank(in.CropName) {
		errs = append(errs, "Crop name is required")
	}
	if common.IsBlank(in.Variety) {
		errs = append(errs, "Variety is required")
	}
	if common.IsBlank(in.Location) {
		errs = append(errs, "Location is required")
	}

	errs, planted, plantedOK := requiredDate(errs, "Planted date", in.PlantedDate)
	errs, harvest, harvestOK := requiredDate(errs, "Expected harvest date", in.ExpectedHarvestDate)
	if plantedOK && harvestOK && !harvest.After(planted) {
		errs = append(errs, "Expected harvest date must be after planted date")
	}

	errs = append(errs, checkStatus(in.Status)...)
	errs = append(errs, checkGrowth(in.GrowthPercentage)...)
	return newResult(errs)
}

func ValidateLogData(in LogInput) ValidationResult {
	var errs []string

	if common.IsBlank(in.UserCropID) {
		errs = append(errs, "Crop ID is required")
	}
	if common.IsBlank(in.ActivityType) {
		errs = append(errs, "Activity type is required")
	}
	if common.IsBlank(in.Description) {
		errs = append(errs, "Description is required")
	}
	if common.IsBlank(in.PlantCondition) {
		errs = append(errs, "Plant condition is required")
	}
	errs, _, _ = requiredDate(errs, "Log date", in.LogDate)

	return newResult(errs)
}

func checkStatus(status string) []string {
	switch status {
	case "", dbsql.CropStatusHealthy, dbsql.CropStatusWarning, dbsql.CropStatusCritical, dbsql.CropStatusHarvested:
		return nil
	}
	return []string{"Status must be one of healthy, warning, critical, harvested"}
}

func checkGrowth(growth *int) []string {
	if growth != nil && (*growth < 0 || *growth > 100) {
		return []string{"Growth percentage must be between 0 and 100"}
	}
	return nil
}

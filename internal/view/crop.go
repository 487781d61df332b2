package view

import (
	"math"
	"time"

	"plugu/internal/dbsql"
)

// MaxDerivedGrowth caps growth computed from dates; only an explicit value
// can reach 100.
const MaxDerivedGrowth = 95

const day = 24 * time.Hour

// CropView is a crop with its derived progress filled in.
type CropView struct {
	*dbsql.UserCrop
	Growth        int `json:"growth"`
	DaysRemaining int `json:"days_remaining"`
}

// ToCropView derives growth and days remaining from the crop dates unless the
// stored overrides are set.
func ToCropView(c *dbsql.UserCrop, now time.Time) CropView {
	v := CropView{UserCrop: c}

	if c.DaysToHarvest != nil {
		v.DaysRemaining = *c.DaysToHarvest
	} else if c.ExpectedHarvestDate != nil {
		v.DaysRemaining = CalculateDaysToHarvest(*c.ExpectedHarvestDate, now)
	}

	if c.GrowthPercentage != nil {
		v.Growth = *c.GrowthPercentage
	} else if c.PlantedDate != nil && c.ExpectedHarvestDate != nil {
		v.Growth = CalculateGrowthPercentage(*c.PlantedDate, *c.ExpectedHarvestDate, nil, now)
	}
	return v
}

// CalculateDaysToHarvest rounds partial days up; past dates are negative.
func CalculateDaysToHarvest(harvest, now time.Time) int {
	return ceilDays(harvest.Sub(now))
}

// CalculateGrowthPercentage returns override when set. Otherwise it is the
// share of the planted..harvest window already elapsed, in [0, 95].
func CalculateGrowthPercentage(planted, harvest time.Time, override *int, now time.Time) int {
	if override != nil {
		return *override
	}

	total := ceilDays(harvest.Sub(planted))
	if total <= 0 {
		return 0
	}
	passed := ceilDays(now.Sub(planted))

	pct := int(math.Round(float64(passed) / float64(total) * 100))
	if pct > MaxDerivedGrowth {
		return MaxDerivedGrowth
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// CalculateProgress is the elapsed share of [start, end] at current, clamped
// to [0, 100]. An empty window counts as complete once current reaches end.
func CalculateProgress(start, end, current time.Time) float64 {
	total := end.Sub(start)
	if total <= 0 {
		if current.Before(end) {
			return 0
		}
		return 100
	}

	pct := float64(current.Sub(start)) / float64(total) * 100
	return math.Min(math.Max(pct, 0), 100)
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}

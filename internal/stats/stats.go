// Package stats derives dashboard figures from crop, log and activity rows.
package stats

import (
	"math"
	"time"

	"plugu/internal/dbsql"
	"plugu/internal/view"
)

const (
	ReadyToHarvestDays = 7
	AttentionGrowth    = 30
	RecentActivityDays = 30
)

type CropStatistics struct {
	TotalCrops     int            `json:"totalCrops"`
	ByStatus       map[string]int `json:"byStatus"`
	AverageGrowth  int            `json:"averageGrowth"`
	ReadyToHarvest int            `json:"readyToHarvest"`
	NeedsAttention int            `json:"needsAttention"`
}

// ComputeCropStatistics aggregates crops in one pass. A crop without a growth
// value counts as 0% both for the average and for needing attention.
func ComputeCropStatistics(crops []*dbsql.UserCrop) CropStatistics {
	stats := CropStatistics{
		TotalCrops: len(crops),
		ByStatus:   make(map[string]int),
	}

	total := 0
	for _, c := range crops {
		stats.ByStatus[c.Status]++

		growth := 0
		if c.GrowthPercentage != nil {
			growth = *c.GrowthPercentage
		}
		total += growth

		if c.DaysToHarvest != nil && *c.DaysToHarvest != 0 && *c.DaysToHarvest <= ReadyToHarvestDays {
			stats.ReadyToHarvest++
		}
		if growth < AttentionGrowth || c.Status == dbsql.CropStatusWarning {
			stats.NeedsAttention++
		}
	}

	if len(crops) > 0 {
		stats.AverageGrowth = int(math.Round(float64(total) / float64(len(crops))))
	}
	return stats
}

type LogStatistics struct {
	TotalLogs      int            `json:"totalLogs"`
	ByActivityType map[string]int `json:"byActivityType"`
	RecentActivity int            `json:"recentActivity"`
}

// ComputeLogStatistics counts logs dated within the 30 days before now as
// recent.
func ComputeLogStatistics(logs []*dbsql.CropLog, now time.Time) LogStatistics {
	stats := LogStatistics{
		TotalLogs:      len(logs),
		ByActivityType: make(map[string]int),
	}

	since := now.AddDate(0, 0, -RecentActivityDays)
	for _, l := range logs {
		stats.ByActivityType[l.ActivityType]++
		if !l.LogDate.Before(since) {
			stats.RecentActivity++
		}
	}
	return stats
}

type ActivityDurations struct {
	TotalDoneDuration    int `json:"totalDoneDuration"`
	TotalPendingDuration int `json:"totalPendingDuration"`
	TotalDuration        int `json:"totalDuration"`
}

func ComputeActivityDurations(views []view.ActivityView) ActivityDurations {
	var d ActivityDurations
	for _, v := range views {
		if v.Done() {
			d.TotalDoneDuration += v.Duration
		} else {
			d.TotalPendingDuration += v.Duration
		}
	}
	d.TotalDuration = d.TotalDoneDuration + d.TotalPendingDuration
	return d
}

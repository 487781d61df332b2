package view

import (
	"time"

	"plugu/internal/dbsql"
)

const (
	StatusDone    = "done"
	StatusNotDone = "not_done"

	// DefaultDuration is assumed for activities stored without a duration.
	DefaultDuration = 30
)

// ActivityView is the client shape of an activity: category becomes type and
// the title carries the crop name.
type ActivityView struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Crop        string     `json:"crop"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	Duration    int        `json:"duration"`
	Notes       string     `json:"notes"`
	Status      string     `json:"status"`
}

func (v ActivityView) Done() bool {
	return v.Status == StatusDone
}

func ToActivityView(a *dbsql.Activity) ActivityView {
	v := ActivityView{
		ID:          a.ID,
		Type:        a.Category,
		Crop:        a.Title,
		Description: a.Description,
		Date:        a.DueDate,
		Duration:    DefaultDuration,
		Notes:       a.Notes,
		Status:      StatusFromCompleted(a.IsCompleted),
	}
	if a.Duration != nil && *a.Duration > 0 {
		v.Duration = *a.Duration
	}
	return v
}

func ToActivityViews(activities []*dbsql.Activity) []ActivityView {
	out := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		out = append(out, ToActivityView(a))
	}
	return out
}

func StatusFromCompleted(done bool) string {
	if done {
		return StatusDone
	}
	return StatusNotDone
}

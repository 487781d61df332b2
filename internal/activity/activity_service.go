// Package activity manages a user's scheduled farm tasks and their weekly
// summary.
package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"plugu/internal/common"
	"plugu/internal/dbsql"
	"plugu/internal/stats"
	"plugu/internal/view"
)

// SummaryWindow is how far back the weekly summary looks.
const SummaryWindow = 7 * 24 * time.Hour

// ActivityInput uses the client's field names: Crop is stored as the title
// and Type as the category.
type ActivityInput struct {
	Type        string `json:"type"`
	Crop        string `json:"crop"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Duration    *int   `json:"duration"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
}

type SummaryData struct {
	Done    []view.ActivityView `json:"done"`
	NotDone []view.ActivityView `json:"not_done"`
}

type Summary struct {
	Data    SummaryData             `json:"data"`
	Summary stats.ActivityDurations `json:"summary"`
}

type ActivityUsecase interface {
	FetchUserActivities(ctx context.Context, userID string) ([]view.ActivityView, error)
	FetchSummary(ctx context.Context, userID string) (*Summary, error)
	AddActivity(ctx context.Context, userID string, in ActivityInput) (*view.ActivityView, error)
	UpdateActivity(ctx context.Context, userID, id string, in ActivityInput) (*view.ActivityView, error)
	UpdateStatus(ctx context.Context, userID, id, status string) (*view.ActivityView, error)
	DeleteActivity(ctx context.Context, userID, id string) error
	CountUserActivities(ctx context.Context, userID string) (int64, error)
}

type ActivityService struct {
	repo Activities
	now  func() time.Time
}

func NewActivityService(repo Activities) *ActivityService {
	return &ActivityService{repo: repo, now: time.Now}
}

func (s *ActivityService) FetchUserActivities(ctx context.Context, userID string) ([]view.ActivityView, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListUserActivities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return view.ToActivityViews(rows), nil
}

// FetchSummary splits the activities created in the last week by completion
// and totals their durations.
func (s *ActivityService) FetchSummary(ctx context.Context, userID string) (*Summary, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListUserActivitiesSince(ctx, userID, s.now().Add(-SummaryWindow))
	if err != nil {
		return nil, fmt.Errorf("activity summary: %w", err)
	}

	views := view.ToActivityViews(rows)
	out := &Summary{
		Data: SummaryData{
			Done:    []view.ActivityView{},
			NotDone: []view.ActivityView{},
		},
		Summary: stats.ComputeActivityDurations(views),
	}
	for _, v := range views {
		if v.Done() {
			out.Data.Done = append(out.Data.Done, v)
		} else {
			out.Data.NotDone = append(out.Data.NotDone, v)
		}
	}
	return out, nil
}

func parseDue(date string) (*time.Time, error) {
	if common.IsBlank(date) {
		return nil, nil
	}
	t, ok := common.ParseDate(date)
	if !ok {
		return nil, common.Invalidf("date %q is not a valid date", date)
	}
	return &t, nil
}

func checkStatus(status string) error {
	switch status {
	case "", view.StatusDone, view.StatusNotDone:
		return nil
	}
	return common.Invalidf("status must be %s or %s", view.StatusDone, view.StatusNotDone)
}

func (s *ActivityService) AddActivity(ctx context.Context, userID string, in ActivityInput) (*view.ActivityView, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	var errs []string
	if common.IsBlank(in.Crop) {
		errs = append(errs, "Title is required")
	}
	if common.IsBlank(in.Type) {
		errs = append(errs, "Type is required")
	}
	if len(errs) > 0 {
		return nil, &common.ValidationError{Errors: errs}
	}
	due, err := parseDue(in.Date)
	if err != nil {
		return nil, err
	}

	a := &dbsql.Activity{
		UserID:      userID,
		Category:    strings.TrimSpace(in.Type),
		Title:       strings.TrimSpace(in.Crop),
		Description: in.Description,
		DueDate:     due,
		Duration:    in.Duration,
		Notes:       in.Notes,
	}
	if err := s.repo.CreateActivity(ctx, a); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	v := view.ToActivityView(a)
	return &v, nil
}

func (s *ActivityService) owned(ctx context.Context, userID, id string) (*dbsql.Activity, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return nil, err
	}
	if err := common.RequireID("activity id", id); err != nil {
		return nil, err
	}
	a, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch activity: %w", err)
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("activity %s: %w", id, common.ErrPermissionDenied)
	}
	return a, nil
}

// UpdateActivity replaces every editable field.
func (s *ActivityService) UpdateActivity(ctx context.Context, userID, id string, in ActivityInput) (*view.ActivityView, error) {
	a, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(in.Status); err != nil {
		return nil, err
	}
	due, err := parseDue(in.Date)
	if err != nil {
		return nil, err
	}

	cols := map[string]interface{}{
		"title":        strings.TrimSpace(in.Crop),
		"description":  in.Description,
		"category":     strings.TrimSpace(in.Type),
		"due_date":     due,
		"notes":        in.Notes,
		"is_completed": in.Status == view.StatusDone,
	}
	if in.Duration != nil {
		cols["duration"] = *in.Duration
	}
	if err := s.repo.UpdateActivity(ctx, a, cols); err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}

	a.Title = strings.TrimSpace(in.Crop)
	a.Category = strings.TrimSpace(in.Type)
	a.Description = in.Description
	a.DueDate = due
	a.Notes = in.Notes
	a.IsCompleted = in.Status == view.StatusDone
	if in.Duration != nil {
		a.Duration = in.Duration
	}
	v := view.ToActivityView(a)
	return &v, nil
}

func (s *ActivityService) UpdateStatus(ctx context.Context, userID, id, status string) (*view.ActivityView, error) {
	if status == "" {
		return nil, common.Invalidf("status is required")
	}
	if err := checkStatus(status); err != nil {
		return nil, err
	}
	a, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	done := status == view.StatusDone
	if err := s.repo.UpdateActivity(ctx, a, map[string]interface{}{"is_completed": done}); err != nil {
		return nil, fmt.Errorf("update activity status: %w", err)
	}
	a.IsCompleted = done
	v := view.ToActivityView(a)
	return &v, nil
}

func (s *ActivityService) DeleteActivity(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteActivity(ctx, id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

func (s *ActivityService) CountUserActivities(ctx context.Context, userID string) (int64, error) {
	if err := common.RequireID("user id", userID); err != nil {
		return 0, err
	}
	return s.repo.CountUserActivities(ctx, userID)
}

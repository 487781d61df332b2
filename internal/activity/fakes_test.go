package activity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"plugu/internal/common"
	"plugu/internal/dbsql"
)

func intPtr(v int) *int { return &v }

type memRepo struct {
	mu    sync.Mutex
	items map[string]*dbsql.Activity
	now   func() time.Time
}

func newMemRepo(now func() time.Time) *memRepo {
	return &memRepo{items: map[string]*dbsql.Activity{}, now: now}
}

func (m *memRepo) put(a *dbsql.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[a.ID] = a
}

func (m *memRepo) ListUserActivities(ctx context.Context, userID string) ([]*dbsql.Activity, error) {
	return m.ListUserActivitiesSince(ctx, userID, time.Time{})
}

func (m *memRepo) ListUserActivitiesSince(ctx context.Context, userID string, since time.Time) ([]*dbsql.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*dbsql.Activity
	for _, a := range m.items {
		if a.UserID == userID && !a.CreatedAt.Before(since) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) GetActivity(ctx context.Context, id string) (*dbsql.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) CreateActivity(ctx context.Context, a *dbsql.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.now()
	}
	cp := *a
	m.put(&cp)
	return nil
}

func (m *memRepo) UpdateActivity(ctx context.Context, a *dbsql.Activity, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[a.ID]
	if !ok {
		return common.ErrNotFound
	}
	for col, v := range updates {
		switch col {
		case "title":
			stored.Title = v.(string)
		case "category":
			stored.Category = v.(string)
		case "description":
			stored.Description = v.(string)
		case "notes":
			stored.Notes = v.(string)
		case "due_date":
			stored.DueDate = v.(*time.Time)
		case "duration":
			d := v.(int)
			stored.Duration = &d
		case "is_completed":
			stored.IsCompleted = v.(bool)
		}
	}
	return nil
}

func (m *memRepo) DeleteActivity(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memRepo) CountUserActivities(ctx context.Context, userID string) (int64, error) {
	rows, err := m.ListUserActivities(ctx, userID)
	return int64(len(rows)), err
}

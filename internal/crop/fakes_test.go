package crop

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

// memRepo is an in-memory Crops and Logs.
type memRepo struct {
	mu    sync.Mutex
	crops map[string]*dbsql.UserCrop
	logs  map[string]*dbsql.CropLog
	err   error
}

func newMemRepo() *memRepo {
	return &memRepo{crops: map[string]*dbsql.UserCrop{}, logs: map[string]*dbsql.CropLog{}}
}

func (m *memRepo) ListUserCrops(ctx context.Context, userID string) ([]*dbsql.UserCrop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*dbsql.UserCrop
	for _, c := range m.crops {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) CountUserCrops(ctx context.Context, userID string) (int64, error) {
	crops, err := m.ListUserCrops(ctx, userID)
	return int64(len(crops)), err
}

func (m *memRepo) CountCropsByStatus(ctx context.Context, userID, status string) (int64, error) {
	crops, err := m.ListUserCrops(ctx, userID)
	var n int64
	for _, c := range crops {
		if c.Status == status {
			n++
		}
	}
	return n, err
}

func (m *memRepo) GetCrop(ctx context.Context, cropID string) (*dbsql.UserCrop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crops[cropID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) CreateCrop(ctx context.Context, crop *dbsql.UserCrop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if crop.UserCropID == "" {
		crop.UserCropID = uuid.NewString()
	}
	crop.CreatedAt = time.Now()
	cp := *crop
	m.crops[crop.UserCropID] = &cp
	return nil
}

func (m *memRepo) UpdateCrop(ctx context.Context, crop *dbsql.UserCrop, updates map[string]interface{}) error {
	applyColumns(crop, updates)
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *crop
	m.crops[crop.UserCropID] = &cp
	return nil
}

func (m *memRepo) DeleteCrop(ctx context.Context, cropID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.crops[cropID]; !ok {
		return common.ErrNotFound
	}
	delete(m.crops, cropID)
	return nil
}

func (m *memRepo) UpsertCrops(ctx context.Context, crops []*dbsql.UserCrop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range crops {
		cp := *c
		m.crops[c.UserCropID] = &cp
	}
	return nil
}

func (m *memRepo) filterLogs(keep func(*dbsql.CropLog) bool) []*dbsql.CropLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*dbsql.CropLog
	for _, l := range m.logs {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogDate.After(out[j].LogDate) })
	return out
}

func (m *memRepo) ListCropLogs(ctx context.Context, cropID string) ([]*dbsql.CropLog, error) {
	return m.filterLogs(func(l *dbsql.CropLog) bool { return l.UserCropID == cropID }), nil
}

func (m *memRepo) ListUserLogs(ctx context.Context, userID string) ([]*dbsql.CropLog, error) {
	return m.filterLogs(func(l *dbsql.CropLog) bool { return l.UserID == userID }), nil
}

func (m *memRepo) GetLog(ctx context.Context, logID string) (*dbsql.CropLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[logID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memRepo) CreateLog(ctx context.Context, entry *dbsql.CropLog) error {
	return m.CreateLogs(ctx, []*dbsql.CropLog{entry})
}

func (m *memRepo) UpdateLog(ctx context.Context, entry *dbsql.CropLog, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := updates["description"].(string); ok {
		entry.Description = v
	}
	if v, ok := updates["log_date"].(time.Time); ok {
		entry.LogDate = v
	}
	cp := *entry
	m.logs[entry.LogID] = &cp
	return nil
}

func (m *memRepo) DeleteLog(ctx context.Context, logID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logs[logID]; !ok {
		return common.ErrNotFound
	}
	delete(m.logs, logID)
	return nil
}

func (m *memRepo) ListLogsByActivityType(ctx context.Context, cropID, activityType string) ([]*dbsql.CropLog, error) {
	return m.filterLogs(func(l *dbsql.CropLog) bool {
		return l.UserCropID == cropID && l.ActivityType == activityType
	}), nil
}

func (m *memRepo) ListLogsByDateRange(ctx context.Context, cropID string, start, end time.Time) ([]*dbsql.CropLog, error) {
	return m.filterLogs(func(l *dbsql.CropLog) bool {
		return l.UserCropID == cropID && !l.LogDate.Before(start) && !l.LogDate.After(end)
	}), nil
}

func (m *memRepo) CreateLogs(ctx context.Context, logs []*dbsql.CropLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, l := range logs {
		if l.LogID == "" {
			l.LogID = uuid.NewString()
		}
		cp := *l
		m.logs[l.LogID] = &cp
	}
	return nil
}

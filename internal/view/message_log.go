package view

import (
	"sort"
	"sync"

	"plugu/internal/dbsql"
)

// MessageLog reconciles a fetched snapshot with pushed messages of the same
// conversation. Messages are keyed by id, so a row seen through both paths
// is kept once. Safe for concurrent use.
type MessageLog struct {
	mu   sync.Mutex
	byID map[string]*dbsql.Message
}

func NewMessageLog(initial ...*dbsql.Message) *MessageLog {
	l := &MessageLog{byID: make(map[string]*dbsql.Message)}
	l.Add(initial...)
	return l
}

// Add stores msgs and returns the ones not seen before, in argument order.
func (l *MessageLog) Add(msgs ...*dbsql.Message) []*dbsql.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	var added []*dbsql.Message
	for _, m := range msgs {
		if m == nil || m.ID == "" {
			continue
		}
		if _, seen := l.byID[m.ID]; seen {
			continue
		}
		l.byID[m.ID] = m
		added = append(added, m)
	}
	return added
}

// Remove forgets a deleted message.
func (l *MessageLog) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.byID, id)
}

func (l *MessageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}

// Messages returns the log ordered by creation time, ties broken by id.
func (l *MessageLog) Messages() []*dbsql.Message {
	l.mu.Lock()
	out := make([]*dbsql.Message, 0, len(l.byID))
	for _, m := range l.byID {
		out = append(out, m)
	}
	l.mu.Unlock()

	SortMessages(out)
	return out
}

// MergeMessages unions two message lists by id.
func MergeMessages(fetched, pushed []*dbsql.Message) []*dbsql.Message {
	l := NewMessageLog(fetched...)
	l.Add(pushed...)
	return l.Messages()
}

// SortMessages orders msgs ascending by creation time, ties by id.
func SortMessages(msgs []*dbsql.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// Package realtime is the publish/subscribe channel that pushes inserted
// rows to subscribers outside the request/response cycle. Delivery is
// at-most-once: there is no replay, acknowledgement or reconnection.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var ErrClosed = errors.New("realtime: channel closed")

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventDelete EventType = "DELETE"
)

// Event is a row change pushed on a topic. Record holds the raw row.
type Event struct {
	Type            EventType       `json:"type"`
	Topic           string          `json:"topic"`
	Table           string          `json:"table"`
	Record          json.RawMessage `json:"record"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

// NewEvent encodes record as the event payload.
func NewEvent(typ EventType, topic, table string, record interface{}) (Event, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s record: %w", table, err)
	}
	return Event{
		Type:            typ,
		Topic:           topic,
		Table:           table,
		Record:          raw,
		CommitTimestamp: time.Now().UTC(),
	}, nil
}

// Handler runs on a goroutine owned by the channel, never on the publisher's.
type Handler func(Event)

type Channel interface {
	Publish(ctx context.Context, topic string, evt Event) error
	Subscribe(ctx context.Context, topic string, h Handler) (*Subscription, error)
	Close() error
}

// ConversationTopic names the topic carrying one conversation's messages.
func ConversationTopic(conversationID string) string {
	return "conversation-" + conversationID
}

type State int32

const (
	StateUnsubscribed State = iota
	StateSubscribed
)

func (s State) String() string {
	if s == StateSubscribed {
		return "subscribed"
	}
	return "unsubscribed"
}

// Subscription is subscribed from creation until Unsubscribe is called.
// It never leaves that state on its own, even if the transport drops.
type Subscription struct {
	topic    string
	state    atomic.Int32
	once     sync.Once
	teardown func()
}

func newSubscription(topic string, teardown func()) *Subscription {
	s := &Subscription{topic: topic, teardown: teardown}
	s.state.Store(int32(StateSubscribed))
	return s
}

func (s *Subscription) Topic() string { return s.topic }

func (s *Subscription) State() State { return State(s.state.Load()) }

// Unsubscribe stops delivery. Safe to call more than once. A handler call
// already in progress is allowed to finish, but events still queued are not
// delivered.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.state.Store(int32(StateUnsubscribed))
		if s.teardown != nil {
			s.teardown()
		}
	})
}

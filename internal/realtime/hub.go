package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

const DefaultBufferSize = 64

type subscriber struct {
	handler Handler
	events  chan Event
	quit    chan struct{}
}

// run delivers queued events until quit closes. Events still queued at that
// point are discarded.
func (s *subscriber) run() {
	for {
		select {
		case <-s.quit:
			return
		default:
		}
		select {
		case evt := <-s.events:
			select {
			case <-s.quit:
				return
			default:
				s.handler(evt)
			}
		case <-s.quit:
			return
		}
	}
}

// Hub is the in-process Channel. Each subscriber owns a buffered queue and a
// delivery goroutine, so events on one subscription arrive in publish order.
// A full queue drops the event.
type Hub struct {
	mu         sync.RWMutex
	topics     map[string]map[*subscriber]struct{}
	bufferSize int
	closed     bool
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		topics:     make(map[string]map[*subscriber]struct{}),
		bufferSize: bufferSize,
	}
}

var _ Channel = (*Hub)(nil)

func (h *Hub) Subscribe(ctx context.Context, topic string, handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, errors.New("realtime: nil handler")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &subscriber{
		handler: handler,
		events:  make(chan Event, h.bufferSize),
		quit:    make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	subs := h.topics[topic]
	if subs == nil {
		subs = make(map[*subscriber]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	go sub.run()
	log.Debug().Str("topic", topic).Msg("realtime subscriber added")

	return newSubscription(topic, func() { h.remove(topic, sub) }), nil
}

func (h *Hub) remove(topic string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
	close(sub.quit)
	log.Debug().Str("topic", topic).Msg("realtime subscriber removed")
}

func (h *Hub) Publish(ctx context.Context, topic string, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}

	if evt.Topic == "" {
		evt.Topic = topic
	}
	for sub := range h.topics[topic] {
		select {
		case sub.events <- evt:
		default:
			log.Warn().Str("topic", topic).Str("type", string(evt.Type)).Msg("subscriber queue full, dropping event")
		}
	}
	return nil
}

// Subscribers reports the live subscriber count of topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for topic, subs := range h.topics {
		for sub := range subs {
			close(sub.quit)
		}
		delete(h.topics, topic)
	}
	return nil
}

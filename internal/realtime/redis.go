package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedisClient parses url and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return c, nil
}

// RedisChannel fans events out across service instances with Redis
// PUBLISH/SUBSCRIBE. Events are JSON encoded.
type RedisChannel struct {
	client *redis.Client
	prefix string
}

func NewRedisChannel(client *redis.Client, prefix string) *RedisChannel {
	return &RedisChannel{client: client, prefix: prefix}
}

var _ Channel = (*RedisChannel)(nil)

func (r *RedisChannel) Publish(ctx context.Context, topic string, evt Event) error {
	if evt.Topic == "" {
		evt.Topic = topic
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("redis: encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.prefix+topic, data).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", topic, err)
	}
	return nil
}

func (r *RedisChannel) Subscribe(ctx context.Context, topic string, h Handler) (*Subscription, error) {
	if h == nil {
		return nil, fmt.Errorf("redis: nil handler")
	}

	ps := r.client.Subscribe(ctx, r.prefix+topic)
	// wait for the server to confirm before reporting subscribed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", topic, err)
	}

	msgs := ps.Channel()
	done := make(chan struct{})
	go func() {
		for msg := range msgs {
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping undecodable realtime event")
				continue
			}
			select {
			case <-done:
				return
			default:
				h(evt)
			}
		}
	}()

	return newSubscription(topic, func() {
		close(done)
		if err := ps.Close(); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("redis unsubscribe failed")
		}
	}), nil
}

func (r *RedisChannel) Close() error {
	return r.client.Close()
}

// Package notify fans stored notifications out to live listeners.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/hisab/internal/models"
)

// Publisher delivers notifications after they have been persisted.
// Delivery is best effort: the inbox in storage stays the source of truth.
type Publisher interface {
	Publish(ctx context.Context, notifications []*models.Notification) error
	Close() error
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Publish(context.Context, []*models.Notification) error { return nil }
func (Noop) Close() error                                          { return nil }

// Envelope is the JSON payload published for each notification.
type Envelope struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at"`
}

// RedisPublisher publishes one Envelope per notification on a redis channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher connects to addr and checks the connection with a ping.
func NewRedisPublisher(ctx context.Context, addr, channel string) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisPublisher{rdb: rdb, channel: channel}, nil
}

// Channel returns the channel notifications are published on.
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Publish sends every notification in a single pipeline round trip.
func (p *RedisPublisher) Publish(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	pipe := p.rdb.Pipeline()
	for _, n := range notifications {
		raw, err := json.Marshal(Envelope{ID: n.ID, UserID: n.UserID, Message: n.Message, CreatedAt: n.CreatedAt})
		if err != nil {
			return fmt.Errorf("failed to encode notification: %w", err)
		}
		pipe.Publish(ctx, p.channel, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish notifications: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// Package events announces collision count changes on Redis pub/sub.
//
// Subscribers of CollisionsChannel receive one JSON message per successful
// write:
//
//	{"name":"A St","num_collisions":11,"kind":"increment","at":"2026-01-02T15:04:05Z"}
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/crashmap/internal/model"
	"github.com/redis/go-redis/v9"
)

const CollisionsChannel = "collisions:updates"

// Publisher delivers collision updates. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishCollisionUpdate(ctx context.Context, update model.CollisionUpdate) error
}

// NopPublisher drops every update. It is used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishCollisionUpdate(context.Context, model.CollisionUpdate) error {
	return nil
}

// RedisPublisher sends updates straight to a pub/sub channel.
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

func NewRedisPublisher(client redis.Cmdable) *RedisPublisher {
	return &RedisPublisher{client: client, channel: CollisionsChannel}
}

func (p *RedisPublisher) PublishCollisionUpdate(ctx context.Context, update model.CollisionUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal collision update: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}

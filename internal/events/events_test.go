package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/crashmap/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingClient implements only Publish; any other call panics.
type recordingClient struct {
	redis.Cmdable
	channel string
	message []byte
	err     error
}

func (r *recordingClient) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	r.channel = channel
	r.message, _ = message.([]byte)
	return redis.NewIntResult(1, r.err)
}

func TestRedisPublisher_PublishesJSON(t *testing.T) {
	client := &recordingClient{}
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	err := NewRedisPublisher(client).PublishCollisionUpdate(context.Background(), model.CollisionUpdate{
		Name:          "A St",
		NumCollisions: 11,
		Kind:          model.CollisionWriteIncrement,
		At:            at,
	})

	require.NoError(t, err)
	assert.Equal(t, CollisionsChannel, client.channel)
	assert.JSONEq(t, `{"name":"A St","num_collisions":11,"kind":"increment","at":"2026-01-02T15:04:05Z"}`, string(client.message))

	var decoded model.CollisionUpdate
	require.NoError(t, json.Unmarshal(client.message, &decoded))
	assert.True(t, decoded.At.Equal(at))
}

func TestRedisPublisher_WrapsErrors(t *testing.T) {
	client := &recordingClient{err: errors.New("connection refused")}

	err := NewRedisPublisher(client).PublishCollisionUpdate(context.Background(), model.CollisionUpdate{Name: "A"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), CollisionsChannel)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.PublishCollisionUpdate(context.Background(), model.CollisionUpdate{}))
}

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const ChannelAll = "tournaments:events"

// TournamentChannel: формат канала tournament:{id}:events
func TournamentChannel(tournamentID int) string {
	return fmt.Sprintf("tournament:%d:events", tournamentID)
}

// RedisForwarder republishes bus events to Redis pub/sub for consumers outside this process.
type RedisForwarder struct {
	client *redis.Client
}

func NewRedisForwarder(client *redis.Client) *RedisForwarder {
	return &RedisForwarder{client: client}
}

func (f *RedisForwarder) Handle(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.ID, err)
	}

	pipe := f.client.Pipeline()
	pipe.Publish(ctx, ChannelAll, body)
	pipe.Publish(ctx, TournamentChannel(evt.TournamentID), body)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish %s: %w", evt.Type, err)
	}
	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revalidateMessage is the payload published for each stale logical path.
// The rendering layer subscribes to the channel and recomputes cached output
// for the path on next access.
type revalidateMessage struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// Publisher broadcasts cache invalidation signals on a Redis channel.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

// Publish emits one invalidation message. Best-effort: subscribers that
// missed the message simply serve stale output until the next signal.
func (p *Publisher) Publish(ctx context.Context, path string) error {
	payload, err := json.Marshal(revalidateMessage{Path: path, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal revalidate message: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish revalidate: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"fmt"

	"ms-seating/internal/logger"

	"github.com/go-redis/redis/v8"
)

// Notifier announces seat table writes over a Redis channel so that other
// instances reload.
type Notifier struct {
	Client  *redis.Client
	Channel string
	Logger  *logger.Logger
}

func NewNotifier(client *redis.Client, channel string, log *logger.Logger) *Notifier {
	return &Notifier{Client: client, Channel: channel, Logger: log}
}

// Announce publishes the operation name (UPSERT, DELETE, RESET)
func (n *Notifier) Announce(ctx context.Context, op string) error {
	if err := n.Client.Publish(ctx, n.Channel, op).Err(); err != nil {
		return fmt.Errorf("publish %s on %s: %w", op, n.Channel, err)
	}
	return nil
}

// Listen subscribes to the channel and calls onChange for every message
// until ctx is done. The subscription is confirmed before messages are read.
func (n *Notifier) Listen(ctx context.Context, onChange func()) error {
	sub := n.Client.Subscribe(ctx, n.Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", n.Channel, err)
	}
	n.Logger.LogSync("SUBSCRIBE", fmt.Sprintf("listening on redis channel %s", n.Channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			n.Logger.Debug("REDIS", fmt.Sprintf("change notification %s", msg.Payload))
			onChange()
		}
	}
}

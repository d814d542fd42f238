// Package notifications delivers realtime events to users over Redis pub/sub
// and websockets.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"foodgram/internal/middleware"
	"foodgram/internal/observability"

	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "notifications:user:"

// Notifier publishes notifications into Redis channels. A nil client turns
// every publish into a no-op.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishEvent fans ev out to every user in userIDs using one pipeline.
func (n *Notifier) PublishEvent(ctx context.Context, userIDs []uint, ev Event) error {
	if n == nil || n.rdb == nil || len(userIDs) == 0 {
		return nil
	}
	payload, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Type, err)
	}

	if len(userIDs) == 1 {
		if err := n.PublishUser(ctx, userIDs[0], payload); err != nil {
			return err
		}
	} else {
		pipe := n.rdb.Pipeline()
		for _, id := range userIDs {
			pipe.Publish(ctx, UserChannel(id), payload)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	observability.NotificationsPublished.WithLabelValues(ev.Type).Add(float64(len(userIDs)))
	return nil
}

// StartPatternSubscriber subscribes to every user channel and calls onMessage for each message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	// Wait for the subscription confirmation so publishes right after
	// startup are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// parseUserChannel is the inverse of UserChannel.
func parseUserChannel(channel string) (uint, bool) {
	if len(channel) <= len(userChannelPrefix) || channel[:len(userChannelPrefix)] != userChannelPrefix {
		return 0, false
	}
	id, err := strconv.ParseUint(channel[len(userChannelPrefix):], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

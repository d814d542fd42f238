package service

import (
	"context"
	"log/slog"

	"foodgram/internal/featureflags"
	"foodgram/internal/middleware"
	"foodgram/internal/notifications"
)

// EventPublisher delivers realtime events to user channels.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userIDs []uint, ev notifications.Event) error
}

// eventSink gates publishing behind the recipe_notifications flag and never
// fails the calling request.
type eventSink struct {
	publisher EventPublisher
	flags     *featureflags.Manager
}

func (s eventSink) publish(ctx context.Context, actorID uint, userIDs []uint, ev notifications.Event) {
	if s.publisher == nil || len(userIDs) == 0 {
		return
	}
	if !s.flags.Enabled(featureflags.RecipeNotifications, actorID) {
		return
	}
	if err := s.publisher.PublishEvent(ctx, userIDs, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("event_type", ev.Type),
			slog.Int("recipients", len(userIDs)),
			slog.String("error", err.Error()),
		)
	}
}

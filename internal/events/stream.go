package events

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StreamPublisher appends inquiry events to a Redis Stream. The stream is an
// outbound audit feed for other platform components; clients still poll the
// HTTP API for inquiry state.
type StreamPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewStreamPublisher builds a publisher for the named stream.
func NewStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, logger: logger}
}

// Register subscribes the publisher to every inquiry event type.
func (p *StreamPublisher) Register(dispatcher Dispatcher) {
	if p == nil || p.client == nil || dispatcher == nil {
		return
	}
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, p.Handle)
	}
}

// Handle publishes a single event. Delivery is best effort; a failed XADD is
// logged and never fails the originating request.
func (p *StreamPublisher) Handle(ctx context.Context, event Event) error {
	values := map[string]interface{}{
		"event_id":   event.ID,
		"event":      string(event.Type),
		"inquiry_id": event.InquiryID,
		"actor_id":   event.Actor.ID,
		"actor_role": string(event.Actor.Role),
		"emitted_at": event.Timestamp.UTC().Format(time.RFC3339),
	}
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err(); err != nil {
		p.logger.Warn("failed to publish inquiry event",
			zap.String("stream", p.stream),
			zap.String("event", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}

package events

import (
	"context"

	"go.uber.org/zap"
)

// NotificationLogger logs inquiry events for operator visibility.
type NotificationLogger struct {
	logger *zap.Logger
}

// NewNotificationLogger creates the subscriber.
func NewNotificationLogger(logger *zap.Logger) *NotificationLogger {
	return &NotificationLogger{logger: logger}
}

// Register subscribes to all inquiry events.
func (n *NotificationLogger) Register(dispatcher Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationLogger) handle(_ context.Context, event Event) error {
	n.logger.Info(string(event.Type),
		zap.String("inquiry_id", event.InquiryID),
		zap.String("actor_id", event.Actor.ID),
		zap.Any("payload", event.Payload))
	return nil
}

package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/workstack/org-messaging/internal/core/events"
	"github.com/workstack/org-messaging/internal/messaging"
)

const EventMessageDelivered = "message.delivered"

// BusNotifier pushes delivery notifications through the in-process event
// bus. Publishing is fire-and-forget: subscriber failures are logged by
// the bus and never reach the send path.
type BusNotifier struct {
	bus    *events.EventBus
	logger *slog.Logger
}

func NewBusNotifier(bus *events.EventBus, logger *slog.Logger) *BusNotifier {
	return &BusNotifier{
		bus:    bus,
		logger: logger,
	}
}

func (n *BusNotifier) MessageDelivered(ctx context.Context, msg *messaging.Message) {
	event := events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventMessageDelivered,
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"message_id":   msg.ID,
			"recipient_id": msg.RecipientID,
			"message_type": msg.MessageType,
			"priority":     msg.Priority,
		},
	}

	if err := n.bus.Publish(ctx, event); err != nil {
		// never propagate: a lost push must not fail the send
		n.logger.Error("failed to publish delivery event",
			"error", err,
			"message_id", msg.ID)
	}
}

// DeliveryLogger is the default subscriber: it records the push that a
// real-time session gateway would perform.
func DeliveryLogger(logger *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		logger.Info("delivery notification pushed",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	}
}

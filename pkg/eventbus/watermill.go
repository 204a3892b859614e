package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mcpadm/mcpadm/pkg/events"
)

// WatermillEventBus adapts a watermill publisher/subscriber pair to the
// EventBus interface. Channel implementations live in pkg/channels.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[events.EventType][]EventHandler
}

func NewWatermillEventBus(publisher message.Publisher, subscriber message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[events.EventType][]EventHandler),
	}
}

func (b *WatermillEventBus) Publish(_ context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key) // required for Kafka partitioning
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return b.publisher.Publish(events.Topic, msg)
}

// Handle registers a handler for one event type. Handlers must be registered
// before Subscribe.
func (b *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	return nil
}

// Subscribe starts consuming events and dispatching to registered handlers.
func (b *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

			success := true

			for _, handler := range b.handlers[eventType] {
				if err := handler(ctx, msg.Payload); err != nil {
					success = false
				}
			}

			if success {
				msg.Ack()
			} else {
				msg.Nack()
			}
		}
	}()

	return nil
}

func (b *WatermillEventBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		return err
	}

	return b.subscriber.Close()
}

func (b *WatermillEventBus) GenerateID() string {
	return watermill.NewUUID()
}

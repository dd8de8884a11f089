package mqtt

import (
	"context"
	"encoding/json"

	"github.com/hazyhour/blazebot/internal/errors"
	"github.com/hazyhour/blazebot/internal/scheduler"
)

// TriggerPublisher adapts a Client into the event publisher the trigger
// engine expects: one JSON document per zone fire on a fixed topic.
type TriggerPublisher struct {
	client Client
	topic  string
}

// NewTriggerPublisher wraps a connected client and target topic.
func NewTriggerPublisher(client Client, topic string) *TriggerPublisher {
	return &TriggerPublisher{client: client, topic: topic}
}

// PublishTriggerEvent serializes the event and publishes it. A dropped broker
// connection gets one reconnect attempt before giving up.
func (p *TriggerPublisher) PublishTriggerEvent(ctx context.Context, event scheduler.TriggerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("zone", event.Zone).
			Build()
	}

	if !p.client.IsConnected() {
		if err := p.client.Connect(ctx); err != nil {
			return err
		}
	}
	return p.client.Publish(ctx, p.topic, string(payload))
}

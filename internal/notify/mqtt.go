package notify

import (
	"context"

	"github.com/AnnaPov19/DogFeeder/internal/mqtt"
)

// MQTT publishes messages as feeding events on the broker.
type MQTT struct {
	pub mqtt.Publisher
}

// NewMQTT wraps pub.
func NewMQTT(pub mqtt.Publisher) *MQTT {
	return &MQTT{pub: pub}
}

// Name returns "mqtt".
func (s *MQTT) Name() string { return "mqtt" }

// Send publishes m. The publisher applies its own timeouts.
func (s *MQTT) Send(_ context.Context, m Message) error {
	return s.pub.PublishReading(m.Reading, m.Text)
}

package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
)

// outboxLimit is how many messages are kept while the broker is unreachable.
const outboxLimit = 100

// RealPublisher publishes to an actual MQTT broker.
// Messages published while disconnected wait in an outbox and are replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	log    zerolog.Logger
	now    func() time.Time

	mu          sync.Mutex
	outbox      *outbox
	everOnline  bool
	reconnected int
}

// NewRealPublisher creates a publisher for the given broker. The connection is
// established in the background and retried until Close.
func NewRealPublisher(broker, clientID string, log zerolog.Logger) *RealPublisher {
	p := &RealPublisher{
		log:    log,
		now:    time.Now,
		outbox: newOutbox(outboxLimit, log),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	pending := p.outbox.take()
	first := !p.everOnline
	p.everOnline = true
	if !first {
		p.reconnected++
	}
	p.mu.Unlock()

	if first {
		p.log.Info().Msg("mqtt connected")
	} else {
		p.log.Info().Int("replay", len(pending)).Msg("mqtt reconnected")
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		c.Publish(TopicSystem, 1, false, payload)
	}
	for _, m := range pending {
		if tok := c.Publish(m.topic, m.qos, m.retained, m.payload); !tok.WaitTimeout(5 * time.Second) {
			p.log.Warn().Str("topic", m.topic).Msg("replay publish timeout")
		} else if err := tok.Error(); err != nil {
			p.log.Warn().Err(err).Str("topic", m.topic).Msg("replay publish failed")
		}
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.log.Warn().Err(err).Msg("mqtt connection lost")
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.len()
}

// PublishReading sends a feeding reading to the MQTT broker.
func (p *RealPublisher) PublishReading(r feeder.Reading, message string) error {
	payload, err := FormatPayload(r, message)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 1: readings are rare and worth a retry.
	return p.publish(Topic, 1, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	msg := pendingMsg{topic: topic, payload: payload, qos: qos, retained: retained}
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.outbox.add(msg)
		p.mu.Unlock()
		p.log.Debug().Str("topic", topic).Msg("mqtt offline, message buffered")
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.mu.Lock()
		p.outbox.add(msg)
		p.mu.Unlock()
		return fmt.Errorf("publish %s timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/ports"
)

// mqttFix is the JSON payload published by position producers.
type mqttFix struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	TimestampMS int64   `json:"timestamp_ms"`
}

// MQTTSource subscribes to a broker topic carrying JSON position fixes.
// Malformed payloads are logged and skipped: a flaky producer should not
// halt tracking the way a real geolocation failure does.
type MQTTSource struct {
	client mqtt.Client
	topic  string
}

// NewMQTTSource connects to the broker. clientID must be unique per process.
func NewMQTTSource(brokerURL, clientID, topic string) (*MQTTSource, error) {
	if brokerURL == "" {
		return nil, fmt.Errorf("mqtt source: broker URL is empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("mqtt source: topic is empty")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt source: connect %s: %w", brokerURL, token.Error())
	}
	log.Printf("mqtt source connected broker=%s topic=%s", brokerURL, topic)

	return &MQTTSource{client: client, topic: topic}, nil
}

func (m *MQTTSource) Subscribe(ctx context.Context, opts ports.SubscribeOptions) (ports.Subscription, error) {
	sub := &mqttSubscription{
		source: m,
		events: make(chan ports.FixEvent, 16),
		done:   make(chan struct{}),
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		var wire mqttFix
		if err := json.Unmarshal(msg.Payload(), &wire); err != nil {
			log.Printf("mqtt source: payload unmarshal failed topic=%s err=%v", m.topic, err)
			return
		}

		sub.deliver(ports.FixEvent{Fix: domain.Fix{
			Coordinate: domain.Coordinate{Lat: wire.Lat, Lng: wire.Lng},
			Time:       time.UnixMilli(wire.TimestampMS).UTC(),
		}})
	}

	if token := m.client.Subscribe(m.topic, 0, handler); token.Wait() && token.Error() != nil {
		return nil, &domain.GeolocationError{Reason: "mqtt subscribe failed", Err: token.Error()}
	}

	return sub, nil
}

// Close disconnects from the broker.
func (m *MQTTSource) Close() {
	m.client.Disconnect(250)
}

type mqttSubscription struct {
	source *MQTTSource
	events chan ports.FixEvent
	done   chan struct{}
	closed bool
}

func (s *mqttSubscription) Events() <-chan ports.FixEvent { return s.events }

// deliver hands an event to the consumer. Handlers already dispatched by the
// MQTT client can still run after Unsubscribe returns, so the events channel
// is never closed; sends are gated on done instead, and deliver stays safe
// to call after Close.
func (s *mqttSubscription) deliver(ev ports.FixEvent) {
	select {
	case s.events <- ev:
	case <-s.done:
	default:
		// Slow consumer: drop rather than block the MQTT client loop.
	}
}

func (s *mqttSubscription) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)

	if token := s.source.client.Unsubscribe(s.source.topic); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt unsubscribe %s: %w", s.source.topic, token.Error())
	}
	return nil
}

// Package events publishes cafe activity to an MQTT broker so that clients can
// follow likes as they happen.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/cafe-discovery/internal/config"
)

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// LikeEvent is published whenever a like is added or removed.
type LikeEvent struct {
	Type      string    `json:"type"` // "like_added" or "like_removed"
	LikeID    string    `json:"like_id"`
	CafeID    string    `json:"cafe_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	LikeAdded   = "like_added"
	LikeRemoved = "like_removed"
)

// Publisher delivers like events.
type Publisher interface {
	PublishLike(ctx context.Context, event LikeEvent) error
	Close()
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishLike(context.Context, LikeEvent) error { return nil }
func (NoopPublisher) Close()                                       {}

// mqttClient is the subset of mqtt.Client used by MQTTPublisher.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes like events as JSON to <prefix>/cafes/<cafe_id>/likes.
type MQTTPublisher struct {
	client  mqttClient
	prefix  string
	timeout time.Duration
}

// NewMQTTPublisher connects to the configured broker.
func NewMQTTPublisher(cfg config.MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.Broker, err)
	}

	log.WithField("broker", cfg.Broker).Info("Connected to MQTT broker")
	return newMQTTPublisher(client, cfg.TopicPrefix), nil
}

func newMQTTPublisher(client mqttClient, prefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix, timeout: 5 * time.Second}
}

// New returns an MQTT publisher when a broker is configured and a NoopPublisher otherwise.
func New(cfg config.MQTTConfig) (Publisher, error) {
	if cfg.Broker == "" {
		log.Info("MQTT_BROKER not set; like events are disabled")
		return NoopPublisher{}, nil
	}
	return NewMQTTPublisher(cfg)
}

// LikeTopic returns the topic like events for cafeID are published on.
func (p *MQTTPublisher) LikeTopic(cafeID string) string {
	return fmt.Sprintf("%s/cafes/%s/likes", p.prefix, cafeID)
}

// PublishLike publishes event at QoS 1 and waits for the broker acknowledgement,
// the context deadline or the publisher timeout, whichever comes first.
func (p *MQTTPublisher) PublishLike(ctx context.Context, event LikeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal like event: %w", err)
	}

	token := p.client.Publish(p.LikeTopic(event.CafeID), 1, false, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish like event: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrPublishTimeout
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

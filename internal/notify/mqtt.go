package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/metrics"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Config holds the MQTT connection settings.
type Config struct {
	Broker   string
	ClientID string
	Topic    string
	Timeout  time.Duration
}

// client is the part of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes notifications as retained JSON messages on
// "<topic>/<notification id>". Each Publish call carries the full current set:
// alerts missing from it are cleared with an empty retained message. Alerts
// retained by an earlier process are not known and stay until overwritten.
type MQTTPublisher struct {
	client  client
	topic   string
	timeout time.Duration
	log     logrus.FieldLogger

	mu     sync.Mutex
	active map[string]bool // ids currently retained on the broker
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(cfg Config, logger logrus.FieldLogger) (*MQTTPublisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker is not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout)
	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	return newPublisher(c, cfg.Topic, cfg.Timeout, logger), nil
}

func newPublisher(c client, topic string, timeout time.Duration, logger logrus.FieldLogger) *MQTTPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if topic == "" {
		topic = "fleet/notifications"
	}
	return &MQTTPublisher{client: c, topic: topic, timeout: timeout, log: logger, active: map[string]bool{}}
}

// Publish sends every item, then clears the alerts published earlier that are
// no longer in items. It returns the first failure, after trying all.
func (p *MQTTPublisher) Publish(ctx context.Context, items []models.NotificationItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	fail := func(err error, id, msg string) {
		p.log.WithError(err).WithField("notification", id).Warn(msg)
		if firstErr == nil {
			firstErr = err
		}
	}

	current := make(map[string]bool, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		current[item.ID] = true
		err := p.publishOne(item)
		status := "ok"
		if err != nil {
			status = "error"
			fail(err, item.ID, "Failed to publish notification")
		}
		metrics.NotificationsPublished.WithLabelValues(string(item.Type), status).Inc()
	}

	var stale []string
	for id := range p.active {
		if !current[id] {
			stale = append(stale, id)
		}
	}
	sort.Strings(stale)
	for _, id := range stale {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.send(id, []byte{}); err != nil {
			// Retry the clear on the next call.
			current[id] = true
			fail(err, id, "Failed to clear notification")
		}
	}
	p.active = current

	if firstErr == nil && len(items)+len(stale) > 0 {
		p.log.WithFields(logrus.Fields{
			"count":   len(items),
			"cleared": len(stale),
		}).Debug("Published notifications")
	}
	return firstErr
}

func (p *MQTTPublisher) publishOne(item models.NotificationItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return p.send(item.ID, payload)
}

// send publishes a retained message for id; an empty payload removes the
// retained message from the broker.
func (p *MQTTPublisher) send(id string, payload []byte) error {
	token := p.client.Publish(p.topic+"/"+id, 1, true, payload)
	if !token.WaitTimeout(p.timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// LogPublisher writes notifications to the log. It is used when no broker is
// configured.
type LogPublisher struct {
	Log logrus.FieldLogger
}

func (p LogPublisher) Publish(ctx context.Context, items []models.NotificationItem) error {
	logger := p.Log
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	for _, item := range items {
		logger.WithFields(logrus.Fields{
			"id":       item.ID,
			"type":     item.Type,
			"severity": item.Severity,
			"vehicle":  item.VehiclePlate,
		}).Info(item.Title)
		metrics.NotificationsPublished.WithLabelValues(string(item.Type), "logged").Inc()
	}
	return nil
}

// Package mqttclient publishes engine events to an MQTT broker so companion
// devices can react to completed work and settings changes.
package mqttclient

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/metrics"
)

// Event types.
const (
	EventProcessCompleted = "process.completed"
	EventProcessFailed    = "process.failed"
	EventSettingsUpdated  = "settings.updated"
)

// Event is the JSON envelope published for every event.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

type Client struct {
	conn      mqtt.Client
	prefix    string
	connected atomic.Bool
	log       zerolog.Logger
}

type Options struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
	Username    string
	Password    string
	Log         zerolog.Logger
}

func Connect(opts Options) (*Client, error) {
	c := &Client{
		prefix: strings.Trim(opts.TopicPrefix, "/"),
		log:    opts.Log,
	}

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOrderMatters(false).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}

	c.conn = mqtt.NewClient(clientOpts)
	token := c.conn.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) onConnect(_ mqtt.Client) {
	c.connected.Store(true)
	c.log.Info().Str("prefix", c.prefix).Msg("mqtt connected")
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.connected.Store(false)
	c.log.Warn().Err(err).Msg("mqtt connection lost, will auto-reconnect")
}

// Topic returns the topic an event type is published on.
func (c *Client) Topic(eventType string) string {
	if c.prefix == "" {
		return eventType
	}
	return c.prefix + "/" + eventType
}

// Publish sends an event at QoS 0 without waiting for delivery. Failures
// are logged, never returned.
func (c *Client) Publish(eventType string, payload any) {
	ev := Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		Time:    time.Now().UTC(),
		Payload: payload,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		c.log.Error().Err(err).Str("type", eventType).Msg("event encode failed")
		return
	}

	token := c.conn.Publish(c.Topic(eventType), 0, false, data)
	go func() {
		if !token.WaitTimeout(10 * time.Second) {
			c.log.Warn().Str("type", eventType).Msg("event publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			c.log.Warn().Err(err).Str("type", eventType).Msg("event publish failed")
			return
		}
		metrics.EventsPublishedTotal.WithLabelValues(eventType).Inc()
	}()
}

func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

func (c *Client) Close() {
	c.log.Info().Msg("disconnecting mqtt client")
	c.conn.Disconnect(1000)
}

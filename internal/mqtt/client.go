package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/temantani/smartfarm/internal/sensor"
)

const publishTimeout = 5 * time.Second

// Client handles the MQTT connection to the device fleet: telemetry in,
// actuator commands out. A nil Client is a no-op, so the service runs
// without a broker configured.
type Client struct {
	client        mqtt.Client
	latestSamples sync.Map // farmer ID -> sensor.Sample
}

// NewClient connects to the broker, retrying with exponential backoff.
func NewClient(broker, clientID, username, password string) (*Client, error) {
	c := &Client{}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	if username != "" {
		opts.SetUsername(username)
	}
	if password != "" {
		opts.SetPassword(password)
	}
	opts.SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(c.messageHandler)
	opts.OnConnect = c.connectHandler
	opts.OnConnectionLost = c.connectionLostHandler

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Printf("Failed to connect to MQTT broker: %v", token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithMaxRetries(bo, 4))
	if err != nil {
		return nil, fmt.Errorf("could not establish MQTT connection after retries: %w", err)
	}

	c.client = client
	return c, nil
}

// connectHandler is called upon a successful connection.
func (c *Client) connectHandler(client mqtt.Client) {
	log.Println("Connected to MQTT broker")
}

// connectionLostHandler is called when the connection is lost.
func (c *Client) connectionLostHandler(client mqtt.Client, err error) {
	log.Printf("Connection to MQTT broker lost: %v", err)
}

// messageHandler parses telemetry payloads and keeps the latest sample per
// farmer.
func (c *Client) messageHandler(client mqtt.Client, msg mqtt.Message) {
	topicParts := strings.Split(msg.Topic(), "/")
	if len(topicParts) < 2 {
		log.Printf("Ignoring message from unexpected topic: %s", msg.Topic())
		return
	}
	farmerID := topicParts[0]

	if !strings.HasSuffix(msg.Topic(), "/sensors/telemetry") {
		log.Printf("No handler for topic: %s", msg.Topic())
		return
	}

	var s sensor.Sample
	if err := json.Unmarshal(msg.Payload(), &s); err != nil {
		log.Printf("Bad telemetry payload on %s: %v", msg.Topic(), err)
		return
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	c.latestSamples.Store(farmerID, s)
}

// SubscribeTelemetry subscribes to the telemetry topic for a farmer device.
func (c *Client) SubscribeTelemetry(farmerID string) {
	if c == nil {
		return
	}
	topic := fmt.Sprintf("%s/sensors/telemetry", farmerID)
	if token := c.client.Subscribe(topic, 1, nil); token.Wait() && token.Error() != nil {
		log.Printf("Failed to subscribe to topic %s: %v", topic, token.Error())
		return
	}
	log.Printf("Subscribed to topic: %s", topic)
}

// LatestSample returns the newest telemetry sample received for a farmer.
func (c *Client) LatestSample(farmerID string) (sensor.Sample, bool) {
	if c == nil {
		return sensor.Sample{}, false
	}
	value, ok := c.latestSamples.Load(farmerID)
	if !ok {
		return sensor.Sample{}, false
	}
	return value.(sensor.Sample), true
}

// SetPump publishes a pump command for the farmer's device.
func (c *Client) SetPump(farmerID string, on bool) error {
	return c.publishSwitch(fmt.Sprintf("%s/pump/control/turn", farmerID), on)
}

// SetSprayer publishes a mist sprayer command for the farmer's device.
func (c *Client) SetSprayer(farmerID string, on bool) error {
	return c.publishSwitch(fmt.Sprintf("%s/sprayer/control/turn", farmerID), on)
}

func (c *Client) publishSwitch(topic string, on bool) error {
	if c == nil {
		return nil
	}
	payload := "off"
	if on {
		payload = "on"
	}
	token := c.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timeout publishing to topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("error publishing to topic %s: %w", topic, token.Error())
	}
	log.Printf("Published '%s' to topic '%s'", payload, topic)
	return nil
}

// Close disconnects the MQTT client.
func (c *Client) Close() {
	if c != nil && c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}

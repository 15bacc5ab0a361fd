package mqtt

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"time"

	"aerona2mqtt/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
	MQTT_PAYLOAD_ON      = "on"
	MQTT_PAYLOAD_OFF     = "off"
)

// Entity topics follow one scheme under the base topic:
// <base>/<platform>/<id>/state for published values and
// <base>/<platform>/<id>/set for inbound commands.
const (
	platformSensor       = "sensor"
	platformBinarySensor = "binary_sensor"
	platformSwitch       = "switch"
	platformNumber       = "number"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("aerona2mqtt_%d", rand.Intn(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	// the broker flips the bridge to offline when the session drops
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client:        mqtt.NewClient(opts),
		cfg:           cfg.MQTT,
		commandRegexp: commandTopicExtractor(cfg.MQTT.BaseTopic),
	}
}

type MQTTClient struct {
	client        mqtt.Client
	cfg           config.MQTTConfig
	commandRegexp *regexp.Regexp
}

// ParsedMQTTCommand is an inbound command decoded from a /set topic.
// Command carries the entity platform the command addresses.
type ParsedMQTTCommand struct {
	DeviceId string
	Command  string
	Payload  string
}

// ParseMQTTCommand decodes a message received on the command subtree.
// Number payloads must parse as a float, malformed commands are rejected
// here so the actors only ever see well formed ones.
func (c *MQTTClient) ParseMQTTCommand(msg mqtt.Message) (*ParsedMQTTCommand, error) {
	matches := c.commandRegexp.FindStringSubmatch(msg.Topic())
	if matches == nil {
		return nil, fmt.Errorf("not a command topic: %s", msg.Topic())
	}
	cmd := &ParsedMQTTCommand{
		Command:  matches[1],
		DeviceId: matches[2],
		Payload:  string(msg.Payload()),
	}
	if cmd.Command == platformNumber {
		if _, err := strconv.ParseFloat(cmd.Payload, 64); err != nil {
			return nil, fmt.Errorf("number command payload %q: %w", cmd.Payload, err)
		}
	}
	return cmd, nil
}

func (c *MQTTClient) stateTopic(platform, id string) string {
	return fmt.Sprintf("%s/%s/%s/state", c.cfg.BaseTopic, platform, id)
}

func (c *MQTTClient) commandTopic(platform, id string) string {
	return fmt.Sprintf("%s/%s/%s/set", c.cfg.BaseTopic, platform, id)
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.cfg.BaseTopic)
}

func (c *MQTTClient) SensorStateTopic(id string) string {
	return c.stateTopic(platformSensor, id)
}

func (c *MQTTClient) BinarySensorStateTopic(id string) string {
	return c.stateTopic(platformBinarySensor, id)
}

func (c *MQTTClient) SwitchStateTopic(id string) string {
	return c.stateTopic(platformSwitch, id)
}

func (c *MQTTClient) SwitchCommandTopic(id string) string {
	return c.commandTopic(platformSwitch, id)
}

func (c *MQTTClient) InputNumberStateTopic(id string) string {
	return c.stateTopic(platformNumber, id)
}

func (c *MQTTClient) InputNumberCommandTopic(id string) string {
	return c.commandTopic(platformNumber, id)
}

// awaitToken turns paho's token into the continuation style the actors
// drive. A timed-out wait reports an error instead of blocking the caller.
func awaitToken(token mqtt.Token, op string, continuation func(error), timeout time.Duration) {
	go func() {
		if !token.WaitTimeout(timeout) {
			continuation(fmt.Errorf("MQTT %s timed out", op))
			return
		}
		continuation(token.Error())
	}()
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	awaitToken(c.client.Connect(), "connect", continuation, timeout)
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	awaitToken(c.client.Publish(topic, qos, retain, payload), "publish", continuation, timeout)
}

// SubscribeToCommandTopic watches the whole base topic subtree. Anything
// that is not a command topic falls out during parsing.
func (c *MQTTClient) SubscribeToCommandTopic(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	topic := fmt.Sprintf("%s/#", c.cfg.BaseTopic)
	awaitToken(c.client.Subscribe(topic, 1, handler), "subscribe", continuation, timeout)
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

func commandTopicExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/(switch|number)/([a-zA-Z0-9_]+)/set$", regexp.QuoteMeta(baseTopic)))
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}

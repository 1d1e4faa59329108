package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"i4.energy/across/lorawangw/store"
)

// UplinkResult is published for every uplink request received over MQTT.
type UplinkResult struct {
	ID     string        `json:"id,omitempty"`
	Uplink *store.Uplink `json:"uplink,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Bridge accepts uplink requests on an MQTT topic and publishes their
// results on the topic with "/result" appended.
type Bridge struct {
	Logger  *slog.Logger
	Gateway *Gateway
	Topic   string

	client mqtt.Client
}

// ResultTopic is where results are published.
func (b *Bridge) ResultTopic() string {
	return b.Topic + "/result"
}

// handle runs one request payload through the gateway and encodes the
// result.
func (b *Bridge) handle(payload []byte) []byte {
	var req struct {
		UplinkRequest
		ID string `json:"id,omitempty"`
	}

	var res UplinkResult
	if err := json.Unmarshal(payload, &req); err != nil {
		res.Error = fmt.Sprintf("%v: %v", ErrBadRequest, err)
	} else {
		res.ID = req.ID
		u, err := b.Gateway.Uplink(req.UplinkRequest)
		res.Uplink = u
		if err != nil {
			res.Error = err.Error()
		}
	}

	out, _ := json.Marshal(res)
	return out
}

func (b *Bridge) onMessage(c mqtt.Client, m mqtt.Message) {
	// Uplinks hold the modem for seconds; keep the paho router free.
	go func() {
		out := b.handle(m.Payload())
		t := c.Publish(b.ResultTopic(), 1, false, out)
		if t.WaitTimeout(10*time.Second) && t.Error() != nil {
			b.Logger.Error("Failed to publish uplink result", "error", t.Error())
		}
	}()
}

// Start connects to broker and subscribes once connected. The client
// disconnects when ctx is done.
func (b *Bridge) Start(ctx context.Context, broker, clientID, username, password string) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		b.Logger.Warn("MQTT connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		b.Logger.Info("MQTT connected", "topic", b.Topic)
		if t := c.Subscribe(b.Topic, 1, b.onMessage); t.Wait() && t.Error() != nil {
			b.Logger.Error("MQTT subscribe failed", "topic", b.Topic, "error", t.Error())
		}
	})

	b.client = mqtt.NewClient(opts)
	if t := b.client.Connect(); t.Wait() && t.Error() != nil {
		return fmt.Errorf("mqtt connect %s: %w", broker, t.Error())
	}

	go func() {
		<-ctx.Done()
		b.client.Disconnect(500)
	}()
	return nil
}

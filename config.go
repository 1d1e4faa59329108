package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `toml:"bind-address"`
	// SerialPort is the path to the modem's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string `toml:"serial-port"`
	// BaudRate is the baud rate for serial communication with the modem (e.g. 115200)
	BaudRate int `toml:"baud-rate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `toml:"log-level"`
	// DBPath is the SQLite file holding the uplink history
	DBPath string `toml:"db-path"`
	// JoinMode is "otaa" or "abp"
	JoinMode string `toml:"join-mode"`
	// JoinOnStart joins the network right after the modem is opened
	JoinOnStart bool `toml:"join-on-start"`
	// Transcript streams the raw modem dialogue to event subscribers
	Transcript bool `toml:"transcript"`

	// MQTTBroker enables the MQTT bridge when set (e.g. "tcp://localhost:1883")
	MQTTBroker   string `toml:"mqtt-broker"`
	MQTTClientID string `toml:"mqtt-client-id"`
	// MQTTTopic receives uplink requests; results go to MQTTTopic + "/result"
	MQTTTopic    string `toml:"mqtt-topic"`
	MQTTUsername string `toml:"mqtt-username"`
	MQTTPassword string `toml:"mqtt-password"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.DBPath = "data/lorawangw.db"
		c.JoinMode = "otaa"
		c.MQTTClientID = "lorawangw-1"
		c.MQTTTopic = "lorawan/uplink"
		return nil
	}
}

// WithFile overlays the values set in a TOML file. An empty path is ignored.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse error in %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if path := os.Getenv("DB_PATH"); path != "" {
			c.DBPath = path
		}

		if mode := os.Getenv("JOIN_MODE"); mode != "" {
			c.JoinMode = mode
		}

		if join := os.Getenv("JOIN_ON_START"); join != "" {
			if b, err := strconv.ParseBool(join); err == nil {
				c.JoinOnStart = b
			}
		}

		if transcript := os.Getenv("TRANSCRIPT"); transcript != "" {
			if b, err := strconv.ParseBool(transcript); err == nil {
				c.Transcript = b
			}
		}

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			c.MQTTBroker = broker
		}
		if id := os.Getenv("MQTT_CLIENT_ID"); id != "" {
			c.MQTTClientID = id
		}
		if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
			c.MQTTTopic = topic
		}
		if user := os.Getenv("MQTT_USERNAME"); user != "" {
			c.MQTTUsername = user
		}
		if pass := os.Getenv("MQTT_PASSWORD"); pass != "" {
			c.MQTTPassword = pass
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "db-path":
				c.DBPath = f.Value.String()
			case "join-mode":
				c.JoinMode = f.Value.String()
			case "join-on-start":
				if b, err := strconv.ParseBool(f.Value.String()); err == nil {
					c.JoinOnStart = b
				}
			case "transcript":
				if b, err := strconv.ParseBool(f.Value.String()); err == nil {
					c.Transcript = b
				}
			case "mqtt-broker":
				c.MQTTBroker = f.Value.String()
			case "mqtt-topic":
				c.MQTTTopic = f.Value.String()
			}

		})
		return nil
	}

}

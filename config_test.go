package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c, err := LoadConfig(WithDefaults())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.BaudRate != 115200 || c.JoinMode != "otaa" || c.MQTTBroker != "" {
			t.Errorf("unexpected defaults: %+v", c)
		}
	})

	t.Run("File, env and flags override in order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lorawangw.toml")
		data := `
serial-port = "/dev/ttyACM0"
baud-rate = 9600
log-level = "debug"
join-mode = "abp"
mqtt-broker = "tcp://broker:1883"
`
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		t.Setenv("BAUD_RATE", "57600")
		t.Setenv("LOG_LEVEL", "warn")

		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.String("log-level", "info", "")
		fs.Bool("join-on-start", false, "")
		if err := fs.Parse([]string{"-log-level", "error", "-join-on-start"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		c, err := LoadConfig(WithDefaults(), WithFile(path), WithEnv(), WithFlags(fs))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.SerialPort != "/dev/ttyACM0" {
			t.Errorf("expected serial port from file, got: %q", c.SerialPort)
		}
		if c.JoinMode != "abp" || c.MQTTBroker != "tcp://broker:1883" {
			t.Errorf("expected file values, got: %+v", c)
		}
		if c.BaudRate != 57600 {
			t.Errorf("expected baud rate from env, got: %d", c.BaudRate)
		}
		if c.LogLevel != "error" {
			t.Errorf("expected log level from flags, got: %q", c.LogLevel)
		}
		if !c.JoinOnStart {
			t.Error("expected join-on-start from flags")
		}
		if c.BindAddress != "0.0.0.0:8080" {
			t.Errorf("expected default bind address, got: %q", c.BindAddress)
		}
	})

	t.Run("Missing file is an error", func(t *testing.T) {
		_, err := LoadConfig(WithDefaults(), WithFile(filepath.Join(t.TempDir(), "missing.toml")))
		if err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("Malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		os.WriteFile(path, []byte("baud-rate = \"fast\""), 0o644)
		if _, err := LoadConfig(WithFile(path)); err == nil {
			t.Error("expected a parse error")
		}
	})
}

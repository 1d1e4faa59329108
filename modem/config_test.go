package modem

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		_, err := NewConfigBuilder().Build()

		if err != ErrNoDialer {
			t.Errorf("expected ErrNoDialer, got: %v", err)
		}
	})

	t.Run("Defaults fill unset timeouts", func(t *testing.T) {
		c, err := NewConfigBuilder().
			WithDialer(SerialDialer{PortName: "/dev/null"}).
			WithTimeouts(Timeouts{JoinResult: 30 * time.Second}).
			Build()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.timeouts.JoinResult != 30*time.Second {
			t.Errorf("expected override to survive, got %v", c.timeouts.JoinResult)
		}
		if c.timeouts.Sync != 100*time.Millisecond {
			t.Errorf("expected 100ms sync timeout, got %v", c.timeouts.Sync)
		}
		if c.timeouts.TransmitResult != 10*time.Second {
			t.Errorf("expected 10s transmit result timeout, got %v", c.timeouts.TransmitResult)
		}
		if c.logger == nil || c.clock == nil {
			t.Error("expected default logger and clock")
		}
	})
	t.Run("ErrInvalidArgument for a negative timeout", func(t *testing.T) {
		_, err := NewConfigBuilder().
			WithDialer(SerialDialer{PortName: "/dev/null"}).
			WithTimeouts(Timeouts{Command: -time.Second}).
			Build()

		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got: %v", err)
		}
	})

	t.Run("New rejects a negative timeout before dialing", func(t *testing.T) {
		transport := NewTestTransport()
		config := Config{dialer: TestDialer{Transport: transport}, timeouts: Timeouts{Sync: -time.Millisecond}}

		_, err := New(context.Background(), config)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got: %v", err)
		}
		if got := transport.Written(); got != "" {
			t.Errorf("expected nothing written, got: %q", got)
		}
	})
}

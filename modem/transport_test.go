package modem

import (
	"context"
	"errors"
	"testing"

	"go.bug.st/serial"
	"go.uber.org/mock/gomock"
)

func TestSerialDialer_Dial_EmptyPortName(t *testing.T) {
	dialer := SerialDialer{
		PortName: "",
	}

	ctx := context.Background()
	transport, err := dialer.Dial(ctx)

	if err == nil {
		t.Error("expected error for empty port name")
	}
	if transport != nil {
		t.Error("expected nil transport for empty port name")
	}
	if err.Error() != "modem: serial port name is required" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestSerialDialer_Dial_NilContext(t *testing.T) {
	dialer := SerialDialer{
		PortName: "/dev/ttyUSB0",
	}

	transport, err := dialer.Dial(nil)

	if err == nil {
		t.Error("expected error for nil context")
	}
	if transport != nil {
		t.Error("expected nil transport for nil context")
	}
	if err.Error() != "modem: context is nil" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestSerialDialer_Dial_ContextCanceled(t *testing.T) {
	dialer := SerialDialer{
		PortName: "/dev/nonexistent", // Port that should fail to open
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	transport, err := dialer.Dial(ctx)

	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	if transport != nil {
		t.Error("expected nil transport for canceled context")
	}
}

func TestSerialDialer_Dial_WithMode(t *testing.T) {
	dialer := SerialDialer{
		PortName: "/dev/nonexistent", // This will fail, but we test the path
		Mode: &serial.Mode{
			BaudRate: 115200,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		},
	}

	ctx := context.Background()
	transport, err := dialer.Dial(ctx)

	// Since we're using a non-existent port, expect an error
	if err == nil {
		t.Error("expected error for non-existent port")
	}
	if transport != nil {
		t.Error("expected nil transport for non-existent port")
	}
	// Check that the error mentions the port name
	if err != nil && err.Error() == "" {
		t.Error("expected descriptive error message")
	}
}

func TestSerialDialer_Dial_DefaultMode(t *testing.T) {
	dialer := SerialDialer{
		PortName: "/dev/nonexistent", // This will fail, but we test the path
		// Mode is nil - should use defaults
	}

	ctx := context.Background()
	transport, err := dialer.Dial(ctx)

	// Since we're using a non-existent port, expect an error
	if err == nil {
		t.Error("expected error for non-existent port")
	}
	if transport != nil {
		t.Error("expected nil transport for non-existent port")
	}
}

func TestModemTransportErrors(t *testing.T) {
	t.Run("ResetInputBuffer error aborts initialization", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		transport := NewMockTransport(ctrl)
		dialer := NewMockDialer(ctrl)

		flushErr := errors.New("port gone")
		gomock.InOrder(
			dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil),
			transport.EXPECT().ResetInputBuffer().Return(flushErr),
			transport.EXPECT().Close().Return(nil),
		)

		config, err := NewConfigBuilder().WithDialer(dialer).Build()
		if err != nil {
			t.Fatalf("unexpected error from Build(): %v", err)
		}

		m, err := New(context.Background(), config)
		if !errors.Is(err, flushErr) {
			t.Errorf("expected the flush error, got: %v", err)
		}
		if m != nil {
			t.Error("expected nil modem")
		}
	})

	t.Run("Write error aborts initialization", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		transport := NewMockTransport(ctrl)
		dialer := NewMockDialer(ctrl)

		writeErr := errors.New("write timeout")
		gomock.InOrder(
			dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil),
			transport.EXPECT().ResetInputBuffer().Return(nil),
			transport.EXPECT().Write([]byte("\r")).Return(0, writeErr),
			transport.EXPECT().Close().Return(nil),
		)

		config, err := NewConfigBuilder().WithDialer(dialer).Build()
		if err != nil {
			t.Fatalf("unexpected error from Build(): %v", err)
		}

		_, err = New(context.Background(), config)
		if !errors.Is(err, writeErr) {
			t.Errorf("expected the write error, got: %v", err)
		}
	})

	t.Run("Dial receives the caller's context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dialer := NewMockDialer(ctrl)

		type ctxKey struct{}
		ctx := context.WithValue(context.Background(), ctxKey{}, "modem")
		dialErr := errors.New("busy")
		dialer.EXPECT().Dial(ctx).Return(nil, dialErr)

		config, err := NewConfigBuilder().WithDialer(dialer).Build()
		if err != nil {
			t.Fatalf("unexpected error from Build(): %v", err)
		}

		if _, err := New(ctx, config); err != dialErr {
			t.Errorf("expected the dial error, got: %v", err)
		}
	})
}

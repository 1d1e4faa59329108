package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -destination=mock_transport.go -package=modem . Transport,Dialer

// Transport represents an established, bidirectional byte stream to a
// TLM922S modem.
//
// Read must not block for longer than a short poll interval: when no byte
// has arrived it returns 0 and a nil error, which lets the Modem keep its
// cooperative wait loops running. ResetInputBuffer discards anything received
// but not yet read.
type Transport interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

// Dialer opens a Transport to a modem.
//
// Dialer abstracts how the modem connection is created (for example, via a
// serial port or a test double) and is intended to be used during modem
// construction only.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It
	// should respect cancellation of ctx. Dial returns an error if the
	// transport cannot be established.
	Dial(ctx context.Context) (Transport, error)
}

const (
	// DefaultBaudRate is the factory UART speed of the TLM922S.
	DefaultBaudRate = 115200
	// DefaultPollInterval bounds how long a single serial read may block.
	DefaultPollInterval = 5 * time.Millisecond
)

// SerialDialer opens a modem over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0".
	PortName string
	// BaudRate is used when Mode is nil. Zero selects DefaultBaudRate.
	BaudRate int
	// Mode overrides the whole line configuration when set.
	Mode *serial.Mode
	// PollInterval is the read timeout applied to the port. Zero selects
	// DefaultPollInterval.
	PollInterval time.Duration
}

// Dial implements Dialer.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("modem: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("modem: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud == 0 {
			baud = DefaultBaudRate
		}
		mode = &serial.Mode{
			BaudRate: baud,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("modem: open %s: %w", d.PortName, err)
	}

	interval := d.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if err := port.SetReadTimeout(interval); err != nil {
		port.Close()
		return nil, fmt.Errorf("modem: set read timeout on %s: %w", d.PortName, err)
	}
	return port, nil
}

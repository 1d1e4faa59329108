package modem

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	return c.timeouts.validate()
}

// Timeouts bounds each phase of the modem operations. Zero fields take the
// defaults listed below.
type Timeouts struct {
	Sync           time.Duration // ready check before every command, 100ms
	Drain          time.Duration // resynchronization after a non-ready outcome, 1s
	Command        time.Duration // plain commands and getters, 1s
	Reset          time.Duration // mod reset, 2s
	Wake           time.Duration // wake up from sleep, 1s
	SetDataRate    time.Duration // lorawan set_dr, 500ms
	Join           time.Duration // join request acknowledgement, 500ms
	JoinResult     time.Duration // join accept, 10s
	Transmit       time.Duration // uplink acknowledgement, 500ms
	TransmitResult time.Duration // uplink outcome and downlink, 10s
}

type timeoutField struct {
	name  string
	field *time.Duration
	value time.Duration
}

func (t *Timeouts) fields() []timeoutField {
	return []timeoutField{
		{"sync", &t.Sync, 100 * time.Millisecond},
		{"drain", &t.Drain, time.Second},
		{"command", &t.Command, time.Second},
		{"reset", &t.Reset, 2 * time.Second},
		{"wake", &t.Wake, time.Second},
		{"set data rate", &t.SetDataRate, 500 * time.Millisecond},
		{"join", &t.Join, 500 * time.Millisecond},
		{"join result", &t.JoinResult, 10 * time.Second},
		{"transmit", &t.Transmit, 500 * time.Millisecond},
		{"transmit result", &t.TransmitResult, 10 * time.Second},
	}
}

func (t *Timeouts) validate() error {
	for _, f := range t.fields() {
		if *f.field < 0 {
			return fmt.Errorf("%w: negative %s timeout %v", ErrInvalidArgument, f.name, *f.field)
		}
	}
	return nil
}

func (t *Timeouts) setDefaults() {
	for _, f := range t.fields() {
		if *f.field == 0 {
			*f.field = f.value
		}
	}
}

// Config holds the settings used by New. Build one with NewConfigBuilder.
type Config struct {
	dialer     Dialer
	echoOn     bool
	transcript io.Writer
	logger     *slog.Logger
	clock      Clock
	yield      func()
	timeouts   Timeouts
}

func (c *Config) setDefaults() {
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.clock == nil {
		c.clock = MonotonicClock
	}
	c.timeouts.setDefaults()
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder with default settings.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets how the transport is opened. Required.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

// WithEchoOn makes New leave the modem's command echo enabled.
func (b *ConfigBuilder) WithEchoOn(on bool) *ConfigBuilder {
	b.config.echoOn = on
	return b
}

// WithTranscript mirrors every byte the modem consumes to w, flushed once
// per operation.
func (b *ConfigBuilder) WithTranscript(w io.Writer) *ConfigBuilder {
	b.config.transcript = w
	return b
}

// WithLogger sets the logger for operation outcomes.
func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.logger = l
	return b
}

// WithClock replaces the monotonic clock used by the wait timer.
func (b *ConfigBuilder) WithClock(c Clock) *ConfigBuilder {
	b.config.clock = c
	return b
}

// WithYield sets the hook called periodically during long waits.
func (b *ConfigBuilder) WithYield(f func()) *ConfigBuilder {
	b.config.yield = f
	return b
}

// WithTimeouts overrides phase timeouts; zero fields keep their defaults and
// negative fields fail Build.
func (b *ConfigBuilder) WithTimeouts(t Timeouts) *ConfigBuilder {
	b.config.timeouts = t
	return b
}

// Build validates and returns the Config.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}

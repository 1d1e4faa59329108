package modem

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"i4.energy/across/lorawangw/command"
	"i4.energy/across/lorawangw/prompt"
)

// Modem drives a TLM922S LoRaWAN modem through its prompt based command line.
//
// Every operation runs on the caller's goroutine: it synchronizes with the
// ready prompt, writes the command, then polls the transport until one of the
// expected prompts arrives or the phase timeout expires. Results of the last
// operation stay available through the accessors until the next operation
// replaces them.
//
// A Modem is not safe for concurrent use; callers that share one must
// serialize access.
type Modem struct {
	// transport provides the physical connection to the modem
	transport Transport
	// closed indicates if the modem has been shut down
	closed bool
	logger *slog.Logger
	// timeouts bounds each phase of an operation
	timeouts Timeouts

	matcher prompt.Matcher
	timer   *Timer

	// pending holds bytes read from the transport but not consumed yet
	pending []byte
	rbuf    [64]byte
	// ioErr is the first read error; it ends all waits
	ioErr error
	out   []byte

	// transcript receives the bytes consumed by each operation
	transcript io.Writer
	echo       bool
	echoBuf    bytes.Buffer

	current  prompt.ID
	previous prompt.ID
	value    int64
	text     []byte
	rxData   []byte
	rxPort   uint8
	margin   int
	gateways int
}

// New opens the transport with the configured Dialer and prepares the modem:
// it checks that the modem answers with the ready prompt and sets its command
// echo as configured.
//
// Returns an error if the transport connection or modem initialization
// fails.
func New(ctx context.Context, config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	m := &Modem{
		transport:  transport,
		logger:     config.logger,
		timeouts:   config.timeouts,
		timer:      NewTimer(config.clock, config.yield),
		transcript: config.transcript,
		echo:       config.transcript != nil,
		value:      -1,
		margin:     -1,
		gateways:   -1,
	}

	if err := m.SetEcho(config.echoOn); err != nil {
		transport.Close()
		return nil, fmt.Errorf("initialize modem: %w", err)
	}

	return m, nil
}

// Close releases the transport. After calling Close, the modem cannot be
// reused.
func (m *Modem) Close() error {
	if m.closed {
		return ErrAlreadyClosed
	}
	m.closed = true

	if m.transport != nil {
		return m.transport.Close()
	}
	return nil
}

// SetEchoThrough turns the transcript on or off. It has no effect when no
// transcript writer was configured.
func (m *Modem) SetEchoThrough(on bool) {
	m.echo = on && m.transcript != nil
	m.echoBuf.Reset()
}

func (m *Modem) usable() error {
	if m.closed {
		return ErrAlreadyClosed
	}
	if m.transport == nil {
		return ErrNotInitialized
	}
	return nil
}

// available reports whether a byte can be consumed, reading the transport
// when nothing is buffered.
func (m *Modem) available() bool {
	if len(m.pending) > 0 {
		return true
	}
	if m.ioErr != nil {
		return false
	}
	n, err := m.transport.Read(m.rbuf[:])
	if n > 0 {
		m.pending = m.rbuf[:n]
	}
	if err != nil {
		m.ioErr = err
	}
	return n > 0
}

func (m *Modem) peek() byte {
	return m.pending[0]
}

func (m *Modem) read() byte {
	c := m.pending[0]
	m.pending = m.pending[1:]
	return c
}

// waiting advances the armed timer. It stops early once the transport has
// failed and nothing is left to consume.
func (m *Modem) waiting() bool {
	if m.ioErr != nil && len(m.pending) == 0 {
		return false
	}
	return m.timer.Poll()
}

func (m *Modem) pushEcho(c byte) {
	if m.echo {
		m.echoBuf.WriteByte(c)
	}
}

func (m *Modem) flushEcho() {
	if m.echo && m.echoBuf.Len() > 0 {
		if _, err := m.transcript.Write(m.echoBuf.Bytes()); err != nil {
			m.logger.Warn("transcript write failed", "error", err)
		}
	}
	m.echoBuf.Reset()
}

func (m *Modem) write(p []byte) error {
	if _, err := m.transport.Write(p); err != nil {
		return fmt.Errorf("write %q: %w", p, err)
	}
	return nil
}

// flushInput drops unread input and restarts prompt matching.
func (m *Modem) flushInput() error {
	m.pending = nil
	m.matcher.Classify(prompt.Reset)
	return m.transport.ResetInputBuffer()
}

// nextPrompt consumes bytes until a prompt is recognized. A positive timeout
// arms a new wait; zero continues the current one. It returns prompt.None on
// timeout.
func (m *Modem) nextPrompt(timeout time.Duration) prompt.ID {
	if timeout > 0 {
		m.timer.Arm(timeout)
	}
	for m.waiting() {
		if !m.available() {
			continue
		}
		c := m.read()
		m.pushEcho(c)
		if r := m.matcher.Classify(c); r != prompt.None {
			m.previous, m.current = m.current, r
			return r
		}
	}
	return prompt.None
}

// skipPrompt waits, within one timeout, for a prompt accepted by stop.
func (m *Modem) skipPrompt(timeout time.Duration, stop func(prompt.ID) bool) prompt.ID {
	r := m.nextPrompt(timeout)
	for r != prompt.None && !stop(r) {
		r = m.nextPrompt(0)
	}
	return r
}

// untilReady hands every prompt before the ready prompt to handle. handle may
// consume payload bytes; it shares the same timeout.
func (m *Modem) untilReady(timeout time.Duration, handle func(prompt.ID)) prompt.ID {
	r := m.nextPrompt(timeout)
	for r != prompt.None && r != prompt.Ready {
		handle(r)
		r = m.nextPrompt(0)
	}
	return r
}

func isReady(r prompt.ID) bool {
	return r == prompt.Ready
}

// terminal accepts any of the given prompts, the ready prompt, and explicit
// failure tokens.
func terminal(want ...prompt.ID) func(prompt.ID) bool {
	return func(r prompt.ID) bool {
		if r == prompt.Ready || r.Failure() {
			return true
		}
		for _, w := range want {
			if r == w {
				return true
			}
		}
		return false
	}
}

// drain consumes input until the ready prompt so the next command starts in
// sync. It has its own timeout.
func (m *Modem) drain() {
	m.skipPrompt(m.timeouts.Drain, isReady)
}

// ready flushes input, sends a bare line terminator and waits for the ready
// prompt.
func (m *Modem) ready() error {
	if err := m.usable(); err != nil {
		return err
	}
	if err := m.flushInput(); err != nil {
		return fmt.Errorf("flush input: %w", err)
	}
	if err := m.write([]byte{command.Terminator}); err != nil {
		return err
	}
	r := m.nextPrompt(m.timeouts.Sync)
	m.flushEcho()
	if r != prompt.Ready {
		if m.ioErr != nil {
			return fmt.Errorf("%w: read: %w", ErrNotReady, m.ioErr)
		}
		m.logger.Debug("modem not ready", "prompt", r)
		return ErrNotReady
	}
	return nil
}

// send writes the text of id. Commands that take arguments get them joined
// by spaces, followed by the line terminator.
func (m *Modem) send(id command.ID, args ...string) error {
	m.out = command.AppendDecode(m.out[:0], id)
	if len(m.out) == 0 {
		return fmt.Errorf("%w: %d", ErrUnknownCommand, id)
	}
	if command.Parameterized(id) {
		m.out = append(m.out, strings.Join(args, " ")...)
		m.out = append(m.out, command.Terminator)
	}
	return m.write(m.out)
}

// run performs the generic sequence: sync, send, wait for success or ready,
// drain when the outcome was not the ready prompt.
func (m *Modem) run(id command.ID, success prompt.ID, timeout time.Duration, args ...string) error {
	if err := m.ready(); err != nil {
		return err
	}
	if err := m.send(id, args...); err != nil {
		return err
	}
	return m.expect(opName(id), success, timeout)
}

func (m *Modem) expect(op string, success prompt.ID, timeout time.Duration) error {
	r := m.skipPrompt(timeout, terminal(success))
	if r != prompt.Ready {
		m.drain()
	}
	m.flushEcho()
	return m.result(op, r, r == success)
}

// result turns the terminal prompt of an operation into an error and logs the
// outcome.
func (m *Modem) result(op string, r prompt.ID, ok bool) error {
	var err error
	switch {
	case ok:
	case m.ioErr != nil:
		err = fmt.Errorf("%s: read: %w", op, m.ioErr)
	case r == prompt.None:
		err = fmt.Errorf("%s: %w", op, ErrTimeout)
	case r == prompt.Ready:
		err = fmt.Errorf("%s: %w (%s)", op, ErrRejected, m.previous)
	default:
		err = fmt.Errorf("%s: %w (%s)", op, ErrRejected, r)
	}
	m.logger.Debug("modem operation", "op", op, "prompt", m.current, "previous", m.previous, "error", err)
	return err
}

func opName(id command.ID) string {
	return strings.TrimSpace(command.Text(id))
}

// parseDecimal reads an unsigned decimal number. A trailing space is consumed;
// any other non-digit ends the number and is left for the matcher.
func (m *Modem) parseDecimal() uint32 {
	var v uint32
	for m.waiting() {
		if !m.available() {
			continue
		}
		c := m.peek()
		switch {
		case c >= '0' && c <= '9':
			v = v*10 + uint32(c-'0')
			m.pushEcho(m.read())
		case c == ' ':
			m.pushEcho(m.read())
			return v
		default:
			return v
		}
	}
	return v
}

// parseHexData appends hex digit pairs to the received payload until the
// first non-hex byte, which is left unread. An unpaired final digit is
// dropped.
func (m *Modem) parseHexData() {
	var (
		digits int
		high   byte
	)
	for m.waiting() {
		if !m.available() {
			continue
		}
		d, ok := hexValue(m.peek())
		if !ok {
			break
		}
		m.read()
		digits++
		if digits%2 == 1 {
			high = d << 4
		} else {
			m.rxData = append(m.rxData, high|d)
		}
	}
	if m.echo {
		fmt.Fprintf(&m.echoBuf, "*%d*", len(m.rxData))
	}
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// parseValue collects the response of a getter. In text mode the line after
// the prefix prompt is kept as text; otherwise a decimal value is parsed.
// It reports whether the ready prompt ended the response. A failure token
// discards anything parsed so far and leaves the value at -1.
func (m *Modem) parseValue(text bool, timeout time.Duration) bool {
	m.value = -1
	m.text = m.text[:0]
	collecting, rejected := false, false

	m.timer.Arm(timeout)
	for m.waiting() {
		if !m.available() {
			continue
		}
		c := m.read()
		r := m.matcher.Classify(c)
		m.pushEcho(c)
		if collecting {
			if c < ' ' {
				collecting = false
			} else {
				m.text = append(m.text, c)
			}
		}
		if r == prompt.None {
			continue
		}
		m.previous, m.current = m.current, r
		switch {
		case r == prompt.Ready:
			m.flushEcho()
			return true
		case r.Failure():
			rejected, collecting = true, false
			m.value = -1
			m.text = m.text[:0]
		case r == prompt.Prefix && !rejected:
			if text {
				collecting = true
			} else {
				m.value = int64(m.parseDecimal())
			}
		}
	}
	m.flushEcho()
	return false
}

func (m *Modem) getText(id command.ID) (string, error) {
	if err := m.ready(); err != nil {
		return "", err
	}
	if err := m.send(id); err != nil {
		return "", err
	}
	r := prompt.None
	if m.parseValue(true, m.timeouts.Command) {
		r = prompt.Ready
	}
	ok := r == prompt.Ready && m.previous == prompt.Prefix
	if !ok {
		m.text = m.text[:0]
	}
	if err := m.result(opName(id), r, ok); err != nil {
		return "", err
	}
	return string(m.text), nil
}

func (m *Modem) getValue(id command.ID) (uint32, error) {
	if err := m.ready(); err != nil {
		return 0, err
	}
	if err := m.send(id); err != nil {
		return 0, err
	}
	r := prompt.None
	if m.parseValue(false, m.timeouts.Command) {
		r = prompt.Ready
	}
	if err := m.result(opName(id), r, m.value >= 0); err != nil {
		return 0, err
	}
	return uint32(m.value), nil
}

package modem

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// TestTransport is an in-memory Transport that plays a scripted modem.
// Replies registered with Reply are queued for reading once the bytes
// written so far end with their trigger, in registration order. Reads
// never block: they return 0 bytes when nothing is queued, like a serial
// port whose read timeout expired.
type TestTransport struct {
	mu      sync.Mutex
	rx      []byte
	written bytes.Buffer
	replies []reply
	closed  bool
}

type reply struct {
	trigger  string
	response string
}

// NewTestTransport creates an empty test transport.
func NewTestTransport() *TestTransport {
	return &TestTransport{}
}

// Feed queues data to be read as if the modem had sent it.
func (t *TestTransport) Feed(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rx = append(t.rx, data...)
}

// Reply queues response to be fed once the written data ends with trigger.
func (t *TestTransport) Reply(trigger, response string) *TestTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies = append(t.replies, reply{trigger: trigger, response: response})
	return t
}

// Prompt answers the next ready check with the ready prompt.
func (t *TestTransport) Prompt() *TestTransport {
	return t.Reply("\r", "\r\n> ")
}

// Written returns everything written to the transport so far.
func (t *TestTransport) Written() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.written.String()
}

// Pending reports how many scripted replies have not fired yet.
func (t *TestTransport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.replies)
}

func (t *TestTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	t.written.Write(p)
	if len(t.replies) > 0 && bytes.HasSuffix(t.written.Bytes(), []byte(t.replies[0].trigger)) {
		t.rx = append(t.rx, t.replies[0].response...)
		t.replies = t.replies[1:]
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.EOF
	}
	n := copy(p, t.rx)
	t.rx = t.rx[n:]
	return n, nil
}

func (t *TestTransport) ResetInputBuffer() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rx = t.rx[:0]
	return nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// TestDialer hands out a fixed Transport.
type TestDialer struct {
	Transport Transport
}

func (d TestDialer) Dial(context.Context) (Transport, error) {
	return d.Transport, nil
}

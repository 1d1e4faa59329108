package main

import (
	"encoding/json"
	"sync"
	"time"

	"i4.energy/across/lorawangw/prompt"
)

// Event is one message on the event stream.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// EventListener fans events out to subscribers.
type EventListener struct {
	pool map[chan string]struct{}
	sync.RWMutex
}

func NewEventListener() *EventListener {
	return &EventListener{pool: make(map[chan string]struct{})}
}

// Broadcast sends msg to every subscriber without blocking. Subscribers whose
// channel is full miss the message.
func (el *EventListener) Broadcast(msg string) {
	el.RLock()
	defer el.RUnlock()

	for ch := range el.pool {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Publish encodes an event of the given type and broadcasts it.
func (el *EventListener) Publish(typ string, data any) {
	b, err := json.Marshal(Event{Type: typ, Time: time.Now().UTC(), Data: data})
	if err != nil {
		return
	}
	el.Broadcast(string(b))
}

// Subscribe returns a channel receiving broadcasts and the function that
// cancels the subscription.
func (el *EventListener) Subscribe(buffer int) (chan string, func()) {
	if buffer <= 0 {
		buffer = 100
	}
	ch := make(chan string, buffer)

	el.Lock()
	el.pool[ch] = struct{}{}
	el.Unlock()

	return ch, func() {
		el.Lock()
		defer el.Unlock()
		if _, ok := el.pool[ch]; ok {
			delete(el.pool, ch)
			close(ch)
		}
	}
}

// TranscriptLine is a piece of modem output ending at a prompt.
type TranscriptLine struct {
	Text   string `json:"text"`
	Prompt string `json:"prompt,omitempty"`
}

// transcriptWriter cuts the modem transcript at prompt boundaries and
// publishes each piece as a "transcript" event. Text after the last prompt
// is held until more arrives.
type transcriptWriter struct {
	mu     sync.Mutex
	events *EventListener
	buf    []byte
}

func (w *transcriptWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		advance, token, _ := prompt.Splitter(w.buf, false)
		if advance == 0 {
			break
		}
		w.events.Publish("transcript", TranscriptLine{
			Text:   string(token),
			Prompt: prompt.Last(token).String(),
		})
		w.buf = w.buf[advance:]
	}
	return len(p), nil
}

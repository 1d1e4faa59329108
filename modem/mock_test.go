package modem_test

import (
	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/lorawangw/modem"
)

// MockSequenceBuilder records the transport calls of one modem conversation.
// Each response must fit in a single read.
type MockSequenceBuilder struct {
	transport *modem.MockTransport
	calls     []any
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

func (b *MockSequenceBuilder) respond(resp string) *gomock.Call {
	return b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return copy(p, resp), nil
	})
}

// Ready expects the ready check and answers it with the ready prompt.
func (b *MockSequenceBuilder) Ready() *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().ResetInputBuffer().Return(nil),
		b.transport.EXPECT().Write([]byte("\r")).Return(1, nil),
		b.respond("\r\n> "),
	)
	return b
}

// Command expects cmd to be written and answers with resp.
func (b *MockSequenceBuilder) Command(cmd, resp string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(cmd)).Return(len(cmd), nil),
		b.respond(resp),
	)
	return b
}

func (b *MockSequenceBuilder) EchoOff() *MockSequenceBuilder {
	return b.Ready().Command("mod set_echo off\r", "\r\nOk\r\n> ")
}

func (b *MockSequenceBuilder) EchoOn() *MockSequenceBuilder {
	return b.Ready().Command("mod set_echo on\r", "\r\nOk\r\n> ")
}

func (b *MockSequenceBuilder) Version(v string) *MockSequenceBuilder {
	return b.Ready().Command("mod get_ver\r", "\r\n>> "+v+"\r\n\r\n> ")
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}

// initMockCalls is the conversation New has with a responsive modem.
func initMockCalls(transport *modem.MockTransport) []any {
	return NewMockSequence(transport).EchoOff().Build()
}

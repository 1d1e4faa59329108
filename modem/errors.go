package modem

import "errors"

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has no transport.
	//
	// This can occur if the Dialer returned a nil Transport or if the Modem
	// was not created via New.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when an operation or Close is called on a
	// Modem that has already been closed.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrNotReady is returned when the modem did not answer a line terminator
	// with the ready prompt. The command was not sent.
	ErrNotReady = errors.New("modem not ready")

	// ErrTimeout is returned when no terminal prompt arrived in time. The last
	// prompt seen stays available through Modem.Prompt.
	ErrTimeout = errors.New("response timeout")

	// ErrRejected is returned when the modem returned to the ready prompt, or
	// printed an explicit failure token, without the expected success token.
	ErrRejected = errors.New("command rejected")

	// ErrInvalidArgument is returned when an operation argument is outside the
	// range the module accepts. Nothing is sent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownCommand is returned when a command does not decode to any text.
	ErrUnknownCommand = errors.New("unknown command")
)

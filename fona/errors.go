package fona

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDialer is returned when a Device is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the module.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a
	// Device that has not been successfully initialized.
	ErrNotInitialized = errors.New("device not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Device that has
	// already been closed.
	ErrAlreadyClosed = errors.New("device already closed")

	// ErrClosed is returned when a command is attempted on a closed Device,
	// or when a wait is cut short because the transport went away.
	ErrClosed = errors.New("device closed")

	// ErrTimeout is returned when no qualifying reply arrived within the
	// wait bound. Callers may retry; the device state is unchanged apart
	// from possibly holding a late reply, which the next command discards.
	ErrTimeout = errors.New("reply timeout")

	// ErrBadReply is returned when a reply was received but could not be
	// parsed into the expected structured shape (wrong field count, bad
	// date/time format).
	ErrBadReply = errors.New("malformed reply")
)

// ExpectError reports a reply line that did not match what the command
// expected. It carries the command, the expected text, and the actual
// line for diagnostics.
type ExpectError struct {
	Cmd  string
	Want string
	Got  string
}

func (e *ExpectError) Error() string {
	return fmt.Sprintf("command %q expected %q, got %q", e.Cmd, e.Want, e.Got)
}

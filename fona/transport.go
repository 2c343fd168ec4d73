package fona

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_gen.go -package=fona

// Transport represents an established, bidirectional byte stream to the
// cellular module.
//
// A Transport is assumed to be already connected and ready for use. It
// provides the low-level I/O primitives required to send AT commands and
// receive responses. Typical implementations include serial ports, TCP
// connections to emulators, or in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser

	// ResetInputBuffer discards bytes that were received but not yet read.
	// The driver calls it before issuing a command to eliminate stale
	// input left over from a prior timed-out exchange or a power cycle.
	ResetInputBuffer() error
}

// Dialer opens a Transport to the cellular module.
//
// Dialer abstracts how the connection is created (for example, via a
// serial port, TCP-based emulator, or test double) and is intended to be
// used during device construction only. Once a Transport is obtained, the
// Dialer is no longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport.
	// It may perform blocking operations and should respect cancellation
	// and deadlines provided by the context. Dial returns an error if the
	// transport cannot be established.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens the module over a local serial port using
// go.bug.st/serial. The module expects 8 data bits, 1 stop bit, no
// parity; the baud rate is fixed by the caller and the module's autobaud
// detection adapts to it during the reset sequence.
type SerialDialer struct {
	// PortName is the path to the serial device (e.g. "/dev/ttyUSB0").
	PortName string
	// Mode optionally overrides the serial parameters. When nil, 115200
	// baud 8N1 is used.
	Mode *serial.Mode
}

// Dial opens the configured serial port.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("fona: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("fona: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: 115200,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}
	return port, nil
}

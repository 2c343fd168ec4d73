package fona

import "time"

// ResetPin drives the module's hardware reset line. Implementations own
// the electrical level semantics (active-low on the FONA boards); the
// driver only asserts the line, holds it, and deasserts it.
type ResetPin interface {
	Assert()
	Deassert()
}

// RingPin is the hardware ring-indicator line. When one is configured the
// driver takes ring events from hardware edge detection and the RING
// string on the wire is left to the normal reply path.
type RingPin interface {
	// Events delivers one timestamp per detected edge. The channel is
	// owned by the implementation; closing it stops the driver's
	// forwarding loop.
	Events() <-chan time.Time
}

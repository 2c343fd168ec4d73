package fona

import (
	"context"
	"fmt"
	"time"

	"github.com/martincalsyn/fona-go/at"
)

// resetState tracks progress through the power-up sequence.
type resetState int

const (
	stateCold resetState = iota
	stateAutobauding
	stateEchoDisabling
	stateReady
)

const (
	// resetHold is how long the reset line stays asserted.
	resetHold = 100 * time.Millisecond
	// settleDelay separates command attempts while the module trains its
	// autobaud detection.
	settleDelay = 100 * time.Millisecond
	// autobaudAttempts bounds the bare-AT training phase.
	autobaudAttempts = 3
)

// Reset drives the module from power-up to a known state: the hardware
// reset line is pulsed, stale input is discarded, the module's autobaud
// detection is trained with bare AT commands, and command echo is
// disabled.
//
// The autobaud phase swallows per-attempt failures; the module sometimes
// achieves baud lock only on the first real command, so exhausting all
// attempts is not fatal. Echo disabling is sent twice: the first attempt
// may be consumed as the autobaud training character and its outcome is
// ignored, only the second attempt's failure propagates.
func (d *Device) Reset(ctx context.Context) error {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	if d.closed {
		return ErrClosed
	}

	state := stateCold
	for {
		switch state {
		case stateCold:
			if err := d.pulseReset(ctx); err != nil {
				return err
			}
			d.discard()
			state = stateAutobauding

		case stateAutobauding:
			if err := d.autobaud(ctx); err != nil {
				return err
			}
			state = stateEchoDisabling

		case stateEchoDisabling:
			if err := d.disableEcho(ctx); err != nil {
				return err
			}
			state = stateReady

		case stateReady:
			d.logger.Info("module reset complete")
			return nil
		}
	}
}

// pulseReset asserts and deasserts the external reset line, when wired.
func (d *Device) pulseReset(ctx context.Context) error {
	if d.resetPin == nil {
		return nil
	}
	d.resetPin.Assert()
	if err := sleep(ctx, resetHold); err != nil {
		d.resetPin.Deassert()
		return err
	}
	d.resetPin.Deassert()
	return nil
}

// autobaud sends the bare attention command up to autobaudAttempts times,
// a settle delay apart. Timeout and expectation failures are swallowed;
// context cancellation is not.
func (d *Device) autobaud(ctx context.Context) error {
	for i := 0; i < autobaudAttempts; i++ {
		err := d.sendExpectLocked(ctx, at.CmdAt, at.OK, at.CmdAt)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		d.logger.Debug("autobaud attempt failed", "attempt", i+1, "error", err)
		if err := sleep(ctx, settleDelay); err != nil {
			return err
		}
	}
	return nil
}

// disableEcho turns command echo off. The first attempt is a throwaway
// whose outcome is ignored; the second must succeed.
func (d *Device) disableEcho(ctx context.Context) error {
	if err := d.sendExpectLocked(ctx, at.CmdEchoOff, at.OK, at.CmdEchoOff); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		d.logger.Debug("first echo-off attempt failed", "error", err)
	}
	if err := sleep(ctx, settleDelay); err != nil {
		return err
	}
	if err := d.sendExpectLocked(ctx, at.CmdEchoOff, at.OK, at.CmdEchoOff); err != nil {
		return fmt.Errorf("disable echo: %w", err)
	}
	return nil
}

// sleep waits for the given duration unless the context ends first.
func sleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ping checks that the module is responsive by issuing a bare attention
// command.
func (d *Device) Ping(ctx context.Context) error {
	return d.sendExpect(ctx, at.CmdAt, at.OK, at.CmdAt)
}

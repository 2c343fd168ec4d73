// Package fona implements a driver for FONA-class cellular modules (SIM800
// and friends) controlled over an asynchronous serial line with AT
// commands.
//
// The driver's core is a command/response correlation engine: a dedicated
// read loop frames the byte stream into lines and classifies each one as
// an unsolicited ring notification or a command reply; replies are handed
// to blocking command calls through an ordered queue. A single mutex
// serializes command issuance across the whole device, because replies
// carry no tag linking them to a command - correctness depends on there
// being at most one command in flight.
package fona

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/martincalsyn/fona-go/at"
)

// Device represents a FONA-class cellular module reached through a
// Transport. All exported methods are safe for concurrent use; commands
// from concurrent callers are executed one at a time.
type Device struct {
	// transport provides the physical connection to the module
	transport Transport
	// resetPin drives the module's hardware reset line, if wired
	resetPin ResetPin
	// ringPin is the hardware ring-indicator line, if wired
	ringPin RingPin
	logger  *slog.Logger
	// atTimeout bounds each command exchange when the caller's context
	// carries no deadline
	atTimeout time.Duration

	// cmdMu serializes all command-issuing entry points. Only one command
	// may be outstanding at a time across the whole device.
	cmdMu  sync.Mutex
	closed bool

	// replies is fed by the read loop and drained by the command engine.
	replies *replyQueue
	// ringCh receives one timestamped event per incoming-call indication.
	ringCh chan time.Time

	// stop ends the pin-forwarding loop; readDone is closed when the read
	// loop exits.
	stop     chan struct{}
	readDone chan struct{}
}

// New creates a new Device with the given configuration. It establishes
// the transport connection and starts the receive loop that frames and
// classifies incoming bytes. The module itself is untouched; callers
// normally follow up with Reset to bring it to a known state.
func New(ctx context.Context, config Config) (*Device, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	d := &Device{
		transport: transport,
		resetPin:  config.ResetPin,
		ringPin:   config.RingPin,
		logger:    config.Logger,
		atTimeout: config.ATTimeout,
		replies:   newReplyQueue(),
		ringCh:    make(chan time.Time, 8),
		stop:      make(chan struct{}),
		readDone:  make(chan struct{}),
	}

	go d.readLoop()
	if d.ringPin != nil {
		go d.ringLoop()
	}

	return d, nil
}

// Ring returns a read-only channel that receives one timestamp per
// incoming-call indication. Events come from the hardware ring-indicator
// pin when one is configured, and from unsolicited RING lines otherwise.
// The channel is buffered; events are dropped if not consumed fast enough.
func (d *Device) Ring() <-chan time.Time {
	return d.ringCh
}

// Close shuts down the device and releases the transport. After Close the
// device cannot be reused.
func (d *Device) Close() error {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	if d.closed {
		return ErrAlreadyClosed
	}
	d.closed = true

	close(d.stop)
	// Closing the transport unblocks the read loop's pending Read.
	err := d.transport.Close()
	<-d.readDone
	return err
}

// readLoop is the only goroutine that reads from the transport. It frames
// the byte stream into lines, routes ring notifications to the ring
// channel, and queues everything else for the command engine. Lines that
// are not valid UTF-8 degrade to empty and are dropped.
func (d *Device) readLoop() {
	defer close(d.readDone)
	defer d.replies.close()

	scanner := bufio.NewScanner(d.transport)
	scanner.Split(at.Splitter)

	for scanner.Scan() {
		line := scanner.Text()
		if !utf8.ValidString(line) {
			line = ""
		}

		switch at.Classify(line) {
		case at.TypeEmpty:
			// Blank separator between echo and reply. Never queued, never
			// wakes a waiter.

		case at.TypeRing:
			if d.ringPin != nil {
				// Hardware edge detection owns ring events; the RING
				// string goes through the normal reply path.
				d.replies.push(line)
				continue
			}
			d.dispatchRing(time.Now())

		case at.TypeReply:
			d.logger.Debug("recv", "line", line)
			d.replies.push(line)
		}
	}

	if err := scanner.Err(); err != nil {
		d.logger.Error("transport read failed", "error", err)
	}
}

// ringLoop forwards hardware ring-indicator edges to the ring channel.
func (d *Device) ringLoop() {
	for {
		select {
		case <-d.stop:
			return
		case ts, ok := <-d.ringPin.Events():
			if !ok {
				return
			}
			d.dispatchRing(ts)
		}
	}
}

func (d *Device) dispatchRing(ts time.Time) {
	select {
	case d.ringCh <- ts:
	default:
		d.logger.Debug("ring event dropped, channel full")
	}
}

// discard drops unread transport input and any queued reply lines. Called
// before every command write to guard against replies left over from a
// prior timed-out call.
func (d *Device) discard() {
	if err := d.transport.ResetInputBuffer(); err != nil {
		d.logger.Debug("reset input buffer", "error", err)
	}
	d.replies.drain()
}

// write sends one command line to the module.
func (d *Device) write(cmd string) error {
	d.logger.Debug("send", "command", cmd)
	if _, err := d.transport.Write([]byte(cmd + at.CRLF)); err != nil {
		return fmt.Errorf("write command %q: %w", cmd, err)
	}
	return nil
}

// deadlineFor derives the wait bound for one command exchange: the
// context's deadline when it has one, the device's default AT timeout
// otherwise.
func (d *Device) deadlineFor(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(d.atTimeout)
}

// remaining clamps the time left until deadline to a poll (zero) so an
// expired deadline can never turn into an unbounded wait.
func remaining(deadline time.Time) time.Duration {
	if left := time.Until(deadline); left > 0 {
		return left
	}
	return 0
}

// sendExpect writes cmd and drains replies until a line case-insensitively
// equal to want arrives. Lines matching one of the accept tokens (commonly
// the echoed command itself) are skipped silently. Any other line fails
// with an ExpectError carrying the expected and actual text; expiry of the
// wait bound fails with ErrTimeout.
func (d *Device) sendExpect(ctx context.Context, cmd, want string, accept ...string) error {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()
	return d.sendExpectLocked(ctx, cmd, want, accept...)
}

// sendExpectLocked is sendExpect for callers already holding cmdMu, such
// as the reset sequencer.
func (d *Device) sendExpectLocked(ctx context.Context, cmd, want string, accept ...string) error {
	if d.closed {
		return ErrClosed
	}

	d.discard()
	if err := d.write(cmd); err != nil {
		return err
	}

	deadline := d.deadlineFor(ctx)
	for {
		line, err := d.replies.wait(remaining(deadline))
		if err != nil {
			return fmt.Errorf("command %q: %w", cmd, err)
		}
		if acceptable(line, accept) {
			continue
		}
		if strings.EqualFold(line, want) {
			return nil
		}
		return &ExpectError{Cmd: cmd, Want: want, Got: line}
	}
}

// sendReadReply writes cmd and returns the first reply line, when the
// reply text itself is the payload of interest rather than a fixed token.
// If prefix is non-empty the line must start with it exactly and the
// prefix is stripped. If quoted is set, one wrapping pair of double quotes
// is stripped after trimming whitespace; unquoted input passes through
// unchanged.
func (d *Device) sendReadReply(ctx context.Context, cmd, prefix string, quoted bool) (string, error) {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	if d.closed {
		return "", ErrClosed
	}

	d.discard()
	if err := d.write(cmd); err != nil {
		return "", err
	}

	// Empty lines never reach the queue, so the first line is the payload.
	line, err := d.replies.wait(remaining(d.deadlineFor(ctx)))
	if err != nil {
		return "", fmt.Errorf("command %q: %w", cmd, err)
	}

	if prefix != "" {
		if !strings.HasPrefix(line, prefix) {
			return "", &ExpectError{Cmd: cmd, Want: prefix, Got: line}
		}
		line = line[len(prefix):]
	}
	if quoted {
		line = unquote(line)
	}
	return line, nil
}

// sendReadFields is the tokenizing variant of sendReadReply for structured
// replies: the unwrapped line is split on sep.
func (d *Device) sendReadFields(ctx context.Context, cmd, prefix string, quoted bool, sep string) ([]string, error) {
	line, err := d.sendReadReply(ctx, cmd, prefix, quoted)
	if err != nil {
		return nil, err
	}
	return strings.Split(line, sep), nil
}

func acceptable(line string, accept []string) bool {
	for _, a := range accept {
		if strings.EqualFold(line, a) {
			return true
		}
	}
	return false
}

// unquote trims whitespace and strips one leading and one trailing double
// quote if present. Applying it to an already-unquoted string is a no-op.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

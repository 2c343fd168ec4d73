package fona

import (
	"sync"
	"time"
)

// replyQueue hands framed reply lines from the read loop to the command
// engine. The read loop is the only producer and the command engine, which
// is serialized by the device's command mutex, is the only consumer, so
// there is never more than one waiter.
//
// The internal lock is held only for the brief enqueue/dequeue operations,
// never across a blocking wait, so the read loop can never be stalled by a
// slow consumer.
type replyQueue struct {
	mu    sync.Mutex
	lines []string

	// wake carries a signal whenever the queue goes non-empty. Capacity 1:
	// coalescing signals is fine because the waiter always rechecks the
	// queue after waking.
	wake chan struct{}

	// done is closed when the transport is gone; waits fail immediately.
	done     chan struct{}
	doneOnce sync.Once
}

func newReplyQueue() *replyQueue {
	return &replyQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// push appends a line and signals any waiter.
func (q *replyQueue) push(line string) {
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pop removes and returns the front line, if any.
func (q *replyQueue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.lines) == 0 {
		return "", false
	}
	line := q.lines[0]
	q.lines = q.lines[1:]
	return line, true
}

// drain discards all queued lines and any pending wake signal.
func (q *replyQueue) drain() {
	q.mu.Lock()
	q.lines = nil
	q.mu.Unlock()

	select {
	case <-q.wake:
	default:
	}
}

// close unblocks any waiter permanently. Idempotent.
func (q *replyQueue) close() {
	q.doneOnce.Do(func() { close(q.done) })
}

// wait pops the front line, blocking until one is available or the timeout
// elapses. A zero timeout polls without blocking; a negative timeout
// blocks indefinitely. The signal may have been set by an insert that was
// already consumed on the fast path of a previous call, so the queue is
// rechecked after every wake.
func (q *replyQueue) wait(timeout time.Duration) (string, error) {
	if line, ok := q.pop(); ok {
		return line, nil
	}
	if timeout == 0 {
		return "", ErrTimeout
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-q.wake:
		case <-expired:
			return "", ErrTimeout
		case <-q.done:
			return "", ErrClosed
		}
		if line, ok := q.pop(); ok {
			return line, nil
		}
	}
}

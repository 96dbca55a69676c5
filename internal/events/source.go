// Package events turns raw terminal keys and a periodic timer into one ordered
// event stream for the controller.
package events

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTickRate is used when NewSource receives a non-positive rate.
const DefaultTickRate = 250 * time.Millisecond

const rawBuffer = 64

// ErrClosed is returned by Next once the source has stopped.
var ErrClosed = errors.New("event source closed")

// Source is a single background producer merging pressed keys with ticks.
//
// Raw keys are fed from any goroutine; only presses are forwarded. Each loop
// iteration waits for input no longer than the time left until the next tick
// deadline, so a burst of keys cannot delay ticks and ticks cannot delay keys.
// Pending events are held in an unbounded queue so producers never block on a
// slow consumer. Consecutive ticks collapse into one while the consumer is busy.
type Source struct {
	tickRate time.Duration
	raw      chan RawKey
	out      chan Event
	done     chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
}

// NewSource builds an idle source. Call Start to begin producing.
func NewSource(tickRate time.Duration) *Source {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Source{
		tickRate: tickRate,
		raw:      make(chan RawKey, rawBuffer),
		out:      make(chan Event),
		done:     make(chan struct{}),
	}
}

// TickRate returns the tick interval.
func (s *Source) TickRate() time.Duration {
	return s.tickRate
}

// Start launches the producer goroutine. Repeated calls are no-ops.
func (s *Source) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.run(runCtx)
}

// Stop ends the producer and waits for it to exit.
func (s *Source) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started, cancel := s.started, s.cancel
	s.mu.Unlock()

	if !started {
		close(s.done)
		return
	}
	cancel()
	<-s.done
}

// Done is closed once the source has stopped.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Feed hands one raw key to the producer. It reports false after Stop.
func (s *Source) Feed(raw RawKey) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.raw <- raw:
		return true
	case <-s.done:
		return false
	}
}

// Next blocks until the next event, the source stops, or ctx ends.
func (s *Source) Next(ctx context.Context) (Event, error) {
	select {
	case ev := <-s.out:
		return ev, nil
	case <-s.done:
		return Event{}, ErrClosed
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (s *Source) run(ctx context.Context) {
	defer close(s.done)

	var queue []Event
	lastTick := time.Now()
	timer := time.NewTimer(s.tickRate)
	defer timer.Stop()

	for {
		timer.Reset(max(0, s.tickRate-time.Since(lastTick)))

		var out chan<- Event
		var head Event
		if len(queue) > 0 {
			out = s.out
			head = queue[0]
		}

		select {
		case <-ctx.Done():
			return
		case raw := <-s.raw:
			if raw.Kind == KindPress {
				queue = append(queue, KeyEvent(raw.Key))
			}
		case out <- head:
			queue = queue[1:]
		case <-timer.C:
		}

		if time.Since(lastTick) >= s.tickRate {
			if n := len(queue); n == 0 || queue[n-1].Type != TypeTick {
				queue = append(queue, TickEvent())
			}
			lastTick = time.Now()
		}
	}
}

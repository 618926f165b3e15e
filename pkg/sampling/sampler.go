// Package sampling runs the fixed-interval loop that assembles snapshots and
// fans them out to registered consumers.
package sampling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"SystemMonitor/pkg/metrics"
)

const DefaultStopTimeout = 2 * time.Second

var ErrInvalidInterval = errors.New("sampling interval must be positive")

// Source builds one snapshot per call. collecting.Manager is the production
// implementation.
type Source interface {
	Snapshot(ctx context.Context) metrics.Snapshot
}

type Option func(*Sampler)

// WithStopTimeout bounds how long Stop waits for an in-flight tick.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.stopTimeout = d
		}
	}
}

// Sampler is Idle until Start and returns to Idle after Stop. Ticks run one
// at a time on a single goroutine; consumers are invoked in registration
// order.
type Sampler struct {
	source      Source
	stopTimeout time.Duration

	mu        sync.Mutex
	consumers []registered
	nextID    uint64

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	ticks atomic.Uint64
}

func NewSampler(source Source, opts ...Option) *Sampler {
	s := &Sampler{
		source:      source,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds c to the consumer set. It takes effect from the next tick
// that starts after the call.
func (s *Sampler) Register(c Consumer) Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.consumers = append(s.consumers, registered{id: s.nextID, consumer: c})
	return Registration{id: s.nextID}
}

// Unregister removes the registration and reports whether it was present.
func (s *Sampler) Unregister(r Registration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, reg := range s.consumers {
		if reg.id == r.id {
			s.consumers = append(s.consumers[:i:i], s.consumers[i+1:]...)
			return true
		}
	}
	return false
}

// Consumers returns the number of registered consumers.
func (s *Sampler) Consumers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.consumers)
}

// Start launches the sampling goroutine. The first tick fires immediately.
// Calling Start while running is a no-op.
func (s *Sampler) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.cancel != nil {
		return nil
	}

	// A previous loop whose Stop timed out may still be finishing its tick.
	if s.done != nil {
		<-s.done
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.loop(ctx, interval, done)
	return nil
}

// Stop cancels the loop and waits up to the stop timeout for the in-flight
// tick. No tick starts after Stop returns. Stop on an idle sampler is a no-op.
func (s *Sampler) Stop() {
	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	select {
	case <-done:
	case <-time.After(s.stopTimeout):
		log.Printf("WARNING: sampler stop timed out after %v, in-flight tick continues in background", s.stopTimeout)
	}
}

// Wait blocks until the most recently started loop has exited, including a
// tick left running by a Stop that timed out. It returns at once on a
// sampler that was never started and blocks while the sampler is running.
func (s *Sampler) Wait() {
	s.runMu.Lock()
	done := s.done
	s.runMu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Sampler) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.cancel != nil
}

// Ticks returns how many ticks have assembled a snapshot.
func (s *Sampler) Ticks() uint64 { return s.ticks.Load() }

// Current assembles one snapshot outside the loop. Loop state is untouched.
func (s *Sampler) Current(ctx context.Context) metrics.Snapshot {
	return s.source.Snapshot(ctx)
}

func (s *Sampler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}

		// A started tick completes even if Stop arrives mid-way.
		s.tick(context.WithoutCancel(ctx))

		timer.Reset(interval)
	}
}

func (s *Sampler) tick(ctx context.Context) {
	s.mu.Lock()
	consumers := make([]registered, len(s.consumers))
	copy(consumers, s.consumers)
	s.mu.Unlock()

	snap := s.source.Snapshot(ctx)
	s.ticks.Add(1)

	for _, c := range consumers {
		s.dispatch(c, snap.Clone())
	}
}

func (s *Sampler) dispatch(c registered, snap metrics.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARNING: consumer %d panicked: %v", c.id, r)
		}
	}()
	if err := c.consumer.Consume(snap); err != nil {
		log.Printf("WARNING: consumer %d failed: %v", c.id, err)
	}
}

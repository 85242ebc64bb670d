package combat

import (
	"context"
	"sync"
	"time"
)

// DefaultTickPeriod is the host tick used when none is configured.
const DefaultTickPeriod = 100 * time.Millisecond

// StepFunc advances the game by dt and reports whether ticking should go on.
type StepFunc func(dt time.Duration) bool

// Scheduler pumps a StepFunc from a ticker, holding lock for every step. dt is
// the measured wall time since the previous step, not the nominal period.
type Scheduler struct {
	lock   sync.Locker
	step   StepFunc
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewScheduler(lock sync.Locker, period time.Duration, step StepFunc) *Scheduler {
	if period <= 0 {
		period = DefaultTickPeriod
	}
	return &Scheduler{lock: lock, step: step, period: period, now: time.Now}
}

// Start launches the tick loop. It returns false if the loop already runs.
// The loop ends on Stop, on ctx cancellation, or when step returns false.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.loop(ctx, s.done)
	return true
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(s.period)
	defer func() {
		ticker.Stop()
		s.mu.Lock()
		if s.done == done {
			s.running = false
			s.cancel()
		}
		s.mu.Unlock()
		close(done)
	}()

	last := s.now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.lock.Lock()
		// Stop may have been called by the lock holder while we waited.
		if ctx.Err() != nil {
			s.lock.Unlock()
			return
		}
		now := s.now()
		more := s.step(now.Sub(last))
		last = now
		s.lock.Unlock()

		if !more {
			return
		}
	}
}

// Stop cancels the loop without waiting for it, so it is safe to call while
// holding the session lock. Use Wait to block until the loop has exited.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
}

// Wait blocks until the current loop, if any, has exited.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

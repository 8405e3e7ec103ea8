// Package scheduler owns the single pending credential refresh of a session.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"webshop/internal/platform/clock"
	"webshop/internal/session/models"
)

const (
	// DefaultLead is how long before expiry the credential is refreshed.
	DefaultLead = 60 * time.Second
	// DefaultRetryDelay spaces out refetches after a failed fetch.
	DefaultRetryDelay = 500 * time.Millisecond
	// DefaultRetryBudget bounds immediate refreshes and retries between successes.
	DefaultRetryBudget = 3
)

// Outcome describes what a Schedule or Retry call did.
type Outcome int

const (
	// Scheduled means a timer was armed for the computed delay.
	Scheduled Outcome = iota
	// Immediate means the delay was negative and a refresh was triggered at once.
	Immediate
	// Abandoned means the retry budget was exhausted and nothing was armed.
	Abandoned
)

func (o Outcome) String() string {
	switch o {
	case Scheduled:
		return "scheduled"
	case Immediate:
		return "immediate"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// RefreshFunc re-runs the session fetch for user.
type RefreshFunc func(user models.User)

// Scheduler keeps exactly one live refresh timer.
type Scheduler struct {
	refresh    RefreshFunc
	clock      clock.Clock
	lead       time.Duration
	retryDelay time.Duration
	policy     *RetryPolicy
	logger     *slog.Logger

	mu    sync.Mutex
	timer clock.Timer
	gen   uint64
}

type Option func(*Scheduler)

func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLead(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.lead = d
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}

func WithRetryPolicy(p *RetryPolicy) Option {
	return func(s *Scheduler) {
		if p != nil {
			s.policy = p
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func New(refresh RefreshFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		refresh:    refresh,
		clock:      clock.Real(),
		lead:       DefaultLead,
		retryDelay: DefaultRetryDelay,
		policy:     NewRetryPolicy(DefaultRetryBudget),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule replaces any pending refresh with one at expiry minus the lead.
// A negative delay arms a zero-delay timer and consumes the retry budget;
// with the budget exhausted nothing is armed. The refresh never runs on the
// calling goroutine, so callers may hold their own locks, and until the
// timer fires Pending reports true and Clear still cancels it.
func (s *Scheduler) Schedule(user models.User, expiry time.Time) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()

	delay := expiry.Sub(s.clock.Now()) - s.lead
	if delay < 0 {
		if !s.policy.Consume() {
			s.logger.Warn("credential refresh abandoned",
				"uid", user.UID,
				"delay", delay,
			)
			return Abandoned
		}
		s.armLocked(user, 0)
		return Immediate
	}
	s.policy.Reset()
	s.armLocked(user, delay)
	return Scheduled
}

// Retry arms a short refetch after a failed fetch, bounded by the same
// budget as immediate refreshes.
func (s *Scheduler) Retry(user models.User) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()

	if !s.policy.Consume() {
		s.logger.Warn("credential fetch retries exhausted", "uid", user.UID)
		return Abandoned
	}
	s.armLocked(user, s.retryDelay)
	return Scheduled
}

// Clear cancels the pending refresh, if any.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Reset clears the pending refresh and restores the retry budget.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.policy.Reset()
}

// Pending reports whether a refresh is armed, including an Immediate one
// whose zero-delay timer has not fired yet.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) clearLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) armLocked(user models.User, delay time.Duration) {
	gen := s.gen
	s.timer = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		s.refresh(user)
	})
}

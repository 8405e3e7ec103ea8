package scheduler

import "sync"

// RetryPolicy is a bounded attempt budget that is reset on success.
type RetryPolicy struct {
	mu        sync.Mutex
	max       int
	remaining int
}

// NewRetryPolicy allows max attempts between successes. A non-positive
// max disables retries.
func NewRetryPolicy(max int) *RetryPolicy {
	if max < 0 {
		max = 0
	}
	return &RetryPolicy{max: max, remaining: max}
}

// Consume takes one attempt from the budget. It returns false once the
// budget is exhausted.
func (p *RetryPolicy) Consume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.remaining <= 0 {
		return false
	}
	p.remaining--
	return true
}

// Reset restores the full budget.
func (p *RetryPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remaining = p.max
}

// Remaining returns the attempts left.
func (p *RetryPolicy) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remaining
}

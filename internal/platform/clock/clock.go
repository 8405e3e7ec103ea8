// Package clock provides an injectable time source so refresh timers can be
// tested deterministically. Production code uses Real(); tests use Fake().
package clock

import "time"

// Clock abstracts the time operations used by the session bridge.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f after d. The returned Timer cancels the pending call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending call.
type Timer interface {
	// Stop prevents the call. Returns false if it already fired or was stopped.
	Stop() bool
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

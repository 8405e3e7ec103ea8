// Package store persists per-installation browser state: the "logged in"
// marker and the sealed refresh token of the installation's sign-in.
package store

import (
	"time"

	"webshop/pkg/secrets"
)

// LocalState is what a browser installation remembers between visits.
type LocalState struct {
	LoggedIn     bool
	RefreshToken string // sealed
	UpdatedAt    time.Time
}

// Option configures the store implementations.
type Option func(*options)

type options struct {
	ttl    time.Duration
	sealer *secrets.Sealer
	now    func() time.Time
}

// WithTTL sets how long untouched state is kept.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithSealer encrypts refresh tokens at rest.
func WithSealer(s *secrets.Sealer) Option {
	return func(o *options) {
		o.sealer = s
	}
}

// WithNow overrides the clock used for TTL bookkeeping.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{ttl: 30 * 24 * time.Hour, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) seal(token string) (string, error) {
	if o.sealer == nil {
		return token, nil
	}
	return o.sealer.Seal(token)
}

func (o options) open(sealed string) (string, error) {
	if o.sealer == nil {
		return sealed, nil
	}
	return o.sealer.Open(sealed)
}

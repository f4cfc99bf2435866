package service

import (
	"math/rand/v2"
	"time"
)

// Option configures the diary services.
type Option func(*options)

type options struct {
	now  func() time.Time
	pick func(n int) int
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, pick: rand.IntN}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the current time. Day boundaries are computed in the
// process's local time zone, whatever zone the returned time carries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithPicker overrides the random choice used for the quote of the day.
// pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(o *options) { o.pick = pick }
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatesim

import "log/slog"

// An Option configures a Circuit.
//
type Option func(*Circuit)

// WithLogger sets the logger used by the circuit. The default logger discards
// everything.
//
func WithLogger(l *slog.Logger) Option {
	return func(c *Circuit) {
		if l != nil {
			c.log = l
		}
	}
}

// WithWorkers sets the number of goroutines evaluating gates during a step.
// Values lower than 2 evaluate all gates on the calling goroutine.
//
func WithWorkers(n int) Option {
	return func(c *Circuit) {
		if n < 1 {
			n = 1
		}
		c.workers = n
	}
}

// WithSettleLimit sets the maximum number of evaluation passes run by Settle.
// If n <= 0, the limit is the number of gates plus two.
//
func WithSettleLimit(n int) Option {
	return func(c *Circuit) {
		c.settleLimit = n
	}
}

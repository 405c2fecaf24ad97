// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package config

import (
	"golang.org/x/time/rate"

	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

// RateThrottle satisfies cyclegc.Throttle on top of a token-bucket
// limiter. It is the answer to spec.md §9's open question: rather than
// invoking collect_cycles after every decrement, a Context wired with a
// RateThrottle only runs the collector once per Interval (with up to
// BurstSize runs allowed back to back), leaving suspected roots buffered
// in between.
type RateThrottle struct {
	limiter *rate.Limiter
}

// NewRateThrottle builds a RateThrottle from a CollectPolicy. A zero or
// negative Interval disables throttling whatever BurstSize is: Allow
// always returns true, matching the original algorithm's unthrottled
// behaviour. With a positive Interval, a BurstSize below 1 is treated as 1.
func NewRateThrottle(p CollectPolicy) *RateThrottle {
	if p.Interval <= 0 {
		return &RateThrottle{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	burst := p.BurstSize
	if burst < 1 {
		burst = 1
	}
	return &RateThrottle{limiter: rate.NewLimiter(rate.Every(p.Interval), burst)}
}

// Allow implements cyclegc.Throttle.
func (t *RateThrottle) Allow() bool {
	return t.limiter.Allow()
}

var _ cyclegc.Throttle = (*RateThrottle)(nil)

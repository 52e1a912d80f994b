// SPDX-License-Identifier: MIT

package distance

import "math"

// Defaults (single source of truth for zero-value behaviour).
const (
	// DefaultEpsilon is the relative tolerance of the symmetry check:
	// |d(x,y) - d(y,x)| <= eps * max(1, |d(x,y)|, |d(y,x)|).
	DefaultEpsilon = 1e-9

	// DefaultWorkers of 0 means runtime.GOMAXPROCS(0).
	DefaultWorkers = 0
)

// symmetryPolicy selects when the self-mode symmetry check runs.
type symmetryPolicy int

const (
	symmetryAuto symmetryPolicy = iota // check untrusted metrics only
	symmetryOn
	symmetryOff
)

const (
	panicWorkers = "distance: WithWorkers: n must be >= 0"
	panicEpsilon = "distance: WithEpsilon: eps must be finite and >= 0"
)

// Option configures distance computation. WithX constructors panic on
// nonsensical arguments; computations never panic.
type Option func(*options)

type options struct {
	workers  int
	eps      float64
	symmetry symmetryPolicy
}

func defaultOptions() options {
	return options{
		workers:  DefaultWorkers,
		eps:      DefaultEpsilon,
		symmetry: symmetryAuto,
	}
}

func gatherOptions(opts []Option) options {
	o := defaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WithWorkers bounds the goroutines used to fill rows. 0 selects GOMAXPROCS,
// 1 forces sequential computation.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkers)
	}
	return func(o *options) { o.workers = n }
}

// WithEpsilon sets the relative tolerance of the symmetry check.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicEpsilon)
	}
	return func(o *options) { o.eps = eps }
}

// WithSymmetryCheck forces (true) or disables (false) verification that
// d(x_i, x_j) == d(x_j, x_i) in self mode. By default only untrusted
// (custom) metrics are checked. The check doubles the metric evaluations.
func WithSymmetryCheck(on bool) Option {
	return func(o *options) {
		if on {
			o.symmetry = symmetryOn
		} else {
			o.symmetry = symmetryOff
		}
	}
}

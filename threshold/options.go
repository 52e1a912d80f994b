// SPDX-License-Identifier: MIT

package threshold

const (
	// DefaultWorkers of 0 means runtime.GOMAXPROCS(0).
	DefaultWorkers = 0

	// DefaultExcludeDiagonal keeps the self-distance diagonal in the entry
	// multiset.
	DefaultExcludeDiagonal = false
)

const panicWorkers = "threshold: WithWorkers: n must be >= 0"

// Option configures Resolve.
type Option func(*options)

type options struct {
	workers     int
	excludeDiag bool
}

func gatherOptions(opts []Option) options {
	o := options{workers: DefaultWorkers, excludeDiag: DefaultExcludeDiagonal}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WithWorkers bounds the goroutines used for scanning rows.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkers)
	}
	return func(o *options) { o.workers = n }
}

// WithExcludeDiagonal drops the diagonal (i == j) of self sources from the
// entry multiset and from every denominator. Use it when the diagonal of
// the recurrence matrix is forced rather than computed, so that rates refer
// only to the entries actually decided by distance.
func WithExcludeDiagonal(on bool) Option {
	return func(o *options) { o.excludeDiag = on }
}

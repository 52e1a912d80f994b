// SPDX-License-Identifier: MIT

package skeleton

// DefaultWorkers of 0 means runtime.GOMAXPROCS(0).
const DefaultWorkers = 0

const panicWorkers = "skeleton: WithWorkers: n must be >= 0"

// Option configures line detection.
type Option func(*options)

type options struct {
	workers int
}

func gatherOptions(opts []Option) options {
	o := options{workers: DefaultWorkers}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WithWorkers bounds the goroutines scanning rows for line starts.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkers)
	}
	return func(o *options) { o.workers = n }
}

// SPDX-License-Identifier: MIT

package rmatrix

import "fmt"

// DiagonalPolicy decides the line of identity (i == j) of self matrices.
type DiagonalPolicy int

const (
	// DiagonalNatural decides the diagonal by distance like any other entry.
	DiagonalNatural DiagonalPolicy = iota
	// DiagonalInclude forces every diagonal entry true.
	DiagonalInclude
	// DiagonalExclude forces every diagonal entry false.
	DiagonalExclude
)

// String returns "natural", "include" or "exclude".
func (p DiagonalPolicy) String() string {
	switch p {
	case DiagonalNatural:
		return "natural"
	case DiagonalInclude:
		return "include"
	case DiagonalExclude:
		return "exclude"
	default:
		return fmt.Sprintf("DiagonalPolicy(%d)", int(p))
	}
}

// Valid reports whether p is one of the defined policies.
func (p DiagonalPolicy) Valid() bool {
	return p >= DiagonalNatural && p <= DiagonalExclude
}

const (
	// DefaultDiagonal computes the diagonal naturally.
	DefaultDiagonal = DiagonalNatural

	// DefaultWorkers of 0 means runtime.GOMAXPROCS(0).
	DefaultWorkers = 0
)

const (
	panicDiagonal = "rmatrix: WithDiagonal: unknown policy"
	panicWorkers  = "rmatrix: WithWorkers: n must be >= 0"
)

// Option configures Build and New.
type Option func(*options)

type options struct {
	diagonal DiagonalPolicy
	workers  int
}

func gatherOptions(opts []Option) options {
	o := options{diagonal: DefaultDiagonal, workers: DefaultWorkers}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WithDiagonal sets the diagonal policy. It only affects self sources; the
// entries with i == j of a cross matrix carry no special meaning.
func WithDiagonal(p DiagonalPolicy) Option {
	if !p.Valid() {
		panic(panicDiagonal)
	}
	return func(o *options) { o.diagonal = p }
}

// WithWorkers bounds the goroutines filling rows.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkers)
	}
	return func(o *options) { o.workers = n }
}

// SPDX-License-Identifier: MIT

// Package metric defines the distance capability used to compare points.
//
// Any value with a Distance(a, b []float64) float64 method is a Metric. The
// engine relies on two properties only: non-negativity and symmetry. The
// triangle inequality is expected of proper metrics but never checked.
//
// Built-in metrics (Euclidean, Manhattan, Chebyshev, Minkowski) are trusted:
// the distance package skips contract verification for them. Custom metrics
// wrapped with Func are verified while distances are computed.
package metric

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownMetric is returned by ByName for unrecognised metric names.
	ErrUnknownMetric = errors.New("metric: unknown metric name")

	// ErrInvalidOrder is returned by NewMinkowski for an order that is not
	// finite and >= 1.
	ErrInvalidOrder = errors.New("metric: minkowski order must be finite and >= 1")
)

// Canonical names of the built-in metrics.
const (
	NameEuclidean = "euclidean"
	NameManhattan = "manhattan"
	NameChebyshev = "chebyshev"
	NameMinkowski = "minkowski"
	NameCustom    = "custom"
)

// Metric computes the distance between two points of equal dimension.
// Implementations must return a non-negative value and satisfy
// Distance(a, b) == Distance(b, a).
type Metric interface {
	Distance(a, b []float64) float64
}

// trusted is implemented by built-ins whose contract holds by construction.
// The method is unexported so that only this package can claim trust.
type trusted interface {
	Metric
	trusted() bool
}

// Trusted reports whether m is a built-in metric whose non-negativity and
// symmetry need not be verified at run time. A Minkowski value is trusted
// only when its order is valid.
func Trusted(m Metric) bool {
	t, ok := m.(trusted)
	return ok && t.trusted()
}

// Func adapts a plain function to Metric. Func metrics are never trusted.
type Func func(a, b []float64) float64

// Distance calls f(a, b).
func (f Func) Distance(a, b []float64) float64 { return f(a, b) }

// Euclidean is the L2 distance.
type Euclidean struct{}

func (Euclidean) trusted() bool { return true }

// Distance returns sqrt(Σ (a_k - b_k)²).
func (Euclidean) Distance(a, b []float64) float64 {
	var sum float64
	for k := range a {
		d := a[k] - b[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Manhattan is the L1 (city-block) distance.
type Manhattan struct{}

func (Manhattan) trusted() bool { return true }

// Distance returns Σ |a_k - b_k|.
func (Manhattan) Distance(a, b []float64) float64 {
	var sum float64
	for k := range a {
		sum += math.Abs(a[k] - b[k])
	}
	return sum
}

// Chebyshev is the L∞ (maximum) distance.
type Chebyshev struct{}

func (Chebyshev) trusted() bool { return true }

// Distance returns max_k |a_k - b_k|.
func (Chebyshev) Distance(a, b []float64) float64 {
	var best float64
	for k := range a {
		if v := math.Abs(a[k] - b[k]); v > best {
			best = v
		}
	}
	return best
}

// Minkowski is the Lp distance for P >= 1. Use NewMinkowski to validate P.
type Minkowski struct {
	P float64
}

func (m Minkowski) trusted() bool { return validOrder(m.P) }

func validOrder(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 1
}

// NewMinkowski returns the Lp metric. P must be finite and >= 1, otherwise
// the triangle inequality fails and the result is not a metric.
func NewMinkowski(p float64) (Minkowski, error) {
	if !validOrder(p) {
		return Minkowski{}, fmt.Errorf("NewMinkowski(p=%v): %w", p, ErrInvalidOrder)
	}
	return Minkowski{P: p}, nil
}

// Distance returns (Σ |a_k - b_k|^P)^(1/P), or NaN when P is not a valid
// order.
func (m Minkowski) Distance(a, b []float64) float64 {
	if !validOrder(m.P) {
		return math.NaN()
	}
	switch m.P {
	case 1:
		return Manhattan{}.Distance(a, b)
	case 2:
		return Euclidean{}.Distance(a, b)
	}
	var sum float64
	for k := range a {
		sum += math.Pow(math.Abs(a[k]-b[k]), m.P)
	}
	return math.Pow(sum, 1/m.P)
}

// ByName resolves a metric from its configuration name. Matching is case
// insensitive; "cityblock" and "max" are accepted aliases.
func ByName(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameEuclidean, "l2":
		return Euclidean{}, nil
	case NameManhattan, "cityblock", "l1":
		return Manhattan{}, nil
	case NameChebyshev, "max", "linf":
		return Chebyshev{}, nil
	}
	return nil, fmt.Errorf("ByName(%q): %w", name, ErrUnknownMetric)
}

// Name returns the canonical name of a built-in metric, or NameCustom.
func Name(m Metric) string {
	switch m.(type) {
	case Euclidean, *Euclidean:
		return NameEuclidean
	case Manhattan, *Manhattan:
		return NameManhattan
	case Chebyshev, *Chebyshev:
		return NameChebyshev
	case Minkowski, *Minkowski:
		return NameMinkowski
	}
	return NameCustom
}

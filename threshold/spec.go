// SPDX-License-Identifier: MIT

package threshold

import (
	"fmt"
	"math"
)

// Kind tags the variant held by a Spec.
type Kind int

const (
	kindInvalid Kind = iota
	// KindFixed uses ε directly.
	KindFixed
	// KindFixedScaled uses α × scale(distances).
	KindFixedScaled
	// KindGlobalRate picks ε so that a fraction r of all entries recur.
	KindGlobalRate
	// KindLocalRate picks ε_i per row so that a fraction r of each row recurs.
	KindLocalRate
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "Fixed"
	case KindFixedScaled:
		return "FixedScaled"
	case KindGlobalRate:
		return "GlobalRate"
	case KindLocalRate:
		return "LocalRate"
	}
	return "Invalid"
}

// Spec is the recurrence threshold specification: a tagged union of Fixed,
// FixedScaled, GlobalRate and LocalRate. Build it with the constructors of
// the same names; the zero value is invalid.
type Spec struct {
	kind  Kind
	value float64 // ε, α or r depending on kind
	scale Scale   // KindFixedScaled only
}

// Fixed uses eps as the distance cutoff.
func Fixed(eps float64) Spec { return Spec{kind: KindFixed, value: eps} }

// FixedScaled uses alpha × s(distances) as the cutoff, removing the data
// dependence of an absolute ε.
func FixedScaled(alpha float64, s Scale) Spec {
	return Spec{kind: KindFixedScaled, value: alpha, scale: s}
}

// GlobalRate picks ε as the r-quantile of all distance entries.
func GlobalRate(r float64) Spec { return Spec{kind: KindGlobalRate, value: r} }

// LocalRate picks one ε_i per row as the r-quantile of that row
// (fixed amount of neighbours).
func LocalRate(r float64) Spec { return Spec{kind: KindLocalRate, value: r} }

// Kind returns the variant tag.
func (s Spec) Kind() Kind { return s.kind }

// Value returns ε (Fixed), α (FixedScaled) or r (GlobalRate, LocalRate).
func (s Spec) Value() float64 { return s.value }

// Scale returns the scale statistic of a FixedScaled spec.
func (s Spec) Scale() Scale { return s.scale }

// String renders the spec, e.g. "GlobalRate(0.05)".
func (s Spec) String() string {
	if s.kind == KindFixedScaled {
		return fmt.Sprintf("%s(%g, %s)", s.kind, s.value, s.scale)
	}
	return fmt.Sprintf("%s(%g)", s.kind, s.value)
}

// Validate checks the parameters without touching any distances.
func (s Spec) Validate() error {
	switch s.kind {
	case KindFixed:
		if !finiteNonNegative(s.value) {
			return thresholdErrorf("Validate", s, ErrInvalidThreshold)
		}
	case KindFixedScaled:
		if !finiteNonNegative(s.value) {
			return thresholdErrorf("Validate", s, ErrInvalidThreshold)
		}
		return s.scale.validate()
	case KindGlobalRate, KindLocalRate:
		if math.IsNaN(s.value) || s.value < 0 || s.value > 1 {
			return thresholdErrorf("Validate", s, ErrInvalidRate)
		}
	default:
		return thresholdErrorf("Validate", s, ErrUnknownKind)
	}
	return nil
}

// ScaleKind tags the statistic held by a Scale.
type ScaleKind int

const (
	scaleInvalid ScaleKind = iota
	// ScaleKindMean is the mean distance.
	ScaleKindMean
	// ScaleKindMax is the maximum distance (phase-space diameter).
	ScaleKindMax
	// ScaleKindQuantile is an empirical quantile of the distances.
	ScaleKindQuantile
	// ScaleKindFunc is a caller-supplied statistic.
	ScaleKindFunc
)

// Scale is the statistic a FixedScaled spec multiplies by α. Every statistic
// is taken over the same entry multiset as GlobalRate.
type Scale struct {
	kind ScaleKind
	q    float64
	fn   func([]float64) float64
}

// ScaleMean is the mean of all distance entries.
func ScaleMean() Scale { return Scale{kind: ScaleKindMean} }

// ScaleMax is the largest distance entry.
func ScaleMax() Scale { return Scale{kind: ScaleKindMax} }

// ScaleQuantile is the empirical q-quantile: the smallest entry x such that
// at least a fraction q of the entries are <= x.
func ScaleQuantile(q float64) Scale { return Scale{kind: ScaleKindQuantile, q: q} }

// ScaleFunc applies fn to the materialised entry multiset. This needs
// O(N·M) memory; prefer the streaming built-ins for large inputs.
// fn must not retain the slice.
func ScaleFunc(fn func(values []float64) float64) Scale {
	return Scale{kind: ScaleKindFunc, fn: fn}
}

// Kind returns the statistic tag.
func (s Scale) Kind() ScaleKind { return s.kind }

// String renders the statistic.
func (s Scale) String() string {
	switch s.kind {
	case ScaleKindMean:
		return "mean"
	case ScaleKindMax:
		return "max"
	case ScaleKindQuantile:
		return fmt.Sprintf("quantile(%g)", s.q)
	case ScaleKindFunc:
		return "func"
	}
	return "invalid"
}

func (s Scale) validate() error {
	switch s.kind {
	case ScaleKindMean, ScaleKindMax:
		return nil
	case ScaleKindQuantile:
		if math.IsNaN(s.q) || s.q < 0 || s.q > 1 {
			return fmt.Errorf("Scale(%s): %w", s, ErrInvalidThreshold)
		}
		return nil
	case ScaleKindFunc:
		if s.fn == nil {
			return fmt.Errorf("Scale(%s): %w", s, ErrInvalidThreshold)
		}
		return nil
	}
	return fmt.Errorf("Scale(%s): %w", s, ErrUnknownKind)
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// SPDX-License-Identifier: MIT

package threshold

import (
	"math"
	"slices"

	"github.com/katalvlaran/recurrence/distance"
	"github.com/katalvlaran/recurrence/internal/logging"
	"github.com/katalvlaran/recurrence/internal/parallel"
	"gonum.org/v1/gonum/floats"
)

const opResolve = "Resolve"

// Resolved is a concrete cutoff: one scalar, or one value per row for
// LocalRate. Entry (i, j) recurs iff D[i,j] <= For(i).
type Resolved struct {
	kind   Kind
	scalar float64
	perRow []float64 // nil for scalar cutoffs
}

// NewScalar wraps a known cutoff (kind Fixed).
func NewScalar(eps float64) Resolved { return Resolved{kind: KindFixed, scalar: eps} }

// NewPerRow wraps known per-row cutoffs (kind LocalRate). The slice is copied.
func NewPerRow(eps []float64) Resolved {
	return Resolved{kind: KindLocalRate, perRow: slices.Clone(eps)}
}

// Kind returns the spec variant that produced the cutoff.
func (r Resolved) Kind() Kind { return r.kind }

// IsPerRow reports whether the cutoff varies per row.
func (r Resolved) IsPerRow() bool { return r.perRow != nil }

// Scalar returns the single cutoff; ok is false for per-row cutoffs.
func (r Resolved) Scalar() (eps float64, ok bool) {
	if r.perRow != nil {
		return 0, false
	}
	return r.scalar, true
}

// PerRow returns a copy of the per-row cutoffs, or nil for scalars.
func (r Resolved) PerRow() []float64 { return slices.Clone(r.perRow) }

// Len returns the number of per-row cutoffs (0 for scalars).
func (r Resolved) Len() int { return len(r.perRow) }

// For returns the cutoff applied to row i.
func (r Resolved) For(i int) float64 {
	if r.perRow != nil {
		return r.perRow[i]
	}
	return r.scalar
}

// Resolve turns a Spec into a concrete cutoff using the distances of src.
//
//   - Fixed: ε unchanged; src may be nil.
//   - FixedScaled: α × statistic of all entries (streamed; ScaleFunc
//     materialises the entries).
//   - GlobalRate(r): the k-th smallest entry, k = round(r × count); k == 0
//     yields a cutoff just below the minimum (no recurrences), r == 1 the
//     maximum (every entry recurs).
//   - LocalRate(r): the same rule applied to each row independently.
//
// Entries are those of the full matrix: for self sources each off-diagonal
// distance counts twice and the diagonal once (or not at all with
// WithExcludeDiagonal). The realised rate therefore matches r to within one
// entry unless ties straddle the cutoff, in which case all tied entries
// recur.
//
// Errors: ErrInvalidRate, ErrInvalidThreshold, ErrUnknownKind, ErrNilSource,
// and any error surfaced by src.
func Resolve(s Spec, src distance.RowSource, opts ...Option) (Resolved, error) {
	if err := s.Validate(); err != nil {
		return Resolved{}, err
	}
	if s.kind == KindFixed {
		return Resolved{kind: KindFixed, scalar: s.value}, nil
	}
	if src == nil {
		return Resolved{}, thresholdErrorf(opResolve, s, ErrNilSource)
	}
	o := gatherOptions(opts)

	var (
		out Resolved
		err error
	)
	switch s.kind {
	case KindFixedScaled:
		out, err = resolveScaled(s, src, o)
	case KindGlobalRate:
		out, err = resolveGlobal(s, src, o)
	case KindLocalRate:
		out, err = resolveLocal(s, src, o)
	}
	if err != nil {
		return Resolved{}, thresholdErrorf(opResolve, s, err)
	}

	if logging.Enabled() {
		if out.IsPerRow() {
			logging.L().Debug("threshold: resolved", "spec", s.String(), "rows", len(out.perRow),
				"min", floats.Min(orZero(out.perRow)), "max", floats.Max(orZero(out.perRow)))
		} else {
			logging.L().Debug("threshold: resolved", "spec", s.String(), "eps", out.scalar)
		}
	}
	return out, nil
}

func resolveScaled(s Spec, src distance.RowSource, o options) (Resolved, error) {
	var stat float64
	switch s.scale.kind {
	case ScaleKindFunc:
		vals, err := collect(src, o, 0, math.MaxUint64)
		if err != nil {
			return Resolved{}, err
		}
		stat = s.scale.fn(vals)
	default:
		sum, err := reduce(src, o, summaryReducer)
		if err != nil {
			return Resolved{}, err
		}
		if sum.count == 0 {
			break
		}
		switch s.scale.kind {
		case ScaleKindMean:
			stat = sum.sum / float64(sum.count)
		case ScaleKindMax:
			stat = sum.max
		case ScaleKindQuantile:
			if stat, err = selectKth(src, o, sum, quantileRank(s.scale.q, sum.count)); err != nil {
				return Resolved{}, err
			}
		}
	}

	eps := s.value * stat
	if !finiteNonNegative(eps) {
		return Resolved{}, ErrInvalidThreshold
	}
	return Resolved{kind: KindFixedScaled, scalar: eps}, nil
}

func resolveGlobal(s Spec, src distance.RowSource, o options) (Resolved, error) {
	sum, err := reduce(src, o, summaryReducer)
	if err != nil {
		return Resolved{}, err
	}
	out := Resolved{kind: KindGlobalRate}
	if sum.count == 0 {
		return out, nil
	}

	k := rateRank(s.value, sum.count)
	switch k {
	case 0:
		out.scalar = belowMin(sum.min)
	case sum.count:
		out.scalar = sum.max
	default:
		if out.scalar, err = selectKth(src, o, sum, k); err != nil {
			return Resolved{}, err
		}
	}
	return out, nil
}

func resolveLocal(s Spec, src distance.RowSource, o options) (Resolved, error) {
	n := src.Rows()
	out := Resolved{kind: KindLocalRate, perRow: make([]float64, n)}
	dropDiag := src.Self() && o.excludeDiag

	err := parallel.ForRows(n, o.workers, func(lo, hi int) error {
		var buf []float64
		var err error
		for i := lo; i < hi; i++ {
			if buf, err = src.RowRange(i, 0, buf); err != nil {
				return err
			}
			for j := range buf {
				buf[j] = key(buf[j])
			}
			if dropDiag {
				buf = slices.Delete(buf, i, i+1)
			}
			out.perRow[i] = rowCutoff(buf, s.value)
		}
		return nil
	})
	if err != nil {
		return Resolved{}, err
	}
	return out, nil
}

// rowCutoff applies the rate rule to one row; it sorts row in place.
func rowCutoff(row []float64, r float64) float64 {
	if len(row) == 0 {
		return 0
	}
	slices.Sort(row)
	k := rateRank(r, int64(len(row)))
	if k == 0 {
		return belowMin(row[0])
	}
	return row[k-1]
}

func orZero(v []float64) []float64 {
	if len(v) == 0 {
		return []float64{0}
	}
	return v
}

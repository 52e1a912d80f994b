package rmatrix_test

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/katalvlaran/recurrence/distance"
	"github.com/katalvlaran/recurrence/metric"
	"github.com/katalvlaran/recurrence/rmatrix"
	"github.com/katalvlaran/recurrence/threshold"
	"github.com/katalvlaran/recurrence/trajectory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cloud(t testing.TB, seed int64, n, dim int) *trajectory.Trajectory {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, n*dim)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	tr, err := trajectory.FromFlat(dim, data)
	require.NoError(t, err)
	return tr
}

func series(t testing.TB, xs ...float64) *trajectory.Trajectory {
	t.Helper()
	tr, err := trajectory.FromSeries(xs)
	require.NoError(t, err)
	return tr
}

// TestBuild_FourPointScenario: X = [0, 1, 2, 10], |x−y|, Fixed(1.5).
func TestBuild_FourPointScenario(t *testing.T) {
	x := series(t, 0, 1, 2, 10)
	want := []rmatrix.Coord{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {1, 2}, {2, 1}, {2, 2}, {3, 3}}

	d, err := distance.PairwiseSelf(x, metric.Manhattan{})
	require.NoError(t, err)
	s, err := distance.NewSelfStream(x, metric.Manhattan{})
	require.NoError(t, err)

	for _, src := range []distance.RowSource{d, s} {
		m, err := rmatrix.Build(src, threshold.NewScalar(1.5))
		require.NoError(t, err)
		if diff := cmp.Diff(want, m.Coords()); diff != "" {
			t.Fatalf("coords mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, rmatrix.KindSelf, m.Kind())
		assert.True(t, m.Symmetric())
		assert.Equal(t, 8, m.NNZ())
		assert.Equal(t, 4, m.Rows())
		assert.Equal(t, 4, m.Cols())
		assert.InDelta(t, 0.5, m.RecurrenceRate(), 1e-12)
		assert.Equal(t, []float64{0.5, 0.75, 0.5, 0.25}, m.RowRates())
		assert.Equal(t, "self 4×4 nnz=8 (symmetric)", m.String())
	}

	m, err := rmatrix.New(d, threshold.Fixed(1.5))
	require.NoError(t, err)
	assert.Equal(t, want, m.Coords())
}

func TestBuild_SelfSymmetricAndMatchesDistances(t *testing.T) {
	x := cloud(t, 1, 60, 3)
	d, err := distance.PairwiseSelf(x, metric.Euclidean{})
	require.NoError(t, err)

	const eps = 1.1
	m, err := rmatrix.Build(d, threshold.NewScalar(eps), rmatrix.WithWorkers(3))
	require.NoError(t, err)
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			dij, err := d.At(i, j)
			require.NoError(t, err)
			assert.Equal(t, dij <= eps, m.Has(i, j), "(%d,%d)", i, j)
			assert.Equal(t, m.Has(i, j), m.Has(j, i))
		}
		assert.Equal(t, m.Row(i), m.Col(i))
	}
	for _, v := range m.Diagonal(0) {
		assert.True(t, v)
	}

	one, err := rmatrix.Build(d, threshold.NewScalar(eps), rmatrix.WithWorkers(1))
	require.NoError(t, err)
	assert.True(t, m.Equal(one))
}

func TestBuild_DiagonalPolicies(t *testing.T) {
	x := cloud(t, 2, 25, 2)
	d, err := distance.PairwiseSelf(x, metric.Chebyshev{})
	require.NoError(t, err)
	n := d.Rows()

	natural, err := rmatrix.New(d, threshold.GlobalRate(0))
	require.NoError(t, err)
	assert.Zero(t, natural.NNZ())

	include, err := rmatrix.New(d, threshold.GlobalRate(0), rmatrix.WithDiagonal(rmatrix.DiagonalInclude))
	require.NoError(t, err)
	assert.Equal(t, n, include.NNZ())
	assert.Equal(t, slices.Repeat([]bool{true}, n), include.Diagonal(0))

	exclude, err := rmatrix.New(d, threshold.Fixed(10), rmatrix.WithDiagonal(rmatrix.DiagonalExclude))
	require.NoError(t, err)
	assert.Equal(t, n*n-n, exclude.NNZ())
	assert.Equal(t, make([]bool, n), exclude.Diagonal(0))
	assert.True(t, exclude.Symmetric())
}

func TestNew_GlobalRateRealised(t *testing.T) {
	x := cloud(t, 3, 50, 2)
	d, err := distance.PairwiseSelf(x, metric.Euclidean{})
	require.NoError(t, err)
	n := float64(d.Rows())

	for _, rate := range []float64{0.05, 0.1, 0.25, 0.5, 1} {
		m, err := rmatrix.New(d, threshold.GlobalRate(rate))
		require.NoError(t, err)
		assert.InDeltaf(t, rate*n*n, float64(m.NNZ()), 1.5, "rate %v", rate)
		assert.True(t, m.Symmetric())

		m, err = rmatrix.New(d, threshold.GlobalRate(rate), rmatrix.WithDiagonal(rmatrix.DiagonalExclude))
		require.NoError(t, err)
		assert.InDeltaf(t, rate*(n*n-n), float64(m.NNZ()), 1.5, "rate %v without diagonal", rate)

		// Forced diagonal entries come on top of the rate.
		m, err = rmatrix.New(d, threshold.GlobalRate(rate), rmatrix.WithDiagonal(rmatrix.DiagonalInclude))
		require.NoError(t, err)
		assert.InDeltaf(t, rate*(n*n-n)+n, float64(m.NNZ()), 1.5, "rate %v with forced diagonal", rate)
		assert.GreaterOrEqualf(t, m.RecurrenceRate(), rate, "rate %v with forced diagonal", rate)
	}
}

func TestNew_CrossScenario(t *testing.T) {
	d, err := distance.Pairwise(cloud(t, 4, 5, 2), cloud(t, 5, 7, 2), metric.Euclidean{})
	require.NoError(t, err)

	m, err := rmatrix.New(d, threshold.GlobalRate(0.3))
	require.NoError(t, err)
	assert.Equal(t, rmatrix.KindCross, m.Kind())
	assert.False(t, m.Symmetric())
	assert.Equal(t, 5, m.Rows())
	assert.Equal(t, 7, m.Cols())
	assert.Equal(t, 11, m.NNZ())
}

func TestNew_LocalRateRows(t *testing.T) {
	x := cloud(t, 6, 40, 3)
	d, err := distance.PairwiseSelf(x, metric.Euclidean{})
	require.NoError(t, err)

	const rate = 0.2
	m, err := rmatrix.New(d, threshold.LocalRate(rate), rmatrix.WithWorkers(4))
	require.NoError(t, err)
	assert.False(t, m.Symmetric())
	assert.Equal(t, rmatrix.KindSelf, m.Kind())
	for i, r := range m.RowRates() {
		assert.InDeltaf(t, rate*float64(m.Cols()), r*float64(m.Cols()), 1, "row %d", i)
		assert.Len(t, m.Row(i), int(r*float64(m.Cols())+0.5))
	}
}

func TestJoint_Intersection(t *testing.T) {
	x := cloud(t, 7, 30, 2)
	y := cloud(t, 8, 30, 4)
	dx, err := distance.PairwiseSelf(x, metric.Euclidean{})
	require.NoError(t, err)
	dy, err := distance.PairwiseSelf(y, metric.Manhattan{})
	require.NoError(t, err)

	cases := []struct {
		name string
		sx   threshold.Spec
		sy   threshold.Spec
		sym  bool
	}{
		{"Symmetric", threshold.GlobalRate(0.3), threshold.Fixed(2.5), true},
		{"PerRow", threshold.LocalRate(0.3), threshold.GlobalRate(0.4), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := rmatrix.New(dx, tc.sx)
			require.NoError(t, err)
			b, err := rmatrix.New(dy, tc.sy)
			require.NoError(t, err)

			j, err := rmatrix.Joint(a, b)
			require.NoError(t, err)
			assert.Equal(t, rmatrix.KindJoint, j.Kind())
			assert.Equal(t, tc.sym, j.Symmetric())

			inB := make(map[rmatrix.Coord]bool)
			for _, c := range b.Coords() {
				inB[c] = true
			}
			var want []rmatrix.Coord
			for _, c := range a.Coords() {
				if inB[c] {
					want = append(want, c)
				}
			}
			if diff := cmp.Diff(want, j.Coords(), cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("joint mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(want), j.NNZ())
		})
	}
}

func TestJoint_Errors(t *testing.T) {
	a, err := rmatrix.FromCoords(3, 3, rmatrix.KindSelf, nil)
	require.NoError(t, err)
	b, err := rmatrix.FromCoords(4, 4, rmatrix.KindSelf, nil)
	require.NoError(t, err)

	_, err = rmatrix.Joint(a, b)
	assert.ErrorIs(t, err, rmatrix.ErrShapeMismatch)
	_, err = rmatrix.Joint(a, nil)
	assert.ErrorIs(t, err, rmatrix.ErrNilMatrix)
}

func TestBuild_Errors(t *testing.T) {
	d, err := distance.PairwiseSelf(series(t, 0, 1, 2, 10), metric.Manhattan{})
	require.NoError(t, err)

	_, err = rmatrix.Build(nil, threshold.NewScalar(1))
	assert.ErrorIs(t, err, rmatrix.ErrNilSource)
	_, err = rmatrix.New(nil, threshold.Fixed(1))
	assert.ErrorIs(t, err, rmatrix.ErrNilSource)
	_, err = rmatrix.Build(d, threshold.NewPerRow([]float64{1, 2}))
	assert.ErrorIs(t, err, rmatrix.ErrThresholdLength)
	_, err = rmatrix.New(d, threshold.GlobalRate(1.5))
	assert.ErrorIs(t, err, threshold.ErrInvalidRate)
}

func TestBuild_Empty(t *testing.T) {
	empty, err := trajectory.New(nil)
	require.NoError(t, err)

	d, err := distance.PairwiseSelf(empty, metric.Euclidean{})
	require.NoError(t, err)
	m, err := rmatrix.New(d, threshold.GlobalRate(0.5))
	require.NoError(t, err)
	assert.Zero(t, m.Rows())
	assert.Zero(t, m.NNZ())
	assert.Zero(t, m.RecurrenceRate())
	assert.Empty(t, m.Coords())
	assert.Nil(t, m.Diagonal(0))

	c, err := distance.Pairwise(empty, cloud(t, 9, 3, 2), metric.Euclidean{})
	require.NoError(t, err)
	m, err = rmatrix.New(c, threshold.LocalRate(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Rows())
	assert.Equal(t, 3, m.Cols())
	assert.Zero(t, m.NNZ())
}

func TestFromCoords(t *testing.T) {
	m, err := rmatrix.FromCoords(3, 3, rmatrix.KindSelf, []rmatrix.Coord{{1, 0}, {0, 1}, {2, 2}, {0, 1}})
	require.NoError(t, err)
	assert.True(t, m.Symmetric())
	assert.Equal(t, 3, m.NNZ())
	assert.Equal(t, [][]bool{{false, true, false}, {true, false, false}, {false, false, true}}, m.Dense())

	asym, err := rmatrix.FromCoords(3, 3, rmatrix.KindSelf, []rmatrix.Coord{{0, 2}})
	require.NoError(t, err)
	assert.False(t, asym.Symmetric())
	assert.Equal(t, []int{0}, asym.Col(2))
	assert.Nil(t, asym.Col(3))
	assert.Nil(t, asym.Row(-1))

	cross, err := rmatrix.FromCoords(2, 2, rmatrix.KindCross, []rmatrix.Coord{{0, 0}, {1, 1}})
	require.NoError(t, err)
	assert.False(t, cross.Symmetric())

	_, err = rmatrix.FromCoords(2, 3, rmatrix.KindSelf, nil)
	assert.ErrorIs(t, err, rmatrix.ErrBadShape)
	_, err = rmatrix.FromCoords(-1, 3, rmatrix.KindCross, nil)
	assert.ErrorIs(t, err, rmatrix.ErrBadShape)
	_, err = rmatrix.FromCoords(2, 2, rmatrix.Kind(0), nil)
	assert.ErrorIs(t, err, rmatrix.ErrBadShape)
	_, err = rmatrix.FromCoords(2, 2, rmatrix.KindCross, []rmatrix.Coord{{2, 0}})
	assert.ErrorIs(t, err, rmatrix.ErrOutOfRange)
}

func TestFromDense(t *testing.T) {
	in := [][]bool{
		{true, false, true, false},
		{false, false, true, true},
	}
	m, err := rmatrix.FromDense(in, rmatrix.KindCross)
	require.NoError(t, err)
	assert.Equal(t, in, m.Dense())
	assert.Equal(t, []bool{true, false}, m.Diagonal(0))
	assert.Equal(t, []bool{false, true}, m.Diagonal(1))
	assert.Equal(t, []bool{true, true}, m.Diagonal(2))
	assert.Equal(t, []bool{false}, m.Diagonal(3))
	assert.Nil(t, m.Diagonal(4))
	assert.Equal(t, []bool{false}, m.Diagonal(-1))
	assert.Nil(t, m.Diagonal(-2))

	_, err = rmatrix.FromDense([][]bool{{true}, {true, false}}, rmatrix.KindCross)
	assert.ErrorIs(t, err, rmatrix.ErrBadShape)
}

func TestQueries(t *testing.T) {
	m, err := rmatrix.FromDense([][]bool{
		{true, true, false},
		{true, true, true},
		{false, true, true},
	}, rmatrix.KindSelf)
	require.NoError(t, err)
	require.True(t, m.Symmetric())

	ok, err := m.At(1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.At(2, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = m.At(3, 0)
	assert.ErrorIs(t, err, rmatrix.ErrOutOfRange)
	assert.False(t, m.Has(-1, 0))
	assert.Equal(t, []int{0, 1, 2}, m.Row(1))

	// All is restartable, stable and stops when asked.
	first := m.Coords()
	assert.Equal(t, first, m.Coords())
	seen := 0
	for range m.All() {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)

	other, err := rmatrix.FromDense(m.Dense(), rmatrix.KindJoint)
	require.NoError(t, err)
	assert.True(t, m.Equal(other))
	assert.False(t, m.Equal(nil))
}

func TestOptionPanics(t *testing.T) {
	assert.Panics(t, func() { rmatrix.WithWorkers(-1) })
	assert.Panics(t, func() { rmatrix.WithDiagonal(rmatrix.DiagonalPolicy(7)) })
	assert.False(t, rmatrix.DiagonalPolicy(7).Valid())
	assert.True(t, rmatrix.DiagonalExclude.Valid())
	assert.Equal(t, "exclude", rmatrix.DiagonalExclude.String())
}

package recurrence_test

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/katalvlaran/recurrence"
	"github.com/katalvlaran/recurrence/config"
	"github.com/katalvlaran/recurrence/distance"
	"github.com/katalvlaran/recurrence/metric"
	"github.com/katalvlaran/recurrence/rmatrix"
	"github.com/katalvlaran/recurrence/skeleton"
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

// lorenzLike returns a smooth 3-D curve sampled densely enough to give
// thick diagonal bands.
func lorenzLike(t testing.TB, n int) *trajectory.Trajectory {
	t.Helper()
	data := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		s := float64(i) * 0.2
		data = append(data, math.Sin(s), math.Cos(1.5*s), math.Sin(0.5*s))
	}
	tr, err := trajectory.FromFlat(3, data)
	require.NoError(t, err)
	return tr
}

func TestSelf_StreamingMatchesDense(t *testing.T) {
	x := cloud(t, 1, 80, 3)
	for _, spec := range []threshold.Spec{
		threshold.Fixed(1),
		threshold.GlobalRate(0.1),
		threshold.LocalRate(0.2),
		threshold.FixedScaled(0.3, threshold.ScaleMax()),
	} {
		dense, err := recurrence.Self(x, spec, recurrence.WithWorkers(2))
		require.NoError(t, err, spec.String())
		streamed, err := recurrence.Self(x, spec, recurrence.WithStreaming(true), recurrence.WithWorkers(3))
		require.NoError(t, err, spec.String())
		assert.True(t, dense.Equal(streamed), spec.String())
	}
}

func TestSelf_MatchesPackagePipeline(t *testing.T) {
	x := cloud(t, 2, 50, 2)
	got, err := recurrence.Self(x, threshold.GlobalRate(0.2),
		recurrence.WithMetric(metric.Chebyshev{}),
		recurrence.WithDiagonal(rmatrix.DiagonalExclude))
	require.NoError(t, err)

	d, err := distance.PairwiseSelf(x, metric.Chebyshev{})
	require.NoError(t, err)
	want, err := rmatrix.New(d, threshold.GlobalRate(0.2), rmatrix.WithDiagonal(rmatrix.DiagonalExclude))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
	assert.Equal(t, make([]bool, 50), got.Diagonal(0))
}

func TestCross_Errors(t *testing.T) {
	x := cloud(t, 3, 10, 2)
	_, err := recurrence.Cross(x, nil, threshold.Fixed(1))
	assert.ErrorIs(t, err, recurrence.ErrMissingTrajectory)

	_, err = recurrence.Cross(x, cloud(t, 4, 10, 3), threshold.Fixed(1))
	assert.ErrorIs(t, err, distance.ErrDimensionMismatch)

	m, err := recurrence.Cross(x, cloud(t, 5, 7, 2), threshold.GlobalRate(0.3), recurrence.WithStreaming(true))
	require.NoError(t, err)
	assert.Equal(t, 21, m.NNZ())
}

func TestJoint(t *testing.T) {
	x := cloud(t, 6, 40, 2)
	y := cloud(t, 7, 40, 5)

	got, err := recurrence.Joint(x, y, threshold.GlobalRate(0.3), threshold.LocalRate(0.3),
		recurrence.WithSecondMetric(metric.Manhattan{}))
	require.NoError(t, err)

	a, err := recurrence.Self(x, threshold.GlobalRate(0.3))
	require.NoError(t, err)
	b, err := recurrence.Self(y, threshold.LocalRate(0.3), recurrence.WithMetric(metric.Manhattan{}))
	require.NoError(t, err)
	want, err := rmatrix.Joint(a, b)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
	assert.Equal(t, rmatrix.KindJoint, got.Kind())

	_, err = recurrence.Joint(x, cloud(t, 8, 30, 2), threshold.Fixed(1), threshold.Fixed(1))
	assert.ErrorIs(t, err, rmatrix.ErrShapeMismatch)
	_, err = recurrence.Joint(x, nil, threshold.Fixed(1), threshold.Fixed(1))
	assert.ErrorIs(t, err, recurrence.ErrMissingTrajectory)
}

func TestAnalyze_Default(t *testing.T) {
	x := cloud(t, 9, 60, 2)
	m, err := recurrence.Analyze(nil, x, nil)
	require.NoError(t, err)
	assert.Equal(t, rmatrix.KindSelf, m.Kind())
	assert.InDelta(t, 0.1*60*60, float64(m.NNZ()), 1.5)
}

func TestAnalyze_JointSkeletonized(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(`
mode: joint
metric: euclidean
threshold: {kind: global_rate, value: 0.2}
metric_y: chebyshev
threshold_y: {kind: fixed_scaled, value: 0.25, scale: mean}
workers: 2
skeletonize: true
`))
	require.NoError(t, err)

	x, y := lorenzLike(t, 200), lorenzLike(t, 200)
	got, err := recurrence.Analyze(cfg, x, y)
	require.NoError(t, err)

	cfg.Skeletonize = false
	raw, err := recurrence.Analyze(cfg, x, y)
	require.NoError(t, err)
	want, err := skeleton.Skeletonize(raw)
	require.NoError(t, err)

	assert.True(t, want.Equal(got))
	assert.Less(t, got.NNZ(), raw.NNZ())
	for i, j := range got.All() {
		require.True(t, raw.Has(i, j))
	}
}

func TestAnalyze_Errors(t *testing.T) {
	x := cloud(t, 10, 10, 2)

	_, err := recurrence.Analyze(&config.Config{Mode: "self"}, x, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg := config.Default()
	cfg.Mode = config.ModeCross
	_, err = recurrence.Analyze(cfg, x, nil)
	assert.ErrorIs(t, err, recurrence.ErrMissingTrajectory)

	cfg.Mode = config.ModeSelf
	cfg.Threshold = config.Threshold{Kind: config.KindLocalRate, Value: 1.2}
	_, err = recurrence.Analyze(cfg, x, nil)
	assert.ErrorIs(t, err, threshold.ErrInvalidRate)
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	recurrence.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { recurrence.SetLogger(nil) })

	_, err := recurrence.Self(cloud(t, 11, 20, 2), threshold.GlobalRate(0.1))
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "distance: pairwise self")
	assert.Contains(t, out, "threshold: resolved")
	assert.Contains(t, out, "rmatrix: built")

	recurrence.SetLogger(nil)
	buf.Reset()
	_, err = recurrence.Self(cloud(t, 12, 20, 2), threshold.GlobalRate(0.1))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
	assert.False(t, recurrence.Logger().Enabled(t.Context(), slog.LevelError))
}

func TestOptionPanics(t *testing.T) {
	assert.Panics(t, func() { recurrence.WithMetric(nil) })
	assert.Panics(t, func() { recurrence.WithSecondMetric(nil) })
	assert.Panics(t, func() { recurrence.WithWorkers(-2) })
	assert.PanicsWithValue(t, "recurrence: WithDiagonal: unknown policy", func() {
		recurrence.WithDiagonal(rmatrix.DiagonalPolicy(-1))
	})
}

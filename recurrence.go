// SPDX-License-Identifier: MIT

package recurrence

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/recurrence/config"
	"github.com/katalvlaran/recurrence/distance"
	"github.com/katalvlaran/recurrence/metric"
	"github.com/katalvlaran/recurrence/rmatrix"
	"github.com/katalvlaran/recurrence/skeleton"
	"github.com/katalvlaran/recurrence/threshold"
	"github.com/katalvlaran/recurrence/trajectory"
)

// ErrMissingTrajectory indicates a cross or joint analysis without a second
// trajectory.
var ErrMissingTrajectory = errors.New("recurrence: second trajectory is required")

const (
	opSelf    = "Self"
	opCross   = "Cross"
	opJoint   = "Joint"
	opAnalyze = "Analyze"
)

// Option configures Self, Cross and Joint.
type Option func(*options)

type options struct {
	metric    metric.Metric
	metricY   metric.Metric // Joint only; nil means metric
	diagonal  rmatrix.DiagonalPolicy
	workers   int
	streaming bool
}

const (
	panicMetric   = "recurrence: WithMetric: nil metric"
	panicDiagonal = "recurrence: WithDiagonal: unknown policy"
	panicWorkers  = "recurrence: WithWorkers: n must be >= 0"
)

func gatherOptions(opts []Option) options {
	o := options{
		metric:   metric.Euclidean{},
		diagonal: rmatrix.DefaultDiagonal,
		workers:  rmatrix.DefaultWorkers,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WithMetric sets the distance (default Euclidean). For Joint it applies
// to both trajectories unless WithSecondMetric is given.
func WithMetric(m metric.Metric) Option {
	if m == nil {
		panic(panicMetric)
	}
	return func(o *options) { o.metric = m }
}

// WithSecondMetric sets the distance of the second trajectory of Joint.
func WithSecondMetric(m metric.Metric) Option {
	if m == nil {
		panic(panicMetric)
	}
	return func(o *options) { o.metricY = m }
}

// WithDiagonal sets the diagonal policy of self matrices. Unknown policies
// panic.
func WithDiagonal(p rmatrix.DiagonalPolicy) Option {
	if !p.Valid() {
		panic(panicDiagonal)
	}
	return func(o *options) { o.diagonal = p }
}

// WithWorkers bounds parallelism of every stage (0 = GOMAXPROCS).
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkers)
	}
	return func(o *options) { o.workers = n }
}

// WithStreaming computes distance rows on demand instead of materialising
// the distance matrix: O(M) memory per worker, at the price of evaluating
// the metric again on every pass over the distances.
func WithStreaming(on bool) Option {
	return func(o *options) { o.streaming = on }
}

func (o options) distanceOpts() []distance.Option {
	return []distance.Option{distance.WithWorkers(o.workers)}
}

func (o options) matrixOpts() []rmatrix.Option {
	return []rmatrix.Option{rmatrix.WithDiagonal(o.diagonal), rmatrix.WithWorkers(o.workers)}
}

func selfSource(x *trajectory.Trajectory, m metric.Metric, o options) (distance.RowSource, error) {
	if o.streaming {
		s, err := distance.NewSelfStream(x, m, o.distanceOpts()...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	d, err := distance.PairwiseSelf(x, m, o.distanceOpts()...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func crossSource(x, y *trajectory.Trajectory, m metric.Metric, o options) (distance.RowSource, error) {
	if o.streaming {
		s, err := distance.NewStream(x, y, m, o.distanceOpts()...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	d, err := distance.Pairwise(x, y, m, o.distanceOpts()...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Self builds the self-recurrence matrix of x.
func Self(x *trajectory.Trajectory, spec threshold.Spec, opts ...Option) (*rmatrix.RecurrenceMatrix, error) {
	o := gatherOptions(opts)
	return self(x, spec, o.metric, o)
}

func self(x *trajectory.Trajectory, spec threshold.Spec, m metric.Metric, o options) (*rmatrix.RecurrenceMatrix, error) {
	src, err := selfSource(x, m, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSelf, err)
	}
	rm, err := rmatrix.New(src, spec, o.matrixOpts()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSelf, err)
	}
	return rm, nil
}

// Cross builds the N×M cross-recurrence matrix of x against y.
func Cross(x, y *trajectory.Trajectory, spec threshold.Spec, opts ...Option) (*rmatrix.RecurrenceMatrix, error) {
	if y == nil {
		return nil, fmt.Errorf("%s: %w", opCross, ErrMissingTrajectory)
	}
	o := gatherOptions(opts)
	src, err := crossSource(x, y, o.metric, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCross, err)
	}
	rm, err := rmatrix.New(src, spec, o.matrixOpts()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCross, err)
	}
	return rm, nil
}

// Joint builds the self matrices of x (threshold sx) and y (threshold sy)
// independently and returns their entrywise AND. x and y must have the same
// length, else rmatrix.ErrShapeMismatch.
func Joint(x, y *trajectory.Trajectory, sx, sy threshold.Spec, opts ...Option) (*rmatrix.RecurrenceMatrix, error) {
	if y == nil {
		return nil, fmt.Errorf("%s: %w", opJoint, ErrMissingTrajectory)
	}
	o := gatherOptions(opts)
	my := o.metricY
	if my == nil {
		my = o.metric
	}

	a, err := self(x, sx, o.metric, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opJoint, err)
	}
	b, err := self(y, sy, my, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opJoint, err)
	}
	rm, err := rmatrix.Joint(a, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opJoint, err)
	}
	return rm, nil
}

// Analyze runs the analysis described by cfg (config.Default when nil).
// y is required for cross and joint modes and ignored otherwise.
func Analyze(cfg *config.Config, x, y *trajectory.Trajectory) (*rmatrix.RecurrenceMatrix, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", opAnalyze, err)
	}
	mx, my, err := cfg.Metrics()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opAnalyze, err)
	}
	sx, sy, err := cfg.Thresholds()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opAnalyze, err)
	}
	opts := []Option{
		WithMetric(mx),
		WithSecondMetric(my),
		WithDiagonal(cfg.DiagonalPolicy()),
		WithWorkers(cfg.Workers),
		WithStreaming(cfg.Streaming),
	}

	var m *rmatrix.RecurrenceMatrix
	switch cfg.Mode {
	case config.ModeCross:
		m, err = Cross(x, y, sx, opts...)
	case config.ModeJoint:
		m, err = Joint(x, y, sx, sy, opts...)
	default:
		m, err = Self(x, sx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opAnalyze, err)
	}

	if cfg.Skeletonize {
		if m, err = skeleton.Skeletonize(m, skeleton.WithWorkers(cfg.Workers)); err != nil {
			return nil, fmt.Errorf("%s: %w", opAnalyze, err)
		}
	}
	Logger().Debug("recurrence: analyzed", "mode", cfg.Mode, "matrix", m.String())

	return m, nil
}

// Package recurrence computes recurrence matrices of dynamical-system
// trajectories: when a trajectory, or a pair of trajectories, revisits a
// neighbourhood of phase space it occupied before.
//
// The pipeline is split over sub-packages, leaf first:
//
//	trajectory/  point clouds (N points of dimension D)
//	metric/      distance capabilities: Euclidean, Manhattan, Chebyshev, Minkowski, custom
//	distance/    dense and streamed pairwise distance rows
//	threshold/   Fixed, FixedScaled, GlobalRate and LocalRate cutoffs
//	rmatrix/     sparse self, cross and joint recurrence matrices
//	skeleton/    thinning of thickened diagonal lines, line statistics
//	config/      YAML description of an analysis
//
// This package composes them. Self, Cross and Joint build one matrix from
// trajectories; Analyze runs a config.Config end to end.
//
//	x, _ := trajectory.FromSeries(samples)
//	m, err := recurrence.Self(x, threshold.GlobalRate(0.05),
//		recurrence.WithMetric(metric.Chebyshev{}))
//	for i, j := range m.All() {
//		...
//	}
//
// Nothing is logged unless SetLogger installs a logger; debug records trace
// matrix shapes, resolved thresholds and thinning statistics.
package recurrence

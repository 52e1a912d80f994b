// Package distance computes pairwise distances between two point clouds, or
// one cloud with itself, under a pluggable metric.Metric.
//
// Two access modes share the RowSource interface:
//
//   - Matrix: dense, materialised once (O(N·M) memory). Self matrices use
//     gonum's symmetric storage and evaluate only the upper triangle.
//   - Stream: rows computed on demand (O(M) memory per row), for clouds too
//     large to materialise when only threshold comparisons are needed.
//
// Rows are independent, so Matrix construction fans rows out over a bounded
// goroutine pool (WithWorkers). Point clouds are shared read-only.
//
// Usage:
//
//	x, _ := trajectory.New(points)
//	d, err := distance.PairwiseSelf(x, metric.Euclidean{})
//	row, err := d.RowRange(3, 0, nil)
//
// Errors are sentinels matched with errors.Is: ErrDimensionMismatch,
// ErrInvalidMetric, ErrNilInput, ErrOutOfRange.
package distance

// Package rmatrix builds and queries sparse boolean recurrence matrices.
//
// A RecurrenceMatrix is immutable compressed-row storage with sorted columns
// per row. Three kinds exist:
//
//   - self:  one trajectory against itself; symmetric for scalar cutoffs,
//     stored as the upper triangle only.
//   - cross: two trajectories, N×M, no symmetry.
//   - joint: entrywise AND of two matrices of equal shape (Joint).
//
// Build applies a threshold.Resolved cutoff to a distance.RowSource; New
// resolves a threshold.Spec first. The diagonal of self matrices may be
// computed (DiagonalNatural), forced true (DiagonalInclude) or forced false
// (DiagonalExclude).
//
// Consumers read a matrix through its shape, the restartable iterator All,
// and membership queries (At, Has, Row, Col, Diagonal). Every transform
// returns a new matrix.
//
// Usage:
//
//	d, _ := distance.PairwiseSelf(x, metric.Euclidean{})
//	m, err := rmatrix.New(d, threshold.GlobalRate(0.05))
//	for i, j := range m.All() {
//		...
//	}
package rmatrix

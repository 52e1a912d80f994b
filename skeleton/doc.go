// Package skeleton thins thickened diagonal lines of a recurrence matrix to
// single-cell width and measures diagonal-line structure.
//
// Coarse sampling and rate-based thresholds turn one diagonal line into a
// band of parallel lines on neighbouring offsets. Skeletonize keeps one line
// per band:
//
//  1. Maximal diagonal runs are detected on the input (read-only).
//  2. Lines on offsets δ and δ+1 that share a row form a band.
//  3. Each band keeps the line nearest its length-weighted centre offset;
//     ties go to the longer line, then the lower offset, then the earlier
//     start. The other lines are cleared over the kept line's rows only.
//  4. Steps 2 and 3 repeat on the remaining lines until no band is left,
//     then the lines are written into a new matrix.
//
// Collinear runs separated by a false cell stay distinct lines, and so do
// lines on neighbouring offsets that meet without sharing a row. The result
// never contains an entry absent from the input, and thinning it again
// changes nothing.
//
// Lines, Histogram and Determinism expose the diagonal-line structure that
// skeletonization corrects.
package skeleton

// SPDX-License-Identifier: MIT

package skeleton

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/recurrence/internal/logging"
	"github.com/katalvlaran/recurrence/rmatrix"
)

const opSkeletonize = "Skeletonize"

// Skeletonize returns a copy of m in which every band of parallel diagonal
// lines is thinned to a single line. m is not modified.
//
// A band is a connected group of lines on neighbouring offsets that run side
// by side, i.e. overlap along the diagonal direction. Each band keeps the
// line nearest its length-weighted centre offset. Cells of the other lines
// whose row or column lies within the kept line's are cleared; their parts
// beyond it survive as shorter lines. Thinning repeats until no two lines on
// neighbouring offsets run side by side. Lines that only meet end to end,
// and collinear runs split by a gap, stay distinct.
//
// Symmetric matrices are thinned on their upper triangle (offsets >= 0) and
// the kept lines mirrored, so the result stays symmetric. Square matrices
// with fewer than two rows are returned as an unchanged copy.
//
// Errors: ErrNilMatrix, ErrUnsupportedShape (non-square m).
//
// Complexity: O(nnz·log) per thinning round; memory O(lines).
func Skeletonize(m *rmatrix.RecurrenceMatrix, opts ...Option) (*rmatrix.RecurrenceMatrix, error) {
	if m == nil {
		return nil, skeletonErrorf(opSkeletonize, ErrNilMatrix)
	}
	if m.Rows() != m.Cols() {
		return nil, skeletonErrorf(opSkeletonize, fmt.Errorf("%d×%d: %w", m.Rows(), m.Cols(), ErrUnsupportedShape))
	}
	if m.Rows() < 2 {
		return rmatrix.FromCoords(m.Rows(), m.Cols(), m.Kind(), m.Coords())
	}
	o := gatherOptions(opts)

	upper := m.Symmetric()
	lines, err := detect(m, upper, o.workers)
	if err != nil {
		return nil, skeletonErrorf(opSkeletonize, err)
	}
	kept, bands, rounds := thin(lines, upper)

	var coords []rmatrix.Coord
	for _, l := range kept {
		coords = append(coords, l.Cells()...)
		if upper && l.Offset > 0 {
			for t := 0; t < l.Length; t++ {
				coords = append(coords, rmatrix.Coord{I: l.Start + t + l.Offset, J: l.Start + t})
			}
		}
	}
	out, err := rmatrix.FromCoords(m.Rows(), m.Cols(), m.Kind(), coords)
	if err != nil {
		return nil, skeletonErrorf(opSkeletonize, err)
	}

	logging.L().Debug("skeleton: thinned", "n", m.Rows(), "lines_in", len(lines), "lines_out", len(kept),
		"bands", bands, "rounds", rounds, "nnz_in", m.NNZ(), "nnz_out", out.NNZ())

	return out, nil
}

// thin applies thinRound until no band is left and returns the surviving
// lines, sorted, with the number of bands thinned and rounds run. mirrored
// marks lines of the upper triangle of a symmetric matrix.
//
// Every band has a line running beside the kept one, and at least one of its
// cells is cleared, so each round removes a cell and the loop ends.
func thin(lines []Line, mirrored bool) ([]Line, int, int) {
	bands, rounds := 0, 0
	for {
		next, n := thinRound(lines, mirrored)
		if n == 0 {
			return lines, bands, rounds
		}
		bands += n
		rounds++
		lines = next
	}
}

// thinRound finds the bands of lines (sorted by offset, start) by BFS and
// thins each of them once. It returns the new sorted lines and the number of
// bands found.
func thinRound(lines []Line, mirrored bool) ([]Line, int) {
	idx := newLineIndex(lines)
	seen := make([]bool, len(lines))
	out := make([]Line, 0, len(lines))
	bands := 0

	for k0 := range lines {
		if seen[k0] {
			continue
		}
		queue := []int{k0}
		seen[k0] = true
		for qi := 0; qi < len(queue); qi++ {
			idx.neighbours(lines[queue[qi]], func(v int) {
				if !seen[v] {
					seen[v] = true
					queue = append(queue, v)
				}
			})
		}
		if len(queue) == 1 {
			out = append(out, lines[k0])
			continue
		}

		bands++
		keep := pick(lines, queue, mirrored)
		lo, hi := keep.span()
		for _, k := range queue {
			if l := lines[k]; l == keep {
				out = append(out, l)
			} else {
				out = clearSpan(out, l, lo-1, hi+1)
			}
		}
	}

	slices.SortFunc(out, compareLines)
	return out, bands
}

// clearSpan appends to dst the parts of l whose cells (i, j) have i + j
// outside [lo, hi]. Widening a kept line's span by one on each side covers
// exactly the cells sharing its rows or columns on the neighbouring offsets.
func clearSpan(dst []Line, l Line, lo, hi int) []Line {
	// Row i sits at 2i + offset; >> 1 floors negative values too.
	if last := min(l.End(), (lo-1-l.Offset)>>1); last >= l.Start {
		dst = append(dst, Line{Offset: l.Offset, Start: l.Start, Length: last - l.Start + 1})
	}
	if first := max(l.Start, ((hi-l.Offset)>>1)+1); first <= l.End() {
		dst = append(dst, Line{Offset: l.Offset, Start: first, Length: l.End() - first + 1})
	}
	return dst
}

// pick selects the line a band keeps: nearest the length-weighted centre
// offset, then longest, then lower offset, then earlier start. A mirrored
// band reaching offset 0 continues into its mirror image, so its centre is
// offset 0.
func pick(lines []Line, band []int, mirrored bool) Line {
	var weighted, total float64
	onDiagonal := false
	for _, k := range band {
		weighted += float64(lines[k].Length) * float64(lines[k].Offset)
		total += float64(lines[k].Length)
		onDiagonal = onDiagonal || lines[k].Offset == 0
	}
	centre := weighted / total
	if mirrored && onDiagonal {
		centre = 0
	}

	best := lines[band[0]]
	for _, k := range band[1:] {
		if l := lines[k]; better(l, best, centre) {
			best = l
		}
	}
	return best
}

func better(a, b Line, centre float64) bool {
	da := math.Abs(float64(a.Offset) - centre)
	db := math.Abs(float64(b.Offset) - centre)
	if da != db {
		return da < db
	}
	if a.Length != b.Length {
		return a.Length > b.Length
	}
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	return a.Start < b.Start
}

// lineIndex locates the lines of each offset inside a sorted line slice.
type lineIndex struct {
	lines  []Line
	ranges map[int][2]int // offset -> [first, last+1)
}

func newLineIndex(lines []Line) lineIndex {
	ranges := make(map[int][2]int)
	for k := 0; k < len(lines); {
		e := k + 1
		for e < len(lines) && lines[e].Offset == lines[k].Offset {
			e++
		}
		ranges[lines[k].Offset] = [2]int{k, e}
		k = e
	}
	return lineIndex{lines: lines, ranges: ranges}
}

// neighbours calls fn with the index of every line on offset δ±1 whose span
// intersects the span of l. Spans on neighbouring offsets differ in parity,
// so such lines share at least one row and one column with l; lines that
// only meet l end to end are not reported.
func (x lineIndex) neighbours(l Line, fn func(int)) {
	lo, hi := l.span()
	x.overlapping(l.Offset+1, lo, hi, fn)
	x.overlapping(l.Offset-1, lo, hi, fn)
}

// overlapping reports the lines on offset whose span intersects [lo, hi].
// Lines of one offset are disjoint and sorted, so their spans ascend too.
func (x lineIndex) overlapping(offset, lo, hi int, fn func(int)) {
	r, ok := x.ranges[offset]
	if !ok {
		return
	}
	seg := x.lines[r[0]:r[1]]
	k, _ := slices.BinarySearchFunc(seg, lo, func(l Line, t int) int {
		_, end := l.span()
		return cmp.Compare(end, t)
	})
	for ; k < len(seg); k++ {
		if start, _ := seg[k].span(); start > hi {
			break
		}
		fn(r[0] + k)
	}
}

package recurrence_test

import (
	"testing"

	"github.com/katalvlaran/recurrence"
	"github.com/katalvlaran/recurrence/rmatrix"
	"github.com/katalvlaran/recurrence/skeleton"
	"github.com/katalvlaran/recurrence/threshold"
)

var sinkMatrix *rmatrix.RecurrenceMatrix

// BenchmarkSelf_GlobalRate measures the dense pipeline on 1000 points in 3-D.
// Complexity: O(N²·D) distances plus O(N²) selection passes.
func BenchmarkSelf_GlobalRate(b *testing.B) {
	x := cloud(b, 42, 1000, 3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, err := recurrence.Self(x, threshold.GlobalRate(0.05))
		if err != nil {
			b.Fatal(err)
		}
		sinkMatrix = m
	}
}

// BenchmarkSelf_Streaming is the same pipeline without a stored distance matrix.
func BenchmarkSelf_Streaming(b *testing.B) {
	x := cloud(b, 42, 1000, 3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, err := recurrence.Self(x, threshold.GlobalRate(0.05), recurrence.WithStreaming(true))
		if err != nil {
			b.Fatal(err)
		}
		sinkMatrix = m
	}
}

func BenchmarkSkeletonize(b *testing.B) {
	m, err := recurrence.Self(lorenzLike(b, 1500), threshold.GlobalRate(0.1))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, err := skeleton.Skeletonize(m)
		if err != nil {
			b.Fatal(err)
		}
		sinkMatrix = out
	}
}

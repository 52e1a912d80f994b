// SPDX-License-Identifier: MIT

package skeleton

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedShape indicates a matrix without diagonal semantics for
	// thinning, i.e. a non-square one.
	ErrUnsupportedShape = errors.New("skeleton: matrix must be square")

	// ErrNilMatrix indicates a nil *rmatrix.RecurrenceMatrix.
	ErrNilMatrix = errors.New("skeleton: nil matrix")

	// ErrInvalidMinLength indicates a minimum line length below 1.
	ErrInvalidMinLength = errors.New("skeleton: minimum line length must be >= 1")
)

func skeletonErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

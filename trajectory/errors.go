// SPDX-License-Identifier: MIT

package trajectory

import (
	"errors"
	"fmt"
)

var (
	// ErrRagged indicates points of differing length (or a flat buffer whose
	// length is not a multiple of the dimension).
	ErrRagged = errors.New("trajectory: points must share one dimension")

	// ErrZeroDimension indicates a point with no coordinates.
	ErrZeroDimension = errors.New("trajectory: dimension must be >= 1")

	// ErrNonFinite indicates a NaN or ±Inf coordinate.
	ErrNonFinite = errors.New("trajectory: NaN or Inf coordinate")

	// ErrOutOfRange indicates a point index outside [0, Len()).
	ErrOutOfRange = errors.New("trajectory: index out of range")
)

// trajectoryErrorf tags err with the operation and point index that failed.
func trajectoryErrorf(op string, idx int, err error) error {
	return fmt.Errorf("%s(point %d): %w", op, idx, err)
}

// SPDX-License-Identifier: MIT

package threshold

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRate indicates a recurrence rate outside [0, 1] or NaN.
	ErrInvalidRate = errors.New("threshold: rate must be within [0, 1]")

	// ErrInvalidThreshold indicates a negative or non-finite cutoff, scale
	// factor, quantile, or a custom scale statistic with such a result.
	ErrInvalidThreshold = errors.New("threshold: invalid threshold parameter")

	// ErrNilSource indicates a data-dependent spec resolved without distances.
	ErrNilSource = errors.New("threshold: distance source is required")

	// ErrUnknownKind indicates a zero-value or corrupted Spec/Scale.
	ErrUnknownKind = errors.New("threshold: unknown specification kind")
)

// thresholdErrorf tags err with the spec being resolved.
func thresholdErrorf(tag string, s Spec, err error) error {
	return fmt.Errorf("%s(%s): %w", tag, s, err)
}

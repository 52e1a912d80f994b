// SPDX-License-Identifier: MIT

package rmatrix

import (
	"errors"
	"fmt"
)

// Every message is prefixed with "rmatrix: ..."; callers match with errors.Is.
var (
	// ErrNilSource indicates Build or New was called without distances.
	ErrNilSource = errors.New("rmatrix: distance source is nil")

	// ErrNilMatrix indicates a nil *RecurrenceMatrix argument.
	ErrNilMatrix = errors.New("rmatrix: nil matrix")

	// ErrThresholdLength indicates per-row cutoffs whose count differs from
	// the number of rows of the source.
	ErrThresholdLength = errors.New("rmatrix: per-row threshold length mismatch")

	// ErrShapeMismatch indicates joint-recurrence inputs of differing shape.
	ErrShapeMismatch = errors.New("rmatrix: shape mismatch")

	// ErrBadShape indicates an invalid shape or kind passed to a synthetic
	// constructor: negative dimensions, ragged dense rows, or a non-square
	// self matrix.
	ErrBadShape = errors.New("rmatrix: invalid shape")

	// ErrOutOfRange indicates an index outside the matrix.
	ErrOutOfRange = errors.New("rmatrix: index out of range")
)

// rmatrixErrorf tags err with the call site.
func rmatrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// indexErrorf tags err with the offending coordinate.
func indexErrorf(tag string, i, j int, err error) error {
	return fmt.Errorf("%s(%d,%d): %w", tag, i, j, err)
}

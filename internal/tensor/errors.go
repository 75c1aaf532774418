package tensor

import (
	"errors"
	"fmt"
)

// Common errors. Every failure returned by this package wraps one of them.
var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrOutOfRange    = errors.New("index out of range")
	ErrUnsupported   = errors.New("unsupported operation")
)

// ShapeError provides detailed information about a shape disagreement.
type ShapeError struct {
	Op      string // Operation that failed (e.g., "dot", "with")
	Left    Shape  // Shape of the receiver / expected shape
	Right   Shape  // Shape of the argument / actual shape
	AxisL   int    // Offending axis of Left (-1 when not axis specific)
	AxisR   int    // Offending axis of Right (-1 when not axis specific)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.AxisL >= 0 && e.AxisR >= 0 {
		return fmt.Sprintf("%s: %s: %v axis %d (=%d) vs %v axis %d (=%d)",
			e.Op, ErrShapeMismatch, e.Left, e.AxisL, e.Left[e.AxisL], e.Right, e.AxisR, e.Right[e.AxisR])
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, ErrShapeMismatch, e.Details)
	}
	return fmt.Sprintf("%s: %s: %v vs %v", e.Op, ErrShapeMismatch, e.Left, e.Right)
}

// Unwrap makes errors.Is(err, ErrShapeMismatch) hold.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func mismatch(op string, left, right Shape) error {
	return &ShapeError{Op: op, Left: left, Right: right, AxisL: -1, AxisR: -1}
}

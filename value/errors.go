// Package value implements the fixed-point/integer value algebra and the
// tagged-clock time algebra of §4.A: the numeric cells PUs store and move, and
// the closed time intervals that gate when they may move.
package value

import "errors"

// ErrWidthMismatch indicates an arithmetic operation was attempted between
// values of incompatible bit width or fractional-bit count.
var ErrWidthMismatch = errors.New("value: width or fractional-bit mismatch")

// ErrDivisionByZero indicates integer division (or fixed-point division,
// which lowers to integer division after a pre-shift) was attempted with a
// zero divisor.
var ErrDivisionByZero = errors.New("value: division by zero")

// ErrShiftAmount indicates a logical shift amount was negative or exceeded
// the value's width.
var ErrShiftAmount = errors.New("value: invalid shift amount")

// ErrTagMismatch indicates TaggedTime addition was attempted between two
// values carrying different, non-empty branch tags.
var ErrTagMismatch = errors.New("value: tagged time mismatch")

// ErrInvalidWidth indicates a Value or time constructor received a
// non-positive bit width, or a fractional-bit count exceeding the width.
var ErrInvalidWidth = errors.New("value: invalid width")

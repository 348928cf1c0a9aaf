package bus

import (
	"errors"

	"github.com/ezrec/promdump/translate"
)

var f = translate.From

var (
	// Configuration errors
	ErrRange        = errors.New(f("value out of range"))
	ErrPinDuplicate = errors.New(f("pin duplicated"))
	ErrSeekEnd      = errors.New(f("seek from end unsupported"))
	ErrSeekWhence   = errors.New(f("seek whence invalid"))
)

// ErrWidth reports a bus width that cannot be supported.
type ErrWidth struct {
	Width int
}

func (err *ErrWidth) Error() string {
	return f("bus width %d invalid", err.Width)
}

// ErrValue reports a value that does not fit on a bus.
type ErrValue struct {
	Value      uint64
	UpperBound uint64
}

func (err *ErrValue) Error() string {
	return f("value %#x beyond bus upper bound %#x", err.Value, err.UpperBound)
}

func (err *ErrValue) Is(target error) bool {
	return target == ErrRange
}

package gpio

import (
	"errors"

	"github.com/ezrec/promdump/translate"
)

var f = translate.From

var (
	ErrPinUnknown   = errors.New(f("pin unknown"))
	ErrPinDirection = errors.New(f("pin direction"))
	ErrClosed       = errors.New(f("gpio closed"))
)

// ErrPin associates a pin with the error that happened to it.
type ErrPin struct {
	Pin Pin
	Err error
}

func (err *ErrPin) Error() string {
	return f("pin %v: %v", string(err.Pin), err.Err)
}

func (err *ErrPin) Unwrap() error {
	return err.Err
}

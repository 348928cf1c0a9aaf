package board

import (
	"errors"

	"github.com/ezrec/promdump/translate"
)

var f = translate.From

var (
	ErrType         = errors.New(f("wrong type"))
	ErrValue        = errors.New(f("value out of range"))
	ErrKey          = errors.New(f("key unknown"))
	ErrKeyMissing   = errors.New(f("key missing"))
	ErrDataWidth    = errors.New(f("data bus must have 1 to 8 pins"))
	ErrAddressWidth = errors.New(f("address bus must have 1 to 32 lines"))
	ErrAddressBoth  = errors.New(f("address pins and counter are exclusive"))
	ErrPinDuplicate = errors.New(f("pin used twice"))
)

// ErrGlobal reports a board script global that could not be used.
type ErrGlobal struct {
	Name string
	Err  error
}

func (err *ErrGlobal) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrGlobal) Unwrap() error {
	return err.Err
}

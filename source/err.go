package source

import (
	"errors"

	"github.com/ezrec/promdump/translate"
)

var f = translate.From

var (
	ErrSeekWhence = errors.New(f("seek whence invalid"))
	ErrSeekRange  = errors.New(f("seek out of range"))
	ErrDataWidth  = errors.New(f("data bus wider than a byte"))
)

// ErrSeek reports a seek that could not be performed.
type ErrSeek struct {
	Offset int64
	Whence int
	Err    error
}

func (err *ErrSeek) Error() string {
	return f("seek %d (whence %d) %v", err.Offset, err.Whence, err.Err)
}

func (err *ErrSeek) Unwrap() error {
	return err.Err
}

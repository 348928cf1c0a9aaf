package calibrate

import (
	"errors"

	"github.com/ezrec/promdump/translate"
)

var f = translate.From

var (
	ErrUnstable  = errors.New(f("no stable propagation delay found"))
	ErrParameter = errors.New(f("calibration parameter invalid"))
)

// ErrRounds reports the bracket reached when the round budget ran out
// without finding any stable delay.
type ErrRounds struct {
	Rounds   int
	DelayMin string
	DelayMax string
}

func (err *ErrRounds) Error() string {
	return f("%v after %d rounds, bracket [%v, %v]", ErrUnstable, err.Rounds, err.DelayMin, err.DelayMax)
}

func (err *ErrRounds) Unwrap() error {
	return ErrUnstable
}

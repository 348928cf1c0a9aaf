// Package calibrate finds the smallest propagation delay at which reads
// from a chip are repeatable.
package calibrate

import (
	"crypto/sha256"
	"io"
	"log"
	"time"

	"github.com/ezrec/promdump/source"
)

const (
	WIDEN_FACTOR  = 1.15 // Growth of the bracket when unstable at its top.
	SHRINK_FACTOR = 0.71 // Shrink of the bracket when unstable at its bottom.

	DEFAULT_DELAY_MIN  = 0
	DEFAULT_DELAY_MAX  = 500 * time.Microsecond
	DEFAULT_RESOLUTION = time.Microsecond
	DEFAULT_BLOCK_SIZE = 256
	DEFAULT_ITERATIONS = 5
	DEFAULT_ROUNDS     = 50
)

// Target is a byte source with an adjustable propagation delay.
type Target interface {
	source.Source
	PropagationDelay() time.Duration
	SetPropagationDelay(delay time.Duration)
}

// Calibrator searches a [DelayMin, DelayMax] bracket for a delay at which
// a probe block reads back with the same hash Iterations times in a row.
//
// Each round first probes the top of the bracket. If the top is unstable,
// the bracket is moved up and widened. Otherwise the top becomes the
// candidate, and the bottom is probed: an unstable bottom shrinks the
// bracket down towards it, a stable bottom becomes the candidate and
// collapses the bracket onto it.
type Calibrator struct {
	Verbose bool

	DelayMin   time.Duration
	DelayMax   time.Duration
	Resolution time.Duration // Smallest amount the bracket is widened by.

	Offset     int64 // Offset of the probe block.
	BlockSize  int   // Size of the probe block.
	Iterations int   // Reads of the probe block per probe.
	Rounds     int   // Maximum number of rounds.

	target Target
}

// NewCalibrator returns a calibrator for target, with default parameters.
func NewCalibrator(target Target) *Calibrator {
	return &Calibrator{
		DelayMin:   DEFAULT_DELAY_MIN,
		DelayMax:   DEFAULT_DELAY_MAX,
		Resolution: DEFAULT_RESOLUTION,
		BlockSize:  DEFAULT_BLOCK_SIZE,
		Iterations: DEFAULT_ITERATIONS,
		Rounds:     DEFAULT_ROUNDS,
		target:     target,
	}
}

func (cal *Calibrator) check() (err error) {
	switch {
	case cal.DelayMin < 0, cal.DelayMax < cal.DelayMin:
		err = ErrParameter
	case cal.Resolution <= 0:
		err = ErrParameter
	case cal.BlockSize <= 0, cal.Iterations < 2, cal.Rounds <= 0:
		err = ErrParameter
	}
	return
}

// stable reads the probe block Iterations times at delay, and reports if
// every read hashed the same.
func (cal *Calibrator) stable(delay time.Duration) (ok bool, err error) {
	cal.target.SetPropagationDelay(delay)

	var last [sha256.Size]byte
	for n := range cal.Iterations {
		_, err = cal.target.Seek(cal.Offset, io.SeekStart)
		if err != nil {
			return
		}

		var data []byte
		data, err = cal.target.Read(cal.BlockSize)
		if err != nil {
			return
		}

		hash := sha256.Sum256(data)
		if n > 0 && hash != last {
			if cal.Verbose {
				log.Printf("calibrate: %v unstable, read %d hash %x", delay, n, hash)
			}
			return
		}
		last = hash
	}

	if cal.Verbose {
		log.Printf("calibrate: %v stable, hash %x", delay, last)
	}

	ok = true
	return
}

// Calibrate returns the smallest stable delay found, and leaves the target
// set to it. If no delay explored was stable, the error is ErrUnstable,
// and the target keeps the delay it had before.
func (cal *Calibrator) Calibrate() (delay time.Duration, err error) {
	err = cal.check()
	if err != nil {
		return
	}

	previous := cal.target.PropagationDelay()
	defer func() {
		if err != nil {
			cal.target.SetPropagationDelay(previous)
		}
	}()

	lo, hi := cal.DelayMin, cal.DelayMax
	found := false

	for round := range cal.Rounds {
		if cal.Verbose {
			log.Printf("calibrate: round %d, bracket [%v, %v]", round, lo, hi)
		}

		var ok bool
		ok, err = cal.stable(hi)
		if err != nil {
			return
		}

		if !ok {
			step := time.Duration(float64(hi-lo) * WIDEN_FACTOR)
			step = max(step, cal.Resolution)
			lo, hi = hi, hi+step
			continue
		}

		delay = hi
		found = true

		ok, err = cal.stable(lo)
		if err != nil {
			return
		}

		if !ok {
			hi = lo + time.Duration(float64(hi-lo)*SHRINK_FACTOR)
			continue
		}

		delay = lo
		if hi == lo {
			break
		}
		hi = lo
	}

	if !found {
		err = &ErrRounds{
			Rounds:   cal.Rounds,
			DelayMin: lo.String(),
			DelayMax: hi.String(),
		}
		delay = 0
		return
	}

	cal.target.SetPropagationDelay(delay)

	return
}

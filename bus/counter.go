// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package bus

import (
	"io"
	"log"
	"time"

	"github.com/ezrec/promdump/gpio"
)

// CounterConfig describes the wiring of a binary counter chip.
type CounterConfig struct {
	Width     int      // Number of counter outputs wired to the address bus.
	Frequency float64  // Clock frequency in Hz. Zero is untimed.
	Reset     gpio.Pin // Synchronous reset, active low.
	Clock     gpio.Pin // Clock, counts on the rising edge.
	Load      gpio.Pin // Parallel load, active low. Optional.
}

// Counter is an output bus whose lines are the outputs of an external
// binary counter, controlled only by a clock and a reset line.
//
// Writing a value above the current one issues the difference in clock
// pulses. Writing a value below the current one resets the counter and
// counts up from zero, which costs O(value) pulses: descending or random
// access patterns are slow.
//
// The parallel load line, if wired, is held inactive. Loading the counter
// directly would make backward seeks O(1), but is not implemented.
type Counter struct {
	Verbose bool
	Sleep   func(d time.Duration) // Hold for a half clock period; time.Sleep if nil.
	Pulses  int                   // Number of clock pulses issued.

	hal        gpio.Hal
	width      int
	halfPeriod time.Duration
	reset      gpio.Pin
	clock      gpio.Pin
	load       gpio.Pin
	value      uint64 // Rising clock edges since the last reset.
}

var _ Output = (*Counter)(nil)

// NewCounter configures the counter control lines, and resets the counter.
func NewCounter(hal gpio.Hal, cfg CounterConfig) (cb *Counter, err error) {
	err = checkWidth(cfg.Width)
	if err != nil {
		return
	}

	pins := []gpio.Pin{cfg.Reset, cfg.Clock}
	if len(cfg.Load) != 0 {
		pins = append(pins, cfg.Load)
	}

	// Only used to validate the control pins.
	_, err = newGpioBus(hal, pins)
	if err != nil {
		return
	}

	cb = &Counter{
		hal:   hal,
		width: cfg.Width,
		reset: cfg.Reset,
		clock: cfg.Clock,
		load:  cfg.Load,
	}

	if cfg.Frequency > 0 {
		cb.halfPeriod = time.Duration(float64(time.Second) * 0.5 / cfg.Frequency)
	}

	for _, pin := range pins {
		err = hal.Configure(pin, gpio.DIRECTION_OUTPUT)
		if err != nil {
			cb = nil
			return
		}
	}

	err = cb.Reset()
	if err != nil {
		cb = nil
	}

	return
}

// Width returns the number of counter outputs.
func (cb *Counter) Width() int {
	return cb.width
}

// UpperBound returns 2^Width().
func (cb *Counter) UpperBound() uint64 {
	return UpperBound(cb.width)
}

// HalfPeriod returns the hold time on each edge of a clock pulse.
func (cb *Counter) HalfPeriod() time.Duration {
	return cb.halfPeriod
}

// Value returns the last known counter value.
func (cb *Counter) Value() uint64 {
	return cb.value
}

// Reset clears the counter to zero.
func (cb *Counter) Reset() (err error) {
	if cb.Verbose {
		log.Printf("counter: reset")
	}

	if len(cb.load) != 0 {
		err = cb.hal.Write(cb.load, gpio.LEVEL_HIGH)
		if err != nil {
			return
		}
	}

	err = cb.hal.Write(cb.reset, gpio.LEVEL_LOW)
	if err != nil {
		return
	}

	// The chip clears on the rising edge, even if the rest of the
	// sequence fails.
	pulses := cb.Pulses
	err = cb.pulse()
	if cb.Pulses != pulses {
		cb.value = 0
	}
	if err != nil {
		return
	}

	err = cb.hal.Write(cb.reset, gpio.LEVEL_HIGH)

	return
}

func (cb *Counter) hold() {
	if cb.halfPeriod == 0 {
		return
	}

	if cb.Sleep != nil {
		cb.Sleep(cb.halfPeriod)
	} else {
		time.Sleep(cb.halfPeriod)
	}
}

// pulse issues one clock pulse. The chip counts on the rising edge, so
// the pulse is counted as soon as the clock is driven high.
func (cb *Counter) pulse() (err error) {
	err = cb.hal.Write(cb.clock, gpio.LEVEL_HIGH)
	if err != nil {
		return
	}
	cb.Pulses++
	cb.value++
	cb.hold()

	err = cb.hal.Write(cb.clock, gpio.LEVEL_LOW)
	if err != nil {
		return
	}
	cb.hold()

	return
}

// Write moves the counter to value.
func (cb *Counter) Write(value uint64) (err error) {
	err = checkRange(cb, value)
	if err != nil {
		return
	}

	return cb.move(value)
}

// Seek moves the counter relative to the start (io.SeekStart) or to its
// current value (io.SeekCurrent). The counter has no notion of its end,
// so io.SeekEnd is rejected with ErrSeekEnd.
func (cb *Counter) Seek(offset int64, whence int) (value uint64, err error) {
	var target int64

	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = int64(cb.value) + offset
	case io.SeekEnd:
		err = ErrSeekEnd
		return
	default:
		err = ErrSeekWhence
		return
	}

	if target < 0 {
		err = &ErrValue{Value: uint64(target), UpperBound: cb.UpperBound()}
		return
	}

	err = checkRange(cb, uint64(target))
	if err != nil {
		return
	}

	err = cb.move(uint64(target))
	value = cb.value

	return
}

func (cb *Counter) move(value uint64) (err error) {
	var steps uint64

	switch {
	case value > cb.value:
		steps = value - cb.value
	case value < cb.value:
		err = cb.Reset()
		if err != nil {
			return
		}
		steps = value
	default:
		return
	}

	if cb.Verbose {
		log.Printf("counter: %#x -> %#x, %d pulses", cb.value, value, steps)
	}

	for range steps {
		err = cb.pulse()
		if err != nil {
			return
		}
	}

	return
}

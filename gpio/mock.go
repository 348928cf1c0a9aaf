package gpio

import (
	"log"
)

// Mock is an in-memory Hal.
//
// Outputs remember their level, and every physical transition is counted.
// Inputs read back OnRead when set, otherwise the level stored in Level.
type Mock struct {
	Verbose bool

	Direction map[Pin]Direction
	Level     map[Pin]Level

	Writes  int         // Number of physical writes.
	Toggles map[Pin]int // Number of writes per pin.

	OnRead  func(pin Pin) Level
	OnWrite func(pin Pin, level Level)
}

var _ Hal = (*Mock)(nil)

// NewMock returns an empty mock pin layer.
func NewMock() *Mock {
	return &Mock{
		Direction: make(map[Pin]Direction),
		Level:     make(map[Pin]Level),
		Toggles:   make(map[Pin]int),
	}
}

// Configure sets the direction of a pin. Outputs start low.
func (mock *Mock) Configure(pin Pin, dir Direction) (err error) {
	if dir != DIRECTION_INPUT && dir != DIRECTION_OUTPUT {
		err = &ErrPin{Pin: pin, Err: ErrPinDirection}
		return
	}

	if mock.Verbose {
		log.Printf("gpio: configure %v as %v", pin, dir)
	}

	mock.Direction[pin] = dir
	if dir == DIRECTION_OUTPUT {
		mock.Level[pin] = LEVEL_LOW
	}

	return
}

// Read samples an input pin.
func (mock *Mock) Read(pin Pin) (level Level, err error) {
	dir, ok := mock.Direction[pin]
	if !ok {
		err = &ErrPin{Pin: pin, Err: ErrPinUnknown}
		return
	}
	if dir != DIRECTION_INPUT {
		err = &ErrPin{Pin: pin, Err: ErrPinDirection}
		return
	}

	if mock.OnRead != nil {
		level = mock.OnRead(pin)
	} else {
		level = mock.Level[pin]
	}

	if mock.Verbose {
		log.Printf("gpio: read %v as %v", pin, level)
	}

	return
}

// Write drives an output pin.
func (mock *Mock) Write(pin Pin, level Level) (err error) {
	dir, ok := mock.Direction[pin]
	if !ok {
		err = &ErrPin{Pin: pin, Err: ErrPinUnknown}
		return
	}
	if dir != DIRECTION_OUTPUT {
		err = &ErrPin{Pin: pin, Err: ErrPinDirection}
		return
	}

	if mock.Verbose {
		log.Printf("gpio: set %v to %v", pin, level)
	}

	mock.Level[pin] = level
	mock.Writes++
	mock.Toggles[pin]++

	if mock.OnWrite != nil {
		mock.OnWrite(pin, level)
	}

	return
}

// ResetCounts clears the write statistics.
func (mock *Mock) ResetCounts() {
	mock.Writes = 0
	mock.Toggles = make(map[Pin]int)
}

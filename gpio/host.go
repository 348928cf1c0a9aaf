// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package gpio

import (
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Host is the hardware context for the pins of the machine we run on.
//
// It is acquired with NewHost, and must be released with Close, which
// returns every pin it configured to a floating input.
type Host struct {
	Verbose bool

	pins   map[Pin]gpio.PinIO
	closed bool
}

var _ Hal = (*Host)(nil)

// NewHost initializes the periph.io host drivers.
func NewHost() (hst *Host, err error) {
	_, err = host.Init()
	if err != nil {
		return
	}

	hst = &Host{
		pins: make(map[Pin]gpio.PinIO),
	}

	return
}

func (hst *Host) lookup(pin Pin) (pio gpio.PinIO, err error) {
	if hst.closed {
		err = ErrClosed
		return
	}

	pio, ok := hst.pins[pin]
	if ok {
		return
	}

	pio = gpioreg.ByName(string(pin))
	if pio == nil {
		err = &ErrPin{Pin: pin, Err: ErrPinUnknown}
		return
	}

	hst.pins[pin] = pio

	return
}

// Configure sets the direction of a pin. Outputs start low.
func (hst *Host) Configure(pin Pin, dir Direction) (err error) {
	pio, err := hst.lookup(pin)
	if err != nil {
		return
	}

	if hst.Verbose {
		log.Printf("gpio: configure %v (%v) as %v", pin, pio.Name(), dir)
	}

	switch dir {
	case DIRECTION_INPUT:
		err = pio.In(gpio.PullNoChange, gpio.NoEdge)
	case DIRECTION_OUTPUT:
		err = pio.Out(gpio.Low)
	default:
		err = ErrPinDirection
	}

	if err != nil {
		err = &ErrPin{Pin: pin, Err: err}
	}

	return
}

// Read samples an input pin.
func (hst *Host) Read(pin Pin) (level Level, err error) {
	pio, err := hst.lookup(pin)
	if err != nil {
		return
	}

	level = Level(pio.Read() == gpio.High)

	return
}

// Write drives an output pin.
func (hst *Host) Write(pin Pin, level Level) (err error) {
	pio, err := hst.lookup(pin)
	if err != nil {
		return
	}

	err = pio.Out(gpio.Level(level))
	if err != nil {
		err = &ErrPin{Pin: pin, Err: err}
	}

	return
}

// Close releases all pins used, leaving them as inputs.
func (hst *Host) Close() (err error) {
	if hst.closed {
		return
	}

	for pin, pio := range hst.pins {
		if hst.Verbose {
			log.Printf("gpio: release %v", pin)
		}
		perr := pio.In(gpio.PullNoChange, gpio.NoEdge)
		if perr != nil && err == nil {
			err = &ErrPin{Pin: pin, Err: perr}
		}
	}

	hst.pins = nil
	hst.closed = true

	return
}

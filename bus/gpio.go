package bus

import (
	"github.com/ezrec/promdump/gpio"
	"github.com/ezrec/promdump/internal"
)

// lastValue is the last value driven onto an output bus, if known.
type lastValue struct {
	known bool
	value uint64
}

// gpioBus maps each bit of a value to a pin, index 0 being the LSB.
type gpioBus struct {
	hal  gpio.Hal
	pins []gpio.Pin
}

func newGpioBus(hal gpio.Hal, pins []gpio.Pin) (gb gpioBus, err error) {
	err = checkWidth(len(pins))
	if err != nil {
		return
	}

	seen := make(map[gpio.Pin]bool, len(pins))
	for _, pin := range pins {
		if seen[pin] {
			err = &gpio.ErrPin{Pin: pin, Err: ErrPinDuplicate}
			return
		}
		seen[pin] = true
	}

	gb = gpioBus{
		hal:  hal,
		pins: append([]gpio.Pin(nil), pins...),
	}

	return
}

// Width returns the number of pins of the bus.
func (gb *gpioBus) Width() int {
	return len(gb.pins)
}

// UpperBound returns 2^Width().
func (gb *gpioBus) UpperBound() uint64 {
	return UpperBound(len(gb.pins))
}

// Pins returns the pin assignment, LSB first.
func (gb *gpioBus) Pins() []gpio.Pin {
	return append([]gpio.Pin(nil), gb.pins...)
}

func (gb *gpioBus) configure(dir gpio.Direction) (err error) {
	for _, pin := range gb.pins {
		err = gb.hal.Configure(pin, dir)
		if err != nil {
			return
		}
	}
	return
}

func (gb *gpioBus) read() (value uint64, err error) {
	for n, pin := range gb.pins {
		var level gpio.Level
		level, err = gb.hal.Read(pin)
		if err != nil {
			return
		}
		if level == gpio.LEVEL_HIGH {
			value |= 1 << n
		}
	}
	return
}

// write only drives the pins whose level differs from the last value,
// or all of them when the last value is unknown.
func (gb *gpioBus) write(last *lastValue, value uint64) (err error) {
	bits := internal.Bits(value, len(gb.pins))
	if last.known {
		bits = internal.ChangedBits(last.value, value, len(gb.pins))
	}

	// A partial write leaves the bus in an unknown state.
	last.known = false

	for n, bit := range bits {
		err = gb.hal.Write(gb.pins[n], gpio.Level(bit))
		if err != nil {
			return
		}
	}

	last.known = true
	last.value = value

	return
}

// InputGpio is an input bus sampled directly from pins.
type InputGpio struct {
	gpioBus
}

var _ Input = (*InputGpio)(nil)

// NewInputGpio configures pins as an input bus, LSB first.
func NewInputGpio(hal gpio.Hal, pins []gpio.Pin) (ib *InputGpio, err error) {
	gb, err := newGpioBus(hal, pins)
	if err != nil {
		return
	}

	ib = &InputGpio{gpioBus: gb}
	err = ib.configure(gpio.DIRECTION_INPUT)
	if err != nil {
		ib = nil
	}

	return
}

// Reset does nothing, as inputs hold no state.
func (ib *InputGpio) Reset() (err error) {
	return
}

// Read samples every pin once.
func (ib *InputGpio) Read() (value uint64, err error) {
	return ib.read()
}

// OutputGpio is an output bus driven directly onto pins.
type OutputGpio struct {
	gpioBus
	last lastValue
}

var _ Output = (*OutputGpio)(nil)

// NewOutputGpio configures pins as an output bus, LSB first, and resets it.
func NewOutputGpio(hal gpio.Hal, pins []gpio.Pin) (ob *OutputGpio, err error) {
	gb, err := newGpioBus(hal, pins)
	if err != nil {
		return
	}

	ob = &OutputGpio{gpioBus: gb}
	err = ob.Reset()
	if err != nil {
		ob = nil
	}

	return
}

// Reset configures the pins as outputs and drives every one of them low.
func (ob *OutputGpio) Reset() (err error) {
	err = ob.configure(gpio.DIRECTION_OUTPUT)
	if err != nil {
		return
	}

	ob.last = lastValue{}

	return ob.Write(0)
}

// Write drives value onto the bus, toggling only the pins that change.
func (ob *OutputGpio) Write(value uint64) (err error) {
	err = checkRange(ob, value)
	if err != nil {
		return
	}

	return ob.write(&ob.last, value)
}

// BidirectionalGpio is a bus that switches its pins between input and
// output as it is read or written.
type BidirectionalGpio struct {
	gpioBus
	dir  gpio.Direction
	last lastValue
}

var _ Bidirectional = (*BidirectionalGpio)(nil)

// NewBidirectionalGpio configures pins as a bus, initially in direction dir.
func NewBidirectionalGpio(hal gpio.Hal, pins []gpio.Pin, dir gpio.Direction) (bb *BidirectionalGpio, err error) {
	gb, err := newGpioBus(hal, pins)
	if err != nil {
		return
	}

	bb = &BidirectionalGpio{gpioBus: gb, dir: dir}
	err = bb.Reset()
	if err != nil {
		bb = nil
	}

	return
}

// Direction returns the current direction of the bus.
func (bb *BidirectionalGpio) Direction() gpio.Direction {
	return bb.dir
}

// Reset configures the pins in the current direction. Outputs are
// driven low.
func (bb *BidirectionalGpio) Reset() (err error) {
	err = bb.configure(bb.dir)
	if err != nil {
		return
	}

	bb.last = lastValue{}
	if bb.dir == gpio.DIRECTION_OUTPUT {
		err = bb.write(&bb.last, 0)
	}

	return
}

func (bb *BidirectionalGpio) turn(dir gpio.Direction) (err error) {
	if bb.dir == dir {
		return
	}

	err = bb.configure(dir)
	if err != nil {
		return
	}

	bb.dir = dir
	bb.last = lastValue{}

	return
}

// Read turns the bus to input if needed, and samples it.
func (bb *BidirectionalGpio) Read() (value uint64, err error) {
	err = bb.turn(gpio.DIRECTION_INPUT)
	if err != nil {
		return
	}

	return bb.read()
}

// Write turns the bus to output if needed, and drives value onto it.
func (bb *BidirectionalGpio) Write(value uint64) (err error) {
	err = checkRange(bb, value)
	if err != nil {
		return
	}

	err = bb.turn(gpio.DIRECTION_OUTPUT)
	if err != nil {
		return
	}

	return bb.write(&bb.last, value)
}

// Package bus models the parallel buses between the reader and the chip.
//
// A bus has a width w, and so an address space of [0, 2^w). Buses are
// composed from small capability interfaces: every bus can be Reset, input
// buses are Readable, output buses are Writable, and bidirectional buses
// are both.
//
// Each bus exclusively owns its pins. Nothing checks that two buses do not
// share a pin; the caller (see the board package) must ensure it.
package bus

const (
	// WIDTH_MAX is the widest bus supported. Every offset of its address
	// space, up to and including the upper bound, fits an int64 seek
	// position.
	WIDTH_MAX = 62
)

// Resettable is a bus that can be returned to its initial state.
type Resettable interface {
	Reset() error
}

// Readable is a bus that can be sampled.
type Readable interface {
	Read() (value uint64, err error)
}

// Writable is a bus that can be driven.
type Writable interface {
	// Write drives the bus to value, which must be below the upper bound.
	Write(value uint64) error
}

// Bus is the capability set shared by all buses.
type Bus interface {
	Resettable
	// Width returns the number of bits of the bus.
	Width() int
	// UpperBound returns 2^Width().
	UpperBound() uint64
}

// Input is a readable bus.
type Input interface {
	Bus
	Readable
}

// Output is a writable bus.
type Output interface {
	Bus
	Writable
}

// Bidirectional is a bus that can be both read and written.
type Bidirectional interface {
	Bus
	Readable
	Writable
}

// UpperBound returns the size of the address space of a bus of width bits.
func UpperBound(width int) uint64 {
	return uint64(1) << width
}

func checkWidth(width int) (err error) {
	if width < 1 || width > WIDTH_MAX {
		err = &ErrWidth{Width: width}
	}
	return
}

func checkRange(bus Bus, value uint64) (err error) {
	if value >= bus.UpperBound() {
		err = &ErrValue{Value: value, UpperBound: bus.UpperBound()}
	}
	return
}

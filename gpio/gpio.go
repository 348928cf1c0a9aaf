// Package gpio defines the pin capability boundary used by the buses: a pin
// can be configured as an input or output, read, and written.
//
// Two implementations are provided. Host drives real hardware through
// periph.io, and Mock records every transition for tests and simulation.
package gpio

// Pin is a physical pin identifier, as known to the pin driver (for
// example "GPIO17" on a Raspberry Pi).
type Pin string

// Direction of a pin.
type Direction int

//go:generate go tool stringer -linecomment -type=Direction
const (
	DIRECTION_OUTPUT = Direction(0) // output
	DIRECTION_INPUT  = Direction(1) // input
)

// Level is the logic level of a pin.
type Level bool

const (
	LEVEL_LOW  = Level(false)
	LEVEL_HIGH = Level(true)
)

func (lvl Level) String() string {
	if lvl {
		return "high"
	}
	return "low"
}

// Hal is the pin capability set the buses depend on.
type Hal interface {
	// Configure sets the direction of a pin.
	Configure(pin Pin, dir Direction) error
	// Read samples the logic level of an input pin.
	Read(pin Pin) (Level, error)
	// Write drives the logic level of an output pin.
	Write(pin Pin, level Level) error
}

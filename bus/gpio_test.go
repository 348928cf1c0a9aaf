package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/promdump/gpio"
)

var testPins = []gpio.Pin{"P0", "P1", "P2", "P3"}

func TestUpperBound(t *testing.T) {
	assert := assert.New(t)

	for width := 1; width <= 32; width++ {
		assert.Equal(uint64(1)<<width, UpperBound(width))
	}
}

func TestNewOutputGpio_Errors(t *testing.T) {
	assert := assert.New(t)

	mock := gpio.NewMock()

	_, err := NewOutputGpio(mock, nil)
	var werr *ErrWidth
	assert.True(errors.As(err, &werr))
	assert.Equal(0, werr.Width)

	_, err = NewOutputGpio(mock, []gpio.Pin{"A", "B", "A"})
	assert.True(errors.Is(err, ErrPinDuplicate))
}

func TestOutputGpio_Reset(t *testing.T) {
	assert := assert.New(t)

	mock := gpio.NewMock()
	ob, err := NewOutputGpio(mock, testPins)
	assert.NoError(err)
	assert.Equal(4, ob.Width())
	assert.Equal(uint64(16), ob.UpperBound())
	assert.Equal(testPins, ob.Pins())

	// Reset writes every pin from an unknown state.
	for _, pin := range testPins {
		assert.Equal(gpio.DIRECTION_OUTPUT, mock.Direction[pin])
		assert.Equal(1, mock.Toggles[pin], pin)
		assert.Equal(gpio.LEVEL_LOW, mock.Level[pin])
	}
}

func TestOutputGpio_Write(t *testing.T) {
	assert := assert.New(t)

	mock := gpio.NewMock()
	ob, err := NewOutputGpio(mock, testPins)
	assert.NoError(err)
	mock.ResetCounts()

	// First write after reset toggles only the set bits.
	assert.NoError(ob.Write(0b1010))
	assert.Equal(2, mock.Writes)
	assert.Equal(1, mock.Toggles["P1"])
	assert.Equal(1, mock.Toggles["P3"])
	assert.Equal(gpio.LEVEL_HIGH, mock.Level["P1"])
	assert.Equal(gpio.LEVEL_LOW, mock.Level["P0"])

	// Same value toggles nothing.
	mock.ResetCounts()
	assert.NoError(ob.Write(0b1010))
	assert.Equal(0, mock.Writes)

	// Only the changed bits are toggled.
	assert.NoError(ob.Write(0b0011))
	assert.Equal(3, mock.Writes)
	assert.Equal(0, mock.Toggles["P1"])
	assert.Equal(gpio.LEVEL_HIGH, mock.Level["P0"])
	assert.Equal(gpio.LEVEL_HIGH, mock.Level["P1"])
	assert.Equal(gpio.LEVEL_LOW, mock.Level["P3"])
}

func TestOutputGpio_Write_Range(t *testing.T) {
	assert := assert.New(t)

	mock := gpio.NewMock()
	ob, _ := NewOutputGpio(mock, testPins)
	mock.ResetCounts()

	err := ob.Write(16)
	assert.True(errors.Is(err, ErrRange))
	assert.Equal(0, mock.Writes)
}

func TestOutputGpio_Write_Failure(t *testing.T) {
	assert := assert.New(t)

	mock := gpio.NewMock()
	ob, _ := NewOutputGpio(mock, testPins)

	// Steal a pin; the bus must be fully rewritten afterwards.
	mock.Configure("P2", gpio.DIRECTION_INPUT)
	err := ob.Write(0b0100)
	assert.True(errors.Is(err, gpio.ErrPinDirection))

	mock.Configure("P2", gpio.DIRECTION_OUTPUT)
	mock.ResetCounts()
	assert.NoError(ob.Write(0b0100))
	assert.Equal(4, mock.Writes)
}

func TestInputGpio_Read(t *testing.T) {
	assert := assert.New(t)

	mock := gpio.NewMock()
	ib, err := NewInputGpio(mock, testPins)
	assert.NoError(err)
	assert.NoError(ib.Reset())

	for _, pin := range testPins {
		assert.Equal(gpio.DIRECTION_INPUT, mock.Direction[pin])
	}

	mock.Level["P0"] = gpio.LEVEL_HIGH
	mock.Level["P2"] = gpio.LEVEL_HIGH
	mock.Level["P3"] = gpio.LEVEL_HIGH

	value, err := ib.Read()
	assert.NoError(err)
	assert.Equal(uint64(0b1101), value)
}

func TestBidirectionalGpio(t *testing.T) {
	assert := assert.New(t)

	mock := gpio.NewMock()
	bb, err := NewBidirectionalGpio(mock, testPins, gpio.DIRECTION_INPUT)
	assert.NoError(err)
	assert.Equal(gpio.DIRECTION_INPUT, bb.Direction())
	assert.Equal(0, mock.Writes)

	mock.Level["P1"] = gpio.LEVEL_HIGH
	value, err := bb.Read()
	assert.NoError(err)
	assert.Equal(uint64(0b0010), value)

	// Turning to output forces every pin to be written.
	assert.NoError(bb.Write(0b0001))
	assert.Equal(gpio.DIRECTION_OUTPUT, bb.Direction())
	assert.Equal(4, mock.Writes)

	mock.ResetCounts()
	assert.NoError(bb.Write(0b0011))
	assert.Equal(1, mock.Writes)

	// Turn back to input.
	_, err = bb.Read()
	assert.NoError(err)
	assert.Equal(gpio.DIRECTION_INPUT, mock.Direction["P0"])

	err = bb.Write(0x10)
	assert.True(errors.Is(err, ErrRange))
}

func TestNewOutputGpio_WidthMax(t *testing.T) {
	assert := assert.New(t)

	pins := make([]gpio.Pin, WIDTH_MAX+1)
	for n := range pins {
		pins[n] = gpio.Pin(string(rune(0x100 + n)))
	}

	ob, err := NewOutputGpio(gpio.NewMock(), pins[:WIDTH_MAX])
	assert.NoError(err)
	assert.Equal(uint64(1)<<62, ob.UpperBound())

	_, err = NewOutputGpio(gpio.NewMock(), pins)
	var werr *ErrWidth
	assert.True(errors.As(err, &werr))
	assert.Equal(WIDTH_MAX+1, werr.Width)
}

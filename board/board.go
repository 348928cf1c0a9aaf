// Package board describes how a memory chip is wired to the host: which
// pins drive the address bus, directly or through a counter chip, which
// pins sample the data bus, and which pins enable the chip.
//
// Boards are written as Starlark scripts. A script sets any of these
// globals, and the others keep the values of the default board:
//
//	name = "eprom-27c256"
//	data_pins = [14, 15, 18, 17, 27, 22, 23, 24]   # D0 first, BCM numbers
//	counter = {"width": 15, "clock": gpio(2), "reset": gpio(5), "frequency": 100000}
//	enable = [(gpio(3), LOW), (gpio(4), HIGH)]
//	block_size = 64
//	chunk_size = 1024
//	delay_us = 2
//
// A board whose address lines are wired directly sets address_pins, A0
// first, instead of counter:
//
//	address_pins = [gpio(10), gpio(9), gpio(11), gpio(25)]
package board

import (
	"fmt"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/promdump/bus"
	"github.com/ezrec/promdump/gpio"
	"github.com/ezrec/promdump/prom"
)

const (
	DATA_WIDTH_MAX    = 8
	ADDRESS_WIDTH_MAX = 32
)

// Counter is the wiring of an address counter chip.
type Counter struct {
	Width     int
	Frequency float64
	Clock     gpio.Pin
	Reset     gpio.Pin
	Load      gpio.Pin
}

// Board is the wiring of a chip to the host.
type Board struct {
	Name string

	Address []gpio.Pin // Address lines driven directly, A0 first.
	Counter *Counter   // Address counter, instead of Address.
	Data    []gpio.Pin // Data lines, D0 first.
	Enable  []prom.Enable

	BlockSize int
	ChunkSize int
	Delay     time.Duration // Propagation delay, if not calibrated.
}

// Pin returns the name of a Raspberry Pi BCM numbered pin.
func Pin(bcm int) gpio.Pin {
	return gpio.Pin(fmt.Sprintf("GPIO%d", bcm))
}

func pins(bcms ...int) (list []gpio.Pin) {
	for _, bcm := range bcms {
		list = append(list, Pin(bcm))
	}
	return
}

// Default returns the Raspberry Pi 40-pin header wiring: fifteen direct
// address lines, eight data lines through a level shifter, an active low
// chip enable on BCM 3, and an active high output enable on BCM 4.
func Default() *Board {
	return &Board{
		Name:    "rpi-40pin",
		Address: pins(10, 9, 11, 25, 8, 7, 5, 6, 12, 13, 19, 16, 20, 21, 26),
		Data:    pins(14, 15, 18, 17, 27, 22, 23, 24),
		Enable: []prom.Enable{
			{Pin: Pin(3), Active: gpio.LEVEL_LOW},
			{Pin: Pin(4), Active: gpio.LEVEL_HIGH},
		},
		BlockSize: prom.DEFAULT_BLOCK_SIZE,
		ChunkSize: prom.DEFAULT_CHUNK_SIZE,
	}
}

// AddressWidth returns the number of address lines the board drives.
func (bd *Board) AddressWidth() int {
	if bd.Counter != nil {
		return bd.Counter.Width
	}
	return len(bd.Address)
}

// Validate checks the bus widths, and that no pin is used twice.
func (bd *Board) Validate() (err error) {
	if len(bd.Data) < 1 || len(bd.Data) > DATA_WIDTH_MAX {
		return ErrDataWidth
	}

	width := bd.AddressWidth()
	if width < 1 || width > ADDRESS_WIDTH_MAX {
		return ErrAddressWidth
	}

	if bd.Counter != nil && len(bd.Address) != 0 {
		return ErrAddressBoth
	}

	if bd.BlockSize <= 0 {
		return &ErrGlobal{Name: "block_size", Err: ErrValue}
	}

	if bd.ChunkSize <= 0 {
		return &ErrGlobal{Name: "chunk_size", Err: ErrValue}
	}

	if bd.Delay < 0 {
		return &ErrGlobal{Name: "delay_us", Err: ErrValue}
	}

	used := append([]gpio.Pin{}, bd.Address...)
	used = append(used, bd.Data...)
	if bd.Counter != nil {
		used = append(used, bd.Counter.Clock, bd.Counter.Reset)
		if len(bd.Counter.Load) != 0 {
			used = append(used, bd.Counter.Load)
		}
	}
	for _, en := range bd.Enable {
		used = append(used, en.Pin)
	}

	seen := make(map[gpio.Pin]bool, len(used))
	for _, pin := range used {
		if seen[pin] {
			return &gpio.ErrPin{Pin: pin, Err: ErrPinDuplicate}
		}
		seen[pin] = true
	}

	return
}

// Build returns the address and data buses of the board, over hal.
func (bd *Board) Build(hal gpio.Hal) (address bus.Output, data bus.Input, err error) {
	err = bd.Validate()
	if err != nil {
		return
	}

	if bd.Counter != nil {
		address, err = bus.NewCounter(hal, bus.CounterConfig{
			Width:     bd.Counter.Width,
			Frequency: bd.Counter.Frequency,
			Reset:     bd.Counter.Reset,
			Clock:     bd.Counter.Clock,
			Load:      bd.Counter.Load,
		})
	} else {
		address, err = bus.NewOutputGpio(hal, bd.Address)
	}
	if err != nil {
		address = nil
		return
	}

	data, err = bus.NewInputGpio(hal, bd.Data)
	if err != nil {
		address = nil
		data = nil
	}

	return
}

func builtinGpio(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var bcm int
	err = starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &bcm)
	if err != nil {
		return
	}

	value = starlark.String(Pin(bcm))
	return
}

// Load runs a board script, and returns the board it describes. The
// script is read from src if not nil, otherwise from the file filename.
func Load(filename string, src any) (bd *Board, err error) {
	thread := starlark.Thread{Name: filename}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{
		"gpio": starlark.NewBuiltin("gpio", builtinGpio),
		"LOW":  starlark.MakeInt(0),
		"HIGH": starlark.MakeInt(1),
	}

	globals, err := starlark.ExecFileOptions(&opts, &thread, filename, src, pred)
	if err != nil {
		return
	}

	bd = Default()

	err = bd.apply(globals)
	if err != nil {
		bd = nil
		return
	}

	err = bd.Validate()
	if err != nil {
		bd = nil
	}

	return
}

func (bd *Board) apply(globals starlark.StringDict) (err error) {
	for name, value := range globals {
		switch name {
		case "name":
			str, ok := value.(starlark.String)
			if !ok {
				err = ErrType
				break
			}
			bd.Name = string(str)
		case "address_pins":
			bd.Address, err = pinList(value)
			if err == nil && globals["counter"] == nil {
				bd.Counter = nil
			}
		case "data_pins":
			bd.Data, err = pinList(value)
		case "counter":
			bd.Counter, err = counterOf(value)
			if err == nil && globals["address_pins"] == nil {
				bd.Address = nil
			}
		case "enable":
			bd.Enable, err = enableList(value)
		case "block_size":
			bd.BlockSize, err = intOf(value)
		case "chunk_size":
			bd.ChunkSize, err = intOf(value)
		case "delay_us":
			var us float64
			us, err = floatOf(value)
			bd.Delay = time.Duration(us * float64(time.Microsecond))
		default:
			// Helpers and temporaries of the script.
			continue
		}

		if err != nil {
			err = &ErrGlobal{Name: name, Err: err}
			return
		}
	}

	return
}

func intOf(value starlark.Value) (n int, err error) {
	st_int, ok := value.(starlark.Int)
	if !ok {
		err = ErrType
		return
	}

	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > 1<<31 {
		err = ErrValue
		return
	}

	n = int(st_int64)
	return
}

func floatOf(value starlark.Value) (x float64, err error) {
	x, ok := starlark.AsFloat(value)
	if !ok {
		err = ErrType
	}
	return
}

// pinOf accepts a pin name, or a BCM pin number.
func pinOf(value starlark.Value) (pin gpio.Pin, err error) {
	switch st := value.(type) {
	case starlark.String:
		pin = gpio.Pin(st)
	case starlark.Int:
		var bcm int
		bcm, err = intOf(st)
		pin = Pin(bcm)
	default:
		err = ErrType
	}
	return
}

func levelOf(value starlark.Value) (level gpio.Level, err error) {
	n, err := intOf(value)
	if err != nil {
		return
	}

	switch n {
	case 0:
		level = gpio.LEVEL_LOW
	case 1:
		level = gpio.LEVEL_HIGH
	default:
		err = ErrValue
	}

	return
}

func pinList(value starlark.Value) (list []gpio.Pin, err error) {
	seq, ok := value.(starlark.Indexable)
	if !ok {
		err = ErrType
		return
	}

	list = make([]gpio.Pin, 0, seq.Len())
	for n := range seq.Len() {
		var pin gpio.Pin
		pin, err = pinOf(seq.Index(n))
		if err != nil {
			list = nil
			return
		}
		list = append(list, pin)
	}

	return
}

func enableList(value starlark.Value) (list []prom.Enable, err error) {
	seq, ok := value.(starlark.Indexable)
	if !ok {
		err = ErrType
		return
	}

	for n := range seq.Len() {
		pair, ok := seq.Index(n).(starlark.Tuple)
		if !ok || pair.Len() != 2 {
			err = ErrType
			return
		}

		var en prom.Enable
		en.Pin, err = pinOf(pair[0])
		if err != nil {
			return
		}
		en.Active, err = levelOf(pair[1])
		if err != nil {
			return
		}

		list = append(list, en)
	}

	return
}

func counterOf(value starlark.Value) (ctr *Counter, err error) {
	dict, ok := value.(*starlark.Dict)
	if !ok {
		err = ErrType
		return
	}

	ctr = &Counter{}
	required := map[string]bool{"width": true, "clock": true, "reset": true}

	for _, item := range dict.Items() {
		key, ok := item[0].(starlark.String)
		if !ok {
			err = ErrType
			break
		}

		switch string(key) {
		case "width":
			ctr.Width, err = intOf(item[1])
		case "clock":
			ctr.Clock, err = pinOf(item[1])
		case "reset":
			ctr.Reset, err = pinOf(item[1])
		case "load":
			ctr.Load, err = pinOf(item[1])
		case "frequency":
			ctr.Frequency, err = floatOf(item[1])
			if err == nil && ctr.Frequency < 0 {
				err = ErrValue
			}
		default:
			err = &ErrGlobal{Name: string(key), Err: ErrKey}
		}
		if err != nil {
			break
		}

		delete(required, string(key))
	}

	if err == nil && len(required) != 0 {
		err = ErrKeyMissing
	}

	if err != nil {
		ctr = nil
	}

	return
}

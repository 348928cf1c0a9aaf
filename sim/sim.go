// Package sim simulates a memory chip wired to a gpio.Mock, so that the
// whole read path can be exercised without hardware.
//
// Time is virtual: it only advances when Sleep is called, so the
// simulation is deterministic. Data read too soon after the address
// changed is noise.
package sim

import (
	"math/rand"
	"time"

	"github.com/ezrec/promdump/gpio"
	"github.com/ezrec/promdump/internal"
)

// Counter is a binary counter chip, with an active low synchronous reset,
// counting on the rising edge of its clock.
type Counter struct {
	Width int
	Clock gpio.Pin
	Reset gpio.Pin

	value uint64
	clock gpio.Level
}

// Value returns the counter outputs.
func (ctr *Counter) Value() uint64 {
	return ctr.value & internal.Mask(ctr.Width)
}

// Prom is a read-only memory chip.
type Prom struct {
	Image   []byte     // Contents, repeated over the address space.
	Address []gpio.Pin // Address lines, LSB first, when driven directly.
	Counter *Counter   // Counter driving the address lines, if not nil.
	Data    []gpio.Pin // Data lines, LSB first.

	// Enable lines, and their active level. Data lines float high
	// unless every enable line is active.
	Enable map[gpio.Pin]gpio.Level

	Settle time.Duration // Time for data to become valid after an address change.
	Seed   int64         // Seed of the noise.

	mock    *gpio.Mock
	noise   *rand.Rand
	now     time.Duration
	changed time.Duration
}

// Attach wires the chip to the mock pins.
func (prom *Prom) Attach(mock *gpio.Mock) {
	prom.mock = mock
	prom.noise = rand.New(rand.NewSource(prom.Seed))
	prom.now = 0
	prom.changed = 0

	mock.OnWrite = prom.onWrite
	mock.OnRead = prom.onRead
}

// Sleep advances the virtual time.
func (prom *Prom) Sleep(d time.Duration) {
	prom.now += d
}

// Now returns the virtual time.
func (prom *Prom) Now() time.Duration {
	return prom.now
}

// Addr returns the address presented to the chip.
func (prom *Prom) Addr() (address uint64) {
	if prom.Counter != nil {
		return prom.Counter.Value()
	}

	for n, pin := range prom.Address {
		if prom.mock.Level[pin] == gpio.LEVEL_HIGH {
			address |= 1 << n
		}
	}

	return
}

func (prom *Prom) enabled() bool {
	for pin, active := range prom.Enable {
		if prom.mock.Level[pin] != active {
			return false
		}
	}
	return true
}

func (prom *Prom) onWrite(pin gpio.Pin, level gpio.Level) {
	ctr := prom.Counter
	if ctr != nil {
		if pin == ctr.Clock {
			if level == gpio.LEVEL_HIGH && ctr.clock == gpio.LEVEL_LOW {
				if prom.mock.Level[ctr.Reset] == gpio.LEVEL_LOW {
					ctr.value = 0
				} else {
					ctr.value++
				}
				prom.changed = prom.now
			}
			ctr.clock = level
		}
		return
	}

	for _, apin := range prom.Address {
		if apin == pin {
			prom.changed = prom.now
			return
		}
	}
}

func (prom *Prom) onRead(pin gpio.Pin) gpio.Level {
	bit := -1
	for n, dpin := range prom.Data {
		if dpin == pin {
			bit = n
			break
		}
	}

	if bit < 0 {
		return prom.mock.Level[pin]
	}

	if !prom.enabled() {
		return gpio.LEVEL_HIGH
	}

	if prom.now-prom.changed < prom.Settle {
		return gpio.Level(prom.noise.Intn(2) == 1)
	}

	if len(prom.Image) == 0 {
		return gpio.LEVEL_HIGH
	}

	value := prom.Image[prom.Addr()%uint64(len(prom.Image))]

	return gpio.Level((value>>bit)&1 == 1)
}

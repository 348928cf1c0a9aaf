// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package prom dumps a whole memory chip: it drives the chip enable
// lines, walks the requested address range in chunks, and asks the
// operator to set any address lines the reader cannot drive itself.
package prom

import (
	"fmt"
	"io"
	"log"
	"math/bits"

	"github.com/ezrec/promdump/bus"
	"github.com/ezrec/promdump/gpio"
	"github.com/ezrec/promdump/sink"
	"github.com/ezrec/promdump/source"
	"github.com/ezrec/promdump/stream"
	"github.com/ezrec/promdump/translate"
)

const (
	DEFAULT_BLOCK_SIZE = 64
	DEFAULT_CHUNK_SIZE = 1024
)

// Enable is a chip enable line, and the level at which it is active.
type Enable struct {
	Pin    gpio.Pin
	Active gpio.Level
}

// Prompter asks the operator to do something, and waits until it is done.
type Prompter interface {
	Prompt(message string) error
}

// Source is a byte source of known size.
type Source interface {
	source.Source
	UpperBound() uint64
}

// addresser is a sink that renders addresses.
type addresser interface {
	Seek(offset uint64) error
}

// Reader dumps the contents of a chip.
//
// The physical address space is the one the source can reach on its own.
// When LogicalWidth is wider than the physical address bus, the chip is
// read as a series of banks, and the Prompter is asked to set the high
// address lines before each one.
type Reader struct {
	Verbose bool

	Start        uint64 // First logical address to read.
	Top          uint64 // Logical address to stop at; the whole chip if 0.
	LogicalWidth int    // Width of the chip address bus; the physical width if 0.
	ChunkSize    int    // Bytes read per stream read.

	Enable   []Enable
	Prompter Prompter
	Progress stream.ProgressReporter // Told the progress of the whole dump.

	hal    gpio.Hal
	source Source
	stream *stream.Reader
	sinks  []stream.Sink
	hashes *sink.Hashes
}

// NewReader returns a reader over src, whose enable lines are driven via
// hal. The source is read in blocks of blockSize bytes, and every block is
// hashed.
func NewReader(hal gpio.Hal, src Source, blockSize int) (pr *Reader, err error) {
	rd, err := stream.NewReader(src, blockSize)
	if err != nil {
		return
	}

	pr = &Reader{
		ChunkSize: DEFAULT_CHUNK_SIZE,
		hal:       hal,
		source:    src,
		stream:    rd,
		hashes:    sink.NewHashes(),
	}

	pr.AddSink(pr.hashes)

	return
}

// AddSink appends a sink, given every block of the dump.
func (pr *Reader) AddSink(sk stream.Sink) {
	pr.sinks = append(pr.sinks, sk)
	pr.stream.AddSink(sk)
}

// Hashes returns the hashes of the last dump.
func (pr *Reader) Hashes() *sink.Hashes {
	return pr.hashes
}

// geometry returns the size of a bank, the number of banks, and the width
// of the bank number.
func (pr *Reader) geometry() (bankSize uint64, banks uint64, bankWidth int, err error) {
	bankSize = pr.source.UpperBound()
	if bankSize == 0 {
		err = ErrUpperBound
		return
	}

	physicalWidth := bits.Len64(bankSize - 1)
	banks = 1

	switch {
	case pr.LogicalWidth < 0, pr.LogicalWidth > bus.WIDTH_MAX:
		err = ErrLogicalWidth
	case pr.LogicalWidth == 0:
	case pr.LogicalWidth < physicalWidth:
		bankSize = 1 << pr.LogicalWidth
	case pr.LogicalWidth > physicalWidth:
		bankWidth = pr.LogicalWidth - physicalWidth
		bankSize = 1 << physicalWidth
		banks = 1 << bankWidth
	}

	return
}

// Bounds returns the logical address range a Dump reads.
func (pr *Reader) Bounds() (lower uint64, upper uint64, err error) {
	bankSize, banks, _, err := pr.geometry()
	if err != nil {
		return
	}

	upper = bankSize * banks
	if pr.Top != 0 {
		upper = min(upper, pr.Top)
	}

	lower = pr.Start
	if lower > upper {
		err = ErrStart
	}

	return
}

func (pr *Reader) enable(active bool) (err error) {
	for _, en := range pr.Enable {
		level := en.Active
		if !active {
			level = !level
		}

		if pr.Verbose {
			log.Printf("prom: enable %v %v", en.Pin, level)
		}

		err = pr.hal.Write(en.Pin, level)
		if err != nil {
			return
		}
	}
	return
}

// Configure sets the enable lines as outputs, leaving the chip disabled.
func (pr *Reader) Configure() (err error) {
	for _, en := range pr.Enable {
		err = pr.hal.Configure(en.Pin, gpio.DIRECTION_OUTPUT)
		if err != nil {
			return
		}
	}

	return pr.enable(false)
}

// Enabled runs fn with the chip enabled. The chip is disabled again
// when fn returns, even on error.
func (pr *Reader) Enabled(fn func() error) (err error) {
	err = pr.enable(true)
	if err != nil {
		return
	}

	defer func() {
		derr := pr.enable(false)
		if err == nil {
			err = derr
		}
	}()

	err = fn()

	return
}

// Dump reads the whole logical address range through the sinks, and
// returns the number of bytes read. The chip is enabled only for the
// duration of the dump.
func (pr *Reader) Dump() (count uint64, err error) {
	if pr.ChunkSize <= 0 {
		err = ErrChunkSize
		return
	}

	bankSize, _, bankWidth, err := pr.geometry()
	if err != nil {
		return
	}

	lower, upper, err := pr.Bounds()
	if err != nil {
		return
	}

	err = pr.stream.Reset()
	if err != nil {
		return
	}

	for _, sk := range pr.sinks {
		ad, ok := sk.(addresser)
		if ok {
			err = ad.Seek(lower)
			if err != nil {
				return
			}
		}
	}

	err = pr.Enabled(func() (err error) {
		count, err = pr.dump(bankSize, bankWidth, lower, upper)
		return
	})

	return
}

// dump reads [lower, upper), bank by bank.
func (pr *Reader) dump(bankSize uint64, bankWidth int, lower, upper uint64) (count uint64, err error) {
	total := upper - lower

	for bank := lower / bankSize; bank*bankSize < upper; bank++ {
		base := bank * bankSize

		if bankWidth > 0 && pr.Prompter != nil {
			msbs := fmt.Sprintf("%0*b", bankWidth, bank)
			err = pr.Prompter.Prompt(f("Set the %d high address lines to %s", bankWidth, msbs))
			if err != nil {
				return
			}
		}

		offset := max(lower, base) - base
		end := min(upper-base, bankSize)

		if pr.Verbose {
			log.Printf("prom: bank %d, %#x..%#x", bank, base+offset, base+end)
		}

		_, err = pr.stream.Seek(int64(offset), io.SeekStart)
		if err != nil {
			return
		}

		for offset < end {
			var data []byte
			data, err = pr.stream.Read(int(min(uint64(pr.ChunkSize), end-offset)))
			if err != nil {
				return
			}

			if len(data) == 0 {
				break
			}

			offset += uint64(len(data))
			count += uint64(len(data))

			if pr.Progress != nil {
				pr.Progress.Progress(int(100 * count / total))
			}
		}
	}

	return
}

// WriteMetadata records the image name, and the hashes of the last dump.
func (pr *Reader) WriteMetadata(w io.Writer, imageName string) (err error) {
	_, err = translate.Fprintf(w, "%s\n", imageName)
	if err != nil {
		return
	}

	_, err = io.WriteString(w, pr.hashes.String()+"\n")

	return
}

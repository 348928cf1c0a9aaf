// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package source

import (
	"io"
	"time"

	"github.com/ezrec/promdump/bus"
)

// BusReader reads bytes from a memory chip, by driving its address bus and
// sampling its data bus.
//
// Every byte read drives the address bus, even when re-reading the same
// offset, so that the hardware always follows the logical offset.
type BusReader struct {
	Delay time.Duration         // Propagation delay between address and data.
	Sleep func(d time.Duration) // Waits the propagation delay; time.Sleep if nil.

	address    bus.Output
	data       bus.Input
	upperBound uint64
	offset     uint64
}

var _ Source = (*BusReader)(nil)

// NewBusReader returns a reader over an address and data bus pair. The
// buses are borrowed, and are reset.
func NewBusReader(address bus.Output, data bus.Input) (br *BusReader, err error) {
	if data.Width() > 8 {
		err = ErrDataWidth
		return
	}

	br = &BusReader{
		address:    address,
		data:       data,
		upperBound: address.UpperBound(),
	}

	err = br.Reset()
	if err != nil {
		br = nil
	}

	return
}

// SetPropagationDelay sets the settle time before sampling data.
func (br *BusReader) SetPropagationDelay(delay time.Duration) {
	br.Delay = delay
}

// PropagationDelay returns the settle time before sampling data.
func (br *BusReader) PropagationDelay() time.Duration {
	return br.Delay
}

// UpperBound returns the size of the address space.
func (br *BusReader) UpperBound() uint64 {
	return br.upperBound
}

// Offset returns the current read offset.
func (br *BusReader) Offset() uint64 {
	return br.offset
}

// Reset resets both buses, and rewinds to offset 0.
func (br *BusReader) Reset() (err error) {
	err = br.address.Reset()
	if err != nil {
		return
	}

	err = br.data.Reset()
	if err != nil {
		return
	}

	br.offset = 0

	return
}

// Seek moves the offset, and drives the address bus to it. Seeking to the
// upper bound is allowed, and leaves the reader at EOF.
func (br *BusReader) Seek(offset int64, whence int) (pos int64, err error) {
	var target int64

	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = int64(br.offset) + offset
	case io.SeekEnd:
		target = int64(br.upperBound) - offset
	default:
		err = &ErrSeek{Offset: offset, Whence: whence, Err: ErrSeekWhence}
		return
	}

	if target < 0 || uint64(target) > br.upperBound {
		err = &ErrSeek{Offset: offset, Whence: whence, Err: ErrSeekRange}
		pos = int64(br.offset)
		return
	}

	br.offset = uint64(target)
	pos = target

	if br.offset < br.upperBound {
		err = br.address.Write(br.offset)
	}

	return
}

func (br *BusReader) settle() {
	if br.Delay <= 0 {
		return
	}

	if br.Sleep != nil {
		br.Sleep(br.Delay)
	} else {
		time.Sleep(br.Delay)
	}
}

// Read returns up to size bytes, stopping short at the upper bound.
func (br *BusReader) Read(size int) (buffer []byte, err error) {
	count := uint64(max(size, 0))
	count = min(count, br.upperBound-br.offset)

	buffer = make([]byte, 0, count)

	for range count {
		err = br.address.Write(br.offset)
		if err != nil {
			return
		}

		br.settle()

		var value uint64
		value, err = br.data.Read()
		if err != nil {
			return
		}

		buffer = append(buffer, byte(value))
		br.offset++
	}

	return
}

// IsEOF is true once the offset reaches the upper bound.
func (br *BusReader) IsEOF() bool {
	return br.offset >= br.upperBound
}

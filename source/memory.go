package source

import (
	"io"
)

// Memory is a byte source over an in-memory image.
type Memory struct {
	Data []byte

	offset int
}

var _ Source = (*Memory)(nil)

// Reset rewinds to the start of the image.
func (mem *Memory) Reset() (err error) {
	mem.offset = 0
	return
}

// Seek moves the offset within [0, len(Data)].
func (mem *Memory) Seek(offset int64, whence int) (pos int64, err error) {
	var target int64

	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = int64(mem.offset) + offset
	case io.SeekEnd:
		target = int64(len(mem.Data)) - offset
	default:
		err = &ErrSeek{Offset: offset, Whence: whence, Err: ErrSeekWhence}
		return
	}

	if target < 0 || target > int64(len(mem.Data)) {
		err = &ErrSeek{Offset: offset, Whence: whence, Err: ErrSeekRange}
		pos = int64(mem.offset)
		return
	}

	mem.offset = int(target)
	pos = target

	return
}

// Read returns a copy of up to size bytes.
func (mem *Memory) Read(size int) (data []byte, err error) {
	end := mem.offset + min(max(size, 0), len(mem.Data)-mem.offset)
	data = append([]byte{}, mem.Data[mem.offset:end]...)
	mem.offset = end
	return
}

// UpperBound returns the size of the image.
func (mem *Memory) UpperBound() uint64 {
	return uint64(len(mem.Data))
}

// IsEOF is true at the end of the image.
func (mem *Memory) IsEOF() bool {
	return mem.offset >= len(mem.Data)
}

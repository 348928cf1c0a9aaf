package sink

import (
	"io"

	"github.com/ezrec/promdump/stream"
)

// File writes the bytes read into a binary image.
//
// The first error met is kept, and returned by every later Write and by
// Close.
type File struct {
	Output io.WriteSeeker

	err error
}

var _ stream.Sink = (*File)(nil)

// Reset rewinds the image to its start.
func (fl *File) Reset() {
	if fl.err != nil {
		return
	}
	_, fl.err = fl.Output.Seek(0, io.SeekStart)
}

// Seek moves to offset within the image.
func (fl *File) Seek(offset int64) (err error) {
	if fl.err != nil {
		return fl.err
	}
	_, fl.err = fl.Output.Seek(offset, io.SeekStart)
	return fl.err
}

// Write appends data at the current position of the image.
func (fl *File) Write(data []byte) (n int, err error) {
	if fl.err != nil {
		err = fl.err
		return
	}

	n, err = fl.Output.Write(data)
	fl.err = err

	return
}

// Close closes the image, if it can be closed.
func (fl *File) Close() (err error) {
	err = fl.err

	closer, ok := fl.Output.(io.Closer)
	if ok {
		cerr := closer.Close()
		if err == nil {
			err = cerr
		}
	}

	return
}

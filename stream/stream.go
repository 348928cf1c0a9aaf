// Package stream paces reads from a byte source in fixed size blocks, and
// fans each block out to a list of sinks.
package stream

import (
	"io"

	"github.com/ezrec/promdump/source"
)

// Sink consumes the blocks read from a source. Any hash.Hash is a Sink.
type Sink interface {
	io.Writer
	// Reset discards everything written so far.
	Reset()
}

// ProgressReporter is told how far through a Read we are.
type ProgressReporter interface {
	Progress(percent int)
}

// Reader reads from a source in blocks of BlockSize bytes.
//
// The source and sinks are borrowed: Reset is forwarded to them, but
// nothing is ever closed.
type Reader struct {
	source    source.Source
	blockSize int
	sinks     []Sink
	reporter  ProgressReporter
}

var _ source.Source = (*Reader)(nil)

// NewReader returns a reader over src, in blocks of blockSize bytes.
func NewReader(src source.Source, blockSize int) (rd *Reader, err error) {
	if blockSize <= 0 {
		err = ErrBlockSize
		return
	}

	rd = &Reader{
		source:    src,
		blockSize: blockSize,
	}

	return
}

// BlockSize returns the largest block a sink is given at once.
func (rd *Reader) BlockSize() int {
	return rd.blockSize
}

// AddSink appends a sink. Sinks receive blocks in the order added.
func (rd *Reader) AddSink(sink Sink) {
	rd.sinks = append(rd.sinks, sink)
}

// AddProgressReporter sets the reporter of Read progress.
func (rd *Reader) AddProgressReporter(reporter ProgressReporter) {
	rd.reporter = reporter
}

// Reset resets the source, and every sink.
func (rd *Reader) Reset() (err error) {
	err = rd.source.Reset()
	if err != nil {
		return
	}

	for _, sink := range rd.sinks {
		sink.Reset()
	}

	return
}

// Seek moves the source offset.
func (rd *Reader) Seek(offset int64, whence int) (int64, error) {
	return rd.source.Seek(offset, whence)
}

// Read reads up to size bytes, block by block, giving each block to every
// sink. Fewer bytes are returned only when the source ends.
func (rd *Reader) Read(size int) (data []byte, err error) {
	total := size

	for size > 0 {
		var block []byte
		block, err = rd.source.Read(min(size, rd.blockSize))
		if err != nil {
			return
		}

		if len(block) == 0 {
			break
		}

		data = append(data, block...)

		for _, sink := range rd.sinks {
			_, err = sink.Write(block)
			if err != nil {
				return
			}
		}

		size -= len(block)

		if rd.reporter != nil {
			rd.reporter.Progress(100 * (total - size) / total)
		}

		if rd.source.IsEOF() {
			break
		}
	}

	return
}

// IsEOF is true when the source has no more bytes.
func (rd *Reader) IsEOF() bool {
	return rd.source.IsEOF()
}

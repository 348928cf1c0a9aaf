// Package source provides byte sources: sequential, seekable streams of
// bytes whose end is reported by a short read rather than an error.
package source

// Source is a seekable byte stream.
type Source interface {
	// Reset returns the source to its initial state, at offset 0.
	Reset() error
	// Seek moves the read offset, with the whence values of io.Seeker.
	Seek(offset int64, whence int) (int64, error)
	// Read returns up to size bytes. Fewer bytes are returned only at
	// the end of the source.
	Read(size int) ([]byte, error)
	// IsEOF is true when the source has no more bytes.
	IsEOF() bool
}

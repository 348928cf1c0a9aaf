// Package sink provides consumers of the bytes read from a chip: a hex
// dump renderer, a collection of checksums and digests, and a binary
// image file.
//
// Every sink satisfies stream.Sink.
package sink

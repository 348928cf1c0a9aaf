package sink

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"iter"
	"strings"

	"github.com/ezrec/promdump/stream"
)

// Hashes computes every checksum and digest of the bytes written to it:
// crc32, md5, sha1 and sha256, in that order.
type Hashes struct {
	names  []string
	hashes []hash.Hash
}

var _ stream.Sink = (*Hashes)(nil)

// NewHashes returns an empty set of hashes.
func NewHashes() *Hashes {
	return &Hashes{
		names: []string{"crc32", "md5", "sha1", "sha256"},
		hashes: []hash.Hash{
			crc32.NewIEEE(),
			md5.New(),
			sha1.New(),
			sha256.New(),
		},
	}
}

// Reset restarts every hash.
func (hs *Hashes) Reset() {
	for _, h := range hs.hashes {
		h.Reset()
	}
}

// Write adds data to every hash.
func (hs *Hashes) Write(data []byte) (n int, err error) {
	for _, h := range hs.hashes {
		h.Write(data)
	}
	n = len(data)
	return
}

// Sums iterates over the hash names, and their digests in hex.
func (hs *Hashes) Sums() iter.Seq2[string, string] {
	return func(yield func(name string, sum string) bool) {
		for n, h := range hs.hashes {
			if !yield(hs.names[n], hex.EncodeToString(h.Sum(nil))) {
				return
			}
		}
	}
}

// Sum returns the hex digest of the named hash.
func (hs *Hashes) Sum(name string) (sum string, ok bool) {
	for hname, hsum := range hs.Sums() {
		if hname == name {
			sum = hsum
			ok = true
			break
		}
	}
	return
}

// String renders one "name: digest" line per hash.
func (hs *Hashes) String() string {
	var text strings.Builder
	for name, sum := range hs.Sums() {
		fmt.Fprintf(&text, "%v: %v\n", name, sum)
	}
	return text.String()
}

package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashes(t *testing.T) {
	assert := assert.New(t)

	hs := NewHashes()
	hs.Write([]byte("The quick brown fox "))
	hs.Write([]byte("jumps over the lazy dog"))

	var names []string
	for name := range hs.Sums() {
		names = append(names, name)
	}
	assert.Equal([]string{"crc32", "md5", "sha1", "sha256"}, names)

	sum, ok := hs.Sum("crc32")
	assert.True(ok)
	assert.Equal("414fa339", sum)

	sum, _ = hs.Sum("md5")
	assert.Equal("9e107d9d372bb6826bd81d3542a419d6", sum)

	sum, _ = hs.Sum("sha1")
	assert.Equal("2fd4e1c67a2d28fced849ee1bb76e7391b93eb12", sum)

	sum, _ = hs.Sum("sha256")
	assert.Equal("d7a8fbb307d7809469ca9abcb0082e4f8d5651e46d3cdb762d02d0bf37c9e592", sum)

	_, ok = hs.Sum("sha512")
	assert.False(ok)

	assert.Equal("crc32: 414fa339\n"+
		"md5: 9e107d9d372bb6826bd81d3542a419d6\n"+
		"sha1: 2fd4e1c67a2d28fced849ee1bb76e7391b93eb12\n"+
		"sha256: d7a8fbb307d7809469ca9abcb0082e4f8d5651e46d3cdb762d02d0bf37c9e592\n",
		hs.String())
}

func TestHashes_Reset(t *testing.T) {
	assert := assert.New(t)

	hs := NewHashes()
	hs.Write([]byte("junk"))
	hs.Reset()

	sum, _ := hs.Sum("crc32")
	assert.Equal("00000000", sum)
	sum, _ = hs.Sum("md5")
	assert.Equal("d41d8cd98f00b204e9800998ecf8427e", sum)
}

package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBits(t *testing.T) {
	assert := assert.New(t)

	var got []bool
	for n, bit := range Bits(0b1011, 5) {
		assert.Equal(len(got), n)
		got = append(got, bit)
	}
	assert.Equal([]bool{true, true, false, true, false}, got)

	count := 0
	for range Bits(0xff, 8) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(3, count)
}

func TestChangedBits(t *testing.T) {
	assert := assert.New(t)

	changed := map[int]bool{}
	for n, bit := range ChangedBits(0b0110, 0b0011, 4) {
		changed[n] = bit
	}
	assert.Equal(map[int]bool{0: true, 2: false}, changed)

	for range ChangedBits(0x55, 0x55, 8) {
		t.Fatal("expected no changed bits")
	}
}

func TestMask(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint64(0), Mask(0))
	assert.Equal(uint64(0xff), Mask(8))
	assert.Equal(^uint64(0), Mask(64))
}

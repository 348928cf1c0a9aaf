package stream

import (
	"bytes"
	"errors"
	"hash/crc32"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/promdump/source"
)

type recordSink struct {
	resets int
	writes [][]byte
	err    error
}

func (rs *recordSink) Reset() {
	rs.resets++
	rs.writes = nil
}

func (rs *recordSink) Write(data []byte) (n int, err error) {
	if rs.err != nil {
		return 0, rs.err
	}
	rs.writes = append(rs.writes, append([]byte{}, data...))
	return len(data), nil
}

func (rs *recordSink) bytes() []byte {
	return bytes.Join(rs.writes, nil)
}

type recordProgress []int

func (rp *recordProgress) Progress(percent int) {
	*rp = append(*rp, percent)
}

func image(size int) (data []byte) {
	data = make([]byte, size)
	for n := range data {
		data[n] = byte(n * 7)
	}
	return
}

func TestNewReader(t *testing.T) {
	assert := assert.New(t)

	_, err := NewReader(&source.Memory{}, 0)
	assert.Equal(ErrBlockSize, err)

	rd, err := NewReader(&source.Memory{}, 64)
	assert.NoError(err)
	assert.Equal(64, rd.BlockSize())
}

func TestReader_Read(t *testing.T) {
	assert := assert.New(t)

	for _, size := range []int{1, 63, 64, 65, 128, 200} {
		mem := &source.Memory{Data: image(size)}
		rd, _ := NewReader(mem, 64)

		first := &recordSink{}
		second := &recordSink{}
		rd.AddSink(first)
		rd.AddSink(second)

		data, err := rd.Read(size)
		assert.NoError(err)
		assert.Equal(mem.Data, data)

		blocks := (size + 63) / 64
		for _, rs := range []*recordSink{first, second} {
			assert.Len(rs.writes, blocks, size)
			assert.Equal(mem.Data, rs.bytes())
			for _, block := range rs.writes {
				assert.LessOrEqual(len(block), 64)
			}
			assert.GreaterOrEqual(len(rs.writes)*64, size)
		}
		assert.True(rd.IsEOF())
	}
}

func TestReader_Read_EOF(t *testing.T) {
	assert := assert.New(t)

	mem := &source.Memory{Data: image(100)}
	rd, _ := NewReader(mem, 32)
	rs := &recordSink{}
	rd.AddSink(rs)

	data, err := rd.Read(1000)
	assert.NoError(err)
	assert.Len(data, 100)
	assert.Len(rs.writes, 4)

	// At EOF, nothing is read and sinks see nothing.
	data, err = rd.Read(10)
	assert.NoError(err)
	assert.Len(data, 0)
	assert.Len(rs.writes, 4)
}

func TestReader_Read_Partial(t *testing.T) {
	assert := assert.New(t)

	mem := &source.Memory{Data: image(100)}
	rd, _ := NewReader(mem, 16)

	data, err := rd.Read(40)
	assert.NoError(err)
	assert.Equal(mem.Data[:40], data)
	assert.False(rd.IsEOF())

	data, err = rd.Read(40)
	assert.NoError(err)
	assert.Equal(mem.Data[40:80], data)
}

func TestReader_Progress(t *testing.T) {
	assert := assert.New(t)

	rd, _ := NewReader(&source.Memory{Data: image(256)}, 64)
	progress := &recordProgress{}
	rd.AddProgressReporter(progress)

	rd.Read(256)
	assert.Equal(recordProgress{25, 50, 75, 100}, *progress)
}

func TestReader_Reset(t *testing.T) {
	assert := assert.New(t)

	mem := &source.Memory{Data: image(10)}
	rd, _ := NewReader(mem, 4)
	rs := &recordSink{}
	rd.AddSink(rs)

	rd.Read(10)
	assert.NoError(rd.Reset())
	assert.Equal(1, rs.resets)
	assert.Len(rs.writes, 0)
	assert.False(rd.IsEOF())
}

func TestReader_Seek(t *testing.T) {
	assert := assert.New(t)

	mem := &source.Memory{Data: image(10)}
	rd, _ := NewReader(mem, 4)

	pos, err := rd.Seek(3, io.SeekEnd)
	assert.NoError(err)
	assert.Equal(int64(7), pos)

	data, _ := rd.Read(10)
	assert.Equal(mem.Data[7:], data)
}

func TestReader_SinkError(t *testing.T) {
	assert := assert.New(t)

	rd, _ := NewReader(&source.Memory{Data: image(10)}, 4)
	boom := errors.New("boom")
	rd.AddSink(&recordSink{err: boom})

	_, err := rd.Read(10)
	assert.Equal(boom, err)
}

func TestReader_HashSink(t *testing.T) {
	assert := assert.New(t)

	mem := &source.Memory{Data: image(300)}
	rd, _ := NewReader(mem, 64)
	crc := crc32.NewIEEE()
	rd.AddSink(crc)

	rd.Read(300)
	assert.Equal(crc32.ChecksumIEEE(mem.Data), crc.Sum32())
}

package sink

import (
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/promdump/stream"
)

// Layout selects the columns of a hex dump.
type Layout int

const (
	LAYOUT_ADDRESS = Layout(1 << 0)
	LAYOUT_HEX     = Layout(1 << 1)
	LAYOUT_ASCII   = Layout(1 << 2)

	LAYOUT_DEFAULT  = LAYOUT_ADDRESS | LAYOUT_HEX | LAYOUT_ASCII
	LAYOUT_NO_ASCII = LAYOUT_ADDRESS | LAYOUT_HEX

	HEXDUMP_COLUMNS = 16
)

// HexDump renders bytes as lines of address, hex, and ASCII columns.
//
// Bytes are buffered until a whole line is available; Close renders
// whatever is left as a short line.
type HexDump struct {
	Output  io.Writer
	Columns int    // Bytes per line; HEXDUMP_COLUMNS if zero.
	Layout  Layout // Columns to render; LAYOUT_DEFAULT if zero.

	offset uint64
	buffer []byte
}

var _ stream.Sink = (*HexDump)(nil)

func (hd *HexDump) columns() int {
	if hd.Columns <= 0 {
		return HEXDUMP_COLUMNS
	}
	return hd.Columns
}

func (hd *HexDump) layout() Layout {
	if hd.Layout == 0 {
		return LAYOUT_DEFAULT
	}
	return hd.Layout
}

// Reset discards buffered bytes, and restarts addresses at zero.
func (hd *HexDump) Reset() {
	hd.offset = 0
	hd.buffer = nil
}

// Seek renders any partial line, and sets the address of the next byte
// written.
func (hd *HexDump) Seek(offset uint64) (err error) {
	err = hd.Close()
	hd.offset = offset
	return
}

// Write renders every complete line.
func (hd *HexDump) Write(data []byte) (n int, err error) {
	hd.buffer = append(hd.buffer, data...)

	span := hd.columns()
	for len(hd.buffer) >= span {
		err = hd.writeLine(hd.buffer[:span])
		if err != nil {
			return
		}
		hd.buffer = hd.buffer[span:]
		hd.offset += uint64(span)
	}

	n = len(data)
	return
}

// Close renders the remaining partial line, if any.
func (hd *HexDump) Close() (err error) {
	if len(hd.buffer) == 0 {
		return
	}

	err = hd.writeLine(hd.buffer)
	hd.offset += uint64(len(hd.buffer))
	hd.buffer = nil

	return
}

func (hd *HexDump) writeLine(data []byte) (err error) {
	layout := hd.layout()
	var line strings.Builder

	if layout&LAYOUT_ADDRESS != 0 {
		fmt.Fprintf(&line, "%08X  ", hd.offset)
	}

	if layout&LAYOUT_HEX != 0 {
		for column := range hd.columns() {
			if column < len(data) {
				fmt.Fprintf(&line, "%02X ", data[column])
			} else {
				line.WriteString("   ")
			}
		}
	}

	if layout&LAYOUT_ASCII != 0 {
		if layout&LAYOUT_HEX != 0 {
			line.WriteString(" ")
		}
		for _, value := range data {
			if value >= 0x20 && value < 0x7f {
				line.WriteByte(value)
			} else {
				line.WriteByte('.')
			}
		}
	}

	line.WriteString("\n")

	_, err = io.WriteString(hd.Output, line.String())

	return
}

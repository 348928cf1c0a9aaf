//go:build !statsview

package statsview

import (
	"io"
)

// Launch does nothing, as the statistics server is not built in.
func Launch(output io.Writer) {
}

// Available is true when the statistics server is built in.
func Available() bool {
	return false
}

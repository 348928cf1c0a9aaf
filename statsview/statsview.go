//go:build statsview

package statsview

import (
	"io"
	"sync"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/ezrec/promdump/translate"
)

var launch sync.Once

// Launch serves the statistics in the background, and tells the operator
// where to find them. Only the first call has any effect.
func Launch(output io.Writer) {
	launch.Do(func() {
		viewer.SetConfiguration(viewer.WithAddr(ADDRESS))
		server := statsview.New()
		go server.Start()

		translate.Fprintf(output, "Runtime statistics at http://%s%s\n", ADDRESS, PATH)
	})
}

// Available is true when the statistics server is built in.
func Available() bool {
	return true
}

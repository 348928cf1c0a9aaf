// Package statsview serves runtime statistics (heap, goroutines, GC pauses)
// while a chip is being dumped, which helps tell a slow bus from a slow
// host. It is only built in with the statsview build tag; otherwise
// Available reports false and Launch does nothing.
//
// Once launched, graphs are at http://localhost:12700/debug/statsview, and
// pprof at http://localhost:12700/debug/pprof/.
package statsview

const (
	ADDRESS = "localhost:12700"
	PATH    = "/debug/statsview"
)

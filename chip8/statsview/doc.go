// Package statsview serves live runtime statistics (heap, goroutines, GC)
// over HTTP while the emulator runs. It is only functional when built with
// the statsview build tag, otherwise Launch reports it is unavailable.
//
// Graphs are served at <addr>/debug/statsview and pprof at <addr>/debug/pprof/.
package statsview

// DefaultAddress is used when no address is given on the command line.
const DefaultAddress = "localhost:12600"

const path = "/debug/statsview"

//go:build statsview

package statsview

import (
	"log/slog"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Launch starts the stats server in a new goroutine.
func Launch(addr string) error {
	if addr == "" {
		addr = DefaultAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()

	slog.Info("Stats server available", "url", "http://"+addr+path)
	return nil
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return true
}

//go:build !statsview

package statsview

import "errors"

// ErrUnavailable is returned by Launch when built without the statsview tag.
var ErrUnavailable = errors.New("statsview not available, rebuild with -tags statsview")

// Launch is a no-op without the statsview build tag.
func Launch(addr string) error {
	return ErrUnavailable
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}

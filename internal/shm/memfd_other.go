//go:build !linux

package shm

import "fmt"

// ErrUnsupportedPlatform is returned by NewMemfdBuffer on non-Linux
// platforms; memfd_create is Linux-specific.
var ErrUnsupportedPlatform = fmt.Errorf("shm: memfd-backed buffer requires linux")

// NewMemfdBuffer always fails outside Linux.
func NewMemfdBuffer(name string, maxSessions, partitionSize int) (Buffer, error) {
	return nil, ErrUnsupportedPlatform
}

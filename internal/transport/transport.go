// Package transport documents the RPC listening-socket seam without
// implementing it. spec.md §1 scopes the RPC transport/codec out of this
// module; SPEC_FULL.md §6 keeps the interface so a future transport has a
// named place to plug into the playback service (supplemented from
// original_source/ipc/common/include/INamedSocket.h).
package transport

import "errors"

// ErrNotImplemented is returned by every method: this package documents the
// seam, it does not implement a listener.
var ErrNotImplemented = errors.New("transport: not implemented, see SPEC_FULL.md §7 non-goals")

// NamedSocket is the UNIX-domain listening socket contract spec.md §6
// describes: SOCK_SEQPACKET|CLOEXEC|NONBLOCK, permission bits and owning
// uid/gid configurable at creation, and a ".lock" lockfile enforcing a
// single running server. blockNewConnections unlinks the socket path while
// leaving already-accepted connections alive.
type NamedSocket interface {
	// Fd returns the underlying socket file descriptor.
	Fd() (int, error)
	// SetPermissions applies the given mode bits to the socket path.
	SetPermissions(mode uint32) error
	// SetOwnership chowns the socket path to the given user/group.
	SetOwnership(owner, group string) error
	// BlockNewConnections unlinks the socket path, rejecting new connection
	// attempts while connections already accepted keep running.
	BlockNewConnections() error
}

// Factory creates a NamedSocket bound to socketPath, taking the ".lock"
// lockfile to enforce single-server invariance (spec.md §6).
type Factory interface {
	CreateNamedSocket(socketPath string) (NamedSocket, error)
}

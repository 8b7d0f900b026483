// Package shm implements the single process-wide shared-memory region the
// playback service partitions across sessions and media source types, the
// same memfd-backed buffer the original Rialto server exposes to clients for
// zero-copy media data delivery (spec.md §4.A/§5).
package shm

import "fmt"

// SourceOffset returns the byte offset of sourceType's segment within a
// session's partition. Audio, video and subtitle each get an equal share of
// the partition, in that order.
func SourceOffset(sourceType SourceKind, partitionSize int) int64 {
	share := partitionSize / 3
	switch sourceType {
	case SourceAudio:
		return 0
	case SourceVideo:
		return int64(share)
	case SourceSubtitle:
		return int64(2 * share)
	default:
		return 0
	}
}

// SourceKind mirrors player.MediaSourceType without importing the player
// package, keeping shm free of any dependency on session/task types.
type SourceKind int

const (
	SourceAudio SourceKind = iota
	SourceVideo
	SourceSubtitle
)

// Buffer is the abstract shared-memory region backing every session's
// partitions. Partition returns a borrowed, zero-copy slice of the region;
// callers must not retain it past the next Clear of the same partition.
type Buffer interface {
	// Fd returns the memfd file descriptor backing the region, for handing
	// to a transport that exports it via SCM_RIGHTS (see shm.Exporter).
	Fd() int
	// Partition returns the byte slice for sessionIndex's sourceType
	// segment.
	Partition(sessionIndex int, sourceType SourceKind) ([]byte, error)
	// Clear zeroes the given partition, invalidating any previously
	// returned slice's contents (not its validity as a Go slice, but its
	// meaning: re-reading it after Clear sees zeros).
	Clear(sessionIndex int, sourceType SourceKind) error
	// Size returns the total region size in bytes.
	Size() int
	// PartitionSize returns the per-session partition size in bytes.
	PartitionSize() int
	// Close unmaps and releases the region.
	Close() error
}

// Exporter hands the backing fd to a transport layer for SCM_RIGHTS passing
// to clients (spec.md §4.A "shared buffer handle"). Rialto's real RPC
// transport is out of scope for this module (see SPEC_FULL.md §7); this
// interface documents the seam a NamedSocket-based transport would use.
type Exporter interface {
	ExportFd() (int, error)
}

// ErrOutOfRange is returned when a session index falls outside the region's
// configured capacity. Source types are not validated; an unknown one maps
// to offset 0.
var ErrOutOfRange = fmt.Errorf("shm: session index out of range")

func validateIndex(sessionIndex, maxSessions int) error {
	if sessionIndex < 0 || sessionIndex >= maxSessions {
		return fmt.Errorf("%w: %d (max %d)", ErrOutOfRange, sessionIndex, maxSessions)
	}
	return nil
}

//go:build linux

package shm

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// memfdBuffer is the Linux memfd_create + mmap backed Buffer implementation,
// grounded on the fifo/shared-memory setup in the teacher's
// api/pkg/desktop/video_forwarder.go (syscall-level resource lifecycle:
// create, map, track for Close).
type memfdBuffer struct {
	mu            sync.RWMutex
	fd            int
	data          []byte
	maxSessions   int
	partitionSize int
}

// NewMemfdBuffer creates a memfd_create-backed region sized
// maxSessions*partitionSize bytes and mmaps it into the process.
func NewMemfdBuffer(name string, maxSessions, partitionSize int) (Buffer, error) {
	if maxSessions <= 0 || partitionSize <= 0 {
		return nil, fmt.Errorf("shm: invalid dimensions maxSessions=%d partitionSize=%d", maxSessions, partitionSize)
	}
	total := maxSessions * partitionSize

	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("shm: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(total)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: ftruncate to %d bytes: %w", total, err)
	}

	data, err := unix.Mmap(fd, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap: %w", err)
	}

	return &memfdBuffer{
		fd:            fd,
		data:          data,
		maxSessions:   maxSessions,
		partitionSize: partitionSize,
	}, nil
}

func (b *memfdBuffer) Fd() int { return b.fd }

func (b *memfdBuffer) Size() int          { return len(b.data) }
func (b *memfdBuffer) PartitionSize() int { return b.partitionSize }

func (b *memfdBuffer) Partition(sessionIndex int, sourceType SourceKind) ([]byte, error) {
	if err := validateIndex(sessionIndex, b.maxSessions); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	base := sessionIndex * b.partitionSize
	off := SourceOffset(sourceType, b.partitionSize)
	share := b.partitionSize / 3
	start := base + int(off)
	return b.data[start : start+share], nil
}

func (b *memfdBuffer) Clear(sessionIndex int, sourceType SourceKind) error {
	if err := validateIndex(sessionIndex, b.maxSessions); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	base := sessionIndex * b.partitionSize
	off := SourceOffset(sourceType, b.partitionSize)
	share := b.partitionSize / 3
	start := base + int(off)
	slice := b.data[start : start+share]
	for i := range slice {
		slice[i] = 0
	}
	return nil
}

func (b *memfdBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data != nil {
		if err := unix.Munmap(b.data); err != nil {
			return fmt.Errorf("shm: munmap: %w", err)
		}
		b.data = nil
	}
	return unix.Close(b.fd)
}

// ExportFd implements Exporter by returning the raw memfd. The actual
// SCM_RIGHTS send happens in the transport layer (out of scope, see
// SPEC_FULL.md §7).
func (b *memfdBuffer) ExportFd() (int, error) {
	return b.fd, nil
}

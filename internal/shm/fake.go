package shm

import "sync"

// FakeBuffer is a plain-memory Buffer implementation for tests that don't
// need a real memfd (no cgo/linux dependency), mirroring the fake/real split
// used throughout the teacher's desktop package.
type FakeBuffer struct {
	mu            sync.RWMutex
	data          []byte
	maxSessions   int
	partitionSize int
}

// NewFakeBuffer allocates a plain Go byte slice of the requested dimensions.
func NewFakeBuffer(maxSessions, partitionSize int) *FakeBuffer {
	return &FakeBuffer{
		data:          make([]byte, maxSessions*partitionSize),
		maxSessions:   maxSessions,
		partitionSize: partitionSize,
	}
}

func (b *FakeBuffer) Fd() int { return -1 }

func (b *FakeBuffer) Size() int          { return len(b.data) }
func (b *FakeBuffer) PartitionSize() int { return b.partitionSize }

func (b *FakeBuffer) Partition(sessionIndex int, sourceType SourceKind) ([]byte, error) {
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

func (b *FakeBuffer) Clear(sessionIndex int, sourceType SourceKind) error {
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

func (b *FakeBuffer) Close() error { return nil }

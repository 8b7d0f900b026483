package service

import (
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/rdkcentral/rialto-go/internal/player"
)

// registry is the process-wide session table: read-heavy (every per-session
// RPC looks a session up), write-light (only createSession/destroySession
// mutate it), so it is backed by xsync.MapOf rather than a mutex+map
// (SPEC_FULL.md §5.H, grounded on the teacher's runner registry in
// api/pkg/scheduler/cluster.go).
type registry struct {
	sessions *xsync.MapOf[string, *entry]
}

type entry struct {
	player       *player.SessionPlayer
	sessionIndex int
	isWebAudio   bool

	// reportJobID/underflowJobID identify this session's gocron jobs so
	// DestroySession can remove exactly them.
	reportJobID    uuid.UUID
	underflowJobID uuid.UUID
}

func newRegistry() *registry {
	return &registry{sessions: xsync.NewMapOf[string, *entry]()}
}

func (r *registry) load(sessionID string) (*entry, bool) {
	return r.sessions.Load(sessionID)
}

func (r *registry) exists(sessionID string) bool {
	_, ok := r.sessions.Load(sessionID)
	return ok
}

func (r *registry) store(sessionID string, e *entry) {
	r.sessions.Store(sessionID, e)
}

func (r *registry) delete(sessionID string) {
	r.sessions.Delete(sessionID)
}

func (r *registry) count() int {
	return r.sessions.Size()
}

// forEach calls fn for every registered session. fn must not call back into
// the registry (Store/Delete) from within the callback.
func (r *registry) forEach(fn func(sessionID string, e *entry)) {
	r.sessions.Range(func(sessionID string, e *entry) bool {
		fn(sessionID, e)
		return true
	})
}

// ids returns a snapshot of currently registered session ids, used by
// switchToInactive to destroy every session without mutating the map while
// ranging it.
func (r *registry) ids() []string {
	ids := make([]string, 0, r.sessions.Size())
	r.sessions.Range(func(sessionID string, _ *entry) bool {
		ids = append(ids, sessionID)
		return true
	})
	return ids
}

// slotAllocator hands out the small integer session indices the shared
// memory region partitions by (spec.md §4.G "session index * per-session
// size + per-source offset"). Indices are reused once a session is
// destroyed.
type slotAllocator struct {
	capacity int
	free     []int
}

func newSlotAllocator(capacity int) *slotAllocator {
	free := make([]int, capacity)
	for i := range free {
		free[i] = capacity - 1 - i
	}
	return &slotAllocator{capacity: capacity, free: free}
}

func (a *slotAllocator) acquire() (int, bool) {
	if len(a.free) == 0 {
		return 0, false
	}
	idx := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	return idx, true
}

func (a *slotAllocator) release(idx int) {
	a.free = append(a.free, idx)
}

package service

import (
	"time"

	"github.com/sourcegraph/conc"
)

// Ping fans a heartbeat out to every registered session concurrently and
// waits up to the configured heartbeat timeout. The system is healthy iff
// every session's Ping task ran within the timeout (spec.md §4.H).
func (s *PlaybackService) Ping() (healthy bool) {
	type result struct {
		sessionID string
		ok        bool
	}

	ids := s.registry.ids()
	if len(ids) == 0 {
		return true
	}

	results := make(chan result, len(ids))
	var wg conc.WaitGroup
	for _, id := range ids {
		id := id
		wg.Go(func() {
			results <- result{sessionID: id, ok: s.pingSession(id)}
		})
	}
	wg.Wait()
	close(results)

	healthy = true
	for r := range results {
		if !r.ok {
			s.logger.Warn("session missed heartbeat", "session", r.sessionID)
			healthy = false
		}
	}
	return healthy
}

// pingSession enqueues a Ping task on sessionID's worker and waits up to
// HeartbeatTimeout for its heartbeat handler to run.
func (s *PlaybackService) pingSession(sessionID string) bool {
	e, ok := s.registry.load(sessionID)
	if !ok {
		return false
	}

	done := make(chan struct{})
	task := e.player.Factory().CreatePing(func() { close(done) })
	if err := e.player.Enqueue(task); err != nil {
		return false
	}

	select {
	case <-done:
		return true
	case <-time.After(s.cfg.HeartbeatTimeout):
		return false
	}
}

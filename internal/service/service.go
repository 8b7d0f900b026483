// Package service implements the process-wide playback supervisor:
// admission control, the session registry, shared-memory ownership and the
// heartbeat fan-out (spec.md §4.H).
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/rdkcentral/rialto-go/internal/decryption"
	"github.com/rdkcentral/rialto-go/internal/gstkit"
	"github.com/rdkcentral/rialto-go/internal/player"
	"github.com/rdkcentral/rialto-go/internal/shm"
)

// Config bounds admission control and periodic-task cadence. internal/config
// parses these from the environment; DefaultConfig covers standalone use and
// tests.
type Config struct {
	MaxPlaybacks         int
	MaxWebAudioPlayers   int
	HeartbeatTimeout     time.Duration
	ReportPositionPeriod time.Duration
	CheckUnderflowPeriod time.Duration
}

// DefaultConfig mirrors spec.md §4.H's stated defaults.
func DefaultConfig() Config {
	return Config{
		MaxPlaybacks:         2,
		MaxWebAudioPlayers:   1,
		HeartbeatTimeout:     5 * time.Second,
		ReportPositionPeriod: 250 * time.Millisecond,
		CheckUnderflowPeriod: 100 * time.Millisecond,
	}
}

var (
	// ErrNotActive is returned by CreateSession when the service is Inactive.
	ErrNotActive = errors.New("service: not active")
	// ErrSessionExists is returned when sessionID is already registered.
	ErrSessionExists = errors.New("service: session already exists")
	// ErrAtCapacity is returned when maxPlaybacks has been reached.
	ErrAtCapacity = errors.New("service: playback capacity reached")
	// ErrWebAudioAtCapacity is returned when maxWebAudioPlayers has been
	// reached for a web-audio session request.
	ErrWebAudioAtCapacity = errors.New("service: web audio player capacity reached")
	// ErrFactoryFailed is returned when the pipeline factory produced no
	// pipeline (spec.md §4.H "reject if factory returns null").
	ErrFactoryFailed = errors.New("service: pipeline factory returned no pipeline")
	// ErrUnknownSession is returned by per-session operations on an id that
	// is not registered.
	ErrUnknownSession = errors.New("service: unknown session")
)

// PipelineFactory builds the gstkit Pipeline and element Factory backing one
// session. Returning a nil pipeline with a nil error counts as a factory
// failure, the same as returning a non-nil error (spec.md §4.H).
type PipelineFactory func(sessionID string, req player.VideoRequirements) (gstkit.Pipeline, gstkit.Factory, error)

// DecryptionFactory builds the per-session decryption.Service a new
// PlayerContext is constructed with.
type DecryptionFactory func(sessionID string) decryption.Service

// PlaybackService is the process-wide supervisor. One instance owns the
// shared-memory region and every live SessionPlayer.
type PlaybackService struct {
	cfg Config

	active atomic.Bool

	mu            sync.Mutex // guards slots/webAudioCount; registry itself is lock-free
	registry      *registry
	slots         *slotAllocator
	webAudioCount int

	shmBuffer  shm.Buffer
	pipeline   PipelineFactory
	client     player.ClientCallbacks
	decryption DecryptionFactory

	cron gocron.Scheduler

	logger *slog.Logger
}

// NewPlaybackService constructs a supervisor in the Inactive state. pipeline
// builds each session's media pipeline; client receives every session's
// callbacks (a real transport would wrap one ClientCallbacks per connection;
// this module stops at the service boundary per spec.md §1).
func NewPlaybackService(
	cfg Config,
	shmBuffer shm.Buffer,
	pipeline PipelineFactory,
	client player.ClientCallbacks,
	decryptionFactory DecryptionFactory,
	logger *slog.Logger,
) (*PlaybackService, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("service: create scheduler: %w", err)
	}
	svc := &PlaybackService{
		cfg:        cfg,
		registry:   newRegistry(),
		slots:      newSlotAllocator(cfg.MaxPlaybacks),
		shmBuffer:  shmBuffer,
		pipeline:   pipeline,
		client:     client,
		decryption: decryptionFactory,
		cron:       cron,
		logger:     logger.With("component", "service.playback"),
	}
	cron.Start()
	return svc, nil
}

// SwitchToActive moves the service to Active, permitting createSession
// (spec.md §4.H).
func (s *PlaybackService) SwitchToActive() {
	s.active.Store(true)
	s.logger.Info("service active")
}

// SwitchToInactive moves the service to Inactive and destroys every
// registered session via a cascade of Stop+Shutdown, same as an explicit
// destroySession for each (spec.md §4.H).
func (s *PlaybackService) SwitchToInactive() {
	s.active.Store(false)
	for _, id := range s.registry.ids() {
		_ = s.DestroySession(id)
	}
	s.logger.Info("service inactive")
}

// IsActive reports the current Active/Inactive state.
func (s *PlaybackService) IsActive() bool { return s.active.Load() }

// CreateSession admits a new session per spec.md §4.H/§8 law 8: rejects a
// duplicate id, rejects when Inactive, rejects at maxPlaybacks (or
// maxWebAudioPlayers for isWebAudio sessions), rejects when the pipeline
// factory returns no pipeline, and otherwise registers and starts the
// session with no side effects on the registry on any failure path.
func (s *PlaybackService) CreateSession(sessionID string, req player.VideoRequirements, isWebAudio bool) error {
	if !s.active.Load() {
		return ErrNotActive
	}
	if s.registry.exists(sessionID) {
		return ErrSessionExists
	}

	s.mu.Lock()
	slot, ok := s.slots.acquire()
	if ok && isWebAudio {
		if s.webAudioCount >= s.cfg.MaxWebAudioPlayers {
			s.slots.release(slot)
			s.mu.Unlock()
			return ErrWebAudioAtCapacity
		}
		s.webAudioCount++
	}
	s.mu.Unlock()
	if !ok {
		return ErrAtCapacity
	}

	pipeline, elementFactory, err := s.pipeline(sessionID, req)
	if err != nil || pipeline == nil {
		s.releaseSlot(slot, isWebAudio)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFactoryFailed, err)
		}
		return ErrFactoryFailed
	}

	ctx := player.NewPlayerContext(s.decryption(sessionID))
	sp := player.NewSessionPlayer(ctx, pipeline, elementFactory, s.client, s.shmBuffer, slot, s.logger)

	e := &entry{player: sp, sessionIndex: slot, isWebAudio: isWebAudio}
	s.registry.store(sessionID, e)

	if err := s.schedulePeriodicTasks(sessionID, e); err != nil {
		s.logger.Warn("failed to schedule periodic tasks", "session", sessionID, "err", err)
	}

	s.logger.Info("session created", "session", sessionID, "slot", slot)
	return nil
}

func (s *PlaybackService) releaseSlot(slot int, isWebAudio bool) {
	s.mu.Lock()
	s.slots.release(slot)
	if isWebAudio && s.webAudioCount > 0 {
		s.webAudioCount--
	}
	s.mu.Unlock()
}

// DestroySession stops and shuts down sessionID's player, removes its
// periodic jobs and releases its shared-memory slot.
func (s *PlaybackService) DestroySession(sessionID string) error {
	e, ok := s.registry.load(sessionID)
	if !ok {
		return ErrUnknownSession
	}
	s.registry.delete(sessionID)

	s.unschedulePeriodicTasksFor(e)

	e.player.Stop()
	e.player.Shutdown()

	s.releaseSlot(e.sessionIndex, e.isWebAudio)

	s.logger.Info("session destroyed", "session", sessionID)
	return nil
}

// Session returns sessionID's player for routing a per-session RPC, the way
// the transport layer (out of scope) would dispatch by id (spec.md §4.H
// "route per-session RPCs by id").
func (s *PlaybackService) Session(sessionID string) (*player.SessionPlayer, error) {
	e, ok := s.registry.load(sessionID)
	if !ok {
		return nil, ErrUnknownSession
	}
	return e.player, nil
}

// SessionCount reports how many sessions are currently registered.
func (s *PlaybackService) SessionCount() int { return s.registry.count() }

// SharedMemoryFd returns the region's fd for getSharedMemory (spec.md §4.G).
func (s *PlaybackService) SharedMemoryFd() int { return s.shmBuffer.Fd() }

// SharedMemorySize returns the region's total size for getSharedMemory.
func (s *PlaybackService) SharedMemorySize() int { return s.shmBuffer.Size() }

// PartitionSize returns the per-session partition size.
func (s *PlaybackService) PartitionSize() int { return s.shmBuffer.PartitionSize() }

// Shutdown stops the cron scheduler and destroys every session; callers use
// this instead of SwitchToInactive when tearing the process down entirely.
func (s *PlaybackService) Shutdown() {
	s.SwitchToInactive()
	_ = s.cron.Shutdown()
}

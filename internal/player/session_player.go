package player

import (
	"log/slog"

	"github.com/rdkcentral/rialto-go/internal/gstkit"
	"github.com/rdkcentral/rialto-go/internal/shm"
)

// SessionPlayer is the facade the upper layer (RPC glue) calls. Every
// mutating method builds a task via the factory and enqueues it on the
// worker, returning immediately; getPosition/getVolume/getMute/getStats
// bypass the queue, and the first three read the framework directly
// (spec.md §4.F).
type SessionPlayer struct {
	ctx     *PlayerContext
	worker  *Worker
	bus     *BusDispatcher
	factory *TaskFactory
	logger  *slog.Logger
}

// NewSessionPlayer wires a worker, bus dispatcher and task factory around a
// freshly created context and starts both goroutines. pipeline may be nil;
// Load does not build one, so the bus dispatcher then has nothing to poll
// and pipeline-dependent tasks no-op or report failure.
func NewSessionPlayer(
	ctx *PlayerContext,
	pipeline gstkit.Pipeline,
	elementFactory gstkit.Factory,
	client ClientCallbacks,
	shmBuffer shm.Buffer,
	sessionIndex int,
	logger *slog.Logger,
) *SessionPlayer {
	logger = logger.With("component", "player.session")
	ctx.Pipeline = pipeline

	worker := NewWorker(logger)
	factory := NewTaskFactory(ctx, elementFactory, client, worker, shmBuffer, sessionIndex, logger)

	var bus *BusDispatcher
	if pipeline != nil {
		bus = NewBusDispatcher(pipeline.Bus(), factory, worker, logger)
	} else {
		bus = NewBusDispatcher(nil, factory, worker, logger)
	}

	worker.Start()
	bus.Start()

	return &SessionPlayer{ctx: ctx, worker: worker, bus: bus, factory: factory, logger: logger}
}

// Stats mirrors the getStats RPC payload (rendered/dropped frame counters).
type Stats struct {
	RenderedFrames uint64
	DroppedFrames  uint64
}

func (p *SessionPlayer) enqueue(task Task) error {
	return p.worker.Enqueue(task)
}

func (p *SessionPlayer) Load() {
	_ = p.enqueue(NewTaskFunc("Load", func() {
		p.logger.Debug("load")
	}))
}

func (p *SessionPlayer) AttachSource(source MediaSource) {
	_ = p.enqueue(p.factory.CreateAttachSource(source))
}

func (p *SessionPlayer) RemoveSource(sourceType MediaSourceType) {
	_ = p.enqueue(p.factory.CreateRemoveSource(sourceType))
}

func (p *SessionPlayer) AllSourcesAttached() {
	_ = p.enqueue(NewTaskFunc("AllSourcesAttached", func() {
		p.ctx.WereAllSourcesAttached = true
		if p.ctx.Source != nil {
			_ = p.enqueue(p.factory.CreateFinishSetupSource())
		}
	}))
}

func (p *SessionPlayer) Play() { _ = p.enqueue(p.factory.CreatePlay()) }

func (p *SessionPlayer) Pause() { _ = p.enqueue(p.factory.CreatePause()) }

func (p *SessionPlayer) Stop() { _ = p.enqueue(p.factory.CreateStop()) }

func (p *SessionPlayer) SetPlaybackRate(rate float64) {
	_ = p.enqueue(p.factory.CreateSetPlaybackRate(rate))
}

func (p *SessionPlayer) SetPosition(position int64) {
	_ = p.enqueue(p.factory.CreateSetPosition(position))
}

// GetPosition bypasses the worker queue, reading the pipeline directly on
// the caller's goroutine; returns false when the pipeline isn't prerolled
// into PAUSED/PLAYING (spec.md §4.F).
func (p *SessionPlayer) GetPosition() (int64, bool) {
	if p.ctx.Pipeline == nil {
		return 0, false
	}
	state, ok := p.ctx.Pipeline.GetState()
	if !ok || (state != gstkit.StatePaused && state != gstkit.StatePlaying) {
		return 0, false
	}
	pos, ok := p.ctx.Pipeline.QueryPosition()
	if !ok {
		return 0, false
	}
	return int64(pos), true
}

func (p *SessionPlayer) SetImmediateOutput(immediate bool) {
	_ = p.enqueue(p.factory.CreateSetImmediateOutput(immediate))
}

func (p *SessionPlayer) SetVideoWindow(rect Rectangle) {
	_ = p.enqueue(p.factory.CreateSetVideoGeometry(rect))
}

// HaveData marks a previously notified need-data request answered and
// enqueues the corresponding data-consumption task. status carries the
// client's reported outcome for the request (spec.md §6 haveData).
func (p *SessionPlayer) HaveData(sourceType MediaSourceType, status HaveDataStatus, numFrames int) {
	switch status {
	case HaveDataOK:
		_ = p.enqueue(p.factory.CreateReadShmDataAndAttachSamples(sourceType, numFrames))
	case HaveDataEOS:
		_ = p.enqueue(p.factory.CreateEos(sourceType))
	}
}

func (p *SessionPlayer) RenderFrame() { _ = p.enqueue(p.factory.CreateRenderFrame()) }

func (p *SessionPlayer) SetVolume(volume float64) {
	_ = p.enqueue(p.factory.CreateSetVolume(volume))
}

// GetVolume bypasses the queue like GetPosition (spec.md §4.F).
func (p *SessionPlayer) GetVolume() (float64, bool) {
	if p.ctx.Pipeline == nil {
		return 0, false
	}
	v, err := p.ctx.Pipeline.GetProperty("volume")
	if err != nil {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func (p *SessionPlayer) SetMute(sourceType MediaSourceType, mute bool) {
	_ = p.enqueue(p.factory.CreateSetMute(sourceType, mute))
}

// GetMute bypasses the queue like GetPosition (spec.md §4.F).
func (p *SessionPlayer) GetMute(sourceType MediaSourceType) (bool, bool) {
	if p.ctx.Pipeline == nil {
		return false, false
	}
	property := "mute"
	if sourceType == SourceTypeVideo {
		property = "video-mute"
	}
	v, err := p.ctx.Pipeline.GetProperty(property)
	if err != nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (p *SessionPlayer) Flush(sourceType MediaSourceType, resetTime bool) {
	_ = p.enqueue(p.factory.CreateFlush(sourceType, resetTime))
}

func (p *SessionPlayer) SetSourcePosition(sourceType MediaSourceType, position int64, resetTime bool) {
	_ = p.enqueue(p.factory.CreateSetSourcePosition(sourceType, position, resetTime))
}

func (p *SessionPlayer) SetLowLatency(lowLatency bool) {
	_ = p.enqueue(p.factory.CreateSetLowLatency(lowLatency))
}

func (p *SessionPlayer) SetSync(sync bool) { _ = p.enqueue(p.factory.CreateSetSync(sync)) }

func (p *SessionPlayer) SetSyncOff(syncOff bool) {
	_ = p.enqueue(p.factory.CreateSetSyncOff(syncOff))
}

func (p *SessionPlayer) SetStreamSyncMode(mode int) {
	_ = p.enqueue(p.factory.CreateSetStreamSyncMode(mode))
}

// GetStats bypasses the queue like GetPosition but does not query the
// framework: it returns false without a pipeline and otherwise zero
// counters with true.
func (p *SessionPlayer) GetStats() (Stats, bool) {
	if p.ctx.Pipeline == nil {
		return Stats{}, false
	}
	return Stats{}, true
}

// HaveDataStatus mirrors the client-reported outcome of a haveData call.
type HaveDataStatus int

const (
	HaveDataOK HaveDataStatus = iota
	HaveDataEOS
	HaveDataError
)

// Shutdown drains the worker and stops the bus dispatcher (spec.md §4.B
// Shutdown, §4.E "Exits on Shutdown").
func (p *SessionPlayer) Shutdown() {
	_ = p.enqueue(p.factory.CreateShutdown(func() {}))
	p.bus.Stop()
	p.worker.Shutdown()
}

// Context exposes the underlying PlayerContext for tests and the playback
// service's periodic scheduling.
func (p *SessionPlayer) Context() *PlayerContext { return p.ctx }

// Enqueue lets a caller outside the player package (the playback service's
// periodic scheduler and heartbeat fan-out) push a pre-built task onto this
// session's worker.
func (p *SessionPlayer) Enqueue(task Task) error { return p.enqueue(task) }

// Factory exposes the task factory so the playback service can build
// periodic tasks (ReportPosition, CheckAudioUnderflow, Ping) without
// reaching into SessionPlayer internals.
func (p *SessionPlayer) Factory() *TaskFactory { return p.factory }

package player

import (
	"log/slog"

	"github.com/rdkcentral/rialto-go/internal/datareader"
	"github.com/rdkcentral/rialto-go/internal/gstkit"
	"github.com/rdkcentral/rialto-go/internal/shm"
)

// Scheduler lets a task enqueue a follow-up task onto the session's own
// worker, without the task package depending on Worker directly (spec.md
// §4.C "the player, for scheduling follow-ups").
type Scheduler interface {
	Enqueue(task Task) error
}

// TaskFactory builds every task kind in the catalogue, injecting the shared
// dependencies each needs: the session's context, the element factory, the
// client callback set, the decryption service, the shared-memory region and
// a handle back to the scheduler for follow-ups. It holds no per-call state
// and exists so the worker can be tested against a substitute factory
// (spec.md §4.C).
type TaskFactory struct {
	ctx           *PlayerContext
	elementFactory gstkit.Factory
	client        ClientCallbacks
	scheduler     Scheduler
	shmBuffer     shm.Buffer
	sessionIndex  int
	logger        *slog.Logger
}

// NewTaskFactory returns a factory for one session.
func NewTaskFactory(
	ctx *PlayerContext,
	elementFactory gstkit.Factory,
	client ClientCallbacks,
	scheduler Scheduler,
	shmBuffer shm.Buffer,
	sessionIndex int,
	logger *slog.Logger,
) *TaskFactory {
	return &TaskFactory{
		ctx:            ctx,
		elementFactory: elementFactory,
		client:         client,
		scheduler:      scheduler,
		shmBuffer:      shmBuffer,
		sessionIndex:   sessionIndex,
		logger:         logger.With("component", "player.task_factory"),
	}
}

func (f *TaskFactory) CreateSetupElement(elem gstkit.Element) Task {
	return &setupElementTask{ctx: f.ctx, elem: elem, scheduler: f.scheduler, logger: f.logger}
}

func (f *TaskFactory) CreateSetupSource(source gstkit.Element) Task {
	return &setupSourceTask{ctx: f.ctx, source: source, client: f.client, scheduler: f.scheduler, logger: f.logger}
}

func (f *TaskFactory) CreateDeepElementAdded(elem gstkit.Element) Task {
	return &deepElementAddedTask{ctx: f.ctx, elem: elem, scheduler: f.scheduler, logger: f.logger}
}

func (f *TaskFactory) CreateUpdatePlaybackGroup(typefind gstkit.Element) Task {
	return &updatePlaybackGroupTask{ctx: f.ctx, typefind: typefind, logger: f.logger}
}

func (f *TaskFactory) CreateAttachSource(source MediaSource) Task {
	return &attachSourceTask{
		ctx:            f.ctx,
		source:         source,
		elementFactory: f.elementFactory,
		client:         f.client,
		logger:         f.logger,
	}
}

func (f *TaskFactory) CreateFinishSetupSource() Task {
	return &finishSetupSourceTask{ctx: f.ctx, client: f.client, scheduler: f.scheduler, logger: f.logger}
}

func (f *TaskFactory) CreateNeedData(sourceType MediaSourceType) Task {
	return &needDataTask{ctx: f.ctx, sourceType: sourceType, client: f.client, logger: f.logger}
}

func (f *TaskFactory) CreateEnoughData(sourceType MediaSourceType) Task {
	return &enoughDataTask{ctx: f.ctx, sourceType: sourceType, logger: f.logger}
}

func (f *TaskFactory) CreateAttachSamples(segments []MediaSegment) Task {
	return &attachSamplesTask{ctx: f.ctx, segments: segments, client: f.client, logger: f.logger}
}

func (f *TaskFactory) CreateReadShmDataAndAttachSamples(sourceType MediaSourceType, numFrames int) Task {
	return &readShmDataAndAttachSamplesTask{
		ctx:          f.ctx,
		sourceType:   sourceType,
		numFrames:    numFrames,
		shmBuffer:    f.shmBuffer,
		sessionIndex: f.sessionIndex,
		client:       f.client,
		logger:       f.logger,
	}
}

func (f *TaskFactory) CreateSetPosition(position int64) Task {
	return &setPositionTask{ctx: f.ctx, position: position, client: f.client, scheduler: f.scheduler, logger: f.logger}
}

func (f *TaskFactory) CreateSetSourcePosition(sourceType MediaSourceType, position int64, resetTime bool) Task {
	return &setSourcePositionTask{ctx: f.ctx, sourceType: sourceType, position: position, resetTime: resetTime, logger: f.logger}
}

func (f *TaskFactory) CreateFlush(sourceType MediaSourceType, resetTime bool) Task {
	return &flushTask{ctx: f.ctx, sourceType: sourceType, resetTime: resetTime, client: f.client, scheduler: f.scheduler, logger: f.logger}
}

func (f *TaskFactory) CreateRemoveSource(sourceType MediaSourceType) Task {
	return &removeSourceTask{ctx: f.ctx, sourceType: sourceType, client: f.client, logger: f.logger}
}

func (f *TaskFactory) CreatePlay() Task  { return &playTask{ctx: f.ctx, logger: f.logger} }
func (f *TaskFactory) CreatePause() Task { return &pauseTask{ctx: f.ctx, logger: f.logger} }
func (f *TaskFactory) CreateStop() Task  { return &stopTask{ctx: f.ctx, logger: f.logger} }

func (f *TaskFactory) CreateSetPlaybackRate(rate float64) Task {
	return &setPlaybackRateTask{ctx: f.ctx, rate: rate, logger: f.logger}
}

func (f *TaskFactory) CreateSetVideoGeometry(rect Rectangle) Task {
	return &setVideoGeometryTask{ctx: f.ctx, rect: rect, logger: f.logger}
}

func (f *TaskFactory) CreateSetImmediateOutput(immediate bool) Task {
	return &setPropertyTask{ctx: f.ctx, target: targetVideoSink, property: "immediate-output", value: immediate, logger: f.logger}
}

func (f *TaskFactory) CreateSetLowLatency(lowLatency bool) Task {
	return &setPropertyTask{ctx: f.ctx, target: targetAudioSink, property: "low-latency", value: lowLatency, logger: f.logger}
}

func (f *TaskFactory) CreateSetSync(sync bool) Task {
	return &setPropertyTask{ctx: f.ctx, target: targetAudioSink, property: "sync", value: sync, logger: f.logger}
}

func (f *TaskFactory) CreateSetSyncOff(syncOff bool) Task {
	return &setPropertyTask{ctx: f.ctx, target: targetAudioSink, property: "sync-off", value: syncOff, logger: f.logger}
}

func (f *TaskFactory) CreateSetStreamSyncMode(mode int) Task {
	return &setPropertyTask{ctx: f.ctx, target: targetAudioSink, property: "stream-sync-mode", value: mode, logger: f.logger}
}

func (f *TaskFactory) CreateSetVolume(volume float64) Task {
	return &setVolumeTask{ctx: f.ctx, volume: volume, logger: f.logger}
}

func (f *TaskFactory) CreateSetMute(sourceType MediaSourceType, mute bool) Task {
	return &setMuteTask{ctx: f.ctx, sourceType: sourceType, mute: mute, logger: f.logger}
}

func (f *TaskFactory) CreateRenderFrame() Task {
	return &renderFrameTask{ctx: f.ctx, logger: f.logger}
}

func (f *TaskFactory) CreateReportPosition() Task {
	return &reportPositionTask{ctx: f.ctx, client: f.client, logger: f.logger}
}

func (f *TaskFactory) CreateCheckAudioUnderflow(scheduler Scheduler) Task {
	return &checkAudioUnderflowTask{ctx: f.ctx, client: f.client, scheduler: scheduler, logger: f.logger}
}

func (f *TaskFactory) CreateUnderflow(sourceType MediaSourceType) Task {
	return &underflowTask{ctx: f.ctx, sourceType: sourceType, client: f.client, logger: f.logger}
}

func (f *TaskFactory) CreateEos(sourceType MediaSourceType) Task {
	return &eosTask{ctx: f.ctx, sourceType: sourceType, client: f.client, logger: f.logger}
}

func (f *TaskFactory) CreateHandleBusMessage(msg gstkit.Message) Task {
	return &handleBusMessageTask{ctx: f.ctx, msg: msg, client: f.client, scheduler: f.scheduler, logger: f.logger}
}

func (f *TaskFactory) CreatePing(heartbeat func()) Task {
	return NewTaskFunc("Ping", heartbeat)
}

func (f *TaskFactory) CreateShutdown(stop func()) Task {
	return NewTaskFunc("Shutdown", stop)
}

// newDataReader is a package-level indirection point so tests can substitute a
// fixed segment list without going through the real shared-memory region.
var newDataReader = func(partition []byte) *datareader.Reader {
	return datareader.New(partition)
}

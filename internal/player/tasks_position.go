package player

import (
	"log/slog"
	"time"

	"github.com/rdkcentral/rialto-go/internal/gstkit"
)

// setPositionTask implements a seek: notify SEEKING, drop all queued
// buffers and need-data state, then issue a flushing framework seek
// (spec.md §4.B SetPosition, §8 law 5).
type setPositionTask struct {
	ctx       *PlayerContext
	position  int64
	client    ClientCallbacks
	scheduler Scheduler
	logger    *slog.Logger
}

func (t *setPositionTask) Name() string { return "SetPosition" }

func (t *setPositionTask) Execute() {
	if t.client != nil {
		t.client.NotifyPlaybackState(PlaybackStateSeeking)
	}

	t.ctx.ClearNeedData(SourceTypeAudio)
	t.ctx.ClearNeedData(SourceTypeVideo)
	if t.client != nil {
		t.client.ClearActiveRequestsCache()
	}
	t.ctx.DropAndUnrefBuffers(SourceTypeAudio)
	t.ctx.DropAndUnrefBuffers(SourceTypeVideo)

	requested := time.Duration(t.position)
	t.ctx.LastAudioSampleTimestamps = requested

	if t.ctx.Pipeline == nil {
		if t.client != nil {
			t.client.NotifyPlaybackState(PlaybackStateFailure)
		}
		return
	}

	if err := t.ctx.Pipeline.Seek(t.ctx.PlaybackRate, requested, gstkit.SeekFlagFlush); err != nil {
		t.logger.Warn("seek failed", "position", requested, "err", err)
		if t.client != nil {
			t.client.NotifyPlaybackState(PlaybackStateFailure)
		}
		return
	}

	if t.client != nil {
		t.client.NotifyPlaybackState(PlaybackStateSeekDone)
	}

	if t.scheduler == nil {
		return
	}
	factory := &TaskFactory{ctx: t.ctx, client: t.client, logger: t.logger}
	for sourceType := range t.ctx.StreamInfo {
		_ = t.scheduler.Enqueue(factory.CreateNeedData(sourceType))
	}
}

// setSourcePositionTask enqueues a pending segment timing record for
// appSrc, consumed by the next buffer AttachSamples pushes for it (spec.md
// §4.B SetSourcePosition, §9 "Segment event carriage").
type setSourcePositionTask struct {
	ctx        *PlayerContext
	sourceType MediaSourceType
	position   int64
	resetTime  bool
	logger     *slog.Logger
}

func (t *setSourcePositionTask) Name() string { return "SetSourcePosition" }

func (t *setSourcePositionTask) Execute() {
	info, ok := t.ctx.StreamInfo[t.sourceType]
	if !ok || info.AppSrc == nil {
		t.logger.Warn("set source position: source not attached", "source", t.sourceType)
		return
	}
	entry := TimedPosition{Position: time.Duration(t.position), ResetTime: t.resetTime}
	t.ctx.InitialPositions[info.AppSrc] = append(t.ctx.InitialPositions[info.AppSrc], entry)
	t.logger.Debug("queued source position", "source", t.sourceType, "position", entry.Position)
}

// flushTask drops a single source's queued buffers and need-data state,
// re-primes the appsrc with flush-start/flush-stop, and schedules exactly
// one follow-up NeedData (spec.md §4.B Flush, §8 law 4).
type flushTask struct {
	ctx        *PlayerContext
	sourceType MediaSourceType
	resetTime  bool
	client     ClientCallbacks
	scheduler  Scheduler
	logger     *slog.Logger
}

func (t *flushTask) Name() string { return "Flush" }

func (t *flushTask) Execute() {
	info, ok := t.ctx.StreamInfo[t.sourceType]
	if !ok || info.AppSrc == nil {
		t.logger.Warn("flush: source not attached", "source", t.sourceType)
		return
	}

	t.ctx.ClearNeedData(t.sourceType)
	t.ctx.DropAndUnrefBuffers(t.sourceType)
	if t.client != nil {
		t.client.InvalidateActiveRequests(t.sourceType)
	}

	info.AppSrc.SendEvent(gstkit.FlushStartEvent{})
	info.AppSrc.SendEvent(gstkit.FlushStopEvent{ResetTime: t.resetTime})

	if t.client != nil {
		t.client.NotifySourceFlushed(t.sourceType)
	}

	if t.scheduler != nil {
		factory := &TaskFactory{ctx: t.ctx, client: t.client, logger: t.logger}
		_ = t.scheduler.Enqueue(factory.CreateNeedData(t.sourceType))
	}
}

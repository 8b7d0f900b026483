package player

import (
	"log/slog"

	"github.com/rdkcentral/rialto-go/internal/gstkit"
)

type playTask struct {
	ctx    *PlayerContext
	logger *slog.Logger
}

func (t *playTask) Name() string { return "Play" }

func (t *playTask) Execute() {
	if t.ctx.Pipeline == nil {
		return
	}
	if err := t.ctx.Pipeline.SetState(gstkit.StatePlaying); err != nil {
		t.logger.Warn("play: set state failed", "err", err)
		return
	}
	t.ctx.IsPlaying = true

	if t.ctx.PendingPlaybackRate != NoPendingRate {
		t.ctx.PlaybackRate = t.ctx.PendingPlaybackRate
		t.ctx.PendingPlaybackRate = NoPendingRate
		applyPlaybackRate(t.ctx, t.ctx.PlaybackRate)
	}
}

type pauseTask struct {
	ctx    *PlayerContext
	logger *slog.Logger
}

func (t *pauseTask) Name() string { return "Pause" }

func (t *pauseTask) Execute() {
	if t.ctx.Pipeline == nil {
		return
	}
	if err := t.ctx.Pipeline.SetState(gstkit.StatePaused); err != nil {
		t.logger.Warn("pause: set state failed", "err", err)
		return
	}
	t.ctx.IsPlaying = false
}

type stopTask struct {
	ctx    *PlayerContext
	logger *slog.Logger
}

func (t *stopTask) Name() string { return "Stop" }

func (t *stopTask) Execute() {
	if t.ctx.Pipeline != nil {
		if err := t.ctx.Pipeline.SetState(gstkit.StateNull); err != nil {
			t.logger.Warn("stop: set state failed", "err", err)
		}
	}
	t.ctx.IsPlaying = false
	t.ctx.ClearNeedData(SourceTypeAudio)
	t.ctx.ClearNeedData(SourceTypeVideo)
}

// setPlaybackRateTask applies a new rate via the amlhalasink segment-event
// path or the generic custom-instant-rate-change OOB event, deferring to
// PendingPlaybackRate if the pipeline hasn't reached PLAYING yet (spec.md
// §4.B SetPlaybackRate).
type setPlaybackRateTask struct {
	ctx    *PlayerContext
	rate   float64
	logger *slog.Logger
}

func (t *setPlaybackRateTask) Name() string { return "SetPlaybackRate" }

func (t *setPlaybackRateTask) Execute() {
	if !t.ctx.IsPlaying {
		t.ctx.PendingPlaybackRate = t.rate
		return
	}
	t.ctx.PlaybackRate = t.rate
	applyPlaybackRate(t.ctx, t.rate)
}

func applyPlaybackRate(ctx *PlayerContext, rate float64) {
	audioSink := ctx.PlaybackGroup.AudioSink
	if audioSink != nil && gstkit.IsAmlhalasink(audioSink.Name()) {
		pad, ok := audioSink.GetPad("sink")
		if ok {
			pad.SendEvent(gstkit.SegmentEvent{Rate: rate})
		}
		return
	}
	if ctx.Pipeline != nil {
		ctx.Pipeline.SendEvent(gstkit.CustomInstantRateChangeEvent{Rate: rate})
	}
}

// setVideoGeometryTask applies rect to the resolved video sink immediately,
// or stashes it for SetupElement to apply once the sink exists (spec.md
// §4.B SetVideoGeometry, §9 auto-sink resolve-at-use).
type setVideoGeometryTask struct {
	ctx    *PlayerContext
	rect   Rectangle
	logger *slog.Logger
}

func (t *setVideoGeometryTask) Name() string { return "SetVideoGeometry" }

func (t *setVideoGeometryTask) Execute() {
	if sink := t.ctx.PlaybackGroup.VideoSink; sink != nil {
		applyGeometry(sink, t.rect)
		return
	}
	rect := t.rect
	t.ctx.PendingGeometry = &rect
}

// sinkTarget names which playback-group element a setPropertyTask targets.
type sinkTarget int

const (
	targetAudioSink sinkTarget = iota
	targetVideoSink
)

// setPropertyTask implements the family of property setters that silently
// no-op when the target element or property is absent: SetImmediateOutput,
// SetLowLatency, SetSync, SetSyncOff, SetStreamSyncMode (spec.md §4.B).
type setPropertyTask struct {
	ctx      *PlayerContext
	target   sinkTarget
	property string
	value    any
	logger   *slog.Logger
}

func (t *setPropertyTask) Name() string { return "SetProperty(" + t.property + ")" }

func (t *setPropertyTask) Execute() {
	var elem gstkit.Element
	switch t.target {
	case targetVideoSink:
		elem = t.ctx.PlaybackGroup.VideoSink
	default:
		elem = t.ctx.PlaybackGroup.AudioSink
		if elem == nil {
			elem = t.ctx.PlaybackGroup.Decoder
		}
	}
	if elem == nil || !elem.HasProperty(t.property) {
		t.logger.Debug("set property: no-op, element or property absent", "property", t.property)
		return
	}
	if err := elem.SetProperty(t.property, t.value); err != nil {
		t.logger.Warn("set property failed", "property", t.property, "err", err)
	}
}

// setVolumeTask sets volume on the pipeline directly (spec.md §4.B
// SetVolume).
type setVolumeTask struct {
	ctx    *PlayerContext
	volume float64
	logger *slog.Logger
}

func (t *setVolumeTask) Name() string { return "SetVolume" }

func (t *setVolumeTask) Execute() {
	if t.ctx.Pipeline == nil {
		return
	}
	if err := t.ctx.Pipeline.SetProperty("volume", t.volume); err != nil {
		t.logger.Warn("set volume failed", "err", err)
	}
}

// setMuteTask mutes/unmutes a specific source type on the pipeline (spec.md
// §4.B SetMute).
type setMuteTask struct {
	ctx        *PlayerContext
	sourceType MediaSourceType
	mute       bool
	logger     *slog.Logger
}

func (t *setMuteTask) Name() string { return "SetMute" }

func (t *setMuteTask) Execute() {
	if t.ctx.Pipeline == nil {
		return
	}
	property := "mute"
	if t.sourceType == SourceTypeVideo {
		property = "video-mute"
	}
	if err := t.ctx.Pipeline.SetProperty(property, t.mute); err != nil {
		t.logger.Warn("set mute failed", "source", t.sourceType, "err", err)
	}
}

// renderFrameTask asks the video sink to render the last frame (spec.md
// §4.B RenderFrame, e.g. while paused).
type renderFrameTask struct {
	ctx    *PlayerContext
	logger *slog.Logger
}

func (t *renderFrameTask) Name() string { return "RenderFrame" }

func (t *renderFrameTask) Execute() {
	sink := t.ctx.PlaybackGroup.VideoSink
	if sink == nil || !sink.HasProperty("render-frame") {
		return
	}
	if err := sink.SetProperty("render-frame", true); err != nil {
		t.logger.Warn("render frame failed", "err", err)
	}
}

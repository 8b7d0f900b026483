package player

import (
	"log/slog"

	"github.com/rdkcentral/rialto-go/internal/gstkit"
)

// reportPositionTask queries the pipeline position and forwards it to the
// client, run periodically while PLAYING (spec.md §4.B ReportPosition).
type reportPositionTask struct {
	ctx    *PlayerContext
	client ClientCallbacks
	logger *slog.Logger
}

func (t *reportPositionTask) Name() string { return "ReportPosition" }

func (t *reportPositionTask) Execute() {
	if t.ctx.Pipeline == nil || !t.ctx.IsPlaying {
		return
	}
	pos, ok := t.ctx.Pipeline.QueryPosition()
	if !ok || pos < 0 {
		return
	}
	if t.client != nil {
		t.client.NotifyPosition(int64(pos))
	}
}

// checkAudioUnderflowTask detects a stalled audio source by comparing
// current position against LastAudioSampleTimestamps + UnderflowMargin
// (spec.md §4.B CheckAudioUnderflow).
type checkAudioUnderflowTask struct {
	ctx       *PlayerContext
	client    ClientCallbacks
	scheduler Scheduler
	logger    *slog.Logger
}

func (t *checkAudioUnderflowTask) Name() string { return "CheckAudioUnderflow" }

func (t *checkAudioUnderflowTask) Execute() {
	if t.ctx.Pipeline == nil {
		return
	}
	state, ok := t.ctx.Pipeline.GetState()
	if !ok || state != gstkit.StatePlaying {
		return
	}
	pos, ok := t.ctx.Pipeline.QueryPosition()
	if !ok {
		return
	}
	if pos <= t.ctx.LastAudioSampleTimestamps+UnderflowMargin {
		return
	}
	if t.scheduler == nil {
		return
	}
	factory := &TaskFactory{ctx: t.ctx, client: t.client, logger: t.logger}
	_ = t.scheduler.Enqueue(factory.CreateUnderflow(SourceTypeAudio))
}

// underflowTask is idempotent: a source's sticky underflow flag guards
// against repeated notifications for the same stall (spec.md §4.B
// Underflow).
type underflowTask struct {
	ctx        *PlayerContext
	sourceType MediaSourceType
	client     ClientCallbacks
	logger     *slog.Logger
}

func (t *underflowTask) Name() string { return "Underflow" }

func (t *underflowTask) Execute() {
	flag := t.ctx.underflowFlag(t.sourceType)
	if flag == nil || *flag {
		return
	}
	*flag = true

	(&pauseTask{ctx: t.ctx, logger: t.logger}).Execute()

	if t.client != nil {
		// Legacy path kept alongside the current one (spec.md §9 open
		// question: both are emitted, STALLED is deprecated but
		// compatible).
		t.client.NotifyNetworkState(NetworkStateStalled)
		t.client.NotifyBufferUnderflow(t.sourceType)
	}
}

// eosTask sends end-of-stream to sourceType's appsrc and records it in
// EndOfStreamInfo; the bus's EOS handler aggregates across sources (spec.md
// §4.B Eos, §8 law 7).
type eosTask struct {
	ctx        *PlayerContext
	sourceType MediaSourceType
	client     ClientCallbacks
	logger     *slog.Logger
}

func (t *eosTask) Name() string { return "Eos" }

func (t *eosTask) Execute() {
	info, ok := t.ctx.StreamInfo[t.sourceType]
	if !ok || info.AppSrc == nil {
		t.logger.Warn("eos: source not attached", "source", t.sourceType)
		return
	}
	if info.AppSrc.EndOfStream() != gstkit.FlowOK {
		t.logger.Warn("eos: end-of-stream push failed", "source", t.sourceType)
		return
	}
	t.ctx.EndOfStreamInfo[t.sourceType] = struct{}{}
	t.logger.Debug("eos recorded", "source", t.sourceType)
}

// handleBusMessageTask converts one framework bus message into the matching
// client notification or follow-up task (spec.md §4.E).
type handleBusMessageTask struct {
	ctx       *PlayerContext
	msg       gstkit.Message
	client    ClientCallbacks
	scheduler Scheduler
	logger    *slog.Logger
}

func (t *handleBusMessageTask) Name() string { return "HandleBusMessage" }

func (t *handleBusMessageTask) Execute() {
	switch t.msg.Type {
	case gstkit.MessageStateChanged:
		t.handleStateChanged()
	case gstkit.MessageError:
		t.handleError()
	case gstkit.MessageWarning:
		t.logger.Warn("framework warning", "err", t.msg.Err)
	case gstkit.MessageEOS:
		t.handleEOS()
	case gstkit.MessageQoS:
		t.handleQoS()
	default:
		t.logger.Debug("unhandled bus message", "type", t.msg.Type)
	}
}

func (t *handleBusMessageTask) handleStateChanged() {
	if t.client == nil {
		return
	}
	switch t.msg.NewState {
	case gstkit.StatePlaying:
		t.client.NotifyPlaybackState(PlaybackStatePlaying)
	case gstkit.StatePaused:
		t.client.NotifyPlaybackState(PlaybackStatePaused)
	case gstkit.StateNull:
		t.client.NotifyPlaybackState(PlaybackStateStopped)
	}
}

func (t *handleBusMessageTask) handleError() {
	t.logger.Error("framework fatal error", "err", t.msg.Err)
	if t.client != nil {
		t.client.NotifyPlaybackState(PlaybackStateFailure)
		t.client.NotifyNetworkState(NetworkStateDecodeError)
	}
	if t.scheduler == nil {
		return
	}
	factory := &TaskFactory{ctx: t.ctx, logger: t.logger}
	_ = t.scheduler.Enqueue(factory.CreateStop())
	_ = t.scheduler.Enqueue(factory.CreateShutdown(func() {}))
}

func (t *handleBusMessageTask) handleEOS() {
	if t.ctx.EosNotified {
		return
	}
	for sourceType := range t.ctx.StreamInfo {
		if _, done := t.ctx.EndOfStreamInfo[sourceType]; !done {
			return
		}
	}
	t.ctx.EosNotified = true
	if t.client != nil {
		t.client.NotifyPlaybackState(PlaybackStateEndOfStream)
	}
}

func (t *handleBusMessageTask) handleQoS() {
	if t.client == nil || t.msg.QoS == nil {
		return
	}
	sourceType := SourceTypeVideo
	if t.msg.Source != nil {
		kind := gstkit.ClassifyByFactory(t.msg.Source.FactoryName())
		if kind.IsAudio {
			sourceType = SourceTypeAudio
		}
	}
	t.client.NotifyQos(sourceType, QosInfo{Processed: t.msg.QoS.Processed, Dropped: t.msg.QoS.Dropped})
}

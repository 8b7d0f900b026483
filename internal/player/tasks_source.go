package player

import (
	"log/slog"

	"github.com/rdkcentral/rialto-go/internal/gstkit"
)

// attachSourceTask translates a MediaSource descriptor into framework caps,
// creates (or hot-swaps) an appsrc, and records streamInfo (spec.md §4.B
// AttachSource).
type attachSourceTask struct {
	ctx            *PlayerContext
	source         MediaSource
	elementFactory gstkit.Factory
	client         ClientCallbacks
	logger         *slog.Logger
}

func (t *attachSourceTask) Name() string { return "AttachSource" }

func (t *attachSourceTask) Execute() {
	sourceType := t.source.Type()
	caps := buildCaps(t.source)

	if sourceType == SourceTypeAudio && t.ctx.AudioSourceRemoved {
		t.hotSwapAudio(caps)
		return
	}

	elem, err := t.elementFactory.Make("appsrc", appSrcName(sourceType))
	if err != nil {
		t.logger.Error("attach source: create appsrc failed", "source", sourceType, "err", err)
		return
	}
	if err := elem.SetCaps(caps); err != nil {
		t.logger.Error("attach source: set caps failed", "source", sourceType, "err", err)
		return
	}

	t.ctx.StreamInfo[sourceType] = &StreamInfo{AppSrc: elem, HasDRM: t.source.HasDRM()}
	t.logger.Debug("attached source", "source", sourceType, "mime", t.source.MimeType())
}

// hotSwapAudio implements the AttachSource hot-swap branch: reuse the
// existing appsrc if caps are unchanged, otherwise set the new caps on that
// same appsrc; the element handle is kept in both cases (spec.md §4.B
// AttachSource, §8 law 6). No separate codec-channel-switch call is made.
func (t *attachSourceTask) hotSwapAudio(newCaps *gstkit.CapsDesc) {
	info, ok := t.ctx.StreamInfo[SourceTypeAudio]
	if !ok || info.AppSrc == nil {
		t.logger.Warn("hot swap requested with no existing audio appsrc")
		return
	}

	current, hasCurrent := info.AppSrc.GetCaps()
	currentDesc, _ := current.(*gstkit.CapsDesc)
	if !hasCurrent || !currentDesc.Equal(newCaps) {
		// Caps changed: the new caps are set on the existing appsrc; the
		// appsrc handle itself is never replaced.
		_ = info.AppSrc.SetCaps(newCaps)
		t.logger.Debug("audio hot swap: codec channel switch", "mime", t.source.MimeType())
	} else {
		t.logger.Debug("audio hot swap: caps unchanged, reusing appsrc")
	}

	if t.ctx.Pipeline != nil {
		if pos, ok := t.ctx.Pipeline.QueryPosition(); ok {
			t.ctx.LastAudioSampleTimestamps = pos
		}
	}
	t.ctx.AudioSourceRemoved = false
	t.ctx.AudioNeedData = true
	if t.client != nil {
		t.client.NotifyNeedMediaData(SourceTypeAudio)
	}
}

func appSrcName(sourceType MediaSourceType) string {
	switch sourceType {
	case SourceTypeAudio:
		return "audsrc"
	case SourceTypeVideo:
		return "vidsrc"
	case SourceTypeSubtitle:
		return "subsrc"
	default:
		return "src"
	}
}

// buildCaps translates a MediaSource into a gstkit.CapsDesc per spec.md
// §4.B AttachSource's per-mime branching.
func buildCaps(source MediaSource) *gstkit.CapsDesc {
	switch s := source.(type) {
	case *AudioSource:
		return buildAudioCaps(s)
	case *VideoDolbyVisionSource:
		caps := buildVideoCaps(&s.VideoSource)
		caps.With("dovi-stream", true).With("dv_profile", s.DVProfile)
		return caps
	case *VideoSource:
		return buildVideoCaps(s)
	case *SubtitleSource:
		return gstkit.NewCaps(s.MimeType())
	default:
		return gstkit.NewCaps(source.MimeType())
	}
}

func buildAudioCaps(s *AudioSource) *gstkit.CapsDesc {
	caps := gstkit.NewCaps(s.MimeType())
	switch s.MimeType() {
	case "audio/mpeg":
		caps.With("mpegversion", 4)
	case "audio/x-eac3", "audio/x-raw", "audio/b-wav":
		caps.With("channels", 2).With("rate", 48000)
		if s.MimeType() == "audio/x-raw" {
			caps.With("format", "S16LE").With("layout", "interleaved").With("channel-mask", uint64(3))
		}
	case "audio/x-opus":
		caps.With("audio-specific-config", s.AudioConfig)
	}
	return caps
}

func buildVideoCaps(s *VideoSource) *gstkit.CapsDesc {
	caps := gstkit.NewCaps(s.MimeType())
	caps.With("width", s.Width).With("height", s.Height)
	if s.Alignment == AlignmentAU {
		caps.With("alignment", "au")
	} else if s.Alignment == AlignmentNAL {
		caps.With("alignment", "nal")
	}
	if s.StreamFormat == StreamFormatAVC {
		caps.With("stream-format", "avc")
	} else if s.StreamFormat == StreamFormatByteStream {
		caps.With("stream-format", "byte-stream")
	}
	if len(s.CodecData) > 0 {
		caps.With("codec_data", s.CodecData)
	}
	return caps
}

// removeSourceTask tears down audio's need-data/pending state and queued
// buffers while leaving the appsrc in place for a later hot-swap attach
// (spec.md §4.B RemoveSource). Only AUDIO is supported; spec.md §9 marks
// video removal an open question to be rejected, not guessed at.
type removeSourceTask struct {
	ctx        *PlayerContext
	sourceType MediaSourceType
	client     ClientCallbacks
	logger     *slog.Logger
	Err        error
}

func (t *removeSourceTask) Name() string { return "RemoveSource" }

func (t *removeSourceTask) Execute() {
	if t.sourceType != SourceTypeAudio {
		t.Err = ErrRemoveSourceUnsupported
		t.logger.Warn("removeSource rejected for unsupported type", "source", t.sourceType)
		return
	}

	t.ctx.ClearNeedData(SourceTypeAudio)
	t.ctx.DropAndUnrefBuffers(SourceTypeAudio)
	if t.client != nil {
		t.client.InvalidateActiveRequests(SourceTypeAudio)
	}
	t.ctx.AudioSourceRemoved = true
	t.logger.Debug("removed audio source")
}

package player

import (
	"log/slog"

	"github.com/rdkcentral/rialto-go/internal/datareader"
	"github.com/rdkcentral/rialto-go/internal/decryption"
	"github.com/rdkcentral/rialto-go/internal/gstkit"
	"github.com/rdkcentral/rialto-go/internal/shm"
)

// needDataTask asks the client for more bytes on sourceType, unless a
// request is already outstanding (spec.md §4.B NeedData, §8 law 3).
type needDataTask struct {
	ctx        *PlayerContext
	sourceType MediaSourceType
	client     ClientCallbacks
	logger     *slog.Logger
}

func (t *needDataTask) Name() string { return "NeedData" }

func (t *needDataTask) Execute() {
	needData, pending := t.ctx.needDataFlags(t.sourceType)
	if needData == nil {
		return
	}
	*needData = true

	if pending != nil && *pending {
		t.logger.Debug("need-data already pending, skipping duplicate notify", "source", t.sourceType)
		return
	}

	if t.client != nil && t.client.NotifyNeedMediaData(t.sourceType) {
		if pending != nil {
			*pending = true
		}
	}
}

// enoughDataTask clears the need-data flag for sourceType (spec.md §4.B
// EnoughData).
type enoughDataTask struct {
	ctx        *PlayerContext
	sourceType MediaSourceType
	logger     *slog.Logger
}

func (t *enoughDataTask) Name() string { return "EnoughData" }

func (t *enoughDataTask) Execute() {
	needData, _ := t.ctx.needDataFlags(t.sourceType)
	if needData != nil {
		*needData = false
	}
	t.logger.Debug("enough data", "source", t.sourceType)
}

// attachSamplesTask turns in-memory MediaSegments into framework buffers and
// enqueues them on the context's per-source buffer queue (spec.md §4.B
// AttachSamples).
type attachSamplesTask struct {
	ctx      *PlayerContext
	segments []MediaSegment
	client   ClientCallbacks
	logger   *slog.Logger
}

func (t *attachSamplesTask) Name() string { return "AttachSamples" }

func (t *attachSamplesTask) Execute() {
	attachSegments(t.ctx, t.segments, t.client, t.logger)
}

// attachSegments is the shared logic behind AttachSamples and
// ReadShmDataAndAttachSamples (spec.md §4.B, both tasks "apply the same
// logic").
func attachSegments(ctx *PlayerContext, segments []MediaSegment, client ClientCallbacks, logger *slog.Logger) {
	for _, seg := range segments {
		info, ok := ctx.StreamInfo[seg.Type]
		if !ok || info.AppSrc == nil {
			logger.Warn("attach segment: source not attached", "source", seg.Type)
			continue
		}

		updateCapsForSegment(info.AppSrc, seg)

		buf := gstkit.NewBuffer(seg.Data)
		buf.SetTimestamp(seg.Timestamp, seg.Duration)

		if seg.Type == SourceTypeAudio && (seg.ClippingStart != 0 || seg.ClippingEnd != 0) {
			buf.SetClippingMeta(seg.ClippingStart, seg.ClippingEnd)
		}

		if seg.Encryption != nil && ctx.DecryptionService != nil {
			subSamples := make([]decryption.SubSample, len(seg.Encryption.SubSamples))
			for i, s := range seg.Encryption.SubSamples {
				subSamples[i] = decryption.SubSample{ClearBytes: s.ClearBytes, EncryptedBytes: s.EncryptedBytes}
			}
			in := decryption.Input{
				MediaKeySessionID: seg.Encryption.MediaKeySessionID,
				KeyID:             seg.Encryption.KeyID,
				InitVector:        seg.Encryption.InitVector,
				InitWithLast15:    seg.Encryption.InitWithLast15,
				SubSamples:        subSamples,
			}
			if err := ctx.DecryptionService.Decrypt(buf, in); err != nil {
				logger.Warn("attach segment: decrypt failed", "source", seg.Type, "err", err)
			}
		}

		applyPendingSegmentEvent(ctx, info.AppSrc)

		switch seg.Type {
		case SourceTypeAudio:
			ctx.AudioBuffers = append(ctx.AudioBuffers, buf)
		case SourceTypeVideo:
			ctx.VideoBuffers = append(ctx.VideoBuffers, buf)
		default:
			buf.Unref()
		}
	}

	// At most one notifyNeedMediaData(type) per type per batch, and none
	// while the type's need-data flag is clear or a request is pending: a batch
	// commonly carries several segments of the same source type, and
	// firing once per segment would violate the one-outstanding-request
	// invariant the same way two NeedData tasks back to back would.
	notified := make(map[MediaSourceType]bool, 2)
	for _, seg := range segments {
		if notified[seg.Type] || client == nil {
			continue
		}
		needData, pending := ctx.needDataFlags(seg.Type)
		if needData == nil || !*needData {
			continue
		}
		if pending != nil && *pending {
			continue
		}
		notified[seg.Type] = true
		if client.NotifyNeedMediaData(seg.Type) && pending != nil {
			*pending = true
		}
	}
}

// applyPendingSegmentEvent sends the FIFO-queued segment event (from
// SetSourcePosition) ahead of the first buffer pushed for appSrc after it
// was recorded (spec.md §9 "Segment event carriage via initialPositions").
func applyPendingSegmentEvent(ctx *PlayerContext, appSrc gstkit.Element) {
	queue, ok := ctx.InitialPositions[appSrc]
	if !ok || len(queue) == 0 {
		return
	}
	next := queue[0]
	ctx.InitialPositions[appSrc] = queue[1:]
	_ = appSrc.SendEvent(gstkit.SegmentEvent{Rate: 1.0, Start: next.Position, Position: next.Position})
}

func updateCapsForSegment(appSrc gstkit.Element, seg MediaSegment) {
	current, ok := appSrc.GetCaps()
	currentDesc, _ := current.(*gstkit.CapsDesc)
	if !ok || currentDesc == nil {
		return
	}
	updated := *currentDesc
	updated.Fields = cloneFields(currentDesc.Fields)
	changed := false

	if seg.Type == SourceTypeAudio {
		if seg.SampleRate != 0 {
			updated.With("rate", seg.SampleRate)
			changed = true
		}
		if seg.NumberOfChannels != 0 {
			updated.With("channels", seg.NumberOfChannels)
			changed = true
		}
	}
	if seg.Type == SourceTypeVideo {
		if seg.Width != 0 {
			updated.With("width", seg.Width)
			changed = true
		}
		if seg.Height != 0 {
			updated.With("height", seg.Height)
			changed = true
		}
		if seg.FrameRate != 0 {
			updated.With("framerate", seg.FrameRate)
			changed = true
		}
	}
	if changed {
		_ = appSrc.SetCaps(&updated)
	}
}

func cloneFields(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// readShmDataAndAttachSamplesTask pulls segments out of the session's
// shared-memory partition via the Data Reader and applies the AttachSamples
// logic to them (spec.md §4.B ReadShmDataAndAttachSamples).
type readShmDataAndAttachSamplesTask struct {
	ctx          *PlayerContext
	sourceType   MediaSourceType
	numFrames    int
	shmBuffer    shm.Buffer
	sessionIndex int
	client       ClientCallbacks
	logger       *slog.Logger
}

func (t *readShmDataAndAttachSamplesTask) Name() string { return "ReadShmDataAndAttachSamples" }

func (t *readShmDataAndAttachSamplesTask) Execute() {
	kind := toShmSourceKind(t.sourceType)
	partition, err := t.shmBuffer.Partition(t.sessionIndex, kind)
	if err != nil {
		t.logger.Error("read shm data: partition lookup failed", "source", t.sourceType, "err", err)
		return
	}

	reader := newDataReader(partition)
	segments := make([]MediaSegment, 0, t.numFrames)
	for reader.Remaining() {
		seg, ok, err := reader.ReadSegment()
		if err != nil {
			t.logger.Error("read shm data: segment parse failed", "source", t.sourceType, "err", err)
			break
		}
		if !ok {
			break
		}
		segments = append(segments, toMediaSegment(t.sourceType, seg))
	}

	attachSegments(t.ctx, segments, t.client, t.logger)

	if err := t.shmBuffer.Clear(t.sessionIndex, kind); err != nil {
		t.logger.Warn("read shm data: clear partition failed", "source", t.sourceType, "err", err)
	}
}

func toShmSourceKind(sourceType MediaSourceType) shm.SourceKind {
	switch sourceType {
	case SourceTypeVideo:
		return shm.SourceVideo
	case SourceTypeSubtitle:
		return shm.SourceSubtitle
	default:
		return shm.SourceAudio
	}
}

func toMediaSegment(sourceType MediaSourceType, seg datareader.Segment) MediaSegment {
	out := MediaSegment{
		SourceID:  int32(seg.Header.SourceID),
		Type:      sourceType,
		Timestamp: seg.Header.Timestamp,
		Duration:  seg.Header.Duration,
		Data:      seg.Data,
	}
	if seg.Header.Encrypted {
		subSamples := make([]SubSample, len(seg.SubSamples))
		for i, s := range seg.SubSamples {
			subSamples[i] = SubSample{ClearBytes: s.ClearBytes, EncryptedBytes: s.EncryptedBytes}
		}
		out.Encryption = &EncryptionDescriptor{
			MediaKeySessionID: string(seg.MediaKeySessionID),
			KeyID:             seg.KeyID,
			InitVector:        seg.InitVector,
			InitWithLast15:    seg.Header.InitWithLast15,
			SubSamples:        subSamples,
		}
	}
	return out
}

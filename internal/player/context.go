package player

import (
	"time"

	"github.com/rdkcentral/rialto-go/internal/decryption"
	"github.com/rdkcentral/rialto-go/internal/gstkit"
)

// UnderflowMargin is the position-lag threshold CheckAudioUnderflow compares
// against (spec.md §4.B, 350ms). CheckAudioUnderflow always uses this
// constant; config.ServerConfig.UnderflowMargin is parsed from the
// environment but is not passed to the player.
const UnderflowMargin = 350 * time.Millisecond

// NoPendingRate is the pendingPlaybackRate sentinel meaning "no rate change
// is waiting for PLAYING" (spec.md §3).
const NoPendingRate = 0

// StreamInfo is the per-source-type record streamInfo maps to (spec.md §3).
type StreamInfo struct {
	AppSrc gstkit.Element
	HasDRM bool
}

// PlaybackGroup collects the opportunistically-discovered decoder/parser/
// typefind/sink elements for a media chain (spec.md §3, SetupElement /
// DeepElementAdded / UpdatePlaybackGroup).
type PlaybackGroup struct {
	Typefind  gstkit.Element
	Parser    gstkit.Element
	Decoder   gstkit.Element
	AudioSink gstkit.Element
	VideoSink gstkit.Element
	Decodebin gstkit.Element
}

// PlayerContext is the single per-session runtime record. Only the worker
// goroutine running the session's tasks may read or write its fields
// (spec.md §3 invariant 1).
type PlayerContext struct {
	Pipeline gstkit.Pipeline
	Source   gstkit.Element

	StreamInfo map[MediaSourceType]*StreamInfo

	AudioBuffers []gstkit.Buffer
	VideoBuffers []gstkit.Buffer

	AudioNeedData, VideoNeedData               bool
	AudioNeedDataPending, VideoNeedDataPending bool

	EndOfStreamInfo map[MediaSourceType]struct{}
	EosNotified     bool

	AudioUnderflowOccured, VideoUnderflowOccured bool

	IsPlaying           bool
	PlaybackRate        float64
	PendingPlaybackRate float64 // NoPendingRate sentinel means absent

	PendingGeometry *Rectangle

	LastAudioSampleTimestamps time.Duration

	InitialPositions map[gstkit.Element][]TimedPosition

	AudioSourceRemoved    bool
	WereAllSourcesAttached bool
	SetupSourceFinished   bool

	PlaybackGroup PlaybackGroup

	DecryptionService decryption.Service
}

// NewPlayerContext returns a freshly zeroed context for a new session.
func NewPlayerContext(decryptionService decryption.Service) *PlayerContext {
	return &PlayerContext{
		StreamInfo:          map[MediaSourceType]*StreamInfo{},
		EndOfStreamInfo:     map[MediaSourceType]struct{}{},
		PlaybackRate:        1.0,
		PendingPlaybackRate: NoPendingRate,
		InitialPositions:    map[gstkit.Element][]TimedPosition{},
		DecryptionService:   decryptionService,
	}
}

// AudioAppSrc returns streamInfo[AUDIO].AppSrc, or nil if audio is not
// attached (spec.md §3 "audioAppSrc, implicit").
func (c *PlayerContext) AudioAppSrc() gstkit.Element {
	if si, ok := c.StreamInfo[SourceTypeAudio]; ok {
		return si.AppSrc
	}
	return nil
}

// VideoAppSrc returns streamInfo[VIDEO].AppSrc, or nil if video is not
// attached.
func (c *PlayerContext) VideoAppSrc() gstkit.Element {
	if si, ok := c.StreamInfo[SourceTypeVideo]; ok {
		return si.AppSrc
	}
	return nil
}

// buffersFor returns the buffer queue slice pointer for sourceType. Only
// AUDIO and VIDEO hold buffer queues.
func (c *PlayerContext) buffersFor(sourceType MediaSourceType) *[]gstkit.Buffer {
	switch sourceType {
	case SourceTypeAudio:
		return &c.AudioBuffers
	case SourceTypeVideo:
		return &c.VideoBuffers
	default:
		return nil
	}
}

// DropAndUnrefBuffers empties and unrefs the buffer queue for sourceType
// (spec.md §3 invariant 2, §4.B Flush/SetPosition/Stop).
func (c *PlayerContext) DropAndUnrefBuffers(sourceType MediaSourceType) {
	q := c.buffersFor(sourceType)
	if q == nil {
		return
	}
	for _, buf := range *q {
		buf.Unref()
	}
	*q = nil
}

// needDataFlags returns pointers to the needData/needDataPending pair for
// sourceType, or nil, nil if sourceType has none (subtitle has no flags).
func (c *PlayerContext) needDataFlags(sourceType MediaSourceType) (*bool, *bool) {
	switch sourceType {
	case SourceTypeAudio:
		return &c.AudioNeedData, &c.AudioNeedDataPending
	case SourceTypeVideo:
		return &c.VideoNeedData, &c.VideoNeedDataPending
	default:
		return nil, nil
	}
}

// ClearNeedData clears both the need-data and pending flags for sourceType.
func (c *PlayerContext) ClearNeedData(sourceType MediaSourceType) {
	needData, pending := c.needDataFlags(sourceType)
	if needData != nil {
		*needData = false
	}
	if pending != nil {
		*pending = false
	}
}

// underflowFlag returns a pointer to the underflow sticky flag for
// sourceType, or nil for types with none.
func (c *PlayerContext) underflowFlag(sourceType MediaSourceType) *bool {
	switch sourceType {
	case SourceTypeAudio:
		return &c.AudioUnderflowOccured
	case SourceTypeVideo:
		return &c.VideoUnderflowOccured
	default:
		return nil
	}
}

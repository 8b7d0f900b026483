// Package player implements the per-session playback engine: the worker
// loop, task catalogue, and context that translate client intent into
// media-framework operations over the abstract gstkit.Pipeline.
package player

import "time"

// MediaSourceType identifies one of the media streams a session can attach.
type MediaSourceType int

const (
	SourceTypeUnknown MediaSourceType = iota
	SourceTypeAudio
	SourceTypeVideo
	SourceTypeSubtitle
)

func (t MediaSourceType) String() string {
	switch t {
	case SourceTypeAudio:
		return "AUDIO"
	case SourceTypeVideo:
		return "VIDEO"
	case SourceTypeSubtitle:
		return "SUBTITLE"
	default:
		return "UNKNOWN"
	}
}

// SubSample describes one clear/encrypted byte run within an encrypted
// sample, mirroring CENC sub-sample maps.
type SubSample struct {
	ClearBytes     uint32
	EncryptedBytes uint32
}

// EncryptionDescriptor carries the DRM metadata attached to an encrypted
// MediaSegment (spec.md §3).
type EncryptionDescriptor struct {
	MediaKeySessionID string
	KeyID             []byte
	InitVector        []byte
	InitWithLast15    bool
	SubSamples        []SubSample
}

// MediaSegment is one decoded sample unit ready to become a framework
// buffer. Data borrows shared-memory or caller-owned bytes and is only valid
// for the lifetime of the task that produced it (spec.md §3).
type MediaSegment struct {
	SourceID   int32
	Type       MediaSourceType
	Timestamp  time.Duration
	Duration   time.Duration
	Data       []byte
	Encryption *EncryptionDescriptor

	// Audio-only.
	SampleRate      int
	NumberOfChannels int
	ClippingStart   time.Duration
	ClippingEnd     time.Duration

	// Video-only.
	Width     int
	Height    int
	FrameRate float64
}

// MediaSource is the immutable descriptor a client supplies on attachSource.
// It is a closed variant; concrete implementations live below.
type MediaSource interface {
	Type() MediaSourceType
	MimeType() string
	HasDRM() bool
}

type sourceBase struct {
	Mime string
	DRM  bool
}

func (s sourceBase) MimeType() string { return s.Mime }
func (s sourceBase) HasDRM() bool     { return s.DRM }

// AudioSource describes an attached audio stream.
type AudioSource struct {
	sourceBase
	AudioConfig []byte
}

func NewAudioSource(mime string, hasDRM bool, audioConfig []byte) *AudioSource {
	return &AudioSource{sourceBase: sourceBase{Mime: mime, DRM: hasDRM}, AudioConfig: audioConfig}
}

func (*AudioSource) Type() MediaSourceType { return SourceTypeAudio }

// VideoStreamFormat mirrors the appsrc "stream-format" caps field.
type VideoStreamFormat int

const (
	StreamFormatUnknown VideoStreamFormat = iota
	StreamFormatAVC
	StreamFormatByteStream
)

// VideoAlignment mirrors the appsrc "alignment" caps field.
type VideoAlignment int

const (
	AlignmentUnknown VideoAlignment = iota
	AlignmentAU
	AlignmentNAL
)

// VideoSource describes an attached video stream.
type VideoSource struct {
	sourceBase
	Width        int
	Height       int
	Alignment    VideoAlignment
	StreamFormat VideoStreamFormat
	CodecData    []byte
}

func NewVideoSource(mime string, hasDRM bool, width, height int, alignment VideoAlignment, format VideoStreamFormat, codecData []byte) *VideoSource {
	return &VideoSource{
		sourceBase:   sourceBase{Mime: mime, DRM: hasDRM},
		Width:        width,
		Height:       height,
		Alignment:    alignment,
		StreamFormat: format,
		CodecData:    codecData,
	}
}

func (*VideoSource) Type() MediaSourceType { return SourceTypeVideo }

// VideoDolbyVisionSource adds the Dolby Vision profile to a VideoSource.
type VideoDolbyVisionSource struct {
	VideoSource
	DVProfile int
}

func NewVideoDolbyVisionSource(mime string, hasDRM bool, width, height int, alignment VideoAlignment, format VideoStreamFormat, codecData []byte, dvProfile int) *VideoDolbyVisionSource {
	return &VideoDolbyVisionSource{
		VideoSource: VideoSource{
			sourceBase:   sourceBase{Mime: mime, DRM: hasDRM},
			Width:        width,
			Height:       height,
			Alignment:    alignment,
			StreamFormat: format,
			CodecData:    codecData,
		},
		DVProfile: dvProfile,
	}
}

// SubtitleSource describes an attached text track.
type SubtitleSource struct {
	sourceBase
	TextTrackIdentifier string
}

func NewSubtitleSource(mime string, textTrackID string) *SubtitleSource {
	return &SubtitleSource{sourceBase: sourceBase{Mime: mime}, TextTrackIdentifier: textTrackID}
}

func (*SubtitleSource) Type() MediaSourceType { return SourceTypeSubtitle }

// VideoRequirements carries the max-resolution hint from createSession.
type VideoRequirements struct {
	MaxWidth  int
	MaxHeight int
}

// Rectangle is a video-geometry window (spec.md §4.B SetVideoGeometry).
type Rectangle struct {
	X, Y, Width, Height int
}

// TimedPosition is one entry in a per-appsrc initialPositions FIFO (spec.md
// §3, §9 "Segment event carriage").
type TimedPosition struct {
	Position  time.Duration
	ResetTime bool
}

// QosInfo mirrors the original's per-source QoS counters (spec.md §6).
type QosInfo struct {
	Processed uint64
	Dropped   uint64
}

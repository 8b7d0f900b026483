// Package gstkit defines the narrow abstract media-framework surface the
// player core depends on, and a concrete go-gst backed implementation of it.
// Nothing outside this package imports go-gst directly: the player package
// only ever sees Pipeline/Element/Bus/Buffer, so a fake implementation can
// stand in for tests without cgo.
package gstkit

import (
	"errors"
	"time"
)

// State mirrors the handful of GStreamer element states the player cares
// about. Values are ordered the same way GST_STATE_* is, so callers can
// compare with < / >= the way the original C++ compares GstState.
type State int

const (
	StateVoidPending State = iota
	StateNull
	StateReady
	StatePaused
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "NULL"
	case StateReady:
		return "READY"
	case StatePaused:
		return "PAUSED"
	case StatePlaying:
		return "PLAYING"
	default:
		return "VOID_PENDING"
	}
}

// SeekFlags mirrors GstSeekFlags bits the player issues.
type SeekFlags int

const (
	SeekFlagNone  SeekFlags = 0
	SeekFlagFlush SeekFlags = 1 << 0
)

// FlowReturn mirrors GstFlowReturn.
type FlowReturn int

const (
	FlowOK FlowReturn = iota
	FlowEOS
	FlowError
)

// MessageType is the subset of GstMessageType the Framework Bus Dispatcher
// translates into tasks.
type MessageType int

const (
	MessageUnknown MessageType = iota
	MessageStateChanged
	MessageError
	MessageWarning
	MessageEOS
	MessageQoS
)

// ErrCGORequired is returned by the go-gst backed constructors when the
// binary was built without cgo (see gst_pipeline_nocgo.go).
var ErrCGORequired = errors.New("gstkit: GStreamer support requires CGO")

// Caps is an opaque, framework-owned capabilities descriptor. Construction
// helpers live in caps.go; tasks never inspect the contents directly.
type Caps interface {
	String() string
}

// Event is an opaque framework event (segment, flush-start, flush-stop,
// custom downstream OOB structures). Construction helpers live in event.go.
type Event interface {
	Name() string
}

// Buffer is a reference-counted, borrowed framework buffer handle. The core
// must Unref any Buffer it dequeues on a non-push path (flush/stop/seek),
// per the invariant in spec.md §3/§8.
type Buffer interface {
	SetTimestamp(pts, duration time.Duration)
	SetClippingMeta(start, end time.Duration)
	AttachProtection(info *ProtectionInfo)
	Unref()
}

// SubSampleMap describes one clear/encrypted byte run within an encrypted
// buffer, mirroring a CENC sub-sample map entry.
type SubSampleMap struct {
	ClearBytes     uint32
	EncryptedBytes uint32
}

// ProtectionInfo is the decrypted-buffer metadata a DecryptionService
// attaches so the framework's decryptor element can locate the clear/
// encrypted sub-sample boundaries and perform CENC/CBCS decryption. All five
// fields mirror the original's getMediaKeySessionId/getKeyId/getInitVector/
// getInitWithLast15/getSubSamples (IMediaPipeline.h:420-460); a decryptor
// cannot run with only a key id.
type ProtectionInfo struct {
	KeySessionID   string
	KeyID          []byte
	InitVector     []byte
	InitWithLast15 bool
	SubSamples     []SubSampleMap
}

// Pad is a narrow element-pad handle, used for sending segment events
// directly to a sink pad (the amlhalasink rate-change path).
type Pad interface {
	SendEvent(ev Event) bool
}

// Element is the abstract framework element handle. Implementations wrap a
// single opaque, reference-counted GstElement*-equivalent.
type Element interface {
	Name() string
	FactoryName() string
	SetProperty(name string, value any) error
	GetProperty(name string) (any, error)
	HasProperty(name string) bool
	SetCaps(caps Caps) error
	GetCaps() (Caps, bool)
	PushBuffer(buf Buffer) FlowReturn
	EndOfStream() FlowReturn
	SendEvent(ev Event) bool
	GetPad(name string) (Pad, bool)
	GetParent() (Element, bool)
	// Connect registers a signal handler (need-data, enough-data, seek-data,
	// child-added, child-removed, have-type). The handler receives the
	// emitting element and, for signals that carry one, an extra argument
	// (e.g. the child element for child-added, the byte count for
	// need-data).
	Connect(signal string, handler func(self Element, extra any)) error
}

// Message is one item popped off a Bus.
type Message struct {
	Type   MessageType
	Source Element
	// OldState/NewState are populated for MessageStateChanged.
	OldState, NewState State
	// Err is populated for MessageError/MessageWarning.
	Err error
	// QoS is populated for MessageQoS.
	QoS *QoSInfo
}

// QoSInfo mirrors the original's QosInfo payload (processed/dropped unit
// counts), see SPEC_FULL.md §6.1.
type QoSInfo struct {
	Processed uint64
	Dropped   uint64
}

// Bus is the framework's asynchronous message source.
type Bus interface {
	// TimedPop blocks up to timeout waiting for the next message; ok is
	// false on timeout.
	TimedPop(timeout time.Duration) (msg Message, ok bool)
}

// Pipeline is the abstract top-level pipeline handle. It embeds Element
// because a GstPipeline is itself a GstElement (properties like volume are
// set directly on it or on a resolved sink).
type Pipeline interface {
	Element

	SetState(s State) error
	GetState() (State, bool)
	Bus() Bus
	GetElementByName(name string) (Element, bool)
	// Seek issues a flushing seek at the given rate to the given position,
	// format=TIME, stop=NONE, matching spec.md's SetPosition semantics.
	Seek(rate float64, position time.Duration, flags SeekFlags) error
	// QueryPosition returns the current position; ok is false if the
	// pipeline cannot answer (not prerolled, or no pipeline).
	QueryPosition() (pos time.Duration, ok bool)
}

// Factory resolves an element factory name to newly constructed Elements,
// abstracting gst.ElementFactoryMake.
type Factory interface {
	Make(factoryName, elementName string) (Element, error)
}

//go:build cgo

// This file backs the gstkit interfaces with the real go-gst bindings,
// following the same Init-once / wrap-the-handle pattern as the teacher's
// api/pkg/desktop/gst_pipeline.go.
package gstkit

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"
)

var gstInitOnce sync.Once

// Init initializes the GStreamer library. Safe to call multiple times.
func Init() {
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})
}

// gstFactory implements Factory on top of gst.NewElement.
type gstFactory struct{}

// NewFactory returns the go-gst backed element Factory.
func NewFactory() Factory {
	Init()
	return gstFactory{}
}

func (gstFactory) Make(factoryName, elementName string) (Element, error) {
	elem, err := gst.NewElement(factoryName, elementName)
	if err != nil {
		return nil, fmt.Errorf("gstkit: create element %s (%s): %w", elementName, factoryName, err)
	}
	return &gstElement{elem: elem, factoryName: factoryName}, nil
}

// gstElement wraps a *gst.Element.
type gstElement struct {
	elem        *gst.Element
	factoryName string
}

func wrapElement(elem *gst.Element) Element {
	if elem == nil {
		return nil
	}
	return &gstElement{elem: elem}
}

func (e *gstElement) Name() string { return e.elem.GetName() }

func (e *gstElement) FactoryName() string {
	if e.factoryName != "" {
		return e.factoryName
	}
	if f := e.elem.GetFactory(); f != nil {
		return f.GetName()
	}
	return ""
}

func (e *gstElement) SetProperty(name string, value any) error {
	return e.elem.SetProperty(name, value)
}

func (e *gstElement) GetProperty(name string) (any, error) {
	return e.elem.GetProperty(name)
}

func (e *gstElement) HasProperty(name string) bool {
	_, err := e.elem.GetProperty(name)
	return err == nil
}

func (e *gstElement) SetCaps(caps Caps) error {
	desc, ok := caps.(*CapsDesc)
	if !ok {
		return fmt.Errorf("gstkit: unsupported caps type %T", caps)
	}
	gc := toGstCaps(desc)
	return e.elem.SetProperty("caps", gc)
}

func (e *gstElement) GetCaps() (Caps, bool) {
	v, err := e.elem.GetProperty("caps")
	if err != nil {
		return nil, false
	}
	gc, ok := v.(*gst.Caps)
	if !ok || gc == nil {
		return nil, false
	}
	return &CapsDesc{MimeType: gc.String()}, true
}

func (e *gstElement) PushBuffer(buf Buffer) FlowReturn {
	gb, ok := buf.(*gstBuffer)
	if !ok {
		return FlowError
	}
	src := app.SrcFromElement(e.elem)
	if src == nil {
		return FlowError
	}
	return toFlowReturn(src.PushBuffer(gb.buf))
}

func (e *gstElement) EndOfStream() FlowReturn {
	src := app.SrcFromElement(e.elem)
	if src == nil {
		return FlowError
	}
	return toFlowReturn(src.EndStream())
}

func (e *gstElement) SendEvent(ev Event) bool {
	gev := toGstEvent(ev)
	if gev == nil {
		return false
	}
	return e.elem.SendEvent(gev)
}

func (e *gstElement) GetPad(name string) (Pad, bool) {
	pad := e.elem.GetStaticPad(name)
	if pad == nil {
		return nil, false
	}
	return &gstPad{pad: pad}, true
}

func (e *gstElement) GetParent() (Element, bool) {
	parent := e.elem.GetParent()
	if parent == nil {
		return nil, false
	}
	parentElem, ok := parent.(*gst.Element)
	if !ok {
		return nil, false
	}
	return wrapElement(parentElem), true
}

func (e *gstElement) Connect(signal string, handler func(self Element, extra any)) error {
	_, err := e.elem.Connect(signal, func(extra ...any) {
		var arg any
		if len(extra) > 0 {
			arg = extra[0]
		}
		handler(e, arg)
	})
	return err
}

// gstPad wraps a *gst.Pad for the segment-event amlhalasink rate-change path.
type gstPad struct {
	pad *gst.Pad
}

func (p *gstPad) SendEvent(ev Event) bool {
	gev := toGstEvent(ev)
	if gev == nil {
		return false
	}
	return p.pad.SendEvent(gev)
}

// gstBuffer wraps a *gst.Buffer.
type gstBuffer struct {
	buf *gst.Buffer
}

// NewBuffer copies data into a new framework buffer.
func NewBuffer(data []byte) Buffer {
	buf := gst.NewBufferFromBytes(data)
	return &gstBuffer{buf: buf}
}

func (b *gstBuffer) SetTimestamp(pts, duration time.Duration) {
	b.buf.SetPresentationTimestamp(gst.ClockTime(pts))
	b.buf.SetDuration(gst.ClockTime(duration))
}

func (b *gstBuffer) SetClippingMeta(start, end time.Duration) {
	// Audio clipping meta (spec.md §4.B AttachSamples): attach clipStart/
	// clipEnd as a generic meta structure on the buffer.
	b.buf.AddAudioClippingMeta(uint64(start), uint64(end))
}

// AttachProtection attaches only info's key session id and key id to the
// framework buffer; InitVector, InitWithLast15 and SubSamples are not
// attached.
func (b *gstBuffer) AttachProtection(info *ProtectionInfo) {
	if info == nil {
		return
	}
	b.buf.AddProtectionMeta(info.KeySessionID, info.KeyID)
}

func (b *gstBuffer) Unref() {
	b.buf.Unref()
}

// gstBus wraps a *gst.Bus.
type gstBus struct {
	bus *gst.Bus
}

func (b *gstBus) TimedPop(timeout time.Duration) (Message, bool) {
	msg := b.bus.TimedPop(gst.ClockTime(timeout))
	if msg == nil {
		return Message{}, false
	}
	return toMessage(msg), true
}

func toMessage(msg *gst.Message) Message {
	out := Message{Source: wrapElement(msg.Source())}
	switch msg.Type() {
	case gst.MessageStateChanged:
		old, new := msg.ParseStateChanged()
		out.Type = MessageStateChanged
		out.OldState = toState(old)
		out.NewState = toState(new)
	case gst.MessageError:
		out.Type = MessageError
		if gerr := msg.ParseError(); gerr != nil {
			out.Err = gerr
		}
	case gst.MessageWarning:
		out.Type = MessageWarning
		if gwarn := msg.ParseWarning(); gwarn != nil {
			out.Err = gwarn
		}
	case gst.MessageEOS:
		out.Type = MessageEOS
	case gst.MessageQOS:
		out.Type = MessageQoS
		processed, dropped := msg.ParseQoSStats()
		out.QoS = &QoSInfo{Processed: processed, Dropped: dropped}
	default:
		out.Type = MessageUnknown
	}
	return out
}

// gstPipeline wraps a *gst.Pipeline.
type gstPipeline struct {
	gstElement
	pipeline *gst.Pipeline
}

// NewPipelineFromDescription parses a gst-launch style pipeline string into
// a Pipeline.
func NewPipelineFromDescription(desc string) (Pipeline, error) {
	Init()
	p, err := gst.NewPipelineFromString(desc)
	if err != nil {
		return nil, fmt.Errorf("gstkit: parse pipeline: %w", err)
	}
	return &gstPipeline{gstElement: gstElement{elem: p.Element}, pipeline: p}, nil
}

// NewEmptyPipeline creates an empty, named pipeline that elements are added
// to at runtime as sources are attached (the normal Rialto Media Source
// Extensions flow, as opposed to a canned gst-launch string).
func NewEmptyPipeline(name string) (Pipeline, error) {
	Init()
	p, err := gst.NewPipeline(name)
	if err != nil {
		return nil, fmt.Errorf("gstkit: create pipeline: %w", err)
	}
	return &gstPipeline{gstElement: gstElement{elem: p.Element}, pipeline: p}, nil
}

func (p *gstPipeline) SetState(s State) error {
	return p.pipeline.SetState(toGstState(s))
}

func (p *gstPipeline) GetState() (State, bool) {
	_, cur, _, ok := p.pipeline.GetState(gst.ClockTime(0))
	if !ok {
		return StateVoidPending, false
	}
	return toState(cur), true
}

func (p *gstPipeline) Bus() Bus {
	bus := p.pipeline.GetPipelineBus()
	if bus == nil {
		return nil
	}
	return &gstBus{bus: bus}
}

func (p *gstPipeline) GetElementByName(name string) (Element, bool) {
	elem, err := p.pipeline.GetElementByName(name)
	if err != nil || elem == nil {
		return nil, false
	}
	return wrapElement(elem), true
}

func (p *gstPipeline) Seek(rate float64, position time.Duration, flags SeekFlags) error {
	ok := p.pipeline.Seek(rate, gst.FormatTime, toGstSeekFlags(flags),
		gst.SeekTypeSet, gst.ClockTime(position),
		gst.SeekTypeNone, gst.ClockTimeNone)
	if !ok {
		return fmt.Errorf("gstkit: seek to %s at rate %.2f failed", position, rate)
	}
	return nil
}

func (p *gstPipeline) QueryPosition() (time.Duration, bool) {
	pos, ok := p.pipeline.QueryPosition(gst.FormatTime)
	if !ok {
		return 0, false
	}
	return time.Duration(pos), true
}

func toGstState(s State) gst.State {
	switch s {
	case StateNull:
		return gst.StateNull
	case StateReady:
		return gst.StateReady
	case StatePaused:
		return gst.StatePaused
	case StatePlaying:
		return gst.StatePlaying
	default:
		return gst.StateVoidPending
	}
}

func toState(s gst.State) State {
	switch s {
	case gst.StateNull:
		return StateNull
	case gst.StateReady:
		return StateReady
	case gst.StatePaused:
		return StatePaused
	case gst.StatePlaying:
		return StatePlaying
	default:
		return StateVoidPending
	}
}

func toGstSeekFlags(f SeekFlags) gst.SeekFlags {
	var out gst.SeekFlags
	if f&SeekFlagFlush != 0 {
		out |= gst.SeekFlagFlush
	}
	return out
}

func toFlowReturn(f gst.FlowReturn) FlowReturn {
	switch f {
	case gst.FlowOK:
		return FlowOK
	case gst.FlowEOS:
		return FlowEOS
	default:
		return FlowError
	}
}

func toGstCaps(desc *CapsDesc) *gst.Caps {
	structName := desc.MimeType
	fields := make([]any, 0, len(desc.Fields)*2)
	for k, v := range desc.Fields {
		fields = append(fields, k, v)
	}
	return gst.NewCapsFromString(gst.SimpleCapsString(structName, fields...))
}

func toGstEvent(ev Event) *gst.Event {
	switch e := ev.(type) {
	case SegmentEvent:
		seg := gst.NewSegment()
		seg.SetRate(e.Rate)
		seg.SetStart(gst.ClockTime(e.Start))
		seg.SetPosition(gst.ClockTime(e.Position))
		return gst.NewSegmentEvent(seg)
	case FlushStartEvent:
		return gst.NewFlushStartEvent()
	case FlushStopEvent:
		return gst.NewFlushStopEvent(e.ResetTime)
	case CustomInstantRateChangeEvent:
		s := gst.NewStructure("GstEventCustomInstantRateChange")
		_ = s.SetValue("rate", e.Rate)
		return gst.NewCustomEvent(gst.EventTypeCustomDownstreamOOB, s)
	case AllSourcesAttachedEvent:
		s := gst.NewStructure("rialto-all-sources-attached")
		return gst.NewCustomEvent(gst.EventTypeCustomDownstream, s)
	default:
		return nil
	}
}

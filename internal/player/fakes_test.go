package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/rdkcentral/rialto-go/internal/gstkit"
)

// fakeElement is a cgo-free gstkit.Element for tests, grounded on the
// fake/real split demonstrated throughout the teacher's desktop package.
type fakeElement struct {
	mu          sync.Mutex
	name        string
	factoryName string
	properties  map[string]any
	caps        *gstkit.CapsDesc
	parent      gstkit.Element
	pads        map[string]*fakePad
	handlers    map[string][]func(self gstkit.Element, extra any)
	pushed      []gstkit.Buffer
	eos         bool
	events      []gstkit.Event
}

func newFakeElement(factoryName, name string) *fakeElement {
	return &fakeElement{
		name:        name,
		factoryName: factoryName,
		properties:  map[string]any{},
		pads:        map[string]*fakePad{},
		handlers:    map[string][]func(self gstkit.Element, extra any){},
	}
}

func (e *fakeElement) Name() string        { return e.name }
func (e *fakeElement) FactoryName() string { return e.factoryName }

func (e *fakeElement) SetProperty(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.properties[name] = value
	return nil
}

func (e *fakeElement) GetProperty(name string) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.properties[name]
	if !ok {
		return nil, fmt.Errorf("fakeElement: no property %q", name)
	}
	return v, nil
}

func (e *fakeElement) HasProperty(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.properties[name]
	return ok
}

// SetHasProperty registers name as present without assigning a value,
// letting tests assert on the "present but unset" case the real framework
// allows.
func (e *fakeElement) SetHasProperty(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.properties[name]; !ok {
		e.properties[name] = nil
	}
}

func (e *fakeElement) SetCaps(caps gstkit.Caps) error {
	desc, ok := caps.(*gstkit.CapsDesc)
	if !ok {
		return fmt.Errorf("fakeElement: unsupported caps type %T", caps)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.caps = desc
	return nil
}

func (e *fakeElement) GetCaps() (gstkit.Caps, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.caps == nil {
		return nil, false
	}
	return e.caps, true
}

func (e *fakeElement) PushBuffer(buf gstkit.Buffer) gstkit.FlowReturn {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pushed = append(e.pushed, buf)
	return gstkit.FlowOK
}

func (e *fakeElement) EndOfStream() gstkit.FlowReturn {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eos = true
	return gstkit.FlowOK
}

func (e *fakeElement) SendEvent(ev gstkit.Event) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return true
}

func (e *fakeElement) GetPad(name string) (gstkit.Pad, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pad, ok := e.pads[name]
	if !ok {
		pad = &fakePad{}
		e.pads[name] = pad
	}
	return pad, true
}

func (e *fakeElement) GetParent() (gstkit.Element, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parent == nil {
		return nil, false
	}
	return e.parent, true
}

func (e *fakeElement) Connect(signal string, handler func(self gstkit.Element, extra any)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[signal] = append(e.handlers[signal], handler)
	return nil
}

// Emit invokes every handler registered for signal, simulating a framework
// callback firing.
func (e *fakeElement) Emit(signal string, extra any) {
	e.mu.Lock()
	handlers := append([]func(self gstkit.Element, extra any){}, e.handlers[signal]...)
	e.mu.Unlock()
	for _, h := range handlers {
		h(e, extra)
	}
}

func (e *fakeElement) Pushed() []gstkit.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]gstkit.Buffer{}, e.pushed...)
}

func (e *fakeElement) IsEOS() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eos
}

func (e *fakeElement) Events() []gstkit.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]gstkit.Event{}, e.events...)
}

type fakePad struct {
	mu     sync.Mutex
	events []gstkit.Event
}

func (p *fakePad) SendEvent(ev gstkit.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return true
}

// fakeBuffer is a cgo-free gstkit.Buffer for tests.
type fakeBuffer struct {
	mu         sync.Mutex
	data       []byte
	pts, dur   time.Duration
	clipStart  time.Duration
	clipEnd    time.Duration
	protection *gstkit.ProtectionInfo
	unreffed   bool
}

func newFakeBuffer(data []byte) *fakeBuffer { return &fakeBuffer{data: data} }

func (b *fakeBuffer) SetTimestamp(pts, duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pts, b.dur = pts, duration
}

func (b *fakeBuffer) SetClippingMeta(start, end time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clipStart, b.clipEnd = start, end
}

func (b *fakeBuffer) AttachProtection(info *gstkit.ProtectionInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.protection = info
}

func (b *fakeBuffer) Unref() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unreffed = true
}

func (b *fakeBuffer) IsUnreffed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unreffed
}

// fakeFactory builds fakeElements, recording calls for assertions.
type fakeFactory struct {
	mu        sync.Mutex
	created   []string
	failNames map[string]bool
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{failNames: map[string]bool{}}
}

func (f *fakeFactory) Make(factoryName, elementName string) (gstkit.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, factoryName+"/"+elementName)
	if f.failNames[factoryName] {
		return nil, fmt.Errorf("fakeFactory: forced failure for %q", factoryName)
	}
	return newFakeElement(factoryName, elementName), nil
}

// fakeBus is a cgo-free gstkit.Bus for tests; TimedPop drains a channel
// tests push onto directly.
type fakeBus struct {
	messages chan gstkit.Message
}

func newFakeBus() *fakeBus {
	return &fakeBus{messages: make(chan gstkit.Message, 64)}
}

func (b *fakeBus) Push(msg gstkit.Message) { b.messages <- msg }

func (b *fakeBus) TimedPop(timeout time.Duration) (gstkit.Message, bool) {
	select {
	case msg := <-b.messages:
		return msg, true
	case <-time.After(timeout):
		return gstkit.Message{}, false
	}
}

// fakePipeline is a cgo-free gstkit.Pipeline for tests.
type fakePipeline struct {
	*fakeElement
	mu       sync.Mutex
	state    gstkit.State
	position time.Duration
	elements map[string]gstkit.Element
	bus      *fakeBus
	seekErr  error
	seeks    []fakeSeek
}

type fakeSeek struct {
	Rate     float64
	Position time.Duration
	Flags    gstkit.SeekFlags
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		fakeElement: newFakeElement("pipeline", "pipeline0"),
		state:       gstkit.StateNull,
		elements:    map[string]gstkit.Element{},
		bus:         newFakeBus(),
	}
}

func (p *fakePipeline) SetState(s gstkit.State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
	return nil
}

func (p *fakePipeline) GetState() (gstkit.State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, true
}

func (p *fakePipeline) Bus() gstkit.Bus { return p.bus }

func (p *fakePipeline) GetElementByName(name string) (gstkit.Element, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.elements[name]
	return e, ok
}

func (p *fakePipeline) AddElement(name string, elem gstkit.Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[name] = elem
}

func (p *fakePipeline) Seek(rate float64, position time.Duration, flags gstkit.SeekFlags) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeks = append(p.seeks, fakeSeek{Rate: rate, Position: position, Flags: flags})
	if p.seekErr != nil {
		return p.seekErr
	}
	p.position = position
	return nil
}

func (p *fakePipeline) QueryPosition() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position, true
}

func (p *fakePipeline) SetPosition(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = d
}

func (p *fakePipeline) SetSeekError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seekErr = err
}

// fakeClient is a cgo-free ClientCallbacks for tests, recording every call.
type fakeClient struct {
	mu                     sync.Mutex
	states                 []PlaybackState
	networkStates          []NetworkState
	needMediaDataCalls     []MediaSourceType
	needMediaDataResult    bool
	positions              []int64
	underflows             []MediaSourceType
	flushed                []MediaSourceType
	invalidated            []MediaSourceType
	clearActiveRequests    int
	qos                    []QosInfo
}

func newFakeClient() *fakeClient {
	return &fakeClient{needMediaDataResult: true}
}

func (c *fakeClient) NotifyPlaybackState(state PlaybackState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = append(c.states, state)
}

func (c *fakeClient) NotifyNeedMediaData(sourceType MediaSourceType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.needMediaDataCalls = append(c.needMediaDataCalls, sourceType)
	return c.needMediaDataResult
}

func (c *fakeClient) NotifyPosition(position int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = append(c.positions, position)
}

func (c *fakeClient) NotifyNetworkState(state NetworkState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.networkStates = append(c.networkStates, state)
}

func (c *fakeClient) NotifyBufferUnderflow(sourceType MediaSourceType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.underflows = append(c.underflows, sourceType)
}

func (c *fakeClient) NotifySourceFlushed(sourceType MediaSourceType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushed = append(c.flushed, sourceType)
}

func (c *fakeClient) InvalidateActiveRequests(sourceType MediaSourceType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, sourceType)
}

func (c *fakeClient) ClearActiveRequestsCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearActiveRequests++
}

func (c *fakeClient) NotifyQos(sourceType MediaSourceType, qos QosInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.qos = append(c.qos, qos)
}

func (c *fakeClient) States() []PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PlaybackState{}, c.states...)
}

func (c *fakeClient) NeedMediaDataCalls() []MediaSourceType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MediaSourceType{}, c.needMediaDataCalls...)
}

// syncScheduler runs every enqueued task synchronously on the caller's
// goroutine, letting tests assert the effects of a follow-up task without
// spinning up a real Worker.
type syncScheduler struct {
	executed []Task
}

func (s *syncScheduler) Enqueue(task Task) error {
	s.executed = append(s.executed, task)
	task.Execute()
	return nil
}

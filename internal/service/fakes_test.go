package service

import (
	"time"

	"github.com/rdkcentral/rialto-go/internal/gstkit"
	"github.com/rdkcentral/rialto-go/internal/player"
)

// fakeElement/fakePipeline/fakeFactory are the minimal cgo-free stand-ins
// for gstkit's real go-gst types, just enough surface for a SessionPlayer to
// start and stop without a real pipeline (mirrors internal/player's own
// fakes_test.go pattern, kept separate since _test.go files aren't
// importable across packages).
type fakeElement struct {
	name, factoryName string
	props             map[string]any
}

func newFakeElement(name, factoryName string) *fakeElement {
	return &fakeElement{name: name, factoryName: factoryName, props: map[string]any{}}
}

func (e *fakeElement) Name() string        { return e.name }
func (e *fakeElement) FactoryName() string  { return e.factoryName }
func (e *fakeElement) SetProperty(name string, value any) error {
	e.props[name] = value
	return nil
}
func (e *fakeElement) GetProperty(name string) (any, error) { return e.props[name], nil }
func (e *fakeElement) HasProperty(name string) bool         { _, ok := e.props[name]; return ok }
func (e *fakeElement) SetCaps(caps gstkit.Caps) error        { return nil }
func (e *fakeElement) GetCaps() (gstkit.Caps, bool)          { return nil, false }
func (e *fakeElement) PushBuffer(buf gstkit.Buffer) gstkit.FlowReturn { return gstkit.FlowOK }
func (e *fakeElement) EndOfStream() gstkit.FlowReturn        { return gstkit.FlowOK }
func (e *fakeElement) SendEvent(ev gstkit.Event) bool         { return true }
func (e *fakeElement) GetPad(name string) (gstkit.Pad, bool)  { return nil, false }
func (e *fakeElement) GetParent() (gstkit.Element, bool)      { return nil, false }
func (e *fakeElement) Connect(signal string, handler func(self gstkit.Element, extra any)) error {
	return nil
}

type fakePipeline struct {
	*fakeElement
	state gstkit.State
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{fakeElement: newFakeElement("pipeline", "pipeline"), state: gstkit.StateNull}
}

func (p *fakePipeline) SetState(s gstkit.State) error           { p.state = s; return nil }
func (p *fakePipeline) GetState() (gstkit.State, bool)          { return p.state, true }
func (p *fakePipeline) Bus() gstkit.Bus                         { return nil }
func (p *fakePipeline) GetElementByName(name string) (gstkit.Element, bool) { return nil, false }
func (p *fakePipeline) Seek(rate float64, position time.Duration, flags gstkit.SeekFlags) error {
	return nil
}
func (p *fakePipeline) QueryPosition() (time.Duration, bool) { return 0, false }

type fakeFactory struct{}

func newFakeFactory() *fakeFactory { return &fakeFactory{} }

func (f *fakeFactory) Make(factoryName, elementName string) (gstkit.Element, error) {
	return newFakeElement(elementName, factoryName), nil
}

// fakeClient is a no-op player.ClientCallbacks; tests here only care about
// admission control, not the callback stream.
type fakeClient struct{}

func (fakeClient) NotifyPlaybackState(state player.PlaybackState)             {}
func (fakeClient) NotifyNeedMediaData(sourceType player.MediaSourceType) bool { return true }
func (fakeClient) NotifyPosition(position int64)                             {}
func (fakeClient) NotifyNetworkState(state player.NetworkState)               {}
func (fakeClient) NotifyBufferUnderflow(sourceType player.MediaSourceType) {}
func (fakeClient) NotifySourceFlushed(sourceType player.MediaSourceType)   {}
func (fakeClient) InvalidateActiveRequests(sourceType player.MediaSourceType) {}
func (fakeClient) ClearActiveRequestsCache()                            {}
func (fakeClient) NotifyQos(sourceType player.MediaSourceType, qos player.QosInfo) {}

//go:build !cgo

// Stub backend for builds without cgo, mirroring the teacher's
// api/pkg/desktop/gst_pipeline_nocgo.go: element and pipeline construction
// returns ErrCGORequired, while Init and NewBuffer's buffer are no-ops, so
// the rest of the tree still links and tests that exercise only the fake
// backend still run.
package gstkit

import "time"

// Init is a no-op without cgo.
func Init() {}

type noopFactory struct{}

// NewFactory returns a Factory that always fails; real element construction
// requires cgo.
func NewFactory() Factory { return noopFactory{} }

func (noopFactory) Make(factoryName, elementName string) (Element, error) {
	return nil, ErrCGORequired
}

// NewBuffer returns a Buffer stub; its methods are no-ops since there is no
// underlying framework buffer to operate on without cgo.
func NewBuffer(data []byte) Buffer { return noopBuffer{} }

type noopBuffer struct{}

func (noopBuffer) SetTimestamp(pts, duration time.Duration) {}
func (noopBuffer) SetClippingMeta(start, end time.Duration) {}
func (noopBuffer) AttachProtection(info *ProtectionInfo)    {}
func (noopBuffer) Unref()                                   {}

// NewPipelineFromDescription always fails without cgo.
func NewPipelineFromDescription(desc string) (Pipeline, error) {
	return nil, ErrCGORequired
}

// NewEmptyPipeline always fails without cgo.
func NewEmptyPipeline(name string) (Pipeline, error) {
	return nil, ErrCGORequired
}

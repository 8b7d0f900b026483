package gstkit

import "time"

// SegmentEvent carries a new time-segment to the framework ahead of a
// buffer, the way SetSourcePosition attaches timing per spec.md §4.B and §9
// ("segment event carriage via initialPositions"); the amlhalasink
// rate-change path also sends one.
type SegmentEvent struct {
	Rate     float64
	Start    time.Duration
	Position time.Duration
}

func (SegmentEvent) Name() string { return "segment" }

// FlushStartEvent / FlushStopEvent are sent to an appsrc around a per-source
// Flush (spec.md §4.B Flush).
type FlushStartEvent struct{}

func (FlushStartEvent) Name() string { return "flush-start" }

type FlushStopEvent struct {
	ResetTime bool
}

func (FlushStopEvent) Name() string { return "flush-stop" }

// AllSourcesAttachedEvent notifies the source element that every expected
// appsrc has been created, the way FinishSetupSource signals the demux once
// (spec.md §4.B FinishSetupSource, "call the framework's all appsrcs added
// signal on the source").
type AllSourcesAttachedEvent struct{}

func (AllSourcesAttachedEvent) Name() string { return "all-sources-attached" }

// CustomInstantRateChangeEvent is the generic (non-amlhalasink) playback
// rate change event, sent downstream as an out-of-band event on the
// pipeline (spec.md §4.B SetPlaybackRate, generic path).
type CustomInstantRateChangeEvent struct {
	Rate float64
}

func (CustomInstantRateChangeEvent) Name() string { return "custom-instant-rate-change" }

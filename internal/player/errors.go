package player

import "errors"

// Sentinel errors for the task catalogue, grounded on the sentinel-error
// style of the teacher's api/pkg/scheduler/errors.go.
var (
	// ErrPipelineNotBuilt is returned when a task requires a pipeline that
	// has not yet been built or has already been torn down.
	ErrPipelineNotBuilt = errors.New("player: pipeline not built")

	// ErrSourceNotAttached is returned when a task targets a source type
	// with no streamInfo entry.
	ErrSourceNotAttached = errors.New("player: source not attached")

	// ErrRemoveSourceUnsupported is returned for RemoveSource on anything
	// other than AUDIO (spec.md §9 open question: video removal is
	// unimplemented, treated as out of scope).
	ErrRemoveSourceUnsupported = errors.New("player: removeSource only supports AUDIO")

	// ErrElementCreateFailed is returned when the framework factory fails
	// to construct a required element.
	ErrElementCreateFailed = errors.New("player: element creation failed")

	// ErrSeekFailed is returned when the framework seek call fails.
	ErrSeekFailed = errors.New("player: seek failed")

	// ErrWorkerShutDown is returned by Worker.Enqueue once Shutdown has run.
	ErrWorkerShutDown = errors.New("player: worker already shut down")

	// ErrUnknownRequest is a client-protocol error: haveData referenced a
	// request id the worker has no record of (spec.md §7).
	ErrUnknownRequest = errors.New("player: unknown need-data request")
)

package player

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdkcentral/rialto-go/internal/decryption"
	"github.com/rdkcentral/rialto-go/internal/gstkit"
	"github.com/rdkcentral/rialto-go/internal/shm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(noopWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestSession(t *testing.T) (*SessionPlayer, *fakePipeline, *fakeClient, *fakeFactory) {
	t.Helper()
	pipeline := newFakePipeline()
	client := newFakeClient()
	factory := newFakeFactory()
	ctx := NewPlayerContext(decryption.NewFakeService())
	shmBuf := shm.NewFakeBuffer(2, 3000)
	sp := NewSessionPlayer(ctx, pipeline, factory, client, shmBuf, 0, testLogger())
	t.Cleanup(sp.Shutdown)
	return sp, pipeline, client, factory
}

func waitForCondition(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestAttachSourceCreatesAppSrc(t *testing.T) {
	sp, _, client, factory := newTestSession(t)

	sp.AttachSource(NewAudioSource("audio/mpeg", false, nil))

	waitForCondition(t, time.Second, func() bool {
		return sp.Context().AudioAppSrc() != nil
	})

	assert.Contains(t, factory.created, "appsrc/audsrc")
	_ = client
}

func TestHotSwapAudioPreservesIdentity(t *testing.T) {
	sp, pipeline, client, _ := newTestSession(t)

	sp.AttachSource(NewAudioSource("audio/mpeg", false, nil))
	waitForCondition(t, time.Second, func() bool { return sp.Context().AudioAppSrc() != nil })
	original := sp.Context().AudioAppSrc()

	sp.RemoveSource(SourceTypeAudio)
	waitForCondition(t, time.Second, func() bool { return sp.Context().AudioSourceRemoved })

	pipeline.SetPosition(5 * time.Second)
	sp.AttachSource(NewAudioSource("audio/mpeg", false, nil))

	waitForCondition(t, time.Second, func() bool { return !sp.Context().AudioSourceRemoved })

	assert.Same(t, original, sp.Context().AudioAppSrc(), "hot swap must preserve the appsrc handle")
	assert.Equal(t, 5*time.Second, sp.Context().LastAudioSampleTimestamps)
}

func TestNeedDataIdempotence(t *testing.T) {
	sp, _, client, _ := newTestSession(t)

	sp.AttachSource(NewAudioSource("audio/mpeg", false, nil))
	waitForCondition(t, time.Second, func() bool { return sp.Context().AudioAppSrc() != nil })

	_ = sp.Enqueue(sp.factory.CreateNeedData(SourceTypeAudio))
	_ = sp.Enqueue(sp.factory.CreateNeedData(SourceTypeAudio))
	_ = sp.Enqueue(sp.factory.CreateNeedData(SourceTypeAudio))

	waitForCondition(t, time.Second, func() bool { return len(client.NeedMediaDataCalls()) > 0 })
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, client.NeedMediaDataCalls(), 1, "a second need-data must not fire while one is pending")
}

func TestAttachSamplesBatchNotifiesOncePerSourceType(t *testing.T) {
	sp, _, client, _ := newTestSession(t)

	sp.AttachSource(NewAudioSource("audio/mpeg", false, nil))
	waitForCondition(t, time.Second, func() bool { return sp.Context().AudioAppSrc() != nil })

	_ = sp.Enqueue(sp.factory.CreateNeedData(SourceTypeAudio))
	waitForCondition(t, time.Second, func() bool { return len(client.NeedMediaDataCalls()) > 0 })

	// A single haveData batch with several samples of the same source type
	// must still only report one outstanding notifyNeedMediaData per type.
	batch := []MediaSegment{
		{Type: SourceTypeAudio, Data: []byte{1}},
		{Type: SourceTypeAudio, Data: []byte{2}},
		{Type: SourceTypeAudio, Data: []byte{3}},
	}
	_ = sp.Enqueue(sp.factory.CreateAttachSamples(batch))

	waitForCondition(t, time.Second, func() bool { return len(sp.Context().AudioBuffers) == 3 })
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, client.NeedMediaDataCalls(), 1,
		"a multi-segment batch of one source type must notify need-data at most once")
}

func TestSetPositionDropsBuffersAndNotifiesSeekDone(t *testing.T) {
	sp, pipeline, client, _ := newTestSession(t)
	pipeline.SetState(gstkit.StatePlaying)

	sp.Context().AudioBuffers = []gstkit.Buffer{newFakeBuffer([]byte{1}), newFakeBuffer([]byte{2})}
	buf0 := sp.Context().AudioBuffers[0].(*fakeBuffer)
	buf1 := sp.Context().AudioBuffers[1].(*fakeBuffer)

	sp.SetPosition(int64(3 * time.Second))

	waitForCondition(t, time.Second, func() bool {
		states := client.States()
		return len(states) > 0 && states[len(states)-1] == PlaybackStateSeekDone
	})

	assert.True(t, buf0.IsUnreffed())
	assert.True(t, buf1.IsUnreffed())
	assert.Empty(t, sp.Context().AudioBuffers)
	assert.Equal(t, 3*time.Second, sp.Context().LastAudioSampleTimestamps)
	assert.Contains(t, client.States(), PlaybackStateSeeking)
}

func TestSetPositionFailsWithoutPipeline(t *testing.T) {
	client := newFakeClient()
	factory := newFakeFactory()
	ctx := NewPlayerContext(decryption.NewFakeService())
	shmBuf := shm.NewFakeBuffer(2, 3000)
	sp := NewSessionPlayer(ctx, nil, factory, client, shmBuf, 0, testLogger())
	t.Cleanup(sp.Shutdown)

	sp.SetPosition(int64(time.Second))

	waitForCondition(t, time.Second, func() bool {
		return assertLast(client.States()) == PlaybackStateFailure
	})
}

func assertLast(states []PlaybackState) PlaybackState {
	if len(states) == 0 {
		return PlaybackStateIdle
	}
	return states[len(states)-1]
}

func TestFlushIsolatesOtherSource(t *testing.T) {
	sp, _, client, _ := newTestSession(t)
	sp.AttachSource(NewAudioSource("audio/mpeg", false, nil))
	sp.AttachSource(NewVideoSource("video/h264", false, 1920, 1080, AlignmentAU, StreamFormatAVC, nil))
	waitForCondition(t, time.Second, func() bool {
		return sp.Context().AudioAppSrc() != nil && sp.Context().VideoAppSrc() != nil
	})

	sp.Context().AudioBuffers = []gstkit.Buffer{newFakeBuffer([]byte{1})}
	sp.Context().VideoBuffers = []gstkit.Buffer{newFakeBuffer([]byte{2})}

	sp.Flush(SourceTypeAudio, true)

	waitForCondition(t, time.Second, func() bool { return len(client.flushed) > 0 })

	assert.Empty(t, sp.Context().AudioBuffers)
	assert.Len(t, sp.Context().VideoBuffers, 1, "flush must not touch the other source's buffers")
}

func TestEosAggregationFiresOnce(t *testing.T) {
	sp, pipeline, client, _ := newTestSession(t)
	sp.AttachSource(NewAudioSource("audio/mpeg", false, nil))
	sp.AttachSource(NewVideoSource("video/h264", false, 1920, 1080, AlignmentAU, StreamFormatAVC, nil))
	waitForCondition(t, time.Second, func() bool {
		return sp.Context().AudioAppSrc() != nil && sp.Context().VideoAppSrc() != nil
	})

	sp.HaveData(SourceTypeAudio, HaveDataEOS, 0)
	sp.HaveData(SourceTypeVideo, HaveDataEOS, 0)

	waitForCondition(t, time.Second, func() bool {
		return len(sp.Context().EndOfStreamInfo) == 2
	})

	pipeline.bus.Push(gstkit.Message{Type: gstkit.MessageEOS})

	waitForCondition(t, time.Second, func() bool { return sp.Context().EosNotified })

	count := 0
	for _, s := range client.States() {
		if s == PlaybackStateEndOfStream {
			count++
		}
	}
	assert.Equal(t, 1, count, "END_OF_STREAM must be notified exactly once")
}

func TestUnderflowIsIdempotent(t *testing.T) {
	sp, pipeline, client, _ := newTestSession(t)
	pipeline.SetState(gstkit.StatePlaying)

	_ = sp.Enqueue(sp.factory.CreateUnderflow(SourceTypeAudio))
	_ = sp.Enqueue(sp.factory.CreateUnderflow(SourceTypeAudio))

	waitForCondition(t, time.Second, func() bool { return sp.Context().AudioUnderflowOccured })
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, client.underflows, 1, "underflow must notify exactly once while the sticky flag holds")
}

func TestRemoveSourceRejectsVideo(t *testing.T) {
	task := &removeSourceTask{
		ctx:        NewPlayerContext(nil),
		sourceType: SourceTypeVideo,
		client:     newFakeClient(),
		logger:     testLogger(),
	}
	task.Execute()
	assert.ErrorIs(t, task.Err, ErrRemoveSourceUnsupported)
}

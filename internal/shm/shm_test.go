package shm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeBufferPartitionIsolation(t *testing.T) {
	buf := NewFakeBuffer(2, 3000)

	audio0, err := buf.Partition(0, SourceAudio)
	require.NoError(t, err)
	video0, err := buf.Partition(0, SourceVideo)
	require.NoError(t, err)
	audio1, err := buf.Partition(1, SourceAudio)
	require.NoError(t, err)

	audio0[0] = 0xAB
	assert.Equal(t, byte(0), video0[0], "writing one source partition must not bleed into another")
	assert.Equal(t, byte(0), audio1[0], "writing one session must not bleed into another session")
}

func TestFakeBufferClearZeroes(t *testing.T) {
	buf := NewFakeBuffer(1, 3000)
	audio, err := buf.Partition(0, SourceAudio)
	require.NoError(t, err)
	audio[0] = 0xFF

	require.NoError(t, buf.Clear(0, SourceAudio))
	assert.Equal(t, byte(0), audio[0])
}

func TestFakeBufferOutOfRange(t *testing.T) {
	buf := NewFakeBuffer(1, 3000)
	_, err := buf.Partition(1, SourceAudio)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = buf.Partition(-1, SourceAudio)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSourceOffsetOrdering(t *testing.T) {
	const partitionSize = 3000
	assert.Equal(t, int64(0), SourceOffset(SourceAudio, partitionSize))
	assert.Equal(t, int64(1000), SourceOffset(SourceVideo, partitionSize))
	assert.Equal(t, int64(2000), SourceOffset(SourceSubtitle, partitionSize))
}

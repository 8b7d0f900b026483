package datareader

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSegment(t *testing.T, h Header, keyID, iv, data []byte) []byte {
	t.Helper()
	buf := make([]byte, HeaderLen()+len(keyID)+len(iv)+len(data))
	require.NoError(t, WriteHeader(buf, h))
	off := HeaderLen()
	off += copy(buf[off:], keyID)
	off += copy(buf[off:], iv)
	copy(buf[off:], data)
	return buf
}

func TestReadSegmentClear(t *testing.T) {
	h := Header{
		SourceID:   1,
		SourceType: 0,
		Timestamp:  5 * time.Second,
		Duration:   40 * time.Millisecond,
		DataLength: 4,
	}
	buf := buildSegment(t, h, nil, nil, []byte{1, 2, 3, 4})

	r := New(buf)
	seg, ok, err := r.ReadSegment()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(1), seg.Header.SourceID)
	assert.Equal(t, 5*time.Second, seg.Header.Timestamp)
	assert.Equal(t, []byte{1, 2, 3, 4}, seg.Data)

	_, ok, err = r.ReadSegment()
	require.NoError(t, err)
	assert.False(t, ok, "second read past the only segment should see EOF-like false")
}

func TestReadSegmentEncrypted(t *testing.T) {
	keyID := []byte{0xDE, 0xAD}
	iv := []byte{0xBE, 0xEF, 0x01, 0x02}
	sessionID := []byte("key-session-7")
	h := Header{
		SourceID:                2,
		SourceType:              1,
		DataLength:              3,
		NumSubSamples:           2,
		Encrypted:               true,
		InitWithLast15:          true,
		KeyIDLength:             uint32(len(keyID)),
		InitVectorLength:        uint32(len(iv)),
		MediaKeySessionIDLength: uint32(len(sessionID)),
	}

	buf := make([]byte, HeaderLen()+2*subSampleLen+len(keyID)+len(iv)+len(sessionID)+int(h.DataLength))
	require.NoError(t, WriteHeader(buf, h))
	off := HeaderLen()
	// two sub-samples packed manually
	putSubSample(buf[off:], 10, 20)
	off += subSampleLen
	putSubSample(buf[off:], 5, 15)
	off += subSampleLen
	off += copy(buf[off:], keyID)
	off += copy(buf[off:], iv)
	off += copy(buf[off:], sessionID)
	copy(buf[off:], []byte{9, 9, 9})

	r := New(buf)
	seg, ok, err := r.ReadSegment()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, seg.Header.Encrypted)
	assert.True(t, seg.Header.InitWithLast15)
	require.Len(t, seg.SubSamples, 2)
	assert.Equal(t, uint32(10), seg.SubSamples[0].ClearBytes)
	assert.Equal(t, uint32(20), seg.SubSamples[0].EncryptedBytes)
	assert.Equal(t, keyID, seg.KeyID)
	assert.Equal(t, iv, seg.InitVector)
	assert.Equal(t, sessionID, seg.MediaKeySessionID)
	assert.Equal(t, []byte{9, 9, 9}, seg.Data)
}

func TestReadSegmentZeroSentinelStopsWithoutAdvancing(t *testing.T) {
	buf := make([]byte, HeaderLen()*2)
	r := New(buf)
	_, ok, err := r.ReadSegment()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, r.off, "the sentinel header must not be consumed")
}

func TestReadSegmentTruncatedData(t *testing.T) {
	h := Header{SourceID: 1, DataLength: 100}
	buf := make([]byte, HeaderLen())
	require.NoError(t, WriteHeader(buf, h))

	r := New(buf)
	_, _, err := r.ReadSegment()
	assert.Error(t, err)
}

func putSubSample(dst []byte, clear, encrypted uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], clear)
	binary.LittleEndian.PutUint32(dst[4:8], encrypted)
}

// Package datareader parses the packed binary segment stream a client writes
// into its shared-memory partition before issuing AddSegmentStatus writes,
// mirroring the manual offset-tracked header parsing style of the teacher's
// ParseRTPHeader (api/pkg/desktop/rtp_h264.go), adapted to Rialto's
// MediaSegment wire layout instead of RTP.
package datareader

import (
	"encoding/binary"
	"fmt"
	"time"
)

// headerLen is the fixed packed-header size in bytes:
//
//	8  sourceId (uint32) + sourceType (uint32)
//	8  timestamp (int64, nanoseconds)
//	8  duration (int64, nanoseconds)
//	4  dataLength (uint32)
//	4  numSubSamples (uint32)
//	4  encrypted (bool) + initWithLast15 (bool), padded to 4
//	4  keyIDLength (uint32)
//	4  initVectorLength (uint32)
//	4  mediaKeySessionIDLength (uint32)
const headerLen = 8 + 8 + 8 + 4 + 4 + 4 + 4 + 4 + 4

// Header is the fixed-size prefix preceding a segment's variable-length
// payload (sub-sample map, key id, init vector, media key session id, sample
// data) in a partition.
type Header struct {
	SourceID         uint32
	SourceType       uint32
	Timestamp        time.Duration
	Duration         time.Duration
	DataLength       uint32
	NumSubSamples    uint32
	Encrypted        bool
	// InitWithLast15 mirrors the original's initWithLast15 flag: CENC/CBCS
	// ciphers that need the last 15 bytes of the previous sample to seed
	// the next block's IV (spec.md §3, original IMediaPipeline.h
	// getInitWithLast15).
	InitWithLast15          bool
	KeyIDLength             uint32
	InitVectorLength        uint32
	MediaKeySessionIDLength uint32
}

// SubSample mirrors player.SubSample without importing the player package.
type SubSample struct {
	ClearBytes     uint32
	EncryptedBytes uint32
}

// Segment is one fully parsed unit read out of a partition.
type Segment struct {
	Header            Header
	SubSamples        []SubSample
	KeyID             []byte
	InitVector        []byte
	MediaKeySessionID []byte
	// Data borrows directly from the partition's backing array; it is
	// valid only until the partition is next cleared.
	Data []byte
}

// Reader walks a partition's byte slice, parsing each packed segment in
// place without copying sample data.
type Reader struct {
	buf []byte
	off int
}

// New wraps partition, a borrowed slice into the shared-memory region.
func New(partition []byte) *Reader {
	return &Reader{buf: partition}
}

// Remaining reports whether at least one more segment can plausibly be
// present (enough bytes left for a header).
func (r *Reader) Remaining() bool {
	return len(r.buf)-r.off >= headerLen
}

// ReadSegment parses the next segment starting at the reader's current
// offset and advances past it. Returns io.EOF-shaped behavior via ok=false
// when fewer bytes than a header remain, or when the next header is the
// all-zero sentinel that AddSegmentStatus callers rely on to detect
// end-of-batch. A header whose payload runs past the end of the partition
// is reported as an error.
func (r *Reader) ReadSegment() (Segment, bool, error) {
	if !r.Remaining() {
		return Segment{}, false, nil
	}

	h, err := r.parseHeader()
	if err != nil {
		return Segment{}, false, err
	}
	if h.DataLength == 0 && h.SourceID == 0 && h.SourceType == 0 {
		// Zeroed sentinel header: no more segments were written this
		// batch. Do not advance past it so a subsequent Clear sees the
		// same layout.
		r.off -= headerLen
		return Segment{}, false, nil
	}

	var subSamples []SubSample
	if h.NumSubSamples > 0 {
		subSamples, err = r.parseSubSamples(h.NumSubSamples)
		if err != nil {
			return Segment{}, false, err
		}
	}

	keyID, err := r.take(int(h.KeyIDLength))
	if err != nil {
		return Segment{}, false, fmt.Errorf("datareader: read key id: %w", err)
	}
	iv, err := r.take(int(h.InitVectorLength))
	if err != nil {
		return Segment{}, false, fmt.Errorf("datareader: read init vector: %w", err)
	}
	mediaKeySessionID, err := r.take(int(h.MediaKeySessionIDLength))
	if err != nil {
		return Segment{}, false, fmt.Errorf("datareader: read media key session id: %w", err)
	}
	data, err := r.take(int(h.DataLength))
	if err != nil {
		return Segment{}, false, fmt.Errorf("datareader: read sample data: %w", err)
	}

	return Segment{
		Header:            h,
		SubSamples:        subSamples,
		KeyID:             keyID,
		InitVector:        iv,
		MediaKeySessionID: mediaKeySessionID,
		Data:              data,
	}, true, nil
}

func (r *Reader) parseHeader() (Header, error) {
	b, err := r.take(headerLen)
	if err != nil {
		return Header{}, fmt.Errorf("datareader: read header: %w", err)
	}
	return Header{
		SourceID:                binary.LittleEndian.Uint32(b[0:4]),
		SourceType:              binary.LittleEndian.Uint32(b[4:8]),
		Timestamp:               time.Duration(int64(binary.LittleEndian.Uint64(b[8:16]))),
		Duration:                time.Duration(int64(binary.LittleEndian.Uint64(b[16:24]))),
		DataLength:              binary.LittleEndian.Uint32(b[24:28]),
		NumSubSamples:           binary.LittleEndian.Uint32(b[28:32]),
		Encrypted:               b[32] != 0,
		InitWithLast15:          b[33] != 0,
		KeyIDLength:             binary.LittleEndian.Uint32(b[36:40]),
		InitVectorLength:        binary.LittleEndian.Uint32(b[40:44]),
		MediaKeySessionIDLength: binary.LittleEndian.Uint32(b[44:48]),
	}, nil
}

// subSampleLen is 8 bytes: clearBytes (uint32) + encryptedBytes (uint32).
const subSampleLen = 8

func (r *Reader) parseSubSamples(n uint32) ([]SubSample, error) {
	out := make([]SubSample, 0, n)
	for i := uint32(0); i < n; i++ {
		b, err := r.take(subSampleLen)
		if err != nil {
			return nil, fmt.Errorf("datareader: read sub-sample %d: %w", i, err)
		}
		out = append(out, SubSample{
			ClearBytes:     binary.LittleEndian.Uint32(b[0:4]),
			EncryptedBytes: binary.LittleEndian.Uint32(b[4:8]),
		})
	}
	return out, nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if r.off+n > len(r.buf) {
		return nil, fmt.Errorf("datareader: need %d bytes at offset %d, have %d", n, r.off, len(r.buf))
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// WriteHeader packs h into dst at offset 0, for tests that need to construct
// a partition's contents without going through the real client writer.
func WriteHeader(dst []byte, h Header) error {
	if len(dst) < headerLen {
		return fmt.Errorf("datareader: dst too small for header: %d < %d", len(dst), headerLen)
	}
	binary.LittleEndian.PutUint32(dst[0:4], h.SourceID)
	binary.LittleEndian.PutUint32(dst[4:8], h.SourceType)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(h.Timestamp))
	binary.LittleEndian.PutUint64(dst[16:24], uint64(h.Duration))
	binary.LittleEndian.PutUint32(dst[24:28], h.DataLength)
	binary.LittleEndian.PutUint32(dst[28:32], h.NumSubSamples)
	if h.Encrypted {
		dst[32] = 1
	} else {
		dst[32] = 0
	}
	if h.InitWithLast15 {
		dst[33] = 1
	} else {
		dst[33] = 0
	}
	binary.LittleEndian.PutUint32(dst[36:40], h.KeyIDLength)
	binary.LittleEndian.PutUint32(dst[40:44], h.InitVectorLength)
	binary.LittleEndian.PutUint32(dst[44:48], h.MediaKeySessionIDLength)
	return nil
}

// HeaderLen exposes the fixed header size for callers building test
// fixtures.
func HeaderLen() int { return headerLen }

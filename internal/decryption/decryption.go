// Package decryption defines the narrow interface tasks use to attach DRM
// protection metadata to a buffer before it reaches the pipeline's decryptor
// element, matching the original's IDecryptionService seam (spec.md §4.B
// AttachSamples, encrypted path).
package decryption

import "github.com/rdkcentral/rialto-go/internal/gstkit"

// SubSample mirrors player.SubSample without importing the player package
// (the same narrow-copy pattern datareader.SubSample uses).
type SubSample struct {
	ClearBytes     uint32
	EncryptedBytes uint32
}

// Input carries the full DRM descriptor a segment's AttachSamples call
// parsed off the wire: the key id alone cannot drive CENC/CBCS decryption,
// the init vector, the init-with-last-15 flag and the sub-sample clear/
// encrypted map are mandatory too (original IMediaPipeline.h:420-460
// getInitVector/getSubSamples/getInitWithLast15/getMediaKeySessionId).
type Input struct {
	MediaKeySessionID string
	KeyID             []byte
	InitVector        []byte
	InitWithLast15    bool
	SubSamples        []SubSample
}

// Service resolves a key session for a given key id and attaches protection
// metadata to a buffer so a downstream decryptor element can locate the
// clear/encrypted sub-sample boundaries.
type Service interface {
	// Decrypt attaches protection info to buf for in. It does not decrypt
	// buf's bytes itself; the real decryption happens in the pipeline's
	// decryptor element once the metadata is attached.
	Decrypt(buf gstkit.Buffer, in Input) error
}

// ErrNoKeySession is returned when no key session is associated with KeyID.
type ErrNoKeySession struct {
	KeyID []byte
}

func (e *ErrNoKeySession) Error() string {
	return "decryption: no key session for key id"
}

package decryption

import "github.com/rdkcentral/rialto-go/internal/gstkit"

// FakeService is a trivial Service for tests: it records every call and
// always succeeds unless FailOn is set for a given key id.
type FakeService struct {
	Calls  []Input
	FailOn map[string]error
}

// NewFakeService returns a ready-to-use FakeService.
func NewFakeService() *FakeService {
	return &FakeService{FailOn: map[string]error{}}
}

func (f *FakeService) Decrypt(buf gstkit.Buffer, in Input) error {
	f.Calls = append(f.Calls, in)
	if err, ok := f.FailOn[string(in.KeyID)]; ok {
		return err
	}
	subSamples := make([]gstkit.SubSampleMap, len(in.SubSamples))
	for i, s := range in.SubSamples {
		subSamples[i] = gstkit.SubSampleMap{ClearBytes: s.ClearBytes, EncryptedBytes: s.EncryptedBytes}
	}
	buf.AttachProtection(&gstkit.ProtectionInfo{
		KeySessionID:   in.MediaKeySessionID,
		KeyID:          in.KeyID,
		InitVector:     in.InitVector,
		InitWithLast15: in.InitWithLast15,
		SubSamples:     subSamples,
	})
	return nil
}

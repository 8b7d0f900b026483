package gstkit

import "testing"

func TestVendorSink(t *testing.T) {
	cases := map[string]string{
		"amlhalasink0":    "amlhalasink",
		"brcmaudiosink":   "brcmaudiosink",
		"westerossink_01": "westerossink",
		"autoaudiosink":   "",
		"fakesink":        "",
	}
	for name, want := range cases {
		if got := VendorSink(name); got != want {
			t.Errorf("VendorSink(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestIsAmlhalasink(t *testing.T) {
	if !IsAmlhalasink("amlhalasink0") {
		t.Error("expected amlhalasink0 to match")
	}
	if IsAmlhalasink("westerossink") {
		t.Error("did not expect westerossink to match amlhalasink")
	}
}

func TestClassifyByFactory(t *testing.T) {
	k := ClassifyByFactory("avdec_aac")
	if !k.IsDecoder || !k.IsAudio {
		t.Errorf("avdec_aac classified as %+v, want decoder+audio", k)
	}

	k = ClassifyByFactory("h264parse")
	if !k.IsParser || !k.IsVideo {
		t.Errorf("h264parse classified as %+v, want parser+video", k)
	}

	k = ClassifyByFactory("typefind")
	if !k.IsTypefind {
		t.Errorf("typefind classified as %+v, want typefind", k)
	}

	k = ClassifyByFactory("westerossink")
	if !k.IsSink {
		t.Errorf("westerossink classified as %+v, want sink", k)
	}
}

func TestCapsDescEqual(t *testing.T) {
	a := NewCaps("audio/mpeg").With("channels", 2).With("rate", 48000)
	b := NewCaps("audio/mpeg").With("rate", 48000).With("channels", 2)
	if !a.Equal(b) {
		t.Errorf("expected equal caps, got a=%v b=%v", a, b)
	}

	c := NewCaps("audio/mpeg").With("channels", 6).With("rate", 48000)
	if a.Equal(c) {
		t.Errorf("expected unequal caps")
	}
}

package gstkit

import "strings"

// ElementKind classifies an element by the role SetupElement/DeepElementAdded
// need to reason about (spec.md §4.B).
type ElementKind struct {
	IsDecoder  bool
	IsSink     bool
	IsAudio    bool
	IsVideo    bool
	IsParser   bool
	IsTypefind bool
}

// vendorSinkPrefixes lists the sink name prefixes spec.md §4.B calls out for
// sink-specific property tweaks.
var vendorSinkPrefixes = []string{"amlhalasink", "brcmaudiosink", "westerossink"}

// VendorSink returns the matching vendor prefix for name, or "" if name does
// not belong to a known vendor sink.
func VendorSink(name string) string {
	lower := strings.ToLower(name)
	for _, prefix := range vendorSinkPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return prefix
		}
	}
	return ""
}

// IsAutoVideoSink reports whether factoryName is the framework's
// auto-selecting video sink, whose real child sink is resolved at runtime
// via child-added/child-removed (spec.md §9 "Auto-sink child tracking").
func IsAutoVideoSink(factoryName string) bool {
	return factoryName == "autovideosink"
}

// IsAmlhalasink reports whether name identifies the amlogic hardware audio
// sink, which requires the segment-event rate-change path instead of the
// generic custom-instant-rate-change OOB event (spec.md §4.B, §9).
func IsAmlhalasink(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "amlhalasink")
}

// ClassifyByFactory classifies an element from its factory name, the way
// SetupElement/DeepElementAdded inspect newly added elements. This is a best
// effort, name-based classification mirroring the original's reliance on
// GstElementFactory klass strings (e.g. "Codec/Decoder/Audio").
func ClassifyByFactory(factoryName string) ElementKind {
	lower := strings.ToLower(factoryName)
	k := ElementKind{}

	switch {
	case strings.Contains(lower, "typefind"):
		k.IsTypefind = true
	case strings.Contains(lower, "parse"):
		k.IsParser = true
	case strings.Contains(lower, "dec"):
		k.IsDecoder = true
	}

	switch {
	case strings.Contains(lower, "sink"):
		k.IsSink = true
	}

	switch {
	case strings.Contains(lower, "audio") || strings.Contains(lower, "aac") || strings.Contains(lower, "mp3") || strings.Contains(lower, "opus"):
		k.IsAudio = true
	case strings.Contains(lower, "video") || strings.Contains(lower, "h264") || strings.Contains(lower, "h265") || strings.Contains(lower, "avc"):
		k.IsVideo = true
	}

	if VendorSink(factoryName) != "" {
		k.IsSink = true
		k.IsAudio = true
	}

	return k
}

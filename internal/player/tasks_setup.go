package player

import (
	"log/slog"

	"github.com/rdkcentral/rialto-go/internal/gstkit"
)

// setupElementTask classifies a newly-added pipeline element and wires the
// hooks its role requires (spec.md §4.B SetupElement).
type setupElementTask struct {
	ctx       *PlayerContext
	elem      gstkit.Element
	scheduler Scheduler
	logger    *slog.Logger
}

func (t *setupElementTask) Name() string { return "SetupElement" }

func (t *setupElementTask) Execute() {
	kind := gstkit.ClassifyByFactory(t.elem.FactoryName())
	t.logger.Debug("setup element", "name", t.elem.Name(), "factory", t.elem.FactoryName(), "kind", kind)

	if kind.IsSink && kind.IsVideo {
		t.ctx.PlaybackGroup.VideoSink = t.elem
		if t.ctx.PendingGeometry != nil {
			applyGeometry(t.elem, *t.ctx.PendingGeometry)
			t.ctx.PendingGeometry = nil
		}
	}
	if kind.IsSink && kind.IsAudio {
		t.ctx.PlaybackGroup.AudioSink = t.elem
	}

	if gstkit.IsAutoVideoSink(t.elem.FactoryName()) {
		t.hookAutoVideoSink()
	}

	if kind.IsDecoder {
		t.hookBufferUnderflow(kind)
	}

	if vendor := gstkit.VendorSink(t.elem.Name()); vendor != "" {
		applyVendorSinkProperties(t.elem, vendor)
	}
}

// hookAutoVideoSink connects child-added/child-removed so the real video
// sink (resolved at runtime) is always used by later property setters
// (spec.md §9 "Auto-sink child tracking" — resolve at use, never cache).
func (t *setupElementTask) hookAutoVideoSink() {
	_ = t.elem.Connect("child-added", func(self gstkit.Element, extra any) {
		if child, ok := extra.(gstkit.Element); ok {
			t.ctx.PlaybackGroup.VideoSink = child
		}
	})
	_ = t.elem.Connect("child-removed", func(self gstkit.Element, extra any) {
		if child, ok := extra.(gstkit.Element); ok && t.ctx.PlaybackGroup.VideoSink == child {
			t.ctx.PlaybackGroup.VideoSink = nil
		}
	})
}

func (t *setupElementTask) hookBufferUnderflow(kind gstkit.ElementKind) {
	sourceType := SourceTypeVideo
	if kind.IsAudio {
		sourceType = SourceTypeAudio
	}
	_ = t.elem.Connect("buffer-underflow-callback", func(self gstkit.Element, extra any) {
		if t.scheduler != nil {
			factory := &TaskFactory{ctx: t.ctx, logger: t.logger}
			_ = t.scheduler.Enqueue(factory.CreateUnderflow(sourceType))
		}
	})
}

func applyGeometry(videoSink gstkit.Element, rect Rectangle) {
	if videoSink.HasProperty("rectangle") {
		_ = videoSink.SetProperty("rectangle", rect)
	}
}

func applyVendorSinkProperties(elem gstkit.Element, vendor string) {
	switch vendor {
	case "amlhalasink":
		if elem.HasProperty("disable-xrun") {
			_ = elem.SetProperty("disable-xrun", true)
		}
	case "brcmaudiosink":
		if elem.HasProperty("async") {
			_ = elem.SetProperty("async", false)
		}
	case "westerossink":
		if elem.HasProperty("zorder") {
			_ = elem.SetProperty("zorder", 0)
		}
	}
}

// setupSourceTask records the demux/source element (spec.md §4.B
// SetupSource).
type setupSourceTask struct {
	ctx       *PlayerContext
	source    gstkit.Element
	client    ClientCallbacks
	scheduler Scheduler
	logger    *slog.Logger
}

func (t *setupSourceTask) Name() string { return "SetupSource" }

func (t *setupSourceTask) Execute() {
	t.ctx.Source = t.source
	t.logger.Debug("setup source", "name", t.source.Name())
	if t.ctx.WereAllSourcesAttached && t.scheduler != nil {
		factory := &TaskFactory{ctx: t.ctx, client: t.client, scheduler: t.scheduler, logger: t.logger}
		_ = t.scheduler.Enqueue(factory.CreateFinishSetupSource())
	}
}

// deepElementAddedTask inspects an element added deep inside a bin and
// files it into the playback group (spec.md §4.B DeepElementAdded).
type deepElementAddedTask struct {
	ctx       *PlayerContext
	elem      gstkit.Element
	scheduler Scheduler
	logger    *slog.Logger
}

func (t *deepElementAddedTask) Name() string { return "DeepElementAdded" }

func (t *deepElementAddedTask) Execute() {
	kind := gstkit.ClassifyByFactory(t.elem.FactoryName())
	t.logger.Debug("deep element added", "name", t.elem.Name(), "kind", kind)

	if kind.IsTypefind {
		t.ctx.PlaybackGroup.Typefind = t.elem
		_ = t.elem.Connect("have-type", func(self gstkit.Element, extra any) {
			if t.scheduler != nil {
				factory := &TaskFactory{ctx: t.ctx, logger: t.logger}
				_ = t.scheduler.Enqueue(factory.CreateUpdatePlaybackGroup(self))
			}
		})
		return
	}
	if kind.IsParser {
		t.ctx.PlaybackGroup.Parser = t.elem
	}
	if kind.IsDecoder {
		t.ctx.PlaybackGroup.Decoder = t.elem
	}
	if kind.IsSink && kind.IsAudio {
		t.ctx.PlaybackGroup.AudioSink = t.elem
	}
}

// updatePlaybackGroupTask walks a typefind's parent chain to the owning
// decodebin once have-type fires with audio caps (spec.md §4.B
// UpdatePlaybackGroup).
type updatePlaybackGroupTask struct {
	ctx      *PlayerContext
	typefind gstkit.Element
	logger   *slog.Logger
}

func (t *updatePlaybackGroupTask) Name() string { return "UpdatePlaybackGroup" }

func (t *updatePlaybackGroupTask) Execute() {
	caps, ok := t.typefind.GetCaps()
	if !ok {
		return
	}
	desc, ok := caps.(*gstkit.CapsDesc)
	if !ok || desc == nil {
		return
	}
	if !isAudioMime(desc.MimeType) {
		return
	}

	t.ctx.PlaybackGroup.Typefind = t.typefind
	parent := t.typefind
	for {
		p, ok := parent.GetParent()
		if !ok {
			break
		}
		if gstkit.ClassifyByFactory(p.FactoryName()).IsDecoder || isDecodebin(p.FactoryName()) {
			t.ctx.PlaybackGroup.Decodebin = p
			break
		}
		parent = p
	}
	t.logger.Debug("updated playback group", "typefind", t.typefind.Name())
}

func isDecodebin(factoryName string) bool {
	return factoryName == "decodebin" || factoryName == "decodebin3" || factoryName == "uridecodebin"
}

func isAudioMime(mime string) bool {
	return len(mime) >= 6 && mime[:6] == "audio/"
}

// finishSetupSourceTask wires appsrc callbacks once every expected source
// has attached (spec.md §4.B FinishSetupSource).
type finishSetupSourceTask struct {
	ctx       *PlayerContext
	client    ClientCallbacks
	scheduler Scheduler
	logger    *slog.Logger
}

func (t *finishSetupSourceTask) Name() string { return "FinishSetupSource" }

func (t *finishSetupSourceTask) Execute() {
	if t.ctx.SetupSourceFinished {
		return
	}

	for sourceType, info := range t.ctx.StreamInfo {
		st := sourceType
		appSrc := info.AppSrc
		_ = appSrc.Connect("need-data", func(self gstkit.Element, extra any) {
			if t.scheduler != nil {
				factory := &TaskFactory{ctx: t.ctx, client: t.client, logger: t.logger}
				_ = t.scheduler.Enqueue(factory.CreateNeedData(st))
			}
		})
		_ = appSrc.Connect("enough-data", func(self gstkit.Element, extra any) {
			if t.scheduler != nil {
				factory := &TaskFactory{ctx: t.ctx, logger: t.logger}
				_ = t.scheduler.Enqueue(factory.CreateEnoughData(st))
			}
		})
		_ = appSrc.Connect("seek-data", func(self gstkit.Element, extra any) {
			t.logger.Debug("seek-data", "source", st)
		})
	}

	if t.ctx.Source != nil {
		_ = t.ctx.Source.SendEvent(gstkit.AllSourcesAttachedEvent{})
	}

	if t.client != nil {
		t.client.NotifyPlaybackState(PlaybackStateIdle)
	}
	t.ctx.SetupSourceFinished = true
	t.logger.Info("setup source finished")
}

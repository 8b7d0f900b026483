// Command rialto-server boots the playback service supervisor: it loads
// config, builds the shared-memory region and the playback service, and
// demonstrates the admission + heartbeat lifecycle. It does not implement
// the real NamedSocket RPC listener (out of scope per spec.md §6); see
// internal/transport for the documented seam.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rdkcentral/rialto-go/internal/config"
	"github.com/rdkcentral/rialto-go/internal/decryption"
	"github.com/rdkcentral/rialto-go/internal/gstkit"
	"github.com/rdkcentral/rialto-go/internal/player"
	"github.com/rdkcentral/rialto-go/internal/service"
	"github.com/rdkcentral/rialto-go/internal/shm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rialto-server",
		Short: "Rialto playback server",
		Long:  "Per-session GStreamer playback engine and process-wide supervisor.",
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the playback service and run until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve()
		},
	}
}

func serve() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	maxSessions, err := cfg.MaxSessions()
	if err != nil {
		return fmt.Errorf("derive session capacity: %w", err)
	}
	partitionSize, err := cfg.PartitionSizeBytes()
	if err != nil {
		return fmt.Errorf("partition size: %w", err)
	}

	shmBuffer, err := shm.NewMemfdBuffer("rialto-shm", maxSessions, int(partitionSize))
	if err != nil {
		logger.Warn("memfd shared memory unavailable, falling back to in-process buffer", "err", err)
		shmBuffer = shm.NewFakeBuffer(maxSessions, int(partitionSize))
	}
	defer shmBuffer.Close()

	gstkit.Init()

	pipelineFactory := func(sessionID string, req player.VideoRequirements) (gstkit.Pipeline, gstkit.Factory, error) {
		pipeline, err := gstkit.NewEmptyPipeline("session-" + sessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("create pipeline for %s: %w", sessionID, err)
		}
		return pipeline, gstkit.NewFactory(), nil
	}

	client := &logOnlyClient{logger: logger.With("component", "client_callbacks")}

	decryptionFactory := func(sessionID string) decryption.Service {
		return decryption.NewFakeService()
	}

	svc, err := service.NewPlaybackService(cfg.ServiceConfig(), shmBuffer, pipelineFactory, client, decryptionFactory, logger)
	if err != nil {
		return fmt.Errorf("create playback service: %w", err)
	}
	svc.SwitchToActive()
	logger.Info("rialto-server active",
		"max_playbacks", cfg.MaxPlaybacks,
		"max_web_audio_players", cfg.MaxWebAudioPlayers,
		"shm_size", cfg.SharedMemorySize,
		"partition_size", cfg.PartitionSize,
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	heartbeat := time.NewTicker(cfg.HeartbeatTimeout)
	defer heartbeat.Stop()

	for {
		select {
		case <-stop:
			logger.Info("shutting down")
			svc.Shutdown()
			return nil
		case <-heartbeat.C:
			if !svc.Ping() {
				logger.Warn("heartbeat missed by one or more sessions")
			}
		}
	}
}

// logOnlyClient is the placeholder ClientCallbacks used until a real
// transport dispatches callbacks to connected clients (spec.md §1 non-goal:
// no RPC transport implementation in this module).
type logOnlyClient struct {
	logger *slog.Logger
}

func (c *logOnlyClient) NotifyPlaybackState(state player.PlaybackState) {
	c.logger.Info("notifyPlaybackState", "state", state)
}

func (c *logOnlyClient) NotifyNeedMediaData(sourceType player.MediaSourceType) bool {
	c.logger.Debug("notifyNeedMediaData", "source", sourceType)
	return true
}

func (c *logOnlyClient) NotifyPosition(position int64) {
	c.logger.Debug("notifyPosition", "position_ns", position)
}

func (c *logOnlyClient) NotifyNetworkState(state player.NetworkState) {
	c.logger.Info("notifyNetworkState", "state", state)
}

func (c *logOnlyClient) NotifyBufferUnderflow(sourceType player.MediaSourceType) {
	c.logger.Warn("notifyBufferUnderflow", "source", sourceType)
}

func (c *logOnlyClient) NotifySourceFlushed(sourceType player.MediaSourceType) {
	c.logger.Debug("notifySourceFlushed", "source", sourceType)
}

func (c *logOnlyClient) InvalidateActiveRequests(sourceType player.MediaSourceType) {
	c.logger.Debug("invalidateActiveRequests", "source", sourceType)
}

func (c *logOnlyClient) ClearActiveRequestsCache() {
	c.logger.Debug("clearActiveRequestsCache")
}

func (c *logOnlyClient) NotifyQos(sourceType player.MediaSourceType, qos player.QosInfo) {
	c.logger.Debug("notifyQos", "source", sourceType, "processed", qos.Processed, "dropped", qos.Dropped)
}

// Package config loads the process-wide server settings via
// github.com/kelseyhightower/envconfig, with optional .env loading through
// github.com/joho/godotenv, matching the teacher's
// config.LoadCliConfig/LoadRunnerConfig pattern (SPEC_FULL.md §2.2).
package config

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/rdkcentral/rialto-go/internal/player"
	"github.com/rdkcentral/rialto-go/internal/service"
)

// ServerConfig holds every env-configurable setting the server process
// needs at boot.
type ServerConfig struct {
	MaxPlaybacks       int    `envconfig:"RIALTO_MAX_PLAYBACKS" default:"2"`
	MaxWebAudioPlayers int    `envconfig:"RIALTO_MAX_WEB_AUDIO_PLAYERS" default:"1"`
	SharedMemorySize   string `envconfig:"RIALTO_SHM_SIZE" default:"10MB"`
	PartitionSize      string `envconfig:"RIALTO_SHM_PARTITION_SIZE" default:"2MB"`

	HeartbeatTimeout     time.Duration `envconfig:"RIALTO_HEARTBEAT_TIMEOUT" default:"5s"`
	ReportPositionPeriod time.Duration `envconfig:"RIALTO_REPORT_POSITION_PERIOD" default:"250ms"`
	CheckUnderflowPeriod time.Duration `envconfig:"RIALTO_CHECK_UNDERFLOW_PERIOD" default:"100ms"`
	UnderflowMargin      time.Duration `envconfig:"RIALTO_UNDERFLOW_MARGIN" default:"350ms"`

	SocketPath  string `envconfig:"RIALTO_SOCKET_PATH" default:"/tmp/rialto.sock"`
	SocketOwner string `envconfig:"RIALTO_SOCKET_OWNER" default:""`
	SocketGroup string `envconfig:"RIALTO_SOCKET_GROUP" default:""`

	// WaylandDisplay/SubtitlesWaylandDisplay are exported as env vars for
	// client processes the server launches, matching the original's
	// per-session wayland display naming (spec.md §4.H "process-level env
	// vars derived from config"); plumbing only, not consumed here.
	WaylandDisplay          string `envconfig:"RIALTO_WAYLAND_DISPLAY" default:"westeros-rialto"`
	SubtitlesWaylandDisplay string `envconfig:"RIALTO_SUBTITLES_WAYLAND_DISPLAY" default:"westeros-subtitles"`
}

// Load reads a .env file if present, then fills a ServerConfig from the
// environment, applying envconfig's declared defaults.
func Load() (ServerConfig, error) {
	_ = godotenv.Load()

	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("config: process env: %w", err)
	}
	return cfg, nil
}

// SharedMemorySizeBytes parses SharedMemorySize ("10MB" etc) via
// docker/go-units.
func (c ServerConfig) SharedMemorySizeBytes() (int64, error) {
	return units.RAMInBytes(c.SharedMemorySize)
}

// PartitionSizeBytes parses PartitionSize the same way.
func (c ServerConfig) PartitionSizeBytes() (int64, error) {
	return units.RAMInBytes(c.PartitionSize)
}

// MaxSessions derives the shared-memory region's session capacity from the
// total and per-partition sizes.
func (c ServerConfig) MaxSessions() (int, error) {
	total, err := c.SharedMemorySizeBytes()
	if err != nil {
		return 0, fmt.Errorf("config: shared memory size: %w", err)
	}
	partition, err := c.PartitionSizeBytes()
	if err != nil {
		return 0, fmt.Errorf("config: partition size: %w", err)
	}
	if partition <= 0 {
		return 0, fmt.Errorf("config: partition size must be positive")
	}
	sessions := int(total / partition)
	if sessions < c.MaxPlaybacks {
		return 0, fmt.Errorf("config: shared memory region (%s) too small for %d playbacks at %s each",
			humanSize(total), c.MaxPlaybacks, humanSize(partition))
	}
	return sessions, nil
}

// ServiceConfig projects the relevant fields into service.Config.
func (c ServerConfig) ServiceConfig() service.Config {
	return service.Config{
		MaxPlaybacks:         c.MaxPlaybacks,
		MaxWebAudioPlayers:   c.MaxWebAudioPlayers,
		HeartbeatTimeout:     c.HeartbeatTimeout,
		ReportPositionPeriod: c.ReportPositionPeriod,
		CheckUnderflowPeriod: c.CheckUnderflowPeriod,
	}
}

// UnderflowMarginOr returns UnderflowMargin if set, otherwise
// player.UnderflowMargin.
func (c ServerConfig) UnderflowMarginOr() time.Duration {
	if c.UnderflowMargin > 0 {
		return c.UnderflowMargin
	}
	return player.UnderflowMargin
}

func humanSize(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}

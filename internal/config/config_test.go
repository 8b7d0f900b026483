package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	// Setenv registers the restore; Unsetenv makes the variable absent so
	// envconfig falls back to its declared default.
	t.Setenv("RIALTO_MAX_PLAYBACKS", "")
	require.NoError(t, os.Unsetenv("RIALTO_MAX_PLAYBACKS"))
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MaxPlaybacks)
	assert.Equal(t, 1, cfg.MaxWebAudioPlayers)
	assert.Equal(t, 350*time.Millisecond, cfg.UnderflowMargin)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("RIALTO_MAX_PLAYBACKS", "4")
	t.Setenv("RIALTO_SHM_SIZE", "20MB")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxPlaybacks)
	size, err := cfg.SharedMemorySizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(20*1024*1024), size)
}

func TestMaxSessionsDerivesFromSizes(t *testing.T) {
	t.Setenv("RIALTO_SHM_SIZE", "10MB")
	t.Setenv("RIALTO_SHM_PARTITION_SIZE", "2MB")
	t.Setenv("RIALTO_MAX_PLAYBACKS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	sessions, err := cfg.MaxSessions()
	require.NoError(t, err)
	assert.Equal(t, 5, sessions)
}

func TestMaxSessionsRejectsUndersizedRegion(t *testing.T) {
	t.Setenv("RIALTO_SHM_SIZE", "1MB")
	t.Setenv("RIALTO_SHM_PARTITION_SIZE", "2MB")
	t.Setenv("RIALTO_MAX_PLAYBACKS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	_, err = cfg.MaxSessions()
	assert.Error(t, err)
}

func TestServiceConfigProjection(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	svcCfg := cfg.ServiceConfig()
	assert.Equal(t, cfg.MaxPlaybacks, svcCfg.MaxPlaybacks)
	assert.Equal(t, cfg.HeartbeatTimeout, svcCfg.HeartbeatTimeout)
}

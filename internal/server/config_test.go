package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", config.ServerAddress())
	assert.Equal(t, int64(20), config.Game.RegistrationFee)
	assert.Equal(t, 2, config.Game.MaxAttempts)
	assert.Equal(t, "house", config.Game.Admin)
	require.NoError(t, config.Validate())
}

func TestLoadConfigFromHCL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "game.hcl")
	content := `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

game {
  registration_fee = 50
  max_attempts     = 3
  min_number       = 1
  max_number       = 20
  max_players      = 10
  admin            = "operator"
  seed             = 42
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", config.ServerAddress())
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, int64(50), config.Game.RegistrationFee)
	assert.Equal(t, 3, config.Game.MaxAttempts)
	assert.Equal(t, 20, config.Game.MaxNumber)
	assert.Equal(t, "operator", config.Game.Admin)
	assert.Equal(t, int64(42), config.Game.Seed)
	require.NoError(t, config.Validate())

	rules := config.Rules()
	assert.Equal(t, int64(50), rules.RegistrationFee)
	assert.Equal(t, 10, rules.MaxPlayers)
}

func TestLoadConfigPartialFileFillsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "partial.hcl")
	content := `
server {
  port = 9100
}

game {
  registration_fee = 5
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", config.Server.Address)
	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, int64(5), config.Game.RegistrationFee)
	assert.Equal(t, 2, config.Game.MaxAttempts)
	assert.Equal(t, 9, config.Game.MaxNumber)
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.Server.Port = 0
	require.Error(t, config.Validate())

	config = DefaultConfig()
	config.Game.MinNumber = 9
	config.Game.MaxNumber = 1
	require.Error(t, config.Validate())

	config = DefaultConfig()
	config.Game.Admin = ""
	// applyDefaults has not run here, so an explicit empty admin fails
	require.Error(t, config.Validate())
}

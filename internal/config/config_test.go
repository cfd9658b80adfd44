package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("REFERRAL_EXCLUDECANCELLED", "true")
	t.Setenv("SERVER_ALLOWED_HOSTS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.True(t, cfg.Referral.ExcludeCancelled)
	assert.Equal(t, "5", cfg.Referral.FeeAmount)
	assert.Equal(t, 168, cfg.Referral.CodeTTLHours)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedHosts)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: \"9000\"\nstorage:\n  driver: memory\njwt:\n  secret: fromfile\nsms:\n  defaultgateway: MOCK\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "fromfile", cfg.JWT.Secret)
	assert.Equal(t, "MOCK", cfg.SMS.DefaultGateway)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("LIST", "a,,b ")
	assert.Equal(t, []string{"a", "b"}, GetEnvAsSlice("LIST", ",", nil))
	assert.Equal(t, []string{"x"}, GetEnvAsSlice("MISSING_LIST", ",", []string{"x"}))
}

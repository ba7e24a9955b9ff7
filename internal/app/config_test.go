package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytfinder/internal/domain"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("YTFINDER_UPSTREAM_BASEURL", "https://example.com")

	cfg, v, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "https://example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, domain.DefaultVideosPath, cfg.Upstream.VideosPath)
	assert.Equal(t, domain.DefaultSoftTTLSeconds, cfg.Cache.SoftTTLSeconds)
	assert.Equal(t, domain.DefaultHardTTLSeconds, cfg.Cache.HardTTLSeconds)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.True(t, cfg.Observability.Enabled)
}

func TestLoadConfig_MissingBaseURLIsFatal(t *testing.T) {
	t.Setenv("YTFINDER_UPSTREAM_BASEURL", "")

	_, _, err := LoadConfig("")
	require.Error(t, err)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeConfig, code)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
upstream:
  baseURL: https://music.example.org
  videosPath: /channel/videos
cache:
  softTTLSeconds: 120
  hardTTLSeconds: 3600
server:
  transport: streamable-http
  httpAddr: 127.0.0.1:8088
observability:
  enabled: false
  debugToken: s3cret
`), 0o600))

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://music.example.org", cfg.Upstream.BaseURL)
	assert.Equal(t, "/channel/videos", cfg.Upstream.VideosPath)
	assert.Equal(t, 120, cfg.Cache.SoftTTLSeconds)
	assert.Equal(t, 3600, cfg.Cache.HardTTLSeconds)
	assert.Equal(t, domain.DefaultForegroundTimeoutSeconds, cfg.Cache.ForegroundTimeoutSeconds)
	assert.Equal(t, "streamable-http", cfg.Server.Transport)
	assert.Equal(t, "127.0.0.1:8088", cfg.Server.HTTPAddr)
	assert.False(t, cfg.Observability.Enabled)
	assert.Equal(t, "s3cret", cfg.Observability.DebugToken)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
upstream:
  baseURL: https://file.example.org
`), 0o600))

	t.Setenv("YTFINDER_UPSTREAM_BASEURL", "https://env.example.org")

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.org", cfg.Upstream.BaseURL)
}

func TestLoadConfig_UnreadableFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeConfig, code)
}

func TestCacheConfigPolicy(t *testing.T) {
	cfg := CacheConfig{
		SoftTTLSeconds:           90,
		HardTTLSeconds:           7200,
		ForegroundTimeoutSeconds: 4,
		BackgroundTimeoutSeconds: 8,
	}
	policy := cfg.Policy()

	assert.Equal(t, 90*time.Second, policy.SoftTTL)
	assert.Equal(t, 2*time.Hour, policy.HardTTL)
	assert.Equal(t, 4*time.Second, policy.ForegroundTimeout)
	assert.Equal(t, 8*time.Second, policy.BackgroundTimeout)
}

package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 1500*time.Millisecond, c.ReadyDelay)
	assert.Empty(t, c.AccessToken)
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("CHARSTUDIO_SERVER_ADDRESS", "env:1")
	t.Setenv("CHARSTUDIO_ACCESS_TOKEN", "env-token")

	path := writeTempJSON(t, "", "", map[string]any{
		"server_endpoint_addr": "json:2",
		"ready_delay":          "3s",
	})

	cfg, err := LoadConfig([]string{"-c", path, "-a", "flag:3"})
	require.NoError(t, err)

	want := &Config{
		ServerEndpointAddr: "flag:3",
		AccessToken:        "env-token",
		ReadyDelay:         3 * time.Second,
		RequestTimeout:     2 * time.Minute,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_EmptyAddress(t *testing.T) {
	_, err := LoadConfig([]string{"-a", ""})
	require.Error(t, err)
}

func TestParseEnv_BadDuration(t *testing.T) {
	cfg := &Config{}
	err := parseEnv(cfg, map[string]string{"CHARSTUDIO_READY_DELAY": "soon"})
	require.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.NoError(t, parseFlags(cfg, []string{"-k", "tok", "-r", "250ms", "-x", "ignored"}))
	assert.Equal(t, "tok", cfg.AccessToken)
	assert.Equal(t, 250*time.Millisecond, cfg.ReadyDelay)
}

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "", c.ApiKey)
	assert.Equal(t, "https://api.giphy.com/v1/gifs/search", c.Endpoint)
	assert.Equal(t, 12, c.Limit)
	assert.Equal(t, 10*time.Second, c.HttpTimeout)
	assert.Equal(t, []string{"giphy.com"}, c.DownloadHosts)
	assert.False(t, c.DbEnabled)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GIPHY_API_KEY=from_file\nPORT=9000\nDB_ENABLED=true\nHTTP_TIMEOUT=3s\n"), 0o600))
	t.Setenv("PORT", "9100")
	t.Setenv("DOWNLOAD_HOSTS", "giphy.com,tenor.com")

	c, err := loadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from_file", c.ApiKey)
	assert.Equal(t, 9100, c.Port)
	assert.True(t, c.DbEnabled)
	assert.Equal(t, 3*time.Second, c.HttpTimeout)
	assert.Equal(t, []string{"giphy.com", "tenor.com"}, c.DownloadHosts)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `llm:
  provider: gemini
  api_key: from-file
  timeout: 5s
server:
  addr: ":9000"
  allowed_origins:
    - https://example.com
s3:
  endpoint: localhost:9001
  use_ssl: false
postgres:
  dsn: postgres://localhost/askdata
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "askdata.yaml"), []byte(yaml), 0o600))

	t.Setenv("ASKDATA_SERVER_MAX_UPLOAD_MB", "8")
	t.Setenv("ASKDATA_LLM_MODEL", "gemini-2.0-flash")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(8), cfg.Server.MaxUploadMB)
	assert.Equal(t, int64(8<<20), cfg.Server.MaxUploadBytes())
	assert.Equal(t, "localhost:9001", cfg.S3.Endpoint)
	assert.False(t, cfg.S3.UseSSL)
	assert.Equal(t, "postgres://localhost/askdata", cfg.Postgres.DSN)

	tc := cfg.LLM.Translator()
	assert.Equal(t, "gemini", tc.Provider)
	assert.Equal(t, 5*time.Second, tc.Timeout)
	assert.Equal(t, "localhost:9001", cfg.S3.Dataset().Endpoint)
}

func TestLoadProviderKeyFallback(t *testing.T) {
	t.Setenv("ASKDATA_LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "or-key", cfg.LLM.APIKey)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "askdata.yaml"), []byte("llm: [unclosed"), 0o600))
	_, err := Load(dir)
	assert.Error(t, err)
}

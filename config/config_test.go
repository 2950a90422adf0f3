package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, used, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.SanitizeHTML)
	assert.Equal(t, "mock", cfg.LLM.Provider)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_addr: ":9090"
log_format: json
database:
  driver: postgres
  dsn: postgres://localhost/cms
llm:
  provider: openai
  model: gpt-4o-mini
`), 0o600))

	t.Setenv("SITECMS_LLM_API_KEY", "sk-test")
	t.Setenv("SITECMS_SANITIZE_HTML", "false")

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/cms", cfg.Database.DSN)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.False(t, cfg.SanitizeHTML)
}

func TestLoadErrors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("SITECMS_DATABASE_DRIVER", "mysql")
	t.Chdir(t.TempDir())
	_, _, err = Load("")
	assert.ErrorContains(t, err, "database.driver")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn", LogFormat: "json"}.NewLogger(&buf)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

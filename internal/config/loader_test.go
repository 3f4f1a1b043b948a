package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFromDir(t, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "http://ollama:11434", cfg.Ollama.Host)
	assert.Equal(t, "tinyllama", cfg.Ollama.Model)
	assert.Equal(t, 60*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, "json", cfg.Ledger.Backend)
	assert.Equal(t, "executions.json", cfg.Ledger.Path)
	assert.Equal(t, "logs", cfg.Logs.Dir)
	assert.Equal(t, 8080, cfg.Serve.Port)
}

// loadFromDir runs the loader from an empty working directory so no stray
// .flowrunner.yaml interferes.
func loadFromDir(t *testing.T, dir string) (*Config, error) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return NewLoader().Load()
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FLOWRUNNER_OLLAMA_MODEL", "phi3")
	t.Setenv("FLOWRUNNER_LEDGER_BACKEND", "sqlite")

	cfg, err := loadFromDir(t, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "phi3", cfg.Ollama.Model)
	assert.Equal(t, "sqlite", cfg.Ledger.Backend)
}

func TestLoad_OllamaHostCompatEnv(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://localhost:11434")

	cfg, err := loadFromDir(t, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Host)
}

func TestLoad_PrefixedHostWinsOverCompat(t *testing.T) {
	t.Setenv("FLOWRUNNER_OLLAMA_HOST", "http://prefixed:11434")
	t.Setenv("OLLAMA_HOST", "http://compat:11434")

	cfg, err := loadFromDir(t, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://prefixed:11434", cfg.Ollama.Host)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.yaml")
	content := `
ollama:
  host: http://filehost:11434
  timeout: 30s
logs:
  dir: /tmp/flowlogs
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "http://filehost:11434", cfg.Ollama.Host)
	assert.Equal(t, 30*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, "/tmp/flowlogs", cfg.Logs.Dir)
	// Untouched keys keep their defaults.
	assert.Equal(t, "tinyllama", cfg.Ollama.Model)
}

func TestLoad_EnvBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ollama:\n  model: from-file\n"), 0o644))
	t.Setenv("FLOWRUNNER_OLLAMA_MODEL", "from-env")

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Ollama.Model)
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".flowrunner.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the variables Load consults so the host environment does
// not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"READCHECK_LLM_PROVIDER", "READCHECK_DB_DRIVER", "READCHECK_DB_DSN",
		"READCHECK_GRADING_OPEN_CONCURRENCY", "READCHECK_SERVER_ADDR",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Gemini.Model)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.LLM.Retry.InitialWait)
	assert.Equal(t, 4*time.Second, cfg.LLM.Retry.MaxWait)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1, cfg.Grading.OpenConcurrency)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("READCHECK_DB_DRIVER", "postgres")
	t.Setenv("READCHECK_DB_DSN", "postgres://localhost/readcheck")
	t.Setenv("READCHECK_GRADING_OPEN_CONCURRENCY", "3")
	t.Setenv("READCHECK_LLM_TIMEOUT", "10s")

	cfg, err := Load("", noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/readcheck", cfg.DB.DSN)
	assert.Equal(t, 3, cfg.Grading.OpenConcurrency)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "readcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: mock
server:
  addr: ":9090"
  cors_origins: ["https://school.example"]
`), 0o644))

	cfg, err := Load(path, noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://school.example"}, cfg.Server.CORSOrigins)
}

func TestLoadDiscoversProviderKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load("", noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.Anthropic.APIKey)
}

func TestLoadExplicitProviderSkipsDiscovery(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("READCHECK_LLM_PROVIDER", "mock")

	cfg, err := Load("", noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
}

func TestLoadDotenv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("READCHECK_SERVER_ADDR=:7070\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("READCHECK_SERVER_ADDR") })

	cfg, err := Load("", path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("READCHECK_GRADING_OPEN_CONCURRENCY", "5")
	t.Setenv("READCHECK_DB_DRIVER", "mysql")

	_, err := Load("", noDotenv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grading.open_concurrency")
	assert.Contains(t, err.Error(), "db.driver")
}

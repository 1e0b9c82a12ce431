package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LEVIOSA_PROVIDER", "LEVIOSA_MODEL", "LEVIOSA_LANGUAGE", "LEVIOSA_BASE_URL",
		"OPENAI_BASE_URL", "LEVIOSA_UPLOAD_DIR", "LEVIOSA_OUTPUT_DIR", "LEVIOSA_WORK_DIR",
		"LEVIOSA_BIND", "LEVIOSA_VERBOSE", "OPENAI_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "vi", cfg.Transcription.Language)
	assert.Equal(t, 10*time.Minute, cfg.ChunkDuration())
	assert.Equal(t, int64(500<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 24*time.Hour, cfg.MaxAge())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
upload_dir = "`+filepath.ToSlash(filepath.Join(dir, "in"))+`"
output_dir = "`+filepath.ToSlash(filepath.Join(dir, "out"))+`"

[transcription]
provider = "Gemini"
language = "English"
chunk_minutes = 0

[server]
bind = ":8080"
max_concurrent_jobs = 4
`)

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, "gemini", cfg.Transcription.Provider)
	assert.Equal(t, "en", cfg.Transcription.Language)
	assert.Zero(t, cfg.ChunkDuration())
	assert.Equal(t, ":8080", cfg.Server.Bind)
	assert.Equal(t, int64(4), cfg.Server.MaxConcurrentJobs)
	assert.Equal(t, filepath.Join(dir, "in"), cfg.Paths.UploadDir)
	// untouched values keep their defaults
	assert.Equal(t, int64(defaultMaxUploadMB), cfg.Server.MaxUploadMB)
	assert.Equal(t, defaultConcurrency, cfg.Transcription.Concurrency)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[transcription]\nmodle = \"whisper-1\"\n")
	_, _, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEVIOSA_LANGUAGE", "fr")
	t.Setenv("LEVIOSA_BIND", "0.0.0.0:9000")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8000/v1/")
	t.Setenv("LEVIOSA_VERBOSE", "true")

	path := writeConfig(t, "[transcription]\nlanguage = \"de\"\n")
	cfg, _, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fr", cfg.Transcription.Language)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Bind)
	assert.Equal(t, "http://localhost:8000/v1", cfg.Transcription.BaseURL)
	assert.True(t, cfg.Logging.Verbose)
}

func TestAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GEMINI_API_KEY", "gm-key")

	cfg := Default()
	assert.Equal(t, "sk-openai", cfg.APIKey())

	cfg.Transcription.Provider = "gemini"
	assert.Equal(t, "gm-key", cfg.APIKey())

	cfg.Transcription.APIKey = "explicit"
	assert.Equal(t, "explicit", cfg.APIKey())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad provider", func(c *Config) { c.Transcription.Provider = "azure" }, "transcription.provider"},
		{"bad language", func(c *Config) { c.Transcription.Language = "klingonish" }, "transcription.language"},
		{"negative chunk", func(c *Config) { c.Transcription.ChunkMinutes = -1 }, "transcription.chunk_minutes"},
		{"zero concurrency", func(c *Config) { c.Transcription.Concurrency = 0 }, "transcription.concurrency"},
		{"empty bind", func(c *Config) { c.Server.Bind = " " }, "server.bind"},
		{"zero upload", func(c *Config) { c.Server.MaxUploadMB = 0 }, "server.max_upload_mb"},
		{"zero jobs", func(c *Config) { c.Server.MaxConcurrentJobs = 0 }, "server.max_concurrent_jobs"},
		{"bad schedule", func(c *Config) { c.Retention.Schedule = "every tuesday" }, "retention.schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSkipsScheduleWhenRetentionDisabled(t *testing.T) {
	cfg := Default()
	cfg.Retention.MaxAgeHours = 0
	cfg.Retention.Schedule = ""
	assert.NoError(t, cfg.Validate())
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Paths.UploadDir = filepath.Join(root, "a", "uploads")
	cfg.Paths.OutputDir = filepath.Join(root, "b", "outputs")
	cfg.Paths.WorkDir = ""

	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, cfg.Paths.UploadDir)
	assert.DirExists(t, cfg.Paths.OutputDir)
}

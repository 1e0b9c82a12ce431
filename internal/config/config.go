package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Paths contains directory configuration.
type Paths struct {
	UploadDir string `toml:"upload_dir"`
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"` // scratch space for audio; empty means the OS temp dir
}

// Transcription selects and tunes the speech recognizer.
type Transcription struct {
	Provider     string `toml:"provider"` // openai or gemini
	Model        string `toml:"model"`
	Language     string `toml:"language"`
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key"`
	Prompt       string `toml:"prompt"`
	ChunkMinutes int    `toml:"chunk_minutes"` // 0 disables chunking
	Concurrency  int    `toml:"concurrency"`
}

// Server configures the upload web service.
type Server struct {
	Bind              string `toml:"bind"`
	MaxUploadMB       int64  `toml:"max_upload_mb"`
	MaxConcurrentJobs int64  `toml:"max_concurrent_jobs"`
}

// Retention controls the cleanup of old uploads and outputs.
type Retention struct {
	MaxAgeHours int    `toml:"max_age_hours"` // 0 keeps everything
	Schedule    string `toml:"schedule"`      // cron expression
}

type Logging struct {
	Verbose bool `toml:"verbose"`
}

type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Server        Server        `toml:"server"`
	Retention     Retention     `toml:"retention"`
	Logging       Logging       `toml:"logging"`
}

// Load builds the configuration from defaults, the TOML file at path (or the
// default locations when path is empty), a .env file in the working
// directory and the environment. It returns the resolved config path and
// whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, fmt.Errorf("load .env: %w", err)
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found: %s", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/leviosa/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("leviosa.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// APIKey returns the configured key, falling back to the provider's
// conventional environment variable.
func (c *Config) APIKey() string {
	if c.Transcription.APIKey != "" {
		return c.Transcription.APIKey
	}
	switch c.Transcription.Provider {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// ChunkDuration is the recognition chunk length, zero when disabled.
func (c *Config) ChunkDuration() time.Duration {
	return time.Duration(c.Transcription.ChunkMinutes) * time.Minute
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// MaxAge is how long uploads and outputs are kept, zero for forever.
func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.Retention.MaxAgeHours) * time.Hour
}

func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadDir, c.Paths.OutputDir, c.Paths.WorkDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

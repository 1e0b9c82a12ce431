package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mgpai22/leviosa/internal/language"
)

// environment overrides, applied after the file
func (c *Config) applyEnv() {
	setString(&c.Transcription.Provider, "LEVIOSA_PROVIDER")
	setString(&c.Transcription.Model, "LEVIOSA_MODEL")
	setString(&c.Transcription.Language, "LEVIOSA_LANGUAGE")
	setString(&c.Transcription.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Transcription.BaseURL, "LEVIOSA_BASE_URL")
	setString(&c.Paths.UploadDir, "LEVIOSA_UPLOAD_DIR")
	setString(&c.Paths.OutputDir, "LEVIOSA_OUTPUT_DIR")
	setString(&c.Paths.WorkDir, "LEVIOSA_WORK_DIR")
	setString(&c.Server.Bind, "LEVIOSA_BIND")

	if v, err := strconv.ParseBool(os.Getenv("LEVIOSA_VERBOSE")); err == nil {
		c.Logging.Verbose = v
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.UploadDir, err = expandPath(c.Paths.UploadDir); err != nil {
		return err
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return err
	}

	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	c.Transcription.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcription.BaseURL), "/")
	c.Retention.Schedule = strings.TrimSpace(c.Retention.Schedule)

	if lang := strings.TrimSpace(c.Transcription.Language); lang != "" {
		if code := language.ToISO2(lang); code != "" {
			c.Transcription.Language = code
		}
	}

	return nil
}

package config

const (
	defaultUploadDir         = "uploads"
	defaultOutputDir         = "outputs"
	defaultProvider          = "openai"
	defaultLanguage          = "vi"
	defaultChunkMinutes      = 10
	defaultConcurrency       = 3
	defaultBind              = "127.0.0.1:5000"
	defaultMaxUploadMB       = 500
	defaultMaxConcurrentJobs = 2
	defaultRetentionHours    = 24
	defaultRetentionSchedule = "@hourly"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
		},
		Transcription: Transcription{
			Provider:     defaultProvider,
			Language:     defaultLanguage,
			ChunkMinutes: defaultChunkMinutes,
			Concurrency:  defaultConcurrency,
		},
		Server: Server{
			Bind:              defaultBind,
			MaxUploadMB:       defaultMaxUploadMB,
			MaxConcurrentJobs: defaultMaxConcurrentJobs,
		},
		Retention: Retention{
			MaxAgeHours: defaultRetentionHours,
			Schedule:    defaultRetentionSchedule,
		},
	}
}

package config

import (
	"log"
	"os"

	"medvoice/pkg/logger"
	"medvoice/pkg/util"
)

type Config struct {
	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`
	Addr     string `env:"ADDR"`
	Mode     string `env:"MODE"`

	APIPrefix string `env:"API_PREFIX"`

	Log logger.LogConfig

	// ElevenLabs voice provider
	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string `env:"ELEVENLABS_BASE_URL"`
	ProviderTimeout   int64  `env:"PROVIDER_TIMEOUT_SECONDS"`

	// filesystem layout for the pipeline
	ProjectRoot string `env:"PROJECT_ROOT"`
	TempDir     string `env:"TEMP_DIR"`
	OutputDir   string `env:"OUTPUT_DIR"`

	// voice slot reclamation
	CleanupSchedule    string `env:"CLEANUP_SCHEDULE"`
	CleanupMaxAgeHours int64  `env:"CLEANUP_MAX_AGE_HOURS"`

	UploadGenerated bool `env:"UPLOAD_GENERATED"`

	CacheType string `env:"CACHE_TYPE"`
	RedisAddr string `env:"REDIS_ADDR"`

	MetricsEnabled bool   `env:"METRICS_ENABLED"`
	MetricsPath    string `env:"METRICS_PATH"`

	RateLimit string `env:"RATE_LIMIT"` // e.g. "30-M", empty disables
}

var GlobalConfig *Config

func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	GlobalConfig = &Config{
		DBDriver:  util.GetEnv("DB_DRIVER"),
		DSN:       util.GetEnv("DSN"),
		Addr:      util.GetEnvDefault("ADDR", ":8080"),
		Mode:      util.GetEnv("MODE"),
		APIPrefix: util.GetEnvDefault("API_PREFIX", "/api"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		ElevenLabsAPIKey:   util.GetEnv("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL:  util.GetEnv("ELEVENLABS_BASE_URL"),
		ProviderTimeout:    util.GetIntEnv("PROVIDER_TIMEOUT_SECONDS"),
		ProjectRoot:        util.GetEnvDefault("PROJECT_ROOT", "."),
		TempDir:            util.GetEnv("TEMP_DIR"),
		OutputDir:          util.GetEnvDefault("OUTPUT_DIR", "generated_audio"),
		CleanupSchedule:    util.GetEnv("CLEANUP_SCHEDULE"),
		CleanupMaxAgeHours: util.GetIntEnv("CLEANUP_MAX_AGE_HOURS"),
		UploadGenerated:    util.GetBoolEnv("UPLOAD_GENERATED"),
		CacheType:          util.GetEnvDefault("CACHE_TYPE", "local"),
		RedisAddr:          util.GetEnv("REDIS_ADDR"),
		MetricsEnabled:     util.GetBoolEnv("METRICS_ENABLED"),
		MetricsPath:        util.GetEnvDefault("METRICS_PATH", "/metrics"),
		RateLimit:          util.GetEnv("RATE_LIMIT"),
	}
	return nil
}

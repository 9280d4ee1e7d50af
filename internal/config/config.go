package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Generator modes.
const (
	GeneratorModeSimulated = "simulated"
	GeneratorModeOpenAI    = "openai"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Generator GeneratorConfig `mapstructure:"generator"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

type ServerConfig struct {
	Port      int        `mapstructure:"port"`
	Mode      string     `mapstructure:"mode"`
	PublicURL string     `mapstructure:"public_url"` // prefix for directVideoUrl
	CORS      CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type UploadConfig struct {
	MaxBytes     int64    `mapstructure:"max_bytes"`
	FieldName    string   `mapstructure:"field_name"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// StorageConfig selects where uploaded videos live.
// Type is "local", or one of the S3 flavours: "s3", "r2", "s3compatible".
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	LocalDir  string `mapstructure:"local_dir"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

// GeneratorConfig controls tutorial generation.
// Timeout 0 leaves a hung generation in processing forever.
type GeneratorConfig struct {
	Mode        string        `mapstructure:"mode"`
	Workers     int           `mapstructure:"workers"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	BaseOffset  time.Duration `mapstructure:"base_offset"`
	Stride      time.Duration `mapstructure:"stride"`
	Seed        int64         `mapstructure:"seed"` // 0 seeds from the clock
}

type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ArchiveConfig enables the write-only audit of terminal jobs.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"` // sqlite, postgres
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
}

// Load reads configuration from an optional YAML file, .env and the environment.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.public_url", "PUBLIC_URL")
	v.BindEnv("generator.mode", "AI_MODE")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("openai.model", "OPENAI_MODEL")
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.public_url", "http://localhost:5000")
	v.SetDefault("server.cors.allow_all_origins", false)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:3001"})
	v.SetDefault("upload.max_bytes", 200*1024*1024)
	v.SetDefault("upload.field_name", "video")
	v.SetDefault("upload.allowed_types", []string{"mp4", "mov", "avi", "wmv", "flv", "webm", "mkv"})
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_dir", "uploads")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "clueso-uploads")
	v.SetDefault("generator.mode", GeneratorModeSimulated)
	v.SetDefault("generator.workers", 2)
	v.SetDefault("generator.timeout", "0s")
	v.SetDefault("generator.max_attempts", 1)
	v.SetDefault("generator.min_delay", "3s")
	v.SetDefault("generator.max_delay", "6s")
	v.SetDefault("generator.base_offset", "5s")
	v.SetDefault("generator.stride", "7s")
	v.SetDefault("generator.seed", 0)
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", "60s")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.driver", "sqlite")
	v.SetDefault("archive.path", "./data/jobs.db")
}

// Validate checks cross-field constraints. The generator mode is chosen
// here, once, rather than by probing for an API key at call time.
func (c *Config) Validate() error {
	switch c.Generator.Mode {
	case GeneratorModeSimulated:
	case GeneratorModeOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("generator mode %q requires openai.api_key (OPENAI_API_KEY)", c.Generator.Mode)
		}
	default:
		return fmt.Errorf("unknown generator mode %q", c.Generator.Mode)
	}
	if c.Generator.Workers <= 0 {
		return fmt.Errorf("generator.workers must be positive, got %d", c.Generator.Workers)
	}
	if c.Generator.MaxAttempts <= 0 {
		return fmt.Errorf("generator.max_attempts must be positive, got %d", c.Generator.MaxAttempts)
	}
	if c.Generator.Timeout < 0 {
		return fmt.Errorf("generator.timeout must not be negative")
	}
	if c.Generator.MaxDelay < c.Generator.MinDelay {
		return fmt.Errorf("generator.max_delay (%s) is less than min_delay (%s)", c.Generator.MaxDelay, c.Generator.MinDelay)
	}
	if c.Generator.Stride <= 0 {
		return fmt.Errorf("generator.stride must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}
	switch c.Storage.Type {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required for local storage")
		}
	case "s3", "r2", "s3compatible":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for %s storage", c.Storage.Type)
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	return nil
}

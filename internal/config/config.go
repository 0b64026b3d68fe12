// Package config loads reelcast settings: built-in defaults, then an
// optional TOML file, then a .env file, then environment variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"reelcast/internal/assets"
	"reelcast/internal/ffmpeg"
	"reelcast/internal/pkg/logger"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "reelcast.toml"

// Log configures logging.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Source bool   `toml:"source"`
}

// Render tunes the render machine.
type Render struct {
	WordsPerMinute int    `toml:"words_per_minute"`
	WrapWidth      int    `toml:"wrap_width"`
	Policy         string `toml:"policy"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Narration selects and configures the TTS provider.
type Narration struct {
	// Provider is "openai", "http" or "none".
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Endpoint       string `toml:"endpoint"`
	Model          string `toml:"model"`
	Voice          string `toml:"voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// GDrive holds Google Drive OAuth credentials.
type GDrive struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
	FolderID     string `toml:"folder_id"`
}

// Storage selects where finished videos are kept.
type Storage struct {
	// Provider is "localfs" or "gdrive".
	Provider  string `toml:"provider"`
	LocalRoot string `toml:"local_root"`
	GDrive    GDrive `toml:"gdrive"`
}

// HTTP configures the API server.
type HTTP struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxTextBytes   int64    `toml:"max_text_bytes"`
}

// Database configures Postgres.
type Database struct {
	URL string `toml:"url"`
}

// Redis configures the job queue.
type Redis struct {
	Addr  string `toml:"addr"`
	Queue string `toml:"queue"`
}

// Config is the full reelcast configuration.
type Config struct {
	Log       Log                 `toml:"log"`
	Render    Render              `toml:"render"`
	Style     ffmpeg.Style        `toml:"style"`
	Fonts     []assets.FontSource `toml:"fonts"`
	Narration Narration           `toml:"narration"`
	FFmpeg    ffmpeg.Config       `toml:"ffmpeg"`
	Storage   Storage             `toml:"storage"`
	HTTP      HTTP                `toml:"http"`
	Database  Database            `toml:"database"`
	Redis     Redis               `toml:"redis"`
}

// Load builds a validated Config. path may be empty, in which case
// reelcast.toml in the working directory is used if present. An explicit
// path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.decodeFile(path); err != nil {
		return nil, err
	}
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = envOr("REELCAST_CONFIG", DefaultFile)
		explicit = path != DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	// Fonts in a file replace the default chain rather than append to it.
	fonts := c.Fonts
	c.Fonts = nil
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(c.Fonts) == 0 {
		c.Fonts = fonts
	}
	return nil
}

// loadDotEnv reads .env without overriding variables already set.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func (c *Config) normalize() {
	c.Narration.Provider = strings.ToLower(strings.TrimSpace(c.Narration.Provider))
	c.Storage.Provider = strings.ToLower(strings.TrimSpace(c.Storage.Provider))
	c.Render.Policy = strings.ToLower(strings.TrimSpace(c.Render.Policy))
	if c.FFmpeg.WorkDir != "" {
		c.FFmpeg.WorkDir = filepath.Clean(c.FFmpeg.WorkDir)
	}
}

// LoggerConfig returns the logger settings for a service.
func (c *Config) LoggerConfig(service string) logger.Config {
	return logger.Config{
		Level:       c.Log.Level,
		Format:      c.Log.Format,
		AddSource:   c.Log.Source,
		ServiceName: service,
	}
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"reelcast/internal/render"
)

// Validate checks the settings every entry point needs.
func (c *Config) Validate() error {
	if c.Render.WordsPerMinute <= 0 {
		return errors.New("render.words_per_minute must be positive")
	}
	if c.Render.WrapWidth <= 0 {
		return errors.New("render.wrap_width must be positive")
	}
	if c.Render.TimeoutSeconds < 0 {
		return errors.New("render.timeout_seconds must not be negative")
	}
	if _, ok := render.ParsePolicy(c.Render.Policy); !ok {
		return fmt.Errorf("render.policy %q must be replace or reject", c.Render.Policy)
	}
	if err := c.validateFonts(); err != nil {
		return err
	}
	if err := c.validateStyle(); err != nil {
		return err
	}
	return c.validateNarration()
}

// ValidateService additionally checks what the API and worker need.
func (c *Config) ValidateService() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("database.url is required (DATABASE_URL)")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("redis.addr is required (REDIS_ADDR)")
	}
	if strings.TrimSpace(c.Redis.Queue) == "" {
		return errors.New("redis.queue must not be empty")
	}
	return c.validateStorage()
}

func (c *Config) validateFonts() error {
	if len(c.Fonts) == 0 {
		return errors.New("at least one [[fonts]] entry is required")
	}
	for i, f := range c.Fonts {
		if strings.TrimSpace(f.Path) == "" && strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("fonts[%d] needs a path or a url", i)
		}
	}
	return nil
}

func (c *Config) validateStyle() error {
	s := c.Style
	if s.Canvas.Width <= 0 || s.Canvas.Height <= 0 {
		return errors.New("style.canvas width and height must be positive")
	}
	if s.Text.Size <= 0 {
		return errors.New("style.text.size must be positive")
	}
	if s.Canvas.Color == "" || s.Text.Color == "" {
		return errors.New("style colors must be set")
	}
	return nil
}

func (c *Config) validateNarration() error {
	switch c.Narration.Provider {
	case "openai", "none":
		return nil
	case "http":
		if strings.TrimSpace(c.Narration.Endpoint) == "" {
			return errors.New("narration.endpoint is required for the http provider")
		}
		return nil
	default:
		return fmt.Errorf("narration.provider %q must be openai, http or none", c.Narration.Provider)
	}
}

func (c *Config) validateStorage() error {
	switch c.Storage.Provider {
	case "localfs":
		if strings.TrimSpace(c.Storage.LocalRoot) == "" {
			return errors.New("storage.local_root is required for localfs")
		}
	case "gdrive":
		g := c.Storage.GDrive
		if g.ClientID == "" || g.ClientSecret == "" || g.RefreshToken == "" {
			return errors.New("storage.gdrive needs client_id, client_secret and refresh_token")
		}
	default:
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}
	return nil
}

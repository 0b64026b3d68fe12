package config

import (
	"os"
	"strconv"
	"strings"

	"reelcast/internal/assets"
)

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	c.Log.Level = envOr("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("LOG_FORMAT", c.Log.Format)
	c.Log.Source = boolEnv("LOG_SOURCE", c.Log.Source)

	c.Render.WordsPerMinute = intEnv("RENDER_WPM", c.Render.WordsPerMinute)
	c.Render.WrapWidth = intEnv("RENDER_WRAP_WIDTH", c.Render.WrapWidth)
	c.Render.Policy = envOr("RENDER_POLICY", c.Render.Policy)
	c.Render.TimeoutSeconds = intEnv("RENDER_TIMEOUT_SECONDS", c.Render.TimeoutSeconds)

	if p := envOr("FONT_PATH", ""); p != "" {
		c.Fonts = append([]assets.FontSource{{Path: p}}, c.Fonts...)
	}

	c.Narration.Provider = envOr("NARRATION_PROVIDER", c.Narration.Provider)
	c.Narration.APIKey = envOr("OPENAI_API_KEY", c.Narration.APIKey)
	c.Narration.BaseURL = envOr("OPENAI_BASE_URL", c.Narration.BaseURL)
	c.Narration.Endpoint = envOr("NARRATION_ENDPOINT", c.Narration.Endpoint)
	c.Narration.Model = envOr("OPENAI_TTS_MODEL", c.Narration.Model)
	c.Narration.Voice = envOr("OPENAI_TTS_VOICE", c.Narration.Voice)

	c.FFmpeg.FFmpeg = envOr("FFMPEG_BIN", c.FFmpeg.FFmpeg)
	c.FFmpeg.FFprobe = envOr("FFPROBE_BIN", c.FFmpeg.FFprobe)
	c.FFmpeg.WorkDir = envOr("REELCAST_WORK_DIR", c.FFmpeg.WorkDir)

	c.Storage.Provider = envOr("STORAGE_PROVIDER", c.Storage.Provider)
	c.Storage.LocalRoot = envOr("STORAGE_LOCAL_ROOT", c.Storage.LocalRoot)
	c.Storage.GDrive.ClientID = envOr("GDRIVE_CLIENT_ID", c.Storage.GDrive.ClientID)
	c.Storage.GDrive.ClientSecret = envOr("GDRIVE_CLIENT_SECRET", c.Storage.GDrive.ClientSecret)
	c.Storage.GDrive.RefreshToken = envOr("GDRIVE_REFRESH_TOKEN", c.Storage.GDrive.RefreshToken)
	c.Storage.GDrive.FolderID = envOr("GDRIVE_FOLDER_ID", c.Storage.GDrive.FolderID)

	c.HTTP.Port = envOr("HTTP_PORT", c.HTTP.Port)
	c.HTTP.AllowedOrigins = csvEnv("CORS_ALLOWED_ORIGINS", c.HTTP.AllowedOrigins)

	c.Database.URL = envOr("DATABASE_URL", c.Database.URL)
	c.Redis.Addr = envOr("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Queue = envOr("JOB_QUEUE_NAME", c.Redis.Queue)
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

// boolEnv reads k as a bool. Empty or invalid values return def.
func boolEnv(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func intEnv(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvEnv(k string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return def
	}
	out := make([]string, 0, 4)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

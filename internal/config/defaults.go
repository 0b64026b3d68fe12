package config

import (
	"reelcast/internal/assets"
	"reelcast/internal/caption"
	"reelcast/internal/ffmpeg"
	"reelcast/internal/narration"
)

// Public Inter font used when the local copy is missing.
const interRemoteURL = "https://fonts.gstatic.com/s/inter/v12/UcCO3FwrK3iLTeHuS_fvQtMwCp50KnMa.ttf"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: Log{Level: "info", Format: "json"},
		Render: Render{
			WordsPerMinute: caption.DefaultWordsPerMinute,
			WrapWidth:      caption.DefaultWidth,
			Policy:         "replace",
			TimeoutSeconds: 300,
		},
		Style: ffmpeg.DefaultStyle(),
		Fonts: []assets.FontSource{
			{Path: "fonts/Inter-Regular.ttf", URL: interRemoteURL},
		},
		Narration: Narration{
			Provider:       "openai",
			Model:          narration.DefaultModel,
			Voice:          narration.DefaultVoice,
			TimeoutSeconds: 60,
		},
		FFmpeg: ffmpeg.Config{FFmpeg: "ffmpeg", FFprobe: "ffprobe"},
		Storage: Storage{
			Provider:  "localfs",
			LocalRoot: "/data",
		},
		HTTP: HTTP{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8081"},
			MaxTextBytes:   16 << 10,
		},
		Redis: Redis{Queue: "reelcast:jobs"},
	}
}

package config

import (
	"github.com/knadh/koanf/v2"
)

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"server.host": "0.0.0.0",
		"server.port": 8080,

		"database.path": "data/bot.db",

		"downloader.binary":       "yt-dlp",
		"downloader.output_dir":   ".cache/videos",
		"downloader.cache_dir":    ".cache/ytdlp",
		"downloader.ffmpeg_path":  "ffmpeg",
		"downloader.ffprobe_path": "ffprobe",
		"downloader.debug_mode":   false,

		"limits.max_upload_bytes": 25_000_000,
		"limits.message_limit":    1994,

		"auth.jwt_expiry":     "24h",
		"auth.admin_username": "admin",

		"logging.level":  "info",
		"logging.format": "pretty",
	}

	for key, val := range defaults {
		k.Set(key, val)
	}
	return nil
}

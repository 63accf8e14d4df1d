package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Downloader DownloaderConfig `koanf:"downloader"`
	Limits     LimitsConfig     `koanf:"limits"`
	Auth       AuthConfig       `koanf:"auth"`
	Logging    LoggingConfig    `koanf:"logging"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type DownloaderConfig struct {
	Binary      string `koanf:"binary"`
	OutputDir   string `koanf:"output_dir"`
	CacheDir    string `koanf:"cache_dir"`
	FFmpegPath  string `koanf:"ffmpeg_path"`
	FFprobePath string `koanf:"ffprobe_path"`
	DebugMode   bool   `koanf:"debug_mode"`
}

type LimitsConfig struct {
	// MaxUploadBytes is the attachment size ceiling; larger outputs get a
	// metrics report instead of the file.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
	// MessageLimit is the longest text reply before falling back to an
	// attachment on the error detail read path.
	MessageLimit int `koanf:"message_limit"`
}

type AuthConfig struct {
	JWTSecret     string `koanf:"jwt_secret"`
	JWTExpiry     string `koanf:"jwt_expiry"`
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads config from TOML file (if provided) then overlays env vars.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	// 2. Load TOML config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load env vars: VDB_SERVER_PORT -> server.port
	// Only set env vars that have non-empty values to avoid overriding TOML config.
	if err := k.Load(env.ProviderWithValue("VDB_", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		mapped := strings.Replace(
			strings.ToLower(strings.TrimPrefix(key, "VDB_")),
			"_", ".", 1,
		)
		return mapped, value
	}), nil); err != nil {
		return nil, err
	}

	// 4. Handle top-level convenience env vars
	if v := os.Getenv("VDB_DATABASE_PATH"); v != "" {
		k.Set("database.path", v)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Derive the yt-dlp cache dir from the output dir when not configured
	if cfg.Downloader.CacheDir == "" {
		cfg.Downloader.CacheDir = filepath.Join(filepath.Dir(cfg.Downloader.OutputDir), "ytdlp")
	}

	return &cfg, nil
}

// Package config loads docmark settings. Defaults come from a struct, then
// DOCMARK_* environment variables (optionally from a .env file) override
// them. CLI flags are applied by the cmd package after Load.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full docmark configuration.
type Config struct {
	OutputDir string        `koanf:"output_dir"`
	Log       LogConfig     `koanf:"log"`
	Fetch     FetchConfig   `koanf:"fetch"`
	Archive   ArchiveConfig `koanf:"archive"`
	Web       WebConfig     `koanf:"web"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// FetchConfig controls page and asset downloads.
type FetchConfig struct {
	UserAgent     string        `koanf:"user_agent"`
	Timeout       time.Duration `koanf:"timeout"`
	AssetTimeout  time.Duration `koanf:"asset_timeout"`
	MaxAssetBytes int64         `koanf:"max_asset_bytes"`
	ChunkSize     int           `koanf:"chunk_size"`
}

// ArchiveConfig controls bundle ingestion.
type ArchiveConfig struct {
	KeepArchive bool `koanf:"keep_archive"`
}

// WebConfig controls the HTML path.
type WebConfig struct {
	MainOnly      bool `koanf:"main_only"`
	AbsoluteLinks bool `koanf:"absolute_links"`
	MaxPages      int  `koanf:"max_pages"`
}

// BrowserUserAgent is sent with page and image requests; many origins reject
// requests that do not look like a browser.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir: "output",
		Log:       LogConfig{Level: "info"},
		Fetch: FetchConfig{
			UserAgent:     BrowserUserAgent,
			Timeout:       30 * time.Second,
			AssetTimeout:  15 * time.Second,
			MaxAssetBytes: 20 * 1024 * 1024,
			ChunkSize:     8192,
		},
		Web: WebConfig{MaxPages: 100},
	}
}

// envMappings maps environment variables onto koanf paths.
var envMappings = map[string]string{
	"DOCMARK_OUTPUT_DIR":            "output_dir",
	"DOCMARK_LOG_LEVEL":             "log.level",
	"DOCMARK_LOG_JSON":              "log.json",
	"DOCMARK_FETCH_USER_AGENT":      "fetch.user_agent",
	"DOCMARK_FETCH_TIMEOUT":         "fetch.timeout",
	"DOCMARK_FETCH_ASSET_TIMEOUT":   "fetch.asset_timeout",
	"DOCMARK_FETCH_MAX_ASSET_BYTES": "fetch.max_asset_bytes",
	"DOCMARK_FETCH_CHUNK_SIZE":      "fetch.chunk_size",
	"DOCMARK_ARCHIVE_KEEP_ARCHIVE":  "archive.keep_archive",
	"DOCMARK_WEB_MAIN_ONLY":         "web.main_only",
	"DOCMARK_WEB_ABSOLUTE_LINKS":    "web.absolute_links",
	"DOCMARK_WEB_MAX_PAGES":         "web.max_pages",
}

// Load builds the configuration from defaults, the given .env files (missing
// files are ignored, unreadable or malformed ones are errors) and the process
// environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: "DOCMARK_",
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envMappings[key]
			if !ok {
				return "", nil
			}
			return path, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Fetch.ChunkSize <= 0 {
		return fmt.Errorf("fetch.chunk_size must be positive, got %d", c.Fetch.ChunkSize)
	}
	if c.Fetch.MaxAssetBytes <= 0 {
		return fmt.Errorf("fetch.max_asset_bytes must be positive, got %d", c.Fetch.MaxAssetBytes)
	}
	if c.Web.MaxPages <= 0 {
		return fmt.Errorf("web.max_pages must be positive, got %d", c.Web.MaxPages)
	}
	return nil
}

// Package config loads settings shared by the vrt CLI and the HTTP server.
// Defaults are overlaid by an optional TOML file named in VRT_CONFIG_FILE,
// which is in turn overlaid by environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port string `toml:"port"`

	// Auth
	APIKey string `toml:"api_key"`

	// Upload limits
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// Exhaustive list of structural tags; empty means infer per structure.
	ValidTags []string `toml:"valid_tags"`

	// Chunking defaults
	ChunkMin   int    `toml:"chunk_min"`
	ChunkMax   int    `toml:"chunk_max"`
	RandomSeed uint64 `toml:"random_seed"`

	// Input decoding
	InputEncoding string `toml:"input_encoding"`

	// PDF
	PDFFallbackPdftotext bool `toml:"pdf_fallback_pdftotext"`
}

const (
	defaultMaxUploadBytes = 52428800 // 50MB
	defaultChunkMin       = 2000
	defaultChunkMax       = 5000
)

func defaults() Config {
	return Config{
		Port:                 "8090",
		MaxUploadBytes:       defaultMaxUploadBytes,
		ChunkMin:             defaultChunkMin,
		ChunkMax:             defaultChunkMax,
		RandomSeed:           1,
		InputEncoding:        "utf-8",
		PDFFallbackPdftotext: true,
	}
}

func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("VRT_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("VRT_API_KEY", cfg.APIKey)
	cfg.MaxUploadBytes = envInt64("VRT_MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	if v := os.Getenv("VRT_VALID_TAGS"); v != "" {
		cfg.ValidTags = splitList(v)
	}
	cfg.ChunkMin = envInt("VRT_CHUNK_MIN", cfg.ChunkMin)
	cfg.ChunkMax = envInt("VRT_CHUNK_MAX", cfg.ChunkMax)
	cfg.RandomSeed = envUint64("VRT_RANDOM_SEED", cfg.RandomSeed)
	cfg.InputEncoding = envOr("VRT_INPUT_ENCODING", cfg.InputEncoding)
	cfg.PDFFallbackPdftotext = envBool("VRT_PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.InputEncoding == "" {
		cfg.InputEncoding = "utf-8"
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.ChunkMin < 0 || c.ChunkMax < c.ChunkMin {
		return fmt.Errorf("chunk range %d,%d is invalid: need 0 <= min <= max", c.ChunkMin, c.ChunkMax)
	}
	return nil
}

// ValidateServer also checks the settings only the HTTP server needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("VRT_API_KEY is required")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envUint64(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

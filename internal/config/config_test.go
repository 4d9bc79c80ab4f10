package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "VRT_API_KEY", "VRT_MAX_UPLOAD_BYTES", "VRT_VALID_TAGS",
	"VRT_CHUNK_MIN", "VRT_CHUNK_MAX", "VRT_RANDOM_SEED", "VRT_INPUT_ENCODING",
	"VRT_PDF_FALLBACK_PDFTOTEXT", "VRT_CONFIG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaults(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateServer(), "server needs an API key")
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("VRT_API_KEY", "secret")
	t.Setenv("VRT_VALID_TAGS", "doc, p ,,s")
	t.Setenv("VRT_CHUNK_MIN", "10")
	t.Setenv("VRT_CHUNK_MAX", "20")
	t.Setenv("VRT_RANDOM_SEED", "42")
	t.Setenv("VRT_MAX_UPLOAD_BYTES", "-5")
	t.Setenv("VRT_PDF_FALLBACK_PDFTOTEXT", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, []string{"doc", "p", "s"}, cfg.ValidTags)
	assert.Equal(t, 10, cfg.ChunkMin)
	assert.Equal(t, 20, cfg.ChunkMax)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.Equal(t, int64(defaultMaxUploadBytes), cfg.MaxUploadBytes, "non-positive limit falls back")
	assert.False(t, cfg.PDFFallbackPdftotext)
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "vrt.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "7000"
valid_tags = ["doc", "s"]
chunk_min = 5
chunk_max = 8
input_encoding = "latin1"
`), 0o600))
	t.Setenv("VRT_CONFIG_FILE", path)
	t.Setenv("VRT_CHUNK_MAX", "9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, []string{"doc", "s"}, cfg.ValidTags)
	assert.Equal(t, 5, cfg.ChunkMin)
	assert.Equal(t, 9, cfg.ChunkMax, "environment wins over the file")
	assert.Equal(t, "latin1", cfg.InputEncoding)
	assert.Equal(t, uint64(1), cfg.RandomSeed, "unset keys keep their defaults")
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = "), 0o600))
	t.Setenv("VRT_CONFIG_FILE", path)

	_, err := Load()
	assert.ErrorContains(t, err, "parse config file")

	t.Setenv("VRT_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	_, err = Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_ChunkRange(t *testing.T) {
	cfg := defaults()
	cfg.ChunkMin, cfg.ChunkMax = 5, 4
	assert.Error(t, cfg.Validate())

	cfg.ChunkMin = -1
	assert.Error(t, cfg.Validate())
}

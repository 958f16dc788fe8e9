package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 24*time.Hour, cfg.DraftTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DraftKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LATTICE_ADDR", ":9999")
	t.Setenv("LATTICE_DRAFT_TTL", "2h")
	t.Setenv("LATTICE_REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 2*time.Hour, cfg.DraftTTL)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("LATTICE_REDIS_DB", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DraftKey(t *testing.T) {
	t.Setenv("LATTICE_DRAFT_KEY", strings.Repeat("ab", 32))
	t.Setenv("LATTICE_DRAFT_MASK", "customerName,customerPhone")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Len(t, cfg.DraftKey, 32)
	assert.Equal(t, []string{"customerName", "customerPhone"}, cfg.DraftMask)
}

func TestLoad_DraftKeyWrongLength(t *testing.T) {
	t.Setenv("LATTICE_DRAFT_KEY", "abcdef")
	_, err := Load()
	assert.Error(t, err)
}

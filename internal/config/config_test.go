package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TILEMAP_FILE", "TILEMAP_WINDOW_WIDTH", "TILEMAP_WINDOW_HEIGHT",
		"TILEMAP_SCALE", "TILEMAP_SCROLL_SPEED", "TILEMAP_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Viewer{
		WindowWidth:  DefaultWindowWidth,
		WindowHeight: DefaultWindowHeight,
		Scale:        DefaultScale,
		ScrollSpeed:  DefaultScrollSpeed,
		LogLevel:     slog.LevelInfo,
	}, c)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TILEMAP_FILE", "maps/level1.tmj")
	t.Setenv("TILEMAP_WINDOW_WIDTH", "640")
	t.Setenv("TILEMAP_SCALE", " 3 ")
	t.Setenv("TILEMAP_LOG_LEVEL", "debug")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "maps/level1.tmj", c.MapFile)
	assert.Equal(t, 640, c.WindowWidth)
	assert.Equal(t, DefaultWindowHeight, c.WindowHeight)
	assert.Equal(t, 3.0, c.Scale)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string][2]string{
		"bad int":        {"TILEMAP_WINDOW_WIDTH", "wide"},
		"bad float":      {"TILEMAP_SCALE", "big"},
		"bad level":      {"TILEMAP_LOG_LEVEL", "loud"},
		"zero width":     {"TILEMAP_WINDOW_HEIGHT", "0"},
		"zero scale":     {"TILEMAP_SCALE", "0"},
		"negative speed": {"TILEMAP_SCROLL_SPEED", "-1"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "viewer.env")
	require.NoError(t, os.WriteFile(path, []byte("TILEMAP_FILE=world.aseprite\nTILEMAP_SCROLL_SPEED=8\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "world.aseprite", c.MapFile)
	assert.Equal(t, 8.0, c.ScrollSpeed)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultScale, c.Scale)
}

// Package config holds the settings of the tilemap viewer.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultWindowWidth  = 1024
	DefaultWindowHeight = 768
	DefaultScale        = 2.0
	DefaultScrollSpeed  = 4.0 // pixels per tick
)

// Viewer is the viewer configuration.
type Viewer struct {
	MapFile      string
	WindowWidth  int
	WindowHeight int
	Scale        float64
	ScrollSpeed  float64
	LogLevel     slog.Level
}

// Load reads the given .env files (".env" when none is given) into the
// process environment, then builds the configuration from TILEMAP_*
// variables. Missing .env files are not an error.
func Load(files ...string) (Viewer, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Viewer{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from the environment only.
func FromEnv() (Viewer, error) {
	var (
		c   Viewer
		err error
	)
	c.MapFile = getEnv("TILEMAP_FILE", "")
	if c.WindowWidth, err = getInt("TILEMAP_WINDOW_WIDTH", DefaultWindowWidth); err != nil {
		return Viewer{}, err
	}
	if c.WindowHeight, err = getInt("TILEMAP_WINDOW_HEIGHT", DefaultWindowHeight); err != nil {
		return Viewer{}, err
	}
	if c.Scale, err = getFloat("TILEMAP_SCALE", DefaultScale); err != nil {
		return Viewer{}, err
	}
	if c.ScrollSpeed, err = getFloat("TILEMAP_SCROLL_SPEED", DefaultScrollSpeed); err != nil {
		return Viewer{}, err
	}
	if err := c.LogLevel.UnmarshalText([]byte(getEnv("TILEMAP_LOG_LEVEL", "info"))); err != nil {
		return Viewer{}, fmt.Errorf("TILEMAP_LOG_LEVEL: %w", err)
	}
	return c, c.Validate()
}

// Validate checks value ranges.
func (c Viewer) Validate() error {
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.WindowWidth, c.WindowHeight)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale %v must be positive", c.Scale)
	}
	if c.ScrollSpeed < 0 {
		return fmt.Errorf("scroll speed %v must not be negative", c.ScrollSpeed)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val := getEnv(key, "")
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	val := getEnv(key, "")
	if val == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

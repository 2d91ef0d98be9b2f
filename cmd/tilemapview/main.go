package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/retroblast-engine/tilemap"
	"github.com/retroblast-engine/tilemap/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&cfg.MapFile, "map", cfg.MapFile, "map file (.json Tiled map, .aseprite or .ase)")
	flag.Float64Var(&cfg.Scale, "scale", cfg.Scale, "initial zoom")
	flag.Parse()
	if flag.NArg() > 0 {
		cfg.MapFile = flag.Arg(0)
	}
	if cfg.MapFile == "" {
		fmt.Fprintln(os.Stderr, "usage: tilemapview [-scale N] <map file>")
		os.Exit(2)
	}

	tilemap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	m, err := loadMap(cfg.MapFile)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("Tilemap Viewer - " + filepath.Base(cfg.MapFile))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(NewViewer(m, cfg)); err != nil {
		log.Fatal(err)
	}
}

func loadMap(path string) (*tilemap.Map, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".tmj":
		return tilemap.LoadTiled(path)
	case ".aseprite", ".ase":
		return tilemap.LoadAseprite(path)
	default:
		return nil, fmt.Errorf("unsupported map file type: %s", path)
	}
}

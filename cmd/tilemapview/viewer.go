package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/retroblast-engine/tilemap"
	"github.com/retroblast-engine/tilemap/internal/config"
)

// Viewer implements ebiten.Game. It pans and zooms over one map and shows
// what is stored under the cursor.
type Viewer struct {
	m           *tilemap.Map
	scale       float64
	scrollSpeed float64
	offsetX     float64 // camera position in world units
	offsetY     float64
	showInfo    bool
	width       int
	height      int
}

// NewViewer creates a viewer for m.
func NewViewer(m *tilemap.Map, cfg config.Viewer) *Viewer {
	return &Viewer{
		m:           m,
		scale:       cfg.Scale,
		scrollSpeed: cfg.ScrollSpeed,
		showInfo:    true,
		width:       cfg.WindowWidth,
		height:      cfg.WindowHeight,
	}
}

// Update handles panning and zooming.
func (v *Viewer) Update() error {
	step := v.scrollSpeed / v.scale
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.offsetX -= step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.offsetX += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.offsetY -= step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.offsetY += step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		v.scale *= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		v.scale = math.Max(v.scale/2, 0.125)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		v.showInfo = !v.showInfo
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := v.m.Rebuild(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) geoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-v.offsetX, -v.offsetY)
	g.Scale(v.scale, v.scale)
	return g
}

// Draw renders the map and the info overlay.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 30, 255})
	v.m.Draw(screen, v.geoM())

	if !v.showInfo {
		return
	}
	stats := v.m.Mesh().Stats
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Map: %dx%d cells, %d layers", v.m.Width(), v.m.Height(), v.m.LayerCount()), 10, 10)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Quads: %d  Culled: %d  FPS: %.1f", stats.Quads, stats.CulledQuads, ebiten.ActualFPS()), 10, 26)
	ebitenutil.DebugPrintAt(screen, v.cursorInfo(), 10, 42)
	ebitenutil.DebugPrintAt(screen, "Arrows: pan | +/-: zoom | R: rebuild | F1: toggle info", 10, v.height-20)
}

// cursorInfo describes the topmost tile under the mouse.
func (v *Viewer) cursorInfo() string {
	g := v.geoM()
	g.Invert()
	mx, my := ebiten.CursorPosition()
	wx, wy := g.Apply(float64(mx), float64(my))
	tw, th := v.m.TileSize()
	x, y := int(math.Floor(wx/float64(tw))), int(math.Floor(wy/float64(th)))

	for layer := v.m.LayerCount() - 1; layer >= 0; layer-- {
		id, ok := v.m.TileAt(layer, x, y)
		if !ok || id.IsEmpty() {
			continue
		}
		return fmt.Sprintf("Cell (%d,%d) layer %d: tile %d H:%t V:%t D:%t",
			x, y, layer, id.Bare(), id.FlipH(), id.FlipV(), id.FlipD())
	}
	return fmt.Sprintf("Cell (%d,%d): empty", x, y)
}

// Layout implements ebiten.Game's Layout.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.width, v.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

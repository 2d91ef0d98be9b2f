package tilemap

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// Drawable is anything that renders itself onto a target with a transform.
type Drawable interface {
	Draw(dst *ebiten.Image, geom ebiten.GeoM)
}

var _ Drawable = (*Map)(nil)

// Map is a stack of equally sized layers sharing one tileset, together with
// the batched mesh derived from them. Layer 0 is the bottom of the stack.
//
// Every mutating method rebuilds the mesh before returning. Mutation and
// rebuild run under one exclusive lock, as does Draw; queries take a shared
// lock.
type Map struct {
	mu sync.RWMutex

	width   int
	height  int
	tileW   float32
	tileH   float32
	tileset *Tileset
	layers  []*Layer
	mesh    *Mesh

	// scratch buffer reused by Draw
	drawVerts []ebiten.Vertex
}

type mapOptions struct {
	tileW, tileH float32
}

// MapOption configures map construction.
type MapOption func(*mapOptions)

// WithTileSize sets the world-space size of one cell. It defaults to the
// tileset's pixel tile size.
func WithTileSize(w, h float32) MapOption {
	return func(o *mapOptions) {
		o.tileW, o.tileH = w, h
	}
}

// NewMap creates a width x height map from layers and builds its mesh. The
// map stores copies of the layers; later changes to them do not reach it.
func NewMap(ts *Tileset, width, height int, layers []*Layer, opts ...MapOption) (*Map, error) {
	if ts == nil {
		return nil, fmt.Errorf("nil tileset: %w", ErrMalformedInput)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("map size %dx%d: %w", width, height, ErrMalformedInput)
	}
	tw, th := ts.TileSize()
	o := mapOptions{tileW: float32(tw), tileH: float32(th)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tileW <= 0 || o.tileH <= 0 {
		return nil, fmt.Errorf("cell size %vx%v: %w", o.tileW, o.tileH, ErrMalformedInput)
	}

	m := &Map{
		width:   width,
		height:  height,
		tileW:   o.tileW,
		tileH:   o.tileH,
		tileset: ts,
	}
	if err := m.checkLayers(layers); err != nil {
		return nil, err
	}
	m.layers = cloneLayers(layers)
	if err := m.rebuild(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMapFromRaw creates a map from raw external identifiers, one slice per
// layer from bottom to top. Each identifier is translated through
// ts.TranslateExternalID.
func NewMapFromRaw(ts *Tileset, width, height int, raw [][]uint32, opts ...MapOption) (*Map, error) {
	if ts == nil {
		return nil, fmt.Errorf("nil tileset: %w", ErrMalformedInput)
	}
	layers := make([]*Layer, 0, len(raw))
	for i, data := range raw {
		l, err := newTranslatedLayer(ts, fmt.Sprintf("layer %d", i), width, height, data)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return NewMap(ts, width, height, layers, opts...)
}

func newTranslatedLayer(ts *Tileset, name string, width, height int, data []uint32) (*Layer, error) {
	if len(data) != width*height {
		return nil, fmt.Errorf("layer %q has %d tiles, want %d: %w", name, len(data), width*height, ErrMalformedInput)
	}
	ids := make([]TileID, len(data))
	for i, raw := range data {
		ids[i] = ts.TranslateExternalID(raw)
	}
	return NewLayer(name, width, height, ids)
}

func (m *Map) checkLayers(layers []*Layer) error {
	if len(layers) == 0 {
		return ErrEmptyLayerStack
	}
	for i, l := range layers {
		if l == nil {
			return fmt.Errorf("layer %d is nil: %w", i, ErrMalformedInput)
		}
		if l.Width() != m.width || l.Height() != m.height {
			return fmt.Errorf("layer %d (%q) is %dx%d, map is %dx%d: %w",
				i, l.Name, l.Width(), l.Height(), m.width, m.height, ErrMalformedInput)
		}
	}
	return nil
}

// cloneLayers copies every layer, so a map never shares cells with the caller
// or with another map, and a layer listed twice becomes two layers.
func cloneLayers(layers []*Layer) []*Layer {
	out := make([]*Layer, len(layers))
	for i, l := range layers {
		out[i] = l.clone()
	}
	return out
}

// rebuild replaces the mesh with one derived from the current layers and
// tileset. The caller holds the write lock.
func (m *Map) rebuild() error {
	mesh, err := BuildMesh(m.layers, m.tileset, m.tileW, m.tileH)
	if err != nil {
		return err
	}
	m.mesh = mesh
	Logger().Debug("tilemap: mesh rebuilt",
		"width", m.width,
		"height", m.height,
		"layers", len(m.layers),
		"quads", mesh.Stats.Quads,
		"culled", mesh.Stats.CulledQuads)
	return nil
}

// Rebuild recomputes the mesh from the current state.
func (m *Map) Rebuild() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rebuild()
}

// SetTile stores id at (x, y) of the given layer and rebuilds the mesh. When
// the rebuild fails the cell keeps its previous value.
func (m *Map) SetTile(layer, x, y int, id TileID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if layer < 0 || layer >= len(m.layers) {
		return fmt.Errorf("layer index %d out of range [0,%d): %w", layer, len(m.layers), ErrMalformedInput)
	}
	l := m.layers[layer]
	if !l.inBounds(x, y) {
		return fmt.Errorf("cell (%d,%d) outside %dx%d map: %w", x, y, m.width, m.height, ErrMalformedInput)
	}
	prev := l.cells[y*l.width+x]
	l.set(x, y, id)
	if err := m.rebuild(); err != nil {
		l.set(x, y, prev)
		return err
	}
	return nil
}

// SetLayers replaces the whole layer stack with copies of layers and
// rebuilds the mesh.
func (m *Map) SetLayers(layers []*Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLayers(layers); err != nil {
		return err
	}
	prev := m.layers
	m.layers = cloneLayers(layers)
	if err := m.rebuild(); err != nil {
		m.layers = prev
		return err
	}
	return nil
}

// AppendLayer pushes a copy of l on top of the stack and rebuilds the mesh.
func (m *Map) AppendLayer(l *Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layers := append(m.layers[:len(m.layers):len(m.layers)], l)
	if err := m.checkLayers(layers); err != nil {
		return err
	}
	layers[len(layers)-1] = l.clone()
	prev := m.layers
	m.layers = layers
	if err := m.rebuild(); err != nil {
		m.layers = prev
		return err
	}
	return nil
}

// SetTileset swaps the tileset and rebuilds the mesh.
func (m *Map) SetTileset(ts *Tileset) error {
	if ts == nil {
		return fmt.Errorf("nil tileset: %w", ErrMalformedInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.tileset
	m.tileset = ts
	if err := m.rebuild(); err != nil {
		m.tileset = prev
		return err
	}
	return nil
}

// Width returns the map width in cells.
func (m *Map) Width() int { return m.width }

// Height returns the map height in cells.
func (m *Map) Height() int { return m.height }

// TileSize returns the world-space size of one cell.
func (m *Map) TileSize() (w, h float32) { return m.tileW, m.tileH }

// LayerCount returns the number of layers.
func (m *Map) LayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.layers)
}

// Layer returns a copy of layer i, or nil when i is out of range.
func (m *Map) Layer(i int) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.layers) {
		return nil
	}
	return m.layers[i].clone()
}

// TileAt returns the identifier at (x, y) of the given layer. It reports
// false for an empty cell or out of range coordinates.
func (m *Map) TileAt(layer, x, y int) (TileID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if layer < 0 || layer >= len(m.layers) {
		return 0, false
	}
	return m.layers[layer].At(x, y)
}

// TilesetLookup resolves a bare reference against the map's tileset.
func (m *Map) TilesetLookup(ref uint32) (Tile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tileset.Lookup(ref)
}

// Tileset returns the map's tileset.
func (m *Map) Tileset() *Tileset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tileset
}

// Mesh returns the current mesh. It must be treated as read-only; it is
// replaced, never modified, by later rebuilds.
func (m *Map) Mesh() *Mesh {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mesh
}

// Draw renders the mesh onto dst textured with the tileset atlas. Vertex
// positions are transformed by geom. The whole map is submitted in a single
// DrawTriangles32 call.
func (m *Map) Draw(dst *ebiten.Image, geom ebiten.GeoM) {
	// Draw reuses m.drawVerts, so it needs exclusive access.
	m.mu.Lock()
	defer m.mu.Unlock()

	atlas := m.tileset.Atlas()
	if atlas == nil {
		Logger().Warn("tilemap: draw skipped, tileset has no atlas")
		return
	}
	if len(m.mesh.Indices) == 0 {
		return
	}

	m.drawVerts = toEbitenVertices(m.drawVerts[:0], m.mesh.Vertices, m.tileset.AtlasSize().X, m.tileset.AtlasSize().Y, geom)
	dst.DrawTriangles32(m.drawVerts, m.mesh.Indices, atlas, &ebiten.DrawTrianglesOptions{})
}

// toEbitenVertices converts mesh vertices to ebiten vertices, scaling
// normalized UVs to atlas pixels and applying geom to positions.
func toEbitenVertices(dst []ebiten.Vertex, src []Vertex, atlasW, atlasH int, geom ebiten.GeoM) []ebiten.Vertex {
	aw, ah := float32(atlasW), float32(atlasH)
	for _, v := range src {
		x, y := geom.Apply(float64(v.X), float64(v.Y))
		dst = append(dst, ebiten.Vertex{
			DstX:   float32(x),
			DstY:   float32(y),
			SrcX:   v.U * aw,
			SrcY:   v.V * ah,
			ColorR: v.R,
			ColorG: v.G,
			ColorB: v.B,
			ColorA: v.A,
		})
	}
	return dst
}

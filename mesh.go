package tilemap

import "fmt"

// Quad corner order used for vertices and UVs.
const (
	cornerTL = iota
	cornerTR
	cornerBR
	cornerBL
)

// quadIndices triangulates one quad relative to its first vertex.
var quadIndices = [6]uint32{0, 1, 2, 2, 3, 0}

// MeshStats summarizes one mesh build.
type MeshStats struct {
	Cells       int // cells visited
	Quads       int // quads emitted
	CulledQuads int // non-empty tiles skipped because a higher opaque tile hides them
}

// Mesh is the batched geometry of a whole map: four vertices and six indices
// per visible tile, drawable with a single call against the tileset atlas.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Stats    MeshStats
}

// FlipCorners applies the orientation flags to quad UV corners given in
// top-left, top-right, bottom-right, bottom-left order. The diagonal flip is
// applied first, then the horizontal flip, then the vertical flip.
func FlipCorners(uv [4]UV, flipH, flipV, flipD bool) [4]UV {
	if flipD {
		uv[cornerTR], uv[cornerBL] = uv[cornerBL], uv[cornerTR]
	}
	if flipH {
		uv[cornerTL], uv[cornerTR] = uv[cornerTR], uv[cornerTL]
		uv[cornerBL], uv[cornerBR] = uv[cornerBR], uv[cornerBL]
	}
	if flipV {
		uv[cornerTL], uv[cornerBL] = uv[cornerBL], uv[cornerTL]
		uv[cornerTR], uv[cornerBR] = uv[cornerBR], uv[cornerTR]
	}
	return uv
}

// BuildMesh batches every visible tile of layers into one mesh. Cells are
// walked in row-major order; for each cell the layers from ResolveStart up to
// the top are emitted in ascending order so that higher layers come later in
// submission order. tileW and tileH are the world-space cell size.
//
// Any unresolvable reference aborts the build; no partial mesh is returned.
// Identifiers below an opaque tile are counted in CulledQuads without being
// looked up, so a bad reference there only fails once the cell is uncovered.
func BuildMesh(layers []*Layer, ts *Tileset, tileW, tileH float32) (*Mesh, error) {
	if len(layers) == 0 {
		return nil, ErrEmptyLayerStack
	}
	width, height := layers[0].Width(), layers[0].Height()
	for i, l := range layers[1:] {
		if l.Width() != width || l.Height() != height {
			return nil, fmt.Errorf("layer %d (%q) is %dx%d, want %dx%d: %w",
				i+1, l.Name, l.Width(), l.Height(), width, height, ErrMalformedInput)
		}
	}

	m := &Mesh{}
	var base uint32
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Stats.Cells++
			start, err := ResolveStart(layers, ts, x, y)
			if err != nil {
				return nil, err
			}
			for i := 0; i < start; i++ {
				if id, ok := layers[i].At(x, y); ok && !id.IsEmpty() {
					m.Stats.CulledQuads++
				}
			}
			for i := start; i < len(layers); i++ {
				id, ok := layers[i].At(x, y)
				if !ok || id.IsEmpty() {
					continue
				}
				ref, flipH, flipV, flipD := id.Decode()
				tile, ok := ts.Lookup(ref)
				if !ok {
					return nil, unknownRef(layers[i], i, x, y, id)
				}
				m.appendQuad(base, float32(x)*tileW, float32(y)*tileH, tileW, tileH,
					FlipCorners(tile.Corners(), flipH, flipV, flipD))
				base += 4
			}
		}
	}
	m.Stats.Quads = len(m.Vertices) / 4
	return m, nil
}

func (m *Mesh) appendQuad(base uint32, x, y, w, h float32, uv [4]UV) {
	pos := [4][2]float32{
		cornerTL: {x, y},
		cornerTR: {x + w, y},
		cornerBR: {x + w, y + h},
		cornerBL: {x, y + h},
	}
	for c := range pos {
		m.Vertices = append(m.Vertices, Vertex{
			X: pos[c][0], Y: pos[c][1],
			U: uv[c].U, V: uv[c].V,
			R: 1, G: 1, B: 1, A: 1,
		})
	}
	for _, idx := range quadIndices {
		m.Indices = append(m.Indices, base+idx)
	}
}

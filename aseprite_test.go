package tilemap

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type aseChunk struct {
	typ  WORD
	data []byte
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeLE(t *testing.T, buf *bytes.Buffer, vs ...any) {
	t.Helper()
	for _, v := range vs {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, v))
	}
}

func writeString(t *testing.T, buf *bytes.Buffer, s string) {
	t.Helper()
	writeLE(t, buf, WORD(len(s)))
	buf.WriteString(s)
}

// buildAseprite assembles a single-frame file.
func buildAseprite(t *testing.T, header Header, chunks ...aseChunk) []byte {
	t.Helper()
	var body bytes.Buffer
	for _, c := range chunks {
		writeLE(t, &body, DWORD(len(c.data)+6), c.typ)
		body.Write(c.data)
	}
	header.MagicNumberHeader = MagicNumber
	header.FrameCount = 1
	header.FileSize = DWORD(128 + 16 + body.Len())
	fh := FrameHeader{
		BytesInFrame:  DWORD(16 + body.Len()),
		MagicNumber:   MagicNumberFrame,
		OldChunkCount: WORD(len(chunks)),
		NewChunkCount: DWORD(len(chunks)),
	}
	var out bytes.Buffer
	writeLE(t, &out, header, fh)
	out.Write(body.Bytes())
	return out.Bytes()
}

func layerChunk(t *testing.T, name string, typ WORD) aseChunk {
	var buf bytes.Buffer
	writeLE(t, &buf, WORD(1), typ, WORD(0), WORD(0), WORD(0), WORD(0), BYTE(255), [3]BYTE{})
	writeString(t, &buf, name)
	if typ == layerTypeTilemap {
		writeLE(t, &buf, DWORD(0))
	}
	return aseChunk{chunkLayer, buf.Bytes()}
}

func tilesetChunkOf(t *testing.T, flags DWORD, numTiles, tw, th int, pixels []byte) aseChunk {
	var buf bytes.Buffer
	writeLE(t, &buf, DWORD(0), flags, DWORD(numTiles), WORD(tw), WORD(th), SHORT(1), [14]BYTE{})
	writeString(t, &buf, "tiles")
	if flags&FlagIncludeLinkToExternalFile != 0 {
		writeLE(t, &buf, [2]DWORD{1, 0})
	}
	if flags&FlagIncludeTilesInsideFile != 0 {
		z := compress(t, pixels)
		writeLE(t, &buf, DWORD(len(z)))
		buf.Write(z)
	}
	return aseChunk{chunkTileset, buf.Bytes()}
}

func tilemapCelChunk(t *testing.T, layer int, x, y SHORT, w, h int, tiles []uint32) aseChunk {
	var buf bytes.Buffer
	writeLE(t, &buf, celHeader{LayerIndex: WORD(layer), XPosition: x, YPosition: y, OpacityLevel: 255, CelType: CompressedTilemapData})
	writeLE(t, &buf, tilemapCelHeader{
		Width: WORD(w), Height: WORD(h), BitsPerTile: 32,
		TileIDBitmask: 0x1fffffff, XFlipBitmask: 0x80000000, YFlipBitmask: 0x40000000, DiagonalFlipBitmask: 0x20000000,
	})
	raw := make([]byte, 4*len(tiles))
	for i, v := range tiles {
		binary.LittleEndian.PutUint32(raw[i*4:], v)
	}
	buf.Write(compress(t, raw))
	return aseChunk{chunkCel, buf.Bytes()}
}

// rawPaletteChunk writes a 0x2019 chunk with the given header fields
// followed by one unnamed entry per color.
func rawPaletteChunk(t *testing.T, size, first, last DWORD, colors ...color.NRGBA) aseChunk {
	var buf bytes.Buffer
	writeLE(t, &buf, size, first, last, [8]BYTE{})
	for _, c := range colors {
		writeLE(t, &buf, WORD(0), c.R, c.G, c.B, c.A)
	}
	return aseChunk{chunkPalette, buf.Bytes()}
}

func paletteChunkOf(t *testing.T, colors ...color.NRGBA) aseChunk {
	return rawPaletteChunk(t, DWORD(len(colors)), 0, DWORD(len(colors)-1), colors...)
}

// rgbaTiles returns a 2x2-pixel tileset strip with one solid color per tile.
func rgbaTiles(colors ...color.NRGBA) []byte {
	var pix []byte
	for _, c := range colors {
		for i := 0; i < 4; i++ {
			pix = append(pix, c.R, c.G, c.B, c.A)
		}
	}
	return pix
}

var (
	red  = color.NRGBA{255, 0, 0, 255}
	blue = color.NRGBA{0, 0, 255, 255}
)

func testAsepriteFile(t *testing.T) []byte {
	return buildAseprite(t, Header{Width: 6, Height: 4, ColorDepth: ColorDepthRGBA},
		layerChunk(t, "background", layerTypeNormal),
		layerChunk(t, "ground", layerTypeTilemap),
		layerChunk(t, "top", layerTypeTilemap),
		tilesetChunkOf(t, FlagIncludeTilesInsideFile|FlagTileIDZeroAsEmptyTile, 3, 2, 2,
			rgbaTiles(color.NRGBA{}, red, blue)),
		tilemapCelChunk(t, 1, 0, 0, 3, 2, []uint32{1, 1, 2, 2, 1, 1}),
		tilemapCelChunk(t, 2, 2, 2, 2, 1, []uint32{2 | 0x80000000, 1 | 0x20000000}),
	)
}

func TestDecodeAseprite(t *testing.T) {
	doc, err := DecodeAseprite(bytes.NewReader(testAsepriteFile(t)))
	require.NoError(t, err)

	assert.Equal(t, 3, doc.Width)
	assert.Equal(t, 2, doc.Height)
	assert.Equal(t, 2, doc.TileWidth)
	assert.Equal(t, 2, doc.TileHeight)

	// the empty tile is dropped: tiles 1 and 2 stacked vertically
	assert.Equal(t, image.Rect(0, 0, 2, 4), doc.Atlas.Bounds())
	assert.Equal(t, red, doc.Atlas.NRGBAAt(1, 1))
	assert.Equal(t, blue, doc.Atlas.NRGBAAt(0, 2))

	require.Len(t, doc.Layers, 2)
	assert.Equal(t, "ground", doc.Layers[0].Name)
	assert.Equal(t, "top", doc.Layers[1].Name)
	assert.Equal(t, []TileID{1, 1, 2, 2, 1, 1}, doc.Layers[0].IDs)
	assert.Equal(t, []TileID{0, 0, 0, 0, Encode(2, true, false, false), Encode(1, false, false, true)}, doc.Layers[1].IDs)
}

func TestAsepriteNewMap(t *testing.T) {
	doc, err := DecodeAseprite(bytes.NewReader(testAsepriteFile(t)))
	require.NoError(t, err)

	m, err := doc.NewMap(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Tileset().Len())
	assert.Equal(t, 2, m.LayerCount())
	assert.Equal(t, MeshStats{Cells: 6, Quads: 6, CulledQuads: 2}, m.Mesh().Stats)

	tile, ok := m.TilesetLookup(2)
	require.True(t, ok)
	assert.Equal(t, float32(0.5), tile.V)
}

func TestDecodeAsepriteIndexed(t *testing.T) {
	green := color.NRGBA{0, 200, 0, 255}
	data := buildAseprite(t, Header{Width: 2, Height: 2, ColorDepth: ColorDepthIndexed, TransparentIdx: 0},
		paletteChunkOf(t, color.NRGBA{0, 0, 0, 255}, green),
		layerChunk(t, "only", layerTypeTilemap),
		tilesetChunkOf(t, FlagIncludeTilesInsideFile|FlagTileIDZeroAsEmptyTile, 2, 2, 2,
			[]byte{0, 0, 0, 0, 1, 0, 1, 1}),
		tilemapCelChunk(t, 0, 0, 0, 1, 1, []uint32{1}),
	)

	doc, err := DecodeAseprite(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), doc.Atlas.Bounds())
	assert.Equal(t, green, doc.Atlas.NRGBAAt(0, 0))
	assert.Equal(t, uint8(0), doc.Atlas.NRGBAAt(1, 0).A, "transparent index")
	assert.Equal(t, []TileID{1}, doc.Layers[0].IDs)
}

func TestDecodeAsepriteNonZeroEmpty(t *testing.T) {
	data := buildAseprite(t, Header{Width: 4, Height: 2, ColorDepth: ColorDepthRGBA},
		layerChunk(t, "only", layerTypeTilemap),
		tilesetChunkOf(t, FlagIncludeTilesInsideFile, 2, 2, 2, rgbaTiles(red, blue)),
		tilemapCelChunk(t, 0, 0, 0, 2, 1, []uint32{0xFFFFFFFF, 1}),
	)

	doc, err := DecodeAseprite(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 4), doc.Atlas.Bounds())
	assert.Equal(t, []TileID{0, 2}, doc.Layers[0].IDs)
}

func TestDecodeAsepriteMalformed(t *testing.T) {
	tileset := func() aseChunk {
		return tilesetChunkOf(t, FlagIncludeTilesInsideFile|FlagTileIDZeroAsEmptyTile, 2, 2, 2, rgbaTiles(red, blue))
	}
	header := Header{Width: 4, Height: 4, ColorDepth: ColorDepthRGBA}

	tests := map[string][]byte{
		"two tilesets": buildAseprite(t, header, layerChunk(t, "a", layerTypeTilemap), tileset(), tileset()),
		"no tileset":   buildAseprite(t, header, layerChunk(t, "a", layerTypeTilemap)),
		"external tileset": buildAseprite(t, header, layerChunk(t, "a", layerTypeTilemap),
			tilesetChunkOf(t, FlagIncludeLinkToExternalFile, 2, 2, 2, nil)),
		"cel on image layer": buildAseprite(t, header, layerChunk(t, "a", layerTypeNormal), tileset(),
			tilemapCelChunk(t, 0, 0, 0, 1, 1, []uint32{1})),
		"short pixels": buildAseprite(t, header, layerChunk(t, "a", layerTypeTilemap),
			tilesetChunkOf(t, FlagIncludeTilesInsideFile|FlagTileIDZeroAsEmptyTile, 2, 2, 2, []byte{1, 2, 3})),
		"palette range past chunk end": buildAseprite(t, header,
			rawPaletteChunk(t, 0, 0, 0xFFFFFFFF, red),
			layerChunk(t, "a", layerTypeTilemap), tileset()),
		"palette range reversed": buildAseprite(t, header,
			rawPaletteChunk(t, 2, 1, 0, red),
			layerChunk(t, "a", layerTypeTilemap), tileset()),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeAseprite(bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestParsePaletteBounds(t *testing.T) {
	// an entry far past the byte range is read but not kept
	pal, err := parsePalette(rawPaletteChunk(t, 0, 1_000_000_000, 1_000_000_000, red).data, nil)
	require.NoError(t, err)
	assert.Len(t, pal, maxPaletteEntries)

	pal, err = parsePalette(rawPaletteChunk(t, 2, 1, 1, red).data, nil)
	require.NoError(t, err)
	require.Len(t, pal, 2)
	assert.Equal(t, red, pal[1])

	_, err = parsePalette(rawPaletteChunk(t, 0, 0, 0xFFFFFFFF, red).data, nil)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestParseOldPaletteSkipsHighIndices(t *testing.T) {
	var buf bytes.Buffer
	// two packets: skip 255 then one color at index 255, skip 200 then one more
	writeLE(t, &buf, WORD(2),
		BYTE(255), BYTE(1), [3]BYTE{1, 2, 3},
		BYTE(200), BYTE(1), [3]BYTE{4, 5, 6})

	pal, err := parseOldPalette(buf.Bytes(), nil)
	require.NoError(t, err)
	require.Len(t, pal, maxPaletteEntries)
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, pal[255])
}

func TestDecodeAsepriteBadMagic(t *testing.T) {
	data := testAsepriteFile(t)
	data[4], data[5] = 0, 0
	_, err := DecodeAseprite(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = DecodeAseprite(bytes.NewReader(data[:10]))
	assert.Error(t, err)
}

func TestAsepriteWithoutTilemapLayers(t *testing.T) {
	data := buildAseprite(t, Header{Width: 4, Height: 4, ColorDepth: ColorDepthRGBA},
		layerChunk(t, "a", layerTypeNormal),
		tilesetChunkOf(t, FlagIncludeTilesInsideFile|FlagTileIDZeroAsEmptyTile, 2, 2, 2, rgbaTiles(red, blue)),
	)
	doc, err := DecodeAseprite(bytes.NewReader(data))
	require.NoError(t, err)
	_, err = doc.NewMap(nil)
	assert.ErrorIs(t, err, ErrEmptyLayerStack)
}

func TestLoadAsepriteRejectsExtension(t *testing.T) {
	_, err := LoadAseprite("map.png")
	assert.Error(t, err)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 1, floorDiv(3, 2))
	assert.Equal(t, -2, floorDiv(-3, 2))
	assert.Equal(t, -1, floorDiv(-2, 2))
	assert.Equal(t, 0, floorDiv(0, 2))
}

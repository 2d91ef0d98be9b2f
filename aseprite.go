package tilemap

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

// Aseprite file primitives.
// From https://github.com/aseprite/aseprite/blob/main/docs/ase-file-specs.md
type (
	BYTE  = uint8  // An 8-bit unsigned integer value
	WORD  = uint16 // A 16-bit unsigned integer value
	SHORT = int16  // A 16-bit signed integer value
	DWORD = uint32 // A 32-bit unsigned integer value
)

const (
	// Magic number of the file header (0xA5E0)
	MagicNumber = 0xA5E0
	// Magic number of every frame header (0xF1FA)
	MagicNumberFrame = 0xF1FA

	// Color depth (bits per pixel)
	ColorDepthRGBA      WORD = 32
	ColorDepthGrayscale WORD = 16
	ColorDepthIndexed   WORD = 8
)

// Chunk types read by the importer.
const (
	chunkOldPalette WORD = 0x0004
	chunkLayer      WORD = 0x2004
	chunkCel        WORD = 0x2005
	chunkPalette    WORD = 0x2019
	chunkTileset    WORD = 0x2023
)

// Layer types of the layer chunk.
const (
	layerTypeNormal  WORD = 0
	layerTypeGroup   WORD = 1
	layerTypeTilemap WORD = 2
)

// CelDataType represents the type of data in the cel.
type CelDataType WORD

const (
	RawImageData CelDataType = iota
	LinkedCelData
	CompressedImageData
	CompressedTilemapData
)

// Tileset flags (1: Enabled, 0: Disabled)
//
//	Bit 2 (4) - Tilemaps using this tileset use tile ID=0 as empty tile. In rare cases this bit is off, and the empty tile will be equal to 0xffffffff
//	Bit 1 (2) - Include tiles inside this file
//	Bit 0 (1) - Include link to external file
const (
	FlagIncludeLinkToExternalFile = 1 << iota // 1
	FlagIncludeTilesInsideFile                // 2
	FlagTileIDZeroAsEmptyTile                 // 4
)

// Header is the 128-byte file header.
type Header struct {
	FileSize          DWORD    // File size
	MagicNumberHeader WORD     // Magic number (0xA5E0)
	FrameCount        WORD     // Number of frames
	Width             WORD     // Width in pixels
	Height            WORD     // Height in pixels
	ColorDepth        WORD     // Color depth (32 bpp = RGBA, 16 bpp = Grayscale, 8 bpp = Indexed)
	Flags             DWORD    // Flags: 1 = Layer opacity has valid value
	Speed             WORD     // DEPRECATED: use the frame duration field from each frame header
	Reserved1         DWORD    // Set to 0
	Reserved2         DWORD    // Set to 0
	TransparentIdx    BYTE     // Palette entry which represents transparent color (only for Indexed sprites)
	IgnoreBytes       [3]BYTE  // Ignore these bytes
	NumColors         WORD     // Number of colors (0 means 256 for old sprites)
	PixelWidth        BYTE     // Pixel width (pixel ratio is "pixel width/pixel height")
	PixelHeight       BYTE     // Pixel height
	GridX             SHORT    // X position of the grid
	GridY             SHORT    // Y position of the grid
	GridWidth         WORD     // Grid width (zero if there is no grid)
	GridHeight        WORD     // Grid height (zero if there is no grid)
	FutureUse         [84]BYTE // Set to zero
}

// bytesPerPixel returns the pixel size for the header's color depth, or 0
// for an unknown depth.
func (h *Header) bytesPerPixel() int {
	switch h.ColorDepth {
	case ColorDepthRGBA:
		return 4
	case ColorDepthGrayscale:
		return 2
	case ColorDepthIndexed:
		return 1
	default:
		return 0
	}
}

// FrameHeader is the 16-byte header preceding the chunks of every frame.
type FrameHeader struct {
	BytesInFrame  DWORD   // Bytes in frame, header included
	MagicNumber   WORD    // Magic number (0xF1FA)
	OldChunkCount WORD    // If this value is 0xFFFF, there may be more chunks; use NewChunkCount
	FrameDuration WORD    // Frame duration in milliseconds
	Reserved      [2]BYTE // Set to 0
	NewChunkCount DWORD   // If this is 0, use OldChunkCount
}

// NumberOfChunks returns the number of chunks in the frame.
func (fh *FrameHeader) NumberOfChunks() uint32 {
	if fh.OldChunkCount == 0xFFFF {
		return fh.NewChunkCount
	}
	if fh.NewChunkCount == 0 {
		return uint32(fh.OldChunkCount)
	}
	return fh.NewChunkCount
}

// Chunk is one typed block of frame data.
type Chunk struct {
	ChunkSize DWORD  // Size of the chunk, including the 6 header bytes
	ChunkType WORD   // Type of the chunk
	ChunkData []BYTE // Data of the chunk
}

// Frame is a frame header and its chunks.
type Frame struct {
	Header FrameHeader
	Chunks []Chunk
}

// readAsepriteFrames reads the header and every frame of an .aseprite stream.
func readAsepriteFrames(r io.Reader) (*Header, []Frame, error) {
	header := &Header{}
	if err := binary.Read(r, binary.LittleEndian, header); err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if header.MagicNumberHeader != MagicNumber {
		return nil, nil, fmt.Errorf("bad magic number 0x%X: %w", header.MagicNumberHeader, ErrMalformedInput)
	}

	frames := make([]Frame, 0, header.FrameCount)
	for i := 0; i < int(header.FrameCount); i++ {
		var frame Frame
		if err := binary.Read(r, binary.LittleEndian, &frame.Header); err != nil {
			return nil, nil, fmt.Errorf("read frame %d header: %w", i, err)
		}
		if frame.Header.MagicNumber != MagicNumberFrame {
			return nil, nil, fmt.Errorf("frame %d bad magic number 0x%X: %w", i, frame.Header.MagicNumber, ErrMalformedInput)
		}

		var totalChunkSize uint32
		for j := 0; j < int(frame.Header.NumberOfChunks()); j++ {
			chunk := Chunk{}
			if err := binary.Read(r, binary.LittleEndian, &chunk.ChunkSize); err != nil {
				return nil, nil, fmt.Errorf("frame %d chunk %d: %w", i, j, err)
			}
			if err := binary.Read(r, binary.LittleEndian, &chunk.ChunkType); err != nil {
				return nil, nil, fmt.Errorf("frame %d chunk %d: %w", i, j, err)
			}
			// 4 bytes for ChunkSize + 2 bytes for ChunkType
			if chunk.ChunkSize < 6 {
				return nil, nil, fmt.Errorf("frame %d chunk %d size %d: %w", i, j, chunk.ChunkSize, ErrMalformedInput)
			}
			chunk.ChunkData = make([]BYTE, chunk.ChunkSize-6)
			if _, err := io.ReadFull(r, chunk.ChunkData); err != nil {
				return nil, nil, fmt.Errorf("frame %d chunk %d data: %w", i, j, err)
			}
			frame.Chunks = append(frame.Chunks, chunk)
			totalChunkSize += chunk.ChunkSize
		}

		const frameHeaderSize = 16
		if totalChunkSize+frameHeaderSize != frame.Header.BytesInFrame {
			return nil, nil, fmt.Errorf("frame %d size mismatch: expected %d, got %d: %w",
				i, frame.Header.BytesInFrame, totalChunkSize+frameHeaderSize, ErrMalformedInput)
		}
		frames = append(frames, frame)
	}
	return header, frames, nil
}

func readString(r *bytes.Reader) (string, error) {
	var length WORD
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	chars := make([]byte, length)
	if _, err := io.ReadFull(r, chars); err != nil {
		return "", err
	}
	return string(chars), nil
}

func decompressZlib(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("input data is empty")
	}
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, fmt.Errorf("failed to copy decompressed data: %w", err)
	}
	return out.Bytes(), nil
}

// maxPaletteEntries bounds the palette kept for indexed pixels, which are
// one byte wide.
const maxPaletteEntries = 256

// paletteEntrySize is the size of a 0x2019 entry without a name.
const paletteEntrySize = 6

// parsePalette reads a 0x2019 palette chunk into pal, growing it as needed.
// Entries past index 255 are read but not stored.
func parsePalette(data []byte, pal color.Palette) (color.Palette, error) {
	r := bytes.NewReader(data)
	var head struct {
		NewPaletteSize DWORD
		FirstColor     DWORD
		LastColor      DWORD
		Reserved       [8]BYTE
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, err
	}
	if head.LastColor < head.FirstColor {
		return nil, fmt.Errorf("palette range %d..%d: %w", head.FirstColor, head.LastColor, ErrMalformedInput)
	}
	entries := uint64(head.LastColor) - uint64(head.FirstColor) + 1
	if entries*paletteEntrySize > uint64(r.Len()) {
		return nil, fmt.Errorf("palette range %d..%d exceeds chunk of %d bytes: %w",
			head.FirstColor, head.LastColor, len(data), ErrMalformedInput)
	}
	size := min(max(uint64(head.NewPaletteSize), uint64(head.LastColor)+1), maxPaletteEntries)
	for uint64(len(pal)) < size {
		pal = append(pal, color.NRGBA{})
	}
	for i := uint64(head.FirstColor); i <= uint64(head.LastColor); i++ {
		var entry struct {
			Flags      WORD
			R, G, B, A BYTE
		}
		if err := binary.Read(r, binary.LittleEndian, &entry); err != nil {
			return nil, err
		}
		if entry.Flags&1 != 0 {
			if _, err := readString(r); err != nil {
				return nil, err
			}
		}
		if i < uint64(len(pal)) {
			pal[i] = color.NRGBA{R: entry.R, G: entry.G, B: entry.B, A: entry.A}
		}
	}
	return pal, nil
}

// parseOldPalette reads a 0x0004 palette chunk into pal. Indices past 255
// are skipped.
func parseOldPalette(data []byte, pal color.Palette) (color.Palette, error) {
	r := bytes.NewReader(data)
	var packets WORD
	if err := binary.Read(r, binary.LittleEndian, &packets); err != nil {
		return nil, err
	}
	idx := 0
	for p := 0; p < int(packets); p++ {
		var skip, count BYTE
		if err := binary.Read(r, binary.LittleEndian, &skip); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, err
		}
		idx += int(skip)
		n := int(count)
		if n == 0 {
			n = 256
		}
		for k := 0; k < n; k++ {
			var rgb [3]BYTE
			if err := binary.Read(r, binary.LittleEndian, &rgb); err != nil {
				return nil, err
			}
			if idx < maxPaletteEntries {
				for len(pal) <= idx {
					pal = append(pal, color.NRGBA{})
				}
				pal[idx] = color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
			}
			idx++
		}
	}
	return pal, nil
}

type asepriteLayerChunk struct {
	Name    string
	Type    WORD
	Tileset DWORD
}

func parseLayer(data []byte) (asepriteLayerChunk, error) {
	r := bytes.NewReader(data)
	var head struct {
		Flags         WORD
		Type          WORD
		ChildLevel    WORD
		DefaultWidth  WORD
		DefaultHeight WORD
		BlendMode     WORD
		Opacity       BYTE
		Reserved      [3]BYTE
	}
	var l asepriteLayerChunk
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return l, err
	}
	name, err := readString(r)
	if err != nil {
		return l, err
	}
	l.Name, l.Type = name, head.Type
	if head.Type == layerTypeTilemap {
		if err := binary.Read(r, binary.LittleEndian, &l.Tileset); err != nil {
			return l, err
		}
	}
	return l, nil
}

// celHeader is the fixed 16-byte part of a 0x2005 cel chunk.
type celHeader struct {
	LayerIndex   WORD
	XPosition    SHORT
	YPosition    SHORT
	OpacityLevel BYTE
	CelType      CelDataType
	ZIndex       SHORT
	Reserved     [5]BYTE
}

// tilemapCelHeader follows celHeader in compressed tilemap cels.
type tilemapCelHeader struct {
	Width               WORD  // Width in number of tiles
	Height              WORD  // Height in number of tiles
	BitsPerTile         WORD  // At the moment it's always 32
	TileIDBitmask       DWORD // e.g. 0x1fffffff
	XFlipBitmask        DWORD // e.g. 0x80000000
	YFlipBitmask        DWORD // e.g. 0x40000000
	DiagonalFlipBitmask DWORD // e.g. 0x20000000
	Reserved            [10]BYTE
}

type tilemapCel struct {
	layer  int
	x, y   int // pixels
	header tilemapCelHeader
	tiles  []uint32
}

// parseTilemapCel reads a cel chunk. It returns nil for cels that do not
// carry tilemap data.
func parseTilemapCel(data []byte) (*tilemapCel, error) {
	r := bytes.NewReader(data)
	var head celHeader
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, err
	}
	if head.CelType != CompressedTilemapData {
		return nil, nil
	}
	cel := &tilemapCel{layer: int(head.LayerIndex), x: int(head.XPosition), y: int(head.YPosition)}
	if err := binary.Read(r, binary.LittleEndian, &cel.header); err != nil {
		return nil, err
	}
	if cel.header.BitsPerTile != 32 {
		return nil, fmt.Errorf("%d bits per tile: %w", cel.header.BitsPerTile, ErrMalformedInput)
	}
	compressed := make([]byte, r.Len())
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, err
	}
	raw, err := decompressZlib(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing tile data: %w", err)
	}
	numTiles := int(cel.header.Width) * int(cel.header.Height)
	if len(raw) != numTiles*4 {
		return nil, fmt.Errorf("cel holds %d bytes for %d tiles: %w", len(raw), numTiles, ErrMalformedInput)
	}
	cel.tiles = make([]uint32, numTiles)
	for i := range cel.tiles {
		cel.tiles[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return cel, nil
}

// tileID re-encodes a cel tile word in TileID layout using the cel masks.
func (c *tilemapCel) tileID(v uint32, refOffset uint32) TileID {
	idMask, xMask, yMask, dMask := c.header.TileIDBitmask, c.header.XFlipBitmask, c.header.YFlipBitmask, c.header.DiagonalFlipBitmask
	if idMask == 0 {
		idMask, xMask, yMask, dMask = RefMask, FlagFlipH, FlagFlipV, FlagFlipD
	}
	if refOffset == 1 && v == 0xFFFFFFFF {
		return 0
	}
	return Encode((v&idMask)+refOffset, v&xMask != 0, v&yMask != 0, v&dMask != 0)
}

type tilesetChunk struct {
	Name      string
	NumTiles  int
	TileW     int
	TileH     int
	ZeroEmpty bool
	Pixels    []byte
}

func parseTileset(data []byte) (*tilesetChunk, error) {
	r := bytes.NewReader(data)
	var head struct {
		TilesetID     DWORD
		TilesetFlags  DWORD
		NumberOfTiles DWORD
		TileWidth     WORD
		TileHeight    WORD
		BaseIndex     SHORT // just for UI purposes
		Reserved      [14]BYTE
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, err
	}
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	ts := &tilesetChunk{
		Name:      name,
		NumTiles:  int(head.NumberOfTiles),
		TileW:     int(head.TileWidth),
		TileH:     int(head.TileHeight),
		ZeroEmpty: head.TilesetFlags&FlagTileIDZeroAsEmptyTile != 0,
	}
	if head.TilesetFlags&FlagIncludeLinkToExternalFile != 0 {
		var external [2]DWORD // external file id, tileset id in that file
		if err := binary.Read(r, binary.LittleEndian, &external); err != nil {
			return nil, err
		}
	}
	if head.TilesetFlags&FlagIncludeTilesInsideFile == 0 {
		return nil, fmt.Errorf("tileset %q is external: %w", name, ErrMalformedInput)
	}
	var size DWORD
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if int(size) > r.Len() {
		return nil, fmt.Errorf("tileset %q image of %d bytes, %d left: %w", name, size, r.Len(), ErrMalformedInput)
	}
	compressed := make([]byte, size)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, err
	}
	if ts.Pixels, err = decompressZlib(compressed); err != nil {
		return nil, fmt.Errorf("error decompressing tileset image data: %w", err)
	}
	return ts, nil
}

// decodePixels converts raw pixels of the given color depth to an image of
// w x h pixels.
func decodePixels(pix []byte, w, h int, header *Header, pal color.Palette) (*image.NRGBA, error) {
	bpp := header.bytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("unknown color depth %d: %w", header.ColorDepth, ErrMalformedInput)
	}
	if len(pix) != w*h*bpp {
		return nil, fmt.Errorf("%d pixel bytes for %dx%d at %d bpp: %w", len(pix), w, h, bpp*8, ErrMalformedInput)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		p := pix[i*bpp : (i+1)*bpp]
		var c color.NRGBA
		switch bpp {
		case 4:
			c = color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
		case 2:
			c = color.NRGBA{R: p[0], G: p[0], B: p[0], A: p[1]}
		case 1:
			if p[0] != header.TransparentIdx && int(p[0]) < len(pal) {
				c = color.NRGBAModel.Convert(pal[p[0]]).(color.NRGBA)
			}
		}
		img.SetNRGBA(i%w, i/w, c)
	}
	return img, nil
}

// AsepriteLayer is one tilemap layer read from an Aseprite file.
type AsepriteLayer struct {
	Name string
	IDs  []TileID // row-major, Width*Height entries
}

// AsepriteTilemap is the first frame of an Aseprite file with tilemap
// layers: the canvas in cells, the tileset turned into an atlas, and the
// layers from bottom to top.
type AsepriteTilemap struct {
	Width, Height         int // canvas size in cells
	TileWidth, TileHeight int

	// Atlas holds the non-empty tiles in a single column, so tile k of the
	// file is reference k of a tileset sliced from it.
	Atlas *image.NRGBA

	Layers []AsepriteLayer
}

// DecodeAseprite reads an Aseprite file with exactly one embedded tileset.
// Only the first frame is used; non-tilemap layers are ignored.
func DecodeAseprite(r io.Reader) (*AsepriteTilemap, error) {
	header, frames, err := readAsepriteFrames(r)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames: %w", ErrMalformedInput)
	}

	var (
		pal       color.Palette
		oldPal    color.Palette
		layers    []asepriteLayerChunk
		tilesets  []*tilesetChunk
		cels      []*tilemapCel
		sawNewPal bool
	)
	for _, chunk := range frames[0].Chunks {
		switch chunk.ChunkType {
		case chunkPalette:
			if pal, err = parsePalette(chunk.ChunkData, pal); err != nil {
				return nil, fmt.Errorf("palette chunk: %w", err)
			}
			sawNewPal = true
		case chunkOldPalette:
			if oldPal, err = parseOldPalette(chunk.ChunkData, oldPal); err != nil {
				return nil, fmt.Errorf("old palette chunk: %w", err)
			}
		case chunkLayer:
			l, err := parseLayer(chunk.ChunkData)
			if err != nil {
				return nil, fmt.Errorf("layer chunk: %w", err)
			}
			layers = append(layers, l)
		case chunkTileset:
			ts, err := parseTileset(chunk.ChunkData)
			if err != nil {
				return nil, fmt.Errorf("tileset chunk: %w", err)
			}
			tilesets = append(tilesets, ts)
		case chunkCel:
			cel, err := parseTilemapCel(chunk.ChunkData)
			if err != nil {
				return nil, fmt.Errorf("cel chunk: %w", err)
			}
			if cel != nil {
				cels = append(cels, cel)
			}
		}
	}
	if !sawNewPal {
		pal = oldPal
	}

	if len(tilesets) != 1 {
		return nil, fmt.Errorf("file has %d tilesets, want exactly 1: %w", len(tilesets), ErrMalformedInput)
	}
	ts := tilesets[0]
	if ts.TileW <= 0 || ts.TileH <= 0 {
		return nil, fmt.Errorf("tileset %q tile size %dx%d: %w", ts.Name, ts.TileW, ts.TileH, ErrMalformedInput)
	}
	strip, err := decodePixels(ts.Pixels, ts.TileW, ts.TileH*ts.NumTiles, header, pal)
	if err != nil {
		return nil, fmt.Errorf("tileset %q: %w", ts.Name, err)
	}

	// Tile 0 is the empty tile unless the file uses 0xffffffff for empty.
	skip, refOffset := 1, uint32(0)
	if !ts.ZeroEmpty {
		skip, refOffset = 0, 1
	}
	if ts.NumTiles-skip <= 0 {
		return nil, fmt.Errorf("tileset %q has no tiles: %w", ts.Name, ErrMalformedInput)
	}

	out := &AsepriteTilemap{
		Width:      int(header.Width) / ts.TileW,
		Height:     int(header.Height) / ts.TileH,
		TileWidth:  ts.TileW,
		TileHeight: ts.TileH,
		Atlas:      image.NewNRGBA(image.Rect(0, 0, ts.TileW, ts.TileH*(ts.NumTiles-skip))),
	}
	if out.Width == 0 || out.Height == 0 {
		return nil, fmt.Errorf("canvas %dx%d smaller than one %dx%d tile: %w",
			header.Width, header.Height, ts.TileW, ts.TileH, ErrMalformedInput)
	}
	draw.Draw(out.Atlas, out.Atlas.Bounds(), strip, image.Pt(0, skip*ts.TileH), draw.Src)

	// layer chunk index -> output layer index
	index := make(map[int]int)
	for i, l := range layers {
		if l.Type != layerTypeTilemap {
			continue
		}
		index[i] = len(out.Layers)
		out.Layers = append(out.Layers, AsepriteLayer{
			Name: l.Name,
			IDs:  make([]TileID, out.Width*out.Height),
		})
	}

	for _, cel := range cels {
		li, ok := index[cel.layer]
		if !ok {
			return nil, fmt.Errorf("tilemap cel on layer %d which is not a tilemap layer: %w", cel.layer, ErrMalformedInput)
		}
		ids := out.Layers[li].IDs
		ox, oy := floorDiv(cel.x, ts.TileW), floorDiv(cel.y, ts.TileH)
		cw := int(cel.header.Width)
		for i, v := range cel.tiles {
			x, y := ox+i%cw, oy+i/cw
			if x < 0 || x >= out.Width || y < 0 || y >= out.Height {
				continue
			}
			ids[y*out.Width+x] = cel.tileID(v, refOffset)
		}
	}
	return out, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// NewMap builds a Map from the decoded file. atlas is the uploaded copy of
// a.Atlas and may be nil for headless use.
func (a *AsepriteTilemap) NewMap(atlas *ebiten.Image, opts ...MapOption) (*Map, error) {
	ts, err := BuildTileset(a.Atlas.Bounds().Size(), a.TileWidth, a.TileHeight, WithAtlas(atlas))
	if err != nil {
		return nil, err
	}
	layers := make([]*Layer, len(a.Layers))
	for i, al := range a.Layers {
		if layers[i], err = NewLayer(al.Name, a.Width, a.Height, al.IDs); err != nil {
			return nil, err
		}
	}
	return NewMap(ts, a.Width, a.Height, layers, opts...)
}

// LoadAseprite reads an .aseprite or .ase file and builds a Map from its
// tilemap layers.
func LoadAseprite(path string, opts ...MapOption) (*Map, error) {
	ext := filepath.Ext(path)
	if ext != ".aseprite" && ext != ".ase" {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := DecodeAseprite(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := doc.NewMap(ebiten.NewImageFromImage(doc.Atlas), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	Logger().Info("tilemap: aseprite map imported",
		"path", path,
		"size", fmt.Sprintf("%dx%d", doc.Width, doc.Height),
		"layers", len(doc.Layers))
	return m, nil
}

package tilemap

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// TiledMap is the decoded tree of a map saved by the Tiled editor in its JSON
// format. Only the fields used to build a Map are kept.
type TiledMap struct {
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	TileWidth   int            `json:"tilewidth"`
	TileHeight  int            `json:"tileheight"`
	Orientation string         `json:"orientation"`
	Infinite    bool           `json:"infinite"`
	Tilesets    []TiledTileset `json:"tilesets"`
	Layers      []TiledLayer   `json:"layers"`
}

// TiledTileset is one tileset entry of a Tiled map.
type TiledTileset struct {
	FirstGID    uint32      `json:"firstgid"`
	Source      string      `json:"source,omitempty"`
	Name        string      `json:"name"`
	TileWidth   int         `json:"tilewidth"`
	TileHeight  int         `json:"tileheight"`
	Image       string      `json:"image"`
	ImageWidth  int         `json:"imagewidth"`
	ImageHeight int         `json:"imageheight"`
	Margin      int         `json:"margin"`
	Spacing     int         `json:"spacing"`
	Tiles       []TiledTile `json:"tiles,omitempty"`
}

// TiledTile holds per-tile data. Image is only set by image-collection
// tilesets, which are not supported.
type TiledTile struct {
	ID    uint32 `json:"id"`
	Image string `json:"image,omitempty"`
}

// Tiled layer types.
const (
	TiledTileLayer  = "tilelayer"
	TiledGroupLayer = "group"
)

// TiledLayer is one layer of a Tiled map. Groups carry nested layers.
// Visible is decoded but not applied: hidden layers are still imported.
type TiledLayer struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Data        TiledData    `json:"data"`
	Encoding    string       `json:"encoding,omitempty"`
	Compression string       `json:"compression,omitempty"`
	Visible     bool         `json:"visible"`
	Layers      []TiledLayer `json:"layers,omitempty"`
}

// TiledData is the tile payload of a layer: either a plain array of GIDs
// (csv encoding) or a base64 string.
type TiledData struct {
	GIDs    []uint32
	Encoded string
}

// UnmarshalJSON accepts both payload forms.
func (d *TiledData) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &d.Encoded)
	}
	return json.Unmarshal(b, &d.GIDs)
}

// MarshalJSON writes the payload back in the form it was read.
func (d TiledData) MarshalJSON() ([]byte, error) {
	if d.Encoded != "" {
		return json.Marshal(d.Encoded)
	}
	return json.Marshal(d.GIDs)
}

// GIDs returns the layer's raw global identifiers, decoding base64 payloads
// and decompressing zlib or gzip data. zstd is not supported.
func (l *TiledLayer) GIDs() ([]uint32, error) {
	if l.Encoding == "" || l.Encoding == "csv" {
		return l.Data.GIDs, nil
	}
	if l.Encoding != "base64" {
		return nil, fmt.Errorf("layer %q encoding %q: %w", l.Name, l.Encoding, ErrMalformedInput)
	}
	raw, err := base64.StdEncoding.DecodeString(l.Data.Encoded)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w: %v", l.Name, ErrMalformedInput, err)
	}
	switch l.Compression {
	case "":
	case "zlib":
		if raw, err = decompressZlib(raw); err != nil {
			return nil, fmt.Errorf("layer %q: %w: %v", l.Name, ErrMalformedInput, err)
		}
	case "gzip":
		if raw, err = decompressGzip(raw); err != nil {
			return nil, fmt.Errorf("layer %q: %w: %v", l.Name, ErrMalformedInput, err)
		}
	default:
		return nil, fmt.Errorf("layer %q compression %q: %w", l.Name, l.Compression, ErrMalformedInput)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("layer %q payload of %d bytes is not a multiple of 4: %w", l.Name, len(raw), ErrMalformedInput)
	}
	gids := make([]uint32, len(raw)/4)
	for i := range gids {
		gids[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return gids, nil
}

func decompressGzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

// DecodeTiledJSON decodes a Tiled JSON map.
func DecodeTiledJSON(r io.Reader) (*TiledMap, error) {
	var tm TiledMap
	if err := json.NewDecoder(r).Decode(&tm); err != nil {
		return nil, fmt.Errorf("decode tiled map: %w", err)
	}
	return &tm, nil
}

// tileLayers flattens groups and keeps tile layers only, bottom to top.
func tileLayers(layers []TiledLayer, out []*TiledLayer) []*TiledLayer {
	for i := range layers {
		switch layers[i].Type {
		case TiledTileLayer:
			out = append(out, &layers[i])
		case TiledGroupLayer:
			out = tileLayers(layers[i].Layers, out)
		}
	}
	return out
}

func (tm *TiledMap) validate() (*TiledTileset, error) {
	if tm.Orientation != "" && tm.Orientation != "orthogonal" {
		return nil, fmt.Errorf("orientation %q: %w", tm.Orientation, ErrMalformedInput)
	}
	if tm.Infinite {
		return nil, fmt.Errorf("infinite maps are not supported: %w", ErrMalformedInput)
	}
	if tm.Width <= 0 || tm.Height <= 0 {
		return nil, fmt.Errorf("map size %dx%d: %w", tm.Width, tm.Height, ErrMalformedInput)
	}
	if len(tm.Tilesets) != 1 {
		return nil, fmt.Errorf("map has %d tilesets, want exactly 1: %w", len(tm.Tilesets), ErrMalformedInput)
	}
	ts := &tm.Tilesets[0]
	if ts.Source != "" {
		return nil, fmt.Errorf("external tileset %q is not supported: %w", ts.Source, ErrMalformedInput)
	}
	if ts.Image == "" {
		return nil, fmt.Errorf("tileset %q has no atlas image: %w", ts.Name, ErrMalformedInput)
	}
	for _, t := range ts.Tiles {
		if t.Image != "" {
			return nil, fmt.Errorf("tileset %q has per-tile image %q, want exactly 1 image: %w", ts.Name, t.Image, ErrMalformedInput)
		}
	}
	if ts.Margin != 0 || ts.Spacing != 0 {
		return nil, fmt.Errorf("tileset %q margin %d spacing %d: %w", ts.Name, ts.Margin, ts.Spacing, ErrMalformedInput)
	}
	return ts, nil
}

// FromTiled builds a Map from a decoded Tiled map. The map must be
// orthogonal and finite, and use exactly one embedded tileset backed by
// exactly one image; every tile layer must hold width*height identifiers.
// Violations fail with ErrMalformedInput before any atlas is loaded.
//
// load is called with the tileset image source. It may be nil, in which case
// the tileset is headless and the image size must be present in tm.
// The world-space cell size defaults to the map's tile size.
func FromTiled(tm *TiledMap, load AtlasLoader, opts ...MapOption) (*Map, error) {
	if tm == nil {
		return nil, fmt.Errorf("nil tiled map: %w", ErrMalformedInput)
	}
	tts, err := tm.validate()
	if err != nil {
		return nil, err
	}

	tiled := tileLayers(tm.Layers, nil)
	if len(tiled) == 0 {
		return nil, ErrEmptyLayerStack
	}
	want := tm.Width * tm.Height
	data := make([][]uint32, len(tiled))
	for i, tl := range tiled {
		gids, err := tl.GIDs()
		if err != nil {
			return nil, err
		}
		if len(gids) != want {
			return nil, fmt.Errorf("layer %q has %d tiles, want %d: %w", tl.Name, len(gids), want, ErrMalformedInput)
		}
		data[i] = gids
	}

	var atlas *ebiten.Image
	if load != nil {
		if atlas, err = load(tts.Image); err != nil {
			return nil, fmt.Errorf("load atlas %q: %w", tts.Image, err)
		}
	}
	size := image.Pt(tts.ImageWidth, tts.ImageHeight)
	if (size.X <= 0 || size.Y <= 0) && atlas != nil {
		size = atlas.Bounds().Size()
	}

	tileW, tileH := tts.TileWidth, tts.TileHeight
	if tileW == 0 && tileH == 0 {
		tileW, tileH = tm.TileWidth, tm.TileHeight
	}
	ts, err := BuildTileset(size, tileW, tileH, WithFirstGID(tts.FirstGID), WithAtlas(atlas))
	if err != nil {
		return nil, fmt.Errorf("tileset %q: %w", tts.Name, err)
	}

	layers := make([]*Layer, len(tiled))
	for i, tl := range tiled {
		if layers[i], err = newTranslatedLayer(ts, tl.Name, tm.Width, tm.Height, data[i]); err != nil {
			return nil, err
		}
	}

	opts = append([]MapOption{WithTileSize(float32(tm.TileWidth), float32(tm.TileHeight))}, opts...)
	m, err := NewMap(ts, tm.Width, tm.Height, layers, opts...)
	if err != nil {
		return nil, err
	}
	Logger().Info("tilemap: tiled map imported",
		"size", fmt.Sprintf("%dx%d", tm.Width, tm.Height),
		"layers", len(layers),
		"tiles", ts.Len())
	return m, nil
}

// LoadTiled reads a Tiled JSON map file and its atlas image, which is
// resolved relative to the map file.
func LoadTiled(path string, opts ...MapOption) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tm, err := DecodeTiledJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	m, err := FromTiled(tm, func(source string) (*ebiten.Image, error) {
		return LoadAtlas(filepath.Join(dir, source))
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

package tilemap

import (
	"fmt"
	"image"
	"io"
	"os"

	// Atlas formats. png, jpeg and gif come from the standard library; the
	// rest from x/image.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hajimehoshi/ebiten/v2"
)

// AtlasLoader resolves an image source named by external map data to an
// atlas image. Implementations typically memoize, so that maps sharing a
// tileset image share one atlas.
type AtlasLoader func(source string) (*ebiten.Image, error)

// DecodeAtlas decodes an atlas image in any registered format.
func DecodeAtlas(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode atlas: %w", err)
	}
	return img, format, nil
}

// LoadAtlas reads and decodes an atlas image file.
func LoadAtlas(path string) (*ebiten.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := DecodeAtlas(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	Logger().Debug("tilemap: atlas loaded", "path", path, "format", format, "size", img.Bounds().Size())
	return ebiten.NewImageFromImage(img), nil
}

// NewTilesetFromFile loads an atlas image file and slices it into tiles of
// tileW x tileH pixels.
func NewTilesetFromFile(path string, tileW, tileH int, opts ...TilesetOption) (*Tileset, error) {
	atlas, err := LoadAtlas(path)
	if err != nil {
		return nil, err
	}
	return NewTileset(atlas, tileW, tileH, opts...)
}

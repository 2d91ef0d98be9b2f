// Package tilemap renders grid-based tile maps for ebiten.
//
// A Map is a stack of equally sized layers whose cells hold tile identifiers
// pointing into one Tileset, a uniform grid sliced out of a single atlas
// image. The whole map is batched into one Mesh (four vertices and six
// indices per visible tile) and drawn with one DrawTriangles32 call.
//
// Tiles hidden beneath an opaque tile on a higher layer are culled: for every
// cell, ResolveStart finds the topmost opaque layer and only that layer and
// the ones above it are emitted.
//
// Tile identifiers follow the Tiled GID layout: the top three bits flip the
// tile horizontally, vertically and diagonally, the remaining 29 bits are the
// tile reference, with 0 meaning "no tile". When building the mesh the
// diagonal flip is applied first, then horizontal, then vertical.
//
// Maps are built from explicit layer data (NewMap, NewMapFromRaw), from Tiled
// JSON maps (FromTiled, LoadTiled) or from Aseprite tilemap files
// (DecodeAseprite, LoadAseprite). Only a single tileset per map is supported.
//
// Basic usage:
//
//	m, err := tilemap.LoadTiled("level1.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// in ebiten.Game.Draw:
//	var g ebiten.GeoM
//	g.Scale(2, 2)
//	m.Draw(screen, g)
//
// The mesh is derived state: every mutation (SetTile, SetLayers,
// AppendLayer, SetTileset) rebuilds it completely before returning.
package tilemap

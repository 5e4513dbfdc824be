package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/atomic-chess-bot/internal/chess"
)

// Built-in glyph bodies on a 45x45 canvas. The outer <g> carries the colors.
var pieceBodies = map[chess.PieceKind]string{
	chess.Pawn: `<circle cx="22.5" cy="13" r="5"/>
<path d="M 17 19 L 28 19 L 31 34 L 14 34 Z"/>
<rect x="11" y="34" width="23" height="5"/>`,
	chess.Rook: `<path d="M 11 10 L 15 10 L 15 13 L 20 13 L 20 10 L 25 10 L 25 13 L 30 13 L 30 10 L 34 10 L 34 16 L 31 19 L 31 31 L 14 31 L 14 19 L 11 16 Z"/>
<rect x="9" y="31" width="27" height="7"/>`,
	chess.Knight: `<path d="M 14 38 L 32 38 L 32 30 C 32 20 29 12 21 9 L 19 6 L 17 10 L 11 17 L 10 22 L 13 24 L 18 20 L 21 21 C 16 26 14 31 14 38 Z"/>`,
	chess.Bishop: `<circle cx="22.5" cy="8" r="2.5"/>
<ellipse cx="22.5" cy="19" rx="7" ry="9"/>
<path d="M 15 28 L 30 28 L 32 33 L 13 33 Z"/>
<rect x="10" y="33" width="25" height="5"/>`,
	chess.Queen: `<polygon points="9,14 14,29 17,13 22.5,28 28,13 31,29 36,14 33,33 12,33"/>
<circle cx="9" cy="12" r="2.5"/>
<circle cx="17" cy="11" r="2.5"/>
<circle cx="28" cy="11" r="2.5"/>
<circle cx="36" cy="12" r="2.5"/>
<rect x="11" y="33" width="23" height="5"/>`,
	chess.King: `<path d="M 21 4 L 24 4 L 24 8 L 28 8 L 28 11 L 24 11 L 24 15 L 21 15 L 21 11 L 17 11 L 17 8 L 21 8 Z"/>
<path d="M 11 33 L 9 22 C 9 17 16 15 22.5 20 C 29 15 36 17 36 22 L 34 33 Z"/>
<rect x="10" y="33" width="25" height="5"/>`,
}

// builtinSVG returns a complete SVG document for the piece.
func builtinSVG(kind chess.PieceKind, c chess.Color) ([]byte, error) {
	body, ok := pieceBodies[kind]
	if !ok {
		return nil, fmt.Errorf("no glyph for piece kind %d", kind)
	}
	fill, stroke := "#ffffff", "#000000"
	if c == chess.Black {
		fill, stroke = "#2b2b2b", "#000000"
	}
	var b bytes.Buffer
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">`)
	fmt.Fprintf(&b, `<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">`, fill, stroke)
	b.WriteString(body)
	b.WriteString(`</g></svg>`)
	return b.Bytes(), nil
}

// styleFixer normalizes CSS spellings oksvg cannot parse in downloaded piece sets.
var styleFixer = strings.NewReplacer(
	"fill:000000", "fill:#000000",
	"fill: 000000", "fill:#000000",
	"stroke: 000000", "stroke:#000000",
	"fill: #", "fill:#",
	"stroke: #", "stroke:#",
	"stop-color: #", "stop-color:#",
)

// assetName is the file a piece set directory provides, e.g. wK.svg.
func assetName(kind chess.PieceKind, c chess.Color) string {
	prefix := "w"
	if c == chess.Black {
		prefix = "b"
	}
	return prefix + string(kind.Letter(chess.White)) + ".svg"
}

type pieceCacheKey struct {
	kind  chess.PieceKind
	color chess.Color
	size  int
}

type pieceCache struct {
	dir string

	mu     sync.RWMutex
	images map[pieceCacheKey]image.Image
}

func newPieceCache(dir string) *pieceCache {
	return &pieceCache{dir: strings.TrimSpace(dir), images: make(map[pieceCacheKey]image.Image)}
}

func (pc *pieceCache) source(kind chess.PieceKind, c chess.Color) ([]byte, error) {
	if pc.dir != "" {
		path := filepath.Join(pc.dir, assetName(kind, c))
		data, err := os.ReadFile(path)
		if err == nil {
			return []byte(styleFixer.Replace(string(data))), nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read piece asset %s: %w", path, err)
		}
	}
	return builtinSVG(kind, c)
}

func (pc *pieceCache) image(kind chess.PieceKind, c chess.Color, size int) (image.Image, error) {
	key := pieceCacheKey{kind: kind, color: c, size: size}

	pc.mu.RLock()
	if img, ok := pc.images[key]; ok {
		pc.mu.RUnlock()
		return img, nil
	}
	pc.mu.RUnlock()

	data, err := pc.source(kind, c)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", assetName(kind, c), err)
	}
	if icon.ViewBox.W <= 0 {
		icon.ViewBox.W = float64(size)
	}
	if icon.ViewBox.H <= 0 {
		icon.ViewBox.H = float64(size)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pc.mu.Lock()
	pc.images[key] = img
	pc.mu.Unlock()
	return img, nil
}

package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/park285/atomic-chess-bot/internal/chess"
)

func decode(t *testing.T, raw []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func rgb(img image.Image, x, y int) (r, g, b uint8) {
	cr, cg, cb, _ := img.At(x, y).RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8)
}

func TestRenderPNGDimensions(t *testing.T) {
	r := NewRenderer()
	raw, err := r.RenderPNG(context.Background(), chess.NewGame().Snapshot(), Options{Header: "Alice vs Bob", Turn: "White to move"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	b := decode(t, raw).Bounds()
	if b.Dx() != boardSize+2*sideMargin || b.Dy() != boardSize+topMargin+bottomMargin {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestRenderPNGPerspectiveDiffers(t *testing.T) {
	r := NewRenderer()
	snap := chess.NewGame().Snapshot()
	w, err := r.RenderPNG(context.Background(), snap, Options{Perspective: chess.White})
	if err != nil {
		t.Fatalf("white: %v", err)
	}
	b, err := r.RenderPNG(context.Background(), snap, Options{Perspective: chess.Black})
	if err != nil {
		t.Fatalf("black: %v", err)
	}
	if bytes.Equal(w, b) {
		t.Fatalf("expected different images for flipped viewpoints")
	}
}

func TestRenderPNGBlastTint(t *testing.T) {
	r := NewRenderer()
	snap := chess.NewGame().Snapshot()
	e4 := chess.MustCoord("e4")

	plain := decode(t, mustRender(t, r, snap, Options{}))
	hit := decode(t, mustRender(t, r, snap, Options{Blast: []chess.Coord{e4}}))

	rect := boardView{origin: image.Pt(sideMargin, topMargin)}.squareRect(e4)
	x, y := rect.Min.X+3, rect.Min.Y+3
	_, pg, _ := rgb(plain, x, y)
	_, hg, _ := rgb(hit, x, y)
	if hg >= pg {
		t.Fatalf("blast tint missing: green %d -> %d", pg, hg)
	}
}

func TestRenderPNGPieceDirOverride(t *testing.T) {
	dir := t.TempDir()
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45"><rect x="0" y="0" width="45" height="45" style="fill: #ff0000"/></svg>`
	if err := os.WriteFile(filepath.Join(dir, "wK.svg"), []byte(svg), 0o600); err != nil {
		t.Fatalf("write svg: %v", err)
	}
	r := NewRenderer(WithPieceDir(dir))
	img := decode(t, mustRender(t, r, chess.NewGame().Snapshot(), Options{}))

	c := boardView{origin: image.Pt(sideMargin, topMargin)}.center(chess.MustCoord("e1"))
	red, green, blue := rgb(img, c.X, c.Y)
	if red < 200 || green > 60 || blue > 60 {
		t.Fatalf("override king not drawn, got rgb(%d,%d,%d)", red, green, blue)
	}
}

func TestRenderPNGCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRenderer().RenderPNG(ctx, chess.NewGame().Snapshot(), Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestPrintableDropsMissingGlyphs(t *testing.T) {
	face, err := hudFace()
	if err != nil {
		t.Fatalf("hudFace: %v", err)
	}
	defer face.Close()
	if got := printable("김철수 vs Bob"); got != "vs Bob" {
		t.Fatalf("printable = %q", got)
	}
}

func mustRender(t *testing.T, r *Renderer, snap chess.Snapshot, opts Options) []byte {
	t.Helper()
	raw, err := r.RenderPNG(context.Background(), snap, opts)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	return raw
}

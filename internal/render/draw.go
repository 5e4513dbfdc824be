package render

import (
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// fillPath rasterizes one closed path built by add onto img, antialiased.
func fillPath(img *image.RGBA, clr color.Color, add func(p rasterx.Adder)) {
	if img == nil {
		return
	}
	b := img.Bounds()
	filler := rasterx.NewFiller(b.Dx(), b.Dy(), rasterx.NewScannerGV(b.Dx(), b.Dy(), img, b))
	filler.SetColor(clr)
	add(filler)
	filler.Draw()
}

func drawSquareOverlay(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	if img == nil {
		return
	}
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

// drawArrow draws a shaft plus head from the centre of one square to another.
func drawArrow(img *image.RGBA, start, end image.Point, squareSize int, clr color.Color) {
	if start == end {
		return
	}
	sx, sy := float64(start.X), float64(start.Y)
	dx, dy := float64(end.X)-sx, float64(end.Y)-sy
	length := math.Hypot(dx, dy)
	ux, uy := dx/length, dy/length
	nx, ny := -uy, ux

	sq := float64(squareSize)
	neck := length - sq*0.45
	if neck < sq*0.35 {
		neck = length * 0.6
	}
	shaft, head := sq*0.18, sq*0.16
	bx, by := sx+ux*neck, sy+uy*neck

	fillPath(img, clr, func(p rasterx.Adder) {
		p.Start(rasterx.ToFixedP(sx-nx*shaft, sy-ny*shaft))
		p.Line(rasterx.ToFixedP(bx-nx*shaft, by-ny*shaft))
		p.Line(rasterx.ToFixedP(bx-nx*head*2, by-ny*head*2))
		p.Line(rasterx.ToFixedP(float64(end.X), float64(end.Y)))
		p.Line(rasterx.ToFixedP(bx+nx*head*2, by+ny*head*2))
		p.Line(rasterx.ToFixedP(bx+nx*shaft, by+ny*shaft))
		p.Line(rasterx.ToFixedP(sx+nx*shaft, sy+ny*shaft))
		p.Stop(true)
	})
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	r := math.Max(float64(radius), 0.5)
	fillPath(img, clr, func(p rasterx.Adder) {
		rasterx.AddCircle(float64(center.X), float64(center.Y), r, p)
	})
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	r := float64(min(max(radius, 0), rect.Dx()/2, rect.Dy()/2))
	fillPath(img, clr, func(p rasterx.Adder) {
		rasterx.AddRoundRect(
			float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Max.X), float64(rect.Max.Y),
			r, r, 0, rasterx.RoundGap, p,
		)
	})
}

// truncateWithEllipsis shortens text rune by rune until it fits maxWidth.
func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	text = strings.TrimSpace(text)
	if text == "" || face == nil || maxWidth <= 0 {
		return text
	}
	fits := func(s string) bool { return font.MeasureString(face, s).Round() <= maxWidth }
	if fits(text) {
		return text
	}
	const ellipsis = "..."
	if !fits(ellipsis) {
		return ""
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		if s := string(runes[:n]) + ellipsis; fits(s) {
			return s
		}
	}
	return ellipsis
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if drawer == nil || text == "" {
		return
	}
	m := drawer.Face.Metrics()
	x := rect.Min.X + max((rect.Dx()-drawer.MeasureString(text).Round())/2, 0)
	y := rect.Min.Y + (rect.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)
}

package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/park285/atomic-chess-bot/internal/chess"
)

// Highlight marks the last move. Mover decides the style since the moving
// piece may no longer be on the board after a capture.
type Highlight struct {
	From  chess.Coord
	To    chess.Coord
	Mover chess.Color
}

type Options struct {
	Header      string
	Turn        string
	Perspective chess.Color
	Highlight   *Highlight
	// Blast lists the squares emptied by the last explosion.
	Blast []chess.Coord
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, snap chess.Snapshot, opts Options) ([]byte, error)
}

// Renderer draws boards with rasterized SVG pieces.
type Renderer struct {
	pieces *pieceCache
}

var _ BoardRenderer = (*Renderer)(nil)

type Option func(*Renderer)

// WithPieceDir loads wK.svg, bQ.svg, ... from dir, falling back to the
// built-in glyphs for missing files.
func WithPieceDir(dir string) Option {
	return func(r *Renderer) { r.pieces = newPieceCache(dir) }
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{pieces: newPieceCache("")}
	for _, o := range opts {
		o(r)
	}
	return r
}

const (
	squareSize   = 64
	boardSize    = squareSize * 8
	sideMargin   = 32
	topMargin    = 104
	bottomMargin = 32

	titleHeight   = 36
	turnHeight    = 28
	panelGap      = 10
	gapToBoard    = 16
	panelRadius   = 10
	panelPaddingX = 20
	titleMinWidth = 280
	turnMinWidth  = 140
	shadowOffsetY = 5
)

var (
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	whiteMoveFill       = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveArrow      = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	blastFill           = color.NRGBA{R: 235, G: 64, B: 52, A: 120}
	blastCore           = color.NRGBA{R: 255, G: 170, B: 40, A: 200}
	hudPanelColor       = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor   = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor      = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	backgroundColor     = color.NRGBA{R: 18, G: 20, B: 30, A: 255}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

var (
	hudFontOnce sync.Once
	hudFont     *opentype.Font
	hudFontErr  error
)

// hudFace returns a fresh face; opentype faces are not safe for concurrent use.
func hudFace() (font.Face, error) {
	hudFontOnce.Do(func() {
		hudFont, hudFontErr = opentype.Parse(goregular.TTF)
	})
	if hudFontErr != nil {
		return nil, fmt.Errorf("parse hud font: %w", hudFontErr)
	}
	return opentype.NewFace(hudFont, &opentype.FaceOptions{Size: 17, DPI: 72, Hinting: font.HintingFull})
}

func (r *Renderer) RenderPNG(ctx context.Context, snap chess.Snapshot, opts Options) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)
	img := image.NewRGBA(image.Rect(0, 0, boardSize+sideMargin*2, boardSize+topMargin+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	view := boardView{origin: origin, perspective: opts.Perspective}
	if err := drawHUD(img, opts, boardRect); err != nil {
		return nil, err
	}
	view.drawSquares(img)
	view.drawBlast(img, opts.Blast, opts.Highlight)
	view.drawHighlight(img, opts.Highlight)
	if err := view.drawPieces(img, snap, r.pieces); err != nil {
		return nil, err
	}
	view.drawCoordinates(img)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// boardView maps board coordinates to pixels for one perspective.
type boardView struct {
	origin      image.Point
	perspective chess.Color
}

func (v boardView) squareRect(c chess.Coord) image.Rectangle {
	col, row := int(c.File), 7-int(c.Rank)
	if v.perspective == chess.Black {
		col, row = 7-int(c.File), int(c.Rank)
	}
	x := v.origin.X + col*squareSize
	y := v.origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func (v boardView) center(c chess.Coord) image.Point {
	r := v.squareRect(c)
	return image.Pt(r.Min.X+squareSize/2, r.Min.Y+squareSize/2)
}

func squareColor(c chess.Coord) color.Color {
	if (int(c.File)+int(c.Rank))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func (v boardView) drawSquares(dst *image.RGBA) {
	for rank := int8(0); rank < 8; rank++ {
		for file := int8(0); file < 8; file++ {
			c := chess.Coord{File: file, Rank: rank}
			imagedraw.Draw(dst, v.squareRect(c), image.NewUniform(squareColor(c)), image.Point{}, imagedraw.Src)
		}
	}
}

func (v boardView) drawPieces(dst *image.RGBA, snap chess.Snapshot, pieces *pieceCache) error {
	for c, o := range snap {
		img, err := pieces.image(o.Kind, o.Color, squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, v.squareRect(c), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

func (v boardView) drawHighlight(img *image.RGBA, h *Highlight) {
	if h == nil {
		return
	}
	if h.Mover == chess.Black {
		drawArrow(img, v.center(h.From), v.center(h.To), squareSize, blackMoveArrow)
		return
	}
	drawSquareOverlay(img, v.squareRect(h.From), whiteMoveFill)
	drawSquareOverlay(img, v.squareRect(h.To), whiteMoveFill)
}

// drawBlast tints every cleared square and marks the capture square with a burst.
func (v boardView) drawBlast(img *image.RGBA, blast []chess.Coord, h *Highlight) {
	if len(blast) == 0 {
		return
	}
	for _, c := range blast {
		drawSquareOverlay(img, v.squareRect(c), blastFill)
	}
	if h != nil {
		drawDisc(img, v.center(h.To), squareSize/4, blastCore)
	}
}

func (v boardView) drawCoordinates(dst *image.RGBA) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	for i := int8(0); i < 8; i++ {
		rankC := v.center(chess.Coord{File: 0, Rank: i})
		if v.perspective == chess.Black {
			rankC = v.center(chess.Coord{File: 7, Rank: i})
		}
		drawCenteredText(drawer, string(rune('1'+i)), v.origin.X-sideMargin/2, rankC.Y+ascent/2)

		fileC := v.center(chess.Coord{File: i, Rank: 0})
		drawCenteredText(drawer, string(rune('a'+i)), fileC.X, v.origin.Y+boardSize+ascent+4)
	}
}

func drawHUD(img *image.RGBA, opts Options, boardRect image.Rectangle) error {
	face, err := hudFace()
	if err != nil {
		return err
	}
	defer face.Close()
	drawer := &font.Drawer{Dst: img, Face: face}

	title := printable(opts.Header)
	if title == "" {
		title = "Atomic Chess"
	}
	turnText := printable(opts.Turn)
	if turnText == "" {
		turnText = "Turn"
	}

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - turnHeight
	titleBottom := turnTop - panelGap
	titleTop := titleBottom - titleHeight

	titleWidth := max(titleMinWidth, drawer.MeasureString(title).Round()+panelPaddingX*2)
	titleWidth = min(titleWidth, boardRect.Dx())
	turnWidth := max(turnMinWidth, drawer.MeasureString(turnText).Round()+panelPaddingX*2)
	turnWidth = min(turnWidth, boardRect.Dx()-40)

	titleLeft := boardRect.Min.X + (boardRect.Dx()-titleWidth)/2
	titleRect := image.Rect(titleLeft, titleTop, titleLeft+titleWidth, titleBottom)
	turnLeft := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(turnLeft, turnTop, turnLeft+turnWidth, turnBottom)

	drawRoundedPanel(img, titleRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, turnRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, turnRect, panelRadius, hudTurnPanelColor)

	title = truncateWithEllipsis(face, title, titleRect.Dx()-panelPaddingX*2)
	turnText = truncateWithEllipsis(face, turnText, turnRect.Dx()-panelPaddingX*2)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
	return nil
}

// printable drops runes the HUD font has no glyph for (e.g. Hangul in Go
// Regular). hudFace must have succeeded before.
func printable(s string) string {
	var (
		buf sfnt.Buffer
		b   strings.Builder
	)
	for _, r := range strings.TrimSpace(s) {
		if r == ' ' {
			b.WriteRune(r)
			continue
		}
		if idx, err := hudFont.GlyphIndex(&buf, r); err == nil && idx != 0 {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	corechess "github.com/park285/cheese-chess/internal/chess"
)

// Options tune a single render.
type Options struct {
	// LastMove is highlighted when set.
	LastMove *corechess.Move
	// InCheck marks the king of the side to move.
	InCheck bool
	// Flip draws the board from Black's side.
	Flip bool
}

const (
	defaultSquareSize = 64
	boardSquares      = 8
)

// Renderer draws positions as PNG images.
type Renderer struct {
	squareSize int
	margin     int
}

type RendererOption func(*Renderer)

// WithSquareSize sets the edge length of one square in pixels.
func WithSquareSize(px int) RendererOption {
	return func(r *Renderer) {
		if px >= 16 {
			r.squareSize = px
		}
	}
}

func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{squareSize: defaultSquareSize}
	for _, opt := range opts {
		opt(r)
	}
	r.margin = r.squareSize * 3 / 8
	return r
}

// Size is the width and height of the rendered image.
func (r *Renderer) Size() int { return r.squareSize*boardSquares + r.margin*2 }

var (
	lightSquare     = color.RGBA{233, 207, 163, 255}
	darkSquare      = color.RGBA{187, 136, 96, 255}
	frameColor      = color.RGBA{49, 46, 43, 255}
	lastMoveFill    = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	lastMoveArrow   = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	checkGlow       = color.NRGBA{R: 230, G: 40, B: 40, A: 150}
	coordinateColor = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
)

func (r *Renderer) RenderPNG(ctx context.Context, pos corechess.Position, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := r.Size()
	origin := image.Point{X: r.margin, Y: r.margin}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(frameColor), image.Point{}, imagedraw.Src)

	v := view{squareSize: r.squareSize, origin: origin, flip: opts.Flip}
	v.drawSquares(img)
	if opts.LastMove != nil {
		v.drawOverlay(img, opts.LastMove.From, lastMoveFill)
		v.drawOverlay(img, opts.LastMove.To, lastMoveFill)
	}
	if opts.InCheck {
		if king := pos.KingSquare(pos.Turn()); king != corechess.NoSquare {
			v.drawGlow(img, king, checkGlow)
		}
	}
	if err := v.drawPieces(img, pos); err != nil {
		return nil, err
	}
	if opts.LastMove != nil {
		v.drawArrow(img, opts.LastMove.From, opts.LastMove.To, lastMoveArrow)
	}
	v.drawCoordinates(img, r.margin)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// view maps squares to pixels for one orientation.
type view struct {
	squareSize int
	origin     image.Point
	flip       bool
}

func (v view) squareRect(sq corechess.Square) image.Rectangle {
	col, row := sq.File(), 7-sq.Rank()
	if v.flip {
		col, row = 7-col, 7-row
	}
	x := v.origin.X + col*v.squareSize
	y := v.origin.Y + row*v.squareSize
	return image.Rect(x, y, x+v.squareSize, y+v.squareSize)
}

func (v view) center(sq corechess.Square) (float64, float64) {
	rect := v.squareRect(sq)
	half := float64(v.squareSize) / 2
	return float64(rect.Min.X) + half, float64(rect.Min.Y) + half
}

func (v view) drawSquares(dst imagedraw.Image) {
	for sq := corechess.Square(0); sq < corechess.NoSquare; sq++ {
		clr := darkSquare
		if sq.IsLight() {
			clr = lightSquare
		}
		imagedraw.Draw(dst, v.squareRect(sq), image.NewUniform(clr), image.Point{}, imagedraw.Src)
	}
}

func (v view) drawPieces(dst imagedraw.Image, pos corechess.Position) error {
	for sq := corechess.Square(0); sq < corechess.NoSquare; sq++ {
		pc := pos.Piece(sq)
		if pc.IsNone() {
			continue
		}
		img, err := pieceImage(pc, v.squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, v.squareRect(sq), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

func (v view) drawOverlay(dst imagedraw.Image, sq corechess.Square, clr color.Color) {
	imagedraw.Draw(dst, v.squareRect(sq), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func (v view) filler(dst *image.RGBA, clr color.Color) *rasterx.Filler {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	f := rasterx.NewFiller(w, h, scanner)
	f.SetColor(clr)
	return f
}

// drawGlow fills a disc under the piece on sq.
func (v view) drawGlow(dst *image.RGBA, sq corechess.Square, clr color.Color) {
	cx, cy := v.center(sq)
	f := v.filler(dst, clr)
	rasterx.AddCircle(cx, cy, float64(v.squareSize)*0.45, f)
	f.Draw()
}

// drawArrow draws a shaft and head from the centre of from towards to.
func (v view) drawArrow(dst *image.RGBA, from, to corechess.Square, clr color.Color) {
	if from == to {
		return
	}
	sx, sy := v.center(from)
	ex, ey := v.center(to)
	dx, dy := ex-sx, ey-sy
	length := math.Hypot(dx, dy)
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	size := float64(v.squareSize)
	halfWidth := size * 0.08
	headHalf := size * 0.2
	headLen := size * 0.35
	baseX, baseY := ex-dirX*headLen, ey-dirY*headLen

	f := v.filler(dst, clr)
	f.Start(rasterx.ToFixedP(sx-perpX*halfWidth, sy-perpY*halfWidth))
	f.Line(rasterx.ToFixedP(baseX-perpX*halfWidth, baseY-perpY*halfWidth))
	f.Line(rasterx.ToFixedP(baseX-perpX*headHalf, baseY-perpY*headHalf))
	f.Line(rasterx.ToFixedP(ex, ey))
	f.Line(rasterx.ToFixedP(baseX+perpX*headHalf, baseY+perpY*headHalf))
	f.Line(rasterx.ToFixedP(baseX+perpX*halfWidth, baseY+perpY*halfWidth))
	f.Line(rasterx.ToFixedP(sx+perpX*halfWidth, sy+perpY*halfWidth))
	f.Stop(true)
	f.Draw()
}

func (v view) drawCoordinates(dst imagedraw.Image, margin int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Src: image.NewUniform(coordinateColor), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	boardEnd := v.origin.Y + boardSquares*v.squareSize

	for i := 0; i < boardSquares; i++ {
		file := corechess.NewSquare(i, 0)
		fx, _ := v.center(file)
		drawCenteredText(drawer, file.String()[:1], int(fx), boardEnd+(margin+ascent)/2)

		rank := corechess.NewSquare(0, i)
		_, ry := v.center(rank)
		drawCenteredText(drawer, rank.String()[1:], margin/2, int(ry)+ascent/2)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

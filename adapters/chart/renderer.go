package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"centival/internal"
	apperrors "centival/internal/errors"
	"centival/internal/fsutil"
	"centival/ports"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultPanelWidth  = 700
	DefaultPanelHeight = 560
	footerHeight       = 24
)

// Renderer draws computed-vs-reference scatter panels side by side into one PNG
type Renderer struct {
	panelWidth  int
	panelHeight int
	logger      *internal.Logger
}

var _ ports.FigureRendererPort = (*Renderer)(nil)

// NewRenderer sizes each panel; non-positive dimensions fall back to the defaults
func NewRenderer(panelWidth, panelHeight int, logger *internal.Logger) *Renderer {
	if panelWidth <= 0 {
		panelWidth = DefaultPanelWidth
	}
	if panelHeight <= 0 {
		panelHeight = DefaultPanelHeight
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{panelWidth: panelWidth, panelHeight: panelHeight, logger: logger}
}

// Render writes the figure to path atomically: either the complete PNG lands at
// path or nothing does.
func (r *Renderer) Render(path string, panels []ports.ScatterPanel, caption string) error {
	if len(panels) == 0 {
		return apperrors.InvalidInput("figure needs at least one panel")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, r.panelWidth*len(panels), r.panelHeight+footerHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, panel := range panels {
		img, err := r.renderPanel(panel)
		if err != nil {
			return apperrors.Wrapf(err, "render %s panel", panel.Pair.Metric)
		}
		offset := image.Pt(i*r.panelWidth, 0)
		draw.Draw(canvas, img.Bounds().Add(offset), img, img.Bounds().Min, draw.Src)
	}
	drawCaption(canvas, caption, r.panelHeight)

	err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		return png.Encode(w, canvas)
	})
	if err != nil {
		return err
	}
	r.logger.Info("figure written to %s", path)
	return nil
}

// PanelTitle embeds the correlation statistics in the panel heading
func PanelTitle(p ports.ScatterPanel) string {
	return fmt.Sprintf("%s  r=%.3f, p=%.3e", p.Pair.Title, p.Result.R, p.Result.PValue)
}

func (r *Renderer) renderPanel(p ports.ScatterPanel) (image.Image, error) {
	if len(p.X) == 0 || len(p.X) != len(p.Y) {
		return nil, apperrors.InternalError(fmt.Sprintf("panel has %d x and %d y values", len(p.X), len(p.Y)))
	}

	points := gochart.ContinuousSeries{
		Name:    "Subjects",
		XValues: p.X,
		YValues: p.Y,
		Style: gochart.Style{
			StrokeWidth: gochart.Disabled,
			DotWidth:    5,
			DotColor:    drawing.ColorFromHex("1f77b4").WithAlpha(180),
		},
	}

	lo, hi := bounds(p.X)
	fit := gochart.ContinuousSeries{
		Name:    "OLS fit",
		XValues: []float64{lo, hi},
		YValues: []float64{p.Result.Slope*lo + p.Result.Intercept, p.Result.Slope*hi + p.Result.Intercept},
		Style: gochart.Style{
			StrokeColor:     gochart.ColorRed,
			StrokeWidth:     2,
			StrokeDashArray: []float64{6, 4},
		},
	}

	ch := gochart.Chart{
		Title:      PanelTitle(p),
		Width:      r.panelWidth,
		Height:     r.panelHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 20, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: p.Pair.XLabel},
		YAxis:      gochart.YAxis{Name: p.Pair.YLabel},
		Series:     []gochart.Series{points, fit},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

func drawCaption(dst *image.RGBA, text string, top int) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{R: 60, G: 60, B: 60, A: 255}),
		Face: face,
	}
	x := (dst.Bounds().Dx() - d.MeasureString(text).Ceil()) / 2
	if x < 8 {
		x = 8
	}
	y := top + (footerHeight+face.Metrics().Ascent.Ceil())/2
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d.DrawString(text)
}

package rankings

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"

	"cactuscoin/bot/common"
)

// ErrNoBars is returned when there is nothing to draw
var ErrNoBars = errors.New("chart has no bars")

// defaultBarColor is Discord blurple, used for members without a coloured role
var defaultBarColor = color.RGBA{R: 0x58, G: 0x65, B: 0xF2, A: 0xFF}

// Bar is one member's row in a chart
type Bar struct {
	Label string
	Value int64
	Color color.Color // nil uses defaultBarColor
	Icon  image.Image // optional avatar drawn at the end of the bar
}

// ChartStyle defines the chart geometry
type ChartStyle struct {
	Width       int
	LabelWidth  int
	RowHeight   int
	HeaderSpace int
	FooterSpace int
	Padding     int
	IconSize    int
	GlowShades  int
}

// ChartGenerator renders horizontal bar charts as PNG images
type ChartGenerator struct {
	style ChartStyle
}

// NewChartGenerator creates a chart generator with the default style
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		style: ChartStyle{
			Width:       820,
			LabelWidth:  170,
			RowHeight:   56,
			HeaderSpace: 80,
			FooterSpace: 60,
			Padding:     24,
			IconSize:    44,
			GlowShades:  5,
		},
	}
}

// Generate draws bars top to bottom in the given order. subtitle may be empty.
func (g *ChartGenerator) Generate(title, subtitle string, bars []Bar) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}

	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("bar_count", len(bars)).
			Debug("Chart generation completed")
	}()

	s := g.style
	height := s.HeaderSpace + len(bars)*s.RowHeight + s.FooterSpace
	dc := gg.NewContext(s.Width, height)

	// bluish dark grey background
	dc.SetRGB255(0x21, 0x29, 0x46)
	dc.Clear()

	titleFace, err := loadFont(gobold.TTF, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	labelFace, err := loadFont(gomono.TTF, 13)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	// header
	dc.SetFontFace(titleFace)
	dc.SetRGB(0.9, 0.9, 0.9)
	dc.DrawStringAnchored(title, float64(s.Width)/2, 30, 0.5, 0.5)
	if subtitle != "" {
		dc.DrawStringAnchored(subtitle, float64(s.Width)/2, 56, 0.5, 0.5)
	}

	// value axis, in float64 so extreme balances cannot overflow
	minValue, maxValue := valueRange(bars)
	plotLeft := float64(s.LabelWidth + s.Padding)
	plotRight := float64(s.Width - s.Padding)
	plotTop := float64(s.HeaderSpace)
	plotBottom := plotTop + float64(len(bars)*s.RowHeight)
	scale := (plotRight - plotLeft) / (maxValue - minValue)
	xFor := func(v float64) float64 {
		return plotLeft + (v-minValue)*scale
	}

	dc.SetFontFace(labelFace)
	dc.SetLineWidth(1)
	for _, tick := range ticks(minValue, maxValue) {
		x := xFor(tick)
		dc.SetRGBA(0.9, 0.9, 0.9, 0.35)
		dc.SetDash(4, 4)
		dc.DrawLine(x, plotTop, x, plotBottom)
		dc.Stroke()
		dc.SetDash()

		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawStringAnchored(common.FormatShortNotation(clampInt64(tick)), x, plotBottom+16, 0.5, 0.5)
	}
	dc.DrawStringAnchored("Coin (¢)", (plotLeft+plotRight)/2, plotBottom+40, 0.5, 0.5)

	// bars
	zeroX := xFor(0)
	barHeight := float64(s.RowHeight) * 0.7
	for i, bar := range bars {
		centerY := plotTop + float64(i*s.RowHeight) + float64(s.RowHeight)/2
		endX := xFor(float64(bar.Value))
		left, right := math.Min(zeroX, endX), math.Max(zeroX, endX)

		r, gr, b := barRGB(bar.Color)

		// glow
		for n := 1; n <= s.GlowShades; n++ {
			grow := float64(n) * 2
			dc.SetRGBA(r, gr, b, 0.5/float64(s.GlowShades))
			dc.DrawRectangle(left-grow/2, centerY-(barHeight+grow)/2, right-left+grow, barHeight+grow)
			dc.Fill()
		}
		dc.SetRGB(r, gr, b)
		dc.DrawRectangle(left, centerY-barHeight/2, right-left, barHeight)
		dc.Fill()

		dc.SetRGB(0.9, 0.9, 0.9)
		drawSharpText(dc, truncateLabel(bar.Label, 18), float64(s.Padding), centerY+4)

		if bar.Icon != nil {
			g.drawIcon(dc, bar.Icon, iconX(endX, zeroX, float64(s.IconSize)), centerY)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// drawIcon draws icon as a circle centred on (x, y)
func (g *ChartGenerator) drawIcon(dc *gg.Context, icon image.Image, x, y float64) {
	size := g.style.IconSize
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), icon, icon.Bounds(), draw.Over, nil)

	dc.Push()
	dc.DrawCircle(x, y, float64(size)/2)
	dc.Clip()
	dc.DrawImageAnchored(scaled, int(x), int(y), 0.5, 0.5)
	dc.ResetClip()
	dc.Pop()
}

// iconX keeps the icon inside the bar, or just past zero when the bar is
// too short to hold it
func iconX(endX, zeroX, size float64) float64 {
	if endX >= zeroX {
		if endX-zeroX < size {
			return zeroX + size/2
		}
		return endX - size/2 - 4
	}
	if zeroX-endX < size {
		return zeroX - size/2
	}
	return endX + size/2 + 4
}

// maxTicks bounds the grid lines drawn on the value axis
const maxTicks = 12

// valueRange always includes zero and never collapses to a single point
func valueRange(bars []Bar) (float64, float64) {
	var minValue, maxValue float64
	for _, bar := range bars {
		minValue = math.Min(minValue, float64(bar.Value))
		maxValue = math.Max(maxValue, float64(bar.Value))
	}
	if minValue == maxValue {
		maxValue = minValue + 1
	}
	return minValue, maxValue
}

// niceStep picks a 1, 2 or 5 times power of ten tick spacing giving at most
// about eight ticks across span
func niceStep(span float64) float64 {
	if span <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return 1
	}
	raw := span / 8
	magnitude := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= raw {
			return math.Max(step, 1)
		}
	}
	return math.Max(10*magnitude, 1)
}

// ticks returns the grid positions between minValue and maxValue, never more
// than maxTicks of them
func ticks(minValue, maxValue float64) []float64 {
	step := niceStep(maxValue - minValue)
	first := math.Ceil(minValue/step) * step
	n := int(math.Min(math.Floor((maxValue-first)/step), maxTicks-1))

	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, first+float64(i)*step)
	}
	return out
}

// clampInt64 converts v for labelling without overflowing
func clampInt64(v float64) int64 {
	switch {
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64 + 1
	}
	return int64(v)
}

func barRGB(c color.Color) (float64, float64, float64) {
	if c == nil {
		c = defaultBarColor
	}
	r, g, b, _ := c.RGBA()
	return float64(r) / 0xffff, float64(g) / 0xffff, float64(b) / 0xffff
}

func truncateLabel(label string, limit int) string {
	runes := []rune(label)
	if len(runes) <= limit {
		return label
	}
	return string(runes[:limit-1]) + "…"
}

func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

// loadFont loads a font from byte data
func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	})
	return face, nil
}

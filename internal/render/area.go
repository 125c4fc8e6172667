package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"surveycore/internal/aggregate"
)

// Fixed chart geometry. The horizontal axis spans the observed time domain;
// the vertical axis spans the fixed [0, CountCeiling] count domain, so a
// bucket above the ceiling clips rather than rescaling the chart.
const (
	chartWidth  = 720
	chartHeight = 360
	chartMargin = 20
)

var layerColors = map[string]color.RGBA{
	aggregate.GroupReligious: {0, 102, 204, 255},
	aggregate.GroupSecular:   {204, 102, 0, 255},
}

// scales maps hour keys and counts into pixel space.
type scales struct {
	tMin, tMax time.Time
}

func newScales(stream aggregate.Stream) scales {
	return scales{tMin: stream.TimeMin, tMax: stream.TimeMax}
}

func (s scales) x(ts time.Time) int {
	span := s.tMax.Sub(s.tMin)
	if span <= 0 {
		return chartMargin
	}
	frac := float64(ts.Sub(s.tMin)) / float64(span)
	return chartMargin + int(frac*float64(chartWidth-2*chartMargin))
}

func (s scales) y(count int) int {
	frac := float64(count) / float64(aggregate.CountCeiling)
	if frac > 1 {
		frac = 1 // clip at the fixed ceiling
	}
	if frac < 0 {
		frac = 0
	}
	return chartHeight - chartMargin - int(frac*float64(chartHeight-2*chartMargin))
}

// buildAreaPNG rasterizes the stacked response stream: one filled shape per
// layer, the secular layer sitting on the religious one. Columns between
// adjacent hour keys are filled by linear interpolation of floor and ceiling.
func buildAreaPNG(stream aggregate.Stream) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	sc := newScales(stream)
	for _, layer := range stream.Layers {
		fill := layerColors[layer.Group]
		if fill == (color.RGBA{}) {
			fill = color.RGBA{128, 128, 128, 255}
		}
		fillLayer(img, sc, layer, fill)
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fillLayer(img *image.RGBA, sc scales, layer aggregate.StreamLayer, fill color.RGBA) {
	points := layer.Points
	if len(points) == 0 {
		return
	}
	if len(points) == 1 {
		drawColumn(img, sc.x(points[0].Hour), sc.y(points[0].Ceil), sc.y(points[0].Floor), fill)
		return
	}
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		x0, x1 := sc.x(a.Hour), sc.x(b.Hour)
		if x1 <= x0 {
			x1 = x0 + 1
		}
		for x := x0; x <= x1 && x < chartWidth-chartMargin+1; x++ {
			t := float64(x-x0) / float64(x1-x0)
			floor := lerp(a.Floor, b.Floor, t)
			ceil := lerp(a.Ceil, b.Ceil, t)
			drawColumn(img, x, sc.y(ceil), sc.y(floor), fill)
		}
	}
}

func lerp(a, b int, t float64) int {
	return a + int(t*float64(b-a))
}

func drawColumn(img *image.RGBA, x, yTop, yBottom int, fill color.RGBA) {
	for y := yTop; y <= yBottom; y++ {
		img.SetRGBA(x, y, fill)
	}
}

// buildAreaSVG emits the same stacked shapes as vector markup: one polygon
// per layer tracing the ceiling left to right and the floor back.
func buildAreaSVG(stream aggregate.Stream) []byte {
	sc := newScales(stream)
	buf := &strings.Builder{}
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, chartWidth, chartHeight)
	buf.WriteString(`<rect width="100%" height="100%" fill="white"/>`)
	for _, layer := range stream.Layers {
		if len(layer.Points) == 0 {
			continue
		}
		fill := layerColors[layer.Group]
		fmt.Fprintf(buf, `<polygon fill="rgb(%d,%d,%d)" points="`, fill.R, fill.G, fill.B)
		for _, p := range layer.Points {
			fmt.Fprintf(buf, "%d,%d ", sc.x(p.Hour), sc.y(p.Ceil))
		}
		for i := len(layer.Points) - 1; i >= 0; i-- {
			p := layer.Points[i]
			fmt.Fprintf(buf, "%d,%d ", sc.x(p.Hour), sc.y(p.Floor))
		}
		buf.WriteString(`"/>`)
	}
	buf.WriteString(`</svg>`)
	return []byte(buf.String())
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package render draws the travelled route as a raster image.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

// ErrNotDrawable is returned for routes with fewer than two coordinates.
var ErrNotDrawable = errors.New("route needs at least two coordinates")

const (
	padding     = 24
	strokeWidth = 4
)

var (
	background = color.RGBA{0xf4, 0xf1, 0xea, 0xff}
	routeColor = color.RGBA{0x64, 0x95, 0xed, 0xff} // cornflower blue
	startColor = color.RGBA{0x2e, 0x8b, 0x57, 0xff}
	endColor   = color.RGBA{0xc0, 0x39, 0x2b, 0xff}
	textColor  = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

// Route draws coords as a polyline fitted to a width x height canvas. North is up.
func Route(coords []telemetry.Coordinate, width, height int) (*image.RGBA, error) {
	if len(coords) < 2 {
		return nil, ErrNotDrawable
	}
	if width <= 2*padding || height <= 2*padding {
		return nil, fmt.Errorf("canvas %dx%d too small", width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	project := fit(coords, width, height)

	z := vector.NewRasterizer(width, height)
	for i := 1; i < len(coords); i++ {
		x0, y0 := project(coords[i-1])
		x1, y1 := project(coords[i])
		z.Reset(width, height)
		segment(z, x0, y0, x1, y1, strokeWidth)
		z.Draw(img, img.Bounds(), &image.Uniform{routeColor}, image.Point{})
	}

	sx, sy := project(coords[0])
	marker(img, sx, sy, startColor)
	ex, ey := project(coords[len(coords)-1])
	marker(img, ex, ey, endColor)

	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{textColor},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(6, height-8),
	}
	d.DrawString(fmt.Sprintf("%d points", len(coords)))

	return img, nil
}

// EncodeRoutePNG renders coords and writes them to w as PNG.
func EncodeRoutePNG(w io.Writer, coords []telemetry.Coordinate, width, height int) error {
	img, err := Route(coords, width, height)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// fit returns an equirectangular projection that maps the bounding box of
// coords into the padded canvas, keeping the aspect ratio.
func fit(coords []telemetry.Coordinate, width, height int) func(telemetry.Coordinate) (float32, float32) {
	minLat, maxLat := coords[0].Latitude, coords[0].Latitude
	minLon, maxLon := coords[0].Longitude, coords[0].Longitude
	for _, c := range coords[1:] {
		minLat, maxLat = math.Min(minLat, c.Latitude), math.Max(maxLat, c.Latitude)
		minLon, maxLon = math.Min(minLon, c.Longitude), math.Max(maxLon, c.Longitude)
	}

	kx := math.Cos((minLat + maxLat) / 2 * math.Pi / 180)
	spanX := math.Max((maxLon-minLon)*kx, 1e-9)
	spanY := math.Max(maxLat-minLat, 1e-9)

	innerW := float64(width - 2*padding)
	innerH := float64(height - 2*padding)
	scale := math.Min(innerW/spanX, innerH/spanY)

	offX := padding + (innerW-spanX*scale)/2
	offY := padding + (innerH-spanY*scale)/2

	return func(c telemetry.Coordinate) (float32, float32) {
		x := offX + (c.Longitude-minLon)*kx*scale
		y := offY + (maxLat-c.Latitude)*scale
		return float32(x), float32(y)
	}
}

// segment adds a w-wide quad from (x0,y0) to (x1,y1).
func segment(z *vector.Rasterizer, x0, y0, x1, y1, w float32) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		dx, dy, l = 1, 0, 1
	}
	nx, ny := -dy/l*w/2, dx/l*w/2

	z.MoveTo(x0+nx, y0+ny)
	z.LineTo(x1+nx, y1+ny)
	z.LineTo(x1-nx, y1-ny)
	z.LineTo(x0-nx, y0-ny)
	z.ClosePath()
}

func marker(img *image.RGBA, x, y float32, c color.Color) {
	r := image.Rect(int(x)-5, int(y)-5, int(x)+6, int(y)+6)
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{c}, image.Point{}, draw.Over)
}

// Package gantt renders look-ahead rows as a three-week timeline image.
package gantt

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Scene is a resolution-independent description of the chart. Layout builds
// it; Rasterize turns it into pixels.
type Scene struct {
	Width      int
	Height     int
	Background color.RGBA
	Rects      []Rect
	Lines      []Line
	Texts      []Text
	Images     []Picture
}

// Rect is a filled rectangle.
type Rect struct {
	X, Y, W, H float64
	Fill       color.RGBA
	Label      string
}

// Line is a stroked segment. A non-zero Dash draws alternating on/off runs of that length.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         color.RGBA
	Width          int
	Dash           int
}

// Text is a single line of text whose baseline starts at X, Y.
type Text struct {
	X, Y  float64
	Value string
	Color color.RGBA
}

// Picture is a raster image placed and scaled into a square.
type Picture struct {
	X, Y, Size int
	Src        image.Image
}

// Hex parses "#rrggbb" into an opaque color.
func Hex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func mustHex(s string) color.RGBA {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

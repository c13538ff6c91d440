package gantt

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Rasterize paints the scene onto an RGBA canvas and encodes it as PNG.
func Rasterize(sc Scene) ([]byte, error) {
	img := Paint(sc)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Paint draws the scene in a fixed order: background, rects, lines, images, text.
func Paint(sc Scene) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, sc.Width, sc.Height))
	stddraw.Draw(img, img.Bounds(), &image.Uniform{C: sc.Background}, image.Point{}, stddraw.Src)

	for _, r := range sc.Rects {
		rect := image.Rect(
			int(math.Round(r.X)), int(math.Round(r.Y)),
			int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
		).Intersect(img.Bounds())
		stddraw.Draw(img, rect, &image.Uniform{C: r.Fill}, image.Point{}, stddraw.Over)
	}

	for _, l := range sc.Lines {
		strokeLine(img, l)
	}

	for _, p := range sc.Images {
		dst := image.Rect(p.X, p.Y, p.X+p.Size, p.Y+p.Size)
		xdraw.NearestNeighbor.Scale(img, dst, p.Src, p.Src.Bounds(), stddraw.Over, nil)
	}

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	for _, t := range sc.Texts {
		d.Src = &image.Uniform{C: t.Color}
		d.Dot = fixed.P(int(math.Round(t.X)), int(math.Round(t.Y)))
		d.DrawString(t.Value)
	}
	return img
}

// strokeLine steps along the segment one pixel at a time, widening
// perpendicular to the dominant axis.
func strokeLine(img *image.RGBA, l Line) {
	dx, dy := l.X2-l.X1, l.Y2-l.Y1
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	width := max(l.Width, 1)
	vertical := math.Abs(dy) >= math.Abs(dx)
	for i := 0; i <= steps; i++ {
		if l.Dash > 0 && (i/l.Dash)%2 == 1 {
			continue
		}
		x := int(math.Round(l.X1 + dx*float64(i)/float64(steps)))
		y := int(math.Round(l.Y1 + dy*float64(i)/float64(steps)))
		for w := 0; w < width; w++ {
			if vertical {
				plot(img, x+w-width/2, y, l.Stroke)
			} else {
				plot(img, x, y+w-width/2, l.Stroke)
			}
		}
	}
}

func plot(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	img.SetRGBA(x, y, c)
}

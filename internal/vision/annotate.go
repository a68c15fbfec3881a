package vision

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Annotation geometry.
const (
	BoundaryThickness = 2
	MarkerSize        = 20
)

// annotate draws onto a copy of frame: the outer and inner cut-lines
// across the full width, every contour outline, and a cross at each
// centroid. frame itself is not modified.
func annotate(frame image.Image, contours []Contour, votes []Vote, b ZoneBoundaries, pal palette) *image.NRGBA {
	// imaging.Clone rebases to (0,0), matching the mask coordinates.
	out := imaging.Clone(frame)
	bounds := out.Bounds()
	outerLim, innerLim := b.Limits(float64(bounds.Dy()))

	drawBoundary(out, outerLim, pal.outerLine)
	drawBoundary(out, innerLim, pal.innerLine)

	for _, c := range contours {
		n := len(c.Points)
		if n == 1 {
			setClipped(out, c.Points[0].X, c.Points[0].Y, pal.contour)
			continue
		}
		for i := 0; i < n; i++ {
			drawLine(out, c.Points[i], c.Points[(i+1)%n], pal.contour)
		}
	}

	for _, v := range votes {
		cx := int(math.Round(v.Centroid.X))
		cy := int(math.Round(v.Centroid.Y))
		half := MarkerSize / 2
		drawLine(out, image.Pt(cx-half, cy), image.Pt(cx+half, cy), pal.marker)
		drawLine(out, image.Pt(cx, cy-half), image.Pt(cx, cy+half), pal.marker)
	}
	return out
}

// drawBoundary paints a BoundaryThickness-row band centered on row lim.
// The band spans the whole frame width rather than stopping at x = height,
// so it reaches the right edge on landscape frames.
func drawBoundary(img *image.NRGBA, lim float64, c color.RGBA) {
	row := int(math.Round(lim))
	w := img.Bounds().Dx()
	for y := row - BoundaryThickness/2; y <= row+(BoundaryThickness-1)/2; y++ {
		for x := 0; x < w; x++ {
			setClipped(img, x, y, c)
		}
	}
}

// drawLine rasterizes a segment with Bresenham's algorithm, clipping
// pixels that fall outside the image.
func drawLine(img *image.NRGBA, p0, p1 image.Point, c color.RGBA) {
	dx := abs(p1.X - p0.X)
	dy := -abs(p1.Y - p0.Y)
	sx, sy := 1, 1
	if p0.X > p1.X {
		sx = -1
	}
	if p0.Y > p1.Y {
		sy = -1
	}
	e := dx + dy
	x, y := p0.X, p0.Y
	for {
		setClipped(img, x, y, c)
		if x == p1.X && y == p1.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func setClipped(img *image.NRGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

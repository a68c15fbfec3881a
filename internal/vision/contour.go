package vision

import (
	"image"
	"math"
)

// Contour is the outer border of one connected region of set mask pixels,
// stored as a closed chain with collinear runs collapsed to their ends.
type Contour struct {
	Points []image.Point `json:"points"`
}

// Moments holds the spatial moments used for the centroid.
type Moments struct {
	M00 float64 `json:"m00"`
	M10 float64 `json:"m10"`
	M01 float64 `json:"m01"`
}

// Centroid is a sub-pixel point in frame coordinates.
type Centroid struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// minArea is the smallest |m00| treated as a real region.
const minArea = 1.1920929e-07

// Moments computes the polygon moments of the contour with Green's
// theorem. M00 is the enclosed area and is always non-negative. Contours
// of one or two points, or that trace a line, have zero area.
func (c Contour) Moments() Moments {
	if len(c.Points) < 3 {
		return Moments{}
	}
	return polygonMoments(c.Points)
}

// greenMoments is the pure-Go polygon moment sum over at least three
// points.
func greenMoments(pts []image.Point) Moments {
	var a00, a10, a01 float64
	prev := pts[len(pts)-1]
	for _, p := range pts {
		xi, yi := float64(prev.X), float64(prev.Y)
		xj, yj := float64(p.X), float64(p.Y)
		cross := xi*yj - xj*yi
		a00 += cross
		a10 += cross * (xi + xj)
		a01 += cross * (yi + yj)
		prev = p
	}
	if math.Abs(a00) <= minArea {
		return Moments{}
	}

	m := Moments{M00: a00 / 2, M10: a10 / 6, M01: a01 / 6}
	if m.M00 < 0 {
		m.M00, m.M10, m.M01 = -m.M00, -m.M10, -m.M01
	}
	return m
}

// Area returns the enclosed polygon area.
func (c Contour) Area() float64 {
	return c.Moments().M00
}

// Centroid returns the area-weighted center of the contour. ok is false
// when the contour encloses no area.
func (c Contour) Centroid() (Centroid, bool) {
	m := c.Moments()
	if m.M00 <= minArea {
		return Centroid{}, false
	}
	return Centroid{X: m.M10 / m.M00, Y: m.M01 / m.M00}, true
}

// Neighbor offsets, clockwise on screen starting east.
var neighbors = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const dirWest = 4

// ExtractContours finds the outer border of every connected region of
// non-zero pixels in mask. Regions use 8-connectivity. Holes are not
// reported, and neither are regions lying inside another region's hole.
// An empty mask yields an empty, non-nil slice. Points are relative to the
// mask's top-left corner.
func ExtractContours(mask *image.Gray) []Contour {
	bounds := mask.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return make([]Contour, 0)
	}
	return findContours(mask)
}

// extractContours is the pure-Go border follower.
func extractContours(mask *image.Gray) []Contour {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	contours := make([]Contour, 0)

	set := make([]bool, w*h)
	found := false
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x, v := range row {
			if v != 0 {
				set[y*w+x] = true
				found = true
			}
		}
	}
	if !found {
		return contours
	}

	outside := markOutside(set, w, h)
	visited := make([]bool, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !set[i] || visited[i] {
				continue
			}
			// (x,y) is the first pixel of a new region in raster order,
			// so its left neighbor is background.
			markRegion(set, visited, x, y, w, h)
			if x > 0 && !outside[i-1] {
				continue
			}
			pts := traceBorder(set, x, y, w, h)
			contours = append(contours, Contour{Points: simplifyChain(pts)})
		}
	}
	return contours
}

// markOutside flags background pixels 4-connected to the image border.
// Unflagged background pixels belong to holes.
func markOutside(set []bool, w, h int) []bool {
	outside := make([]bool, w*h)
	stack := make([]image.Point, 0, 2*(w+h))
	push := func(x, y int) {
		i := y*w + x
		if set[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < h-1 {
			push(p.X, p.Y+1)
		}
	}
	return outside
}

// markRegion flood-fills the 8-connected region containing (startX,
// startY) into visited. Iterative to avoid deep recursion on large regions.
func markRegion(set, visited []bool, startX, startY, w, h int) {
	stack := []image.Point{{X: startX, Y: startY}}
	visited[startY*w+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range neighbors {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			i := ny*w + nx
			if set[i] && !visited[i] {
				visited[i] = true
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}
}

// traceBorder follows the outer border starting at (x0, y0), whose west
// neighbor is background. It returns every border pixel visited, in order,
// with pixels revisited on thin sections appearing more than once.
func traceBorder(set []bool, x0, y0, w, h int) []image.Point {
	isSet := func(p image.Point) bool {
		return p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h && set[p.Y*w+p.X]
	}

	start := image.Point{X: x0, Y: y0}

	// Clockwise from west for the first neighbor.
	first := -1
	for k := 0; k < 8; k++ {
		d := (dirWest + k) % 8
		if isSet(start.Add(neighbors[d])) {
			first = d
			break
		}
	}
	if first < 0 {
		return []image.Point{start}
	}

	p1 := start.Add(neighbors[first])
	pts := []image.Point{start}

	cur := start
	back := first // direction from cur to the previous pixel
	for {
		// Counterclockwise from the pixel after the previous one.
		next := -1
		for k := 1; k <= 8; k++ {
			d := (back - k + 8) % 8
			if isSet(cur.Add(neighbors[d])) {
				next = d
				break
			}
		}
		nextPt := cur.Add(neighbors[next])
		if nextPt == start && cur == p1 {
			return pts
		}
		back = (next + 4) % 8
		cur = nextPt
		pts = append(pts, cur)
	}
}

// simplifyChain drops every point whose incoming and outgoing steps share a
// direction, leaving only the ends of straight runs.
func simplifyChain(pts []image.Point) []image.Point {
	n := len(pts)
	if n <= 2 {
		return pts
	}

	out := make([]image.Point, 0, n)
	for i, p := range pts {
		prev := pts[(i-1+n)%n]
		next := pts[(i+1)%n]
		if p.Sub(prev) != next.Sub(p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return pts[:1]
	}
	return out
}

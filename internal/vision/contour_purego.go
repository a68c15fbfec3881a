//go:build !gocv

package vision

import "image"

func findContours(mask *image.Gray) []Contour {
	return extractContours(mask)
}

func polygonMoments(pts []image.Point) Moments {
	return greenMoments(pts)
}

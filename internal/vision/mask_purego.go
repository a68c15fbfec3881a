//go:build !gocv

package vision

import "image"

func thresholdMask(frame image.Image, rng ColorRange) *image.Gray {
	return threshold(frame, rng)
}

func blurMask(mask *image.Gray, radius float64) *image.Gray {
	return boxBlur(mask, radius)
}

func erodeMask(mask *image.Gray, iterations int) *image.Gray {
	return erode(mask, iterations)
}

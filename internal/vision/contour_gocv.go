//go:build gocv

package vision

import (
	"encoding/binary"
	"image"

	"gocv.io/x/gocv"
)

// findContours retrieves outer borders only, with straight runs compressed
// to their end points.
func findContours(mask *image.Gray) []Contour {
	src, err := grayToMat(mask)
	if err != nil {
		return extractContours(mask)
	}
	defer src.Close()

	found := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		contours = append(contours, Contour{Points: found.At(i).ToPoints()})
	}
	return contours
}

// polygonMoments hands the points to OpenCV as an N x 1 CV_32SC2 Mat, which
// cv::moments treats as a polygon rather than a raster.
func polygonMoments(pts []image.Point) Moments {
	buf := make([]byte, 8*len(pts))
	for i, p := range pts {
		binary.NativeEndian.PutUint32(buf[8*i:], uint32(int32(p.X)))
		binary.NativeEndian.PutUint32(buf[8*i+4:], uint32(int32(p.Y)))
	}
	mat, err := gocv.NewMatFromBytes(len(pts), 1, gocv.MatTypeCV32SC2, buf)
	if err != nil {
		return greenMoments(pts)
	}
	defer mat.Close()

	m := gocv.Moments(mat, false)
	return Moments{M00: m["m00"], M10: m["m10"], M01: m["m01"]}
}

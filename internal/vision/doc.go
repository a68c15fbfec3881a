// Package vision implements the per-frame zone classifier.
//
// A frame flows through a fixed pipeline:
//
//  1. Mask: RGB -> YUV conversion, inclusive per-channel range threshold,
//     optional box blur, optional erosion with an 11x11 rectangle.
//  2. Contours: outer borders of every connected region in the mask,
//     stored as simplified point chains.
//  3. Zones: each contour centroid votes for one of three horizontal bands
//     split by two cut-lines at fractions of the frame height.
//  4. Position: the first unoccupied band, checked in a fixed order, is
//     reported as the target location.
//
// In parallel an annotated copy of the frame is drawn (cut-lines, contour
// outlines, centroid markers). The current debug Stage selects whether the
// raw frame, the mask, or the annotated copy is returned as visible output.
// The Position is computed on every frame regardless of the stage.
//
// # Backends
//
// Built with -tags gocv, the mask and contour stages run in OpenCV through
// gocv. The default build uses a pure-Go implementation of the same
// operations, so the package also works where OpenCV is not installed.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner.
// Y grows downward, so "y > limit" means "below the cut-line".
//
// # Thread Safety
//
// A Pipeline processes one frame at a time and must not be called
// reentrantly. Position, Stage and AdvanceStage are safe to call from any
// goroutine while a frame is being processed.
package vision

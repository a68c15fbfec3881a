// Package imaging provides frame I/O for the zone vision pipeline.
//
// Frames come from files on disk: a directory replay, a single frame handed
// to the MCP server, or a snapshot saved by the camera loop. This package
// decodes them (PNG, JPEG, GIF, BMP, TIFF and WebP), optionally resizes them
// to the stream resolution, caches the decoded result and encodes pipeline
// output back to PNG.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. The sampling and encoding helpers
// are stateless and can be called concurrently on different frames.
//
// # Color Representation
//
// SampleColor reports a pixel in every space that matters when tuning the
// threshold window:
//   - Hex: "#RRGGBB" (alpha excluded)
//   - RGB / RGBA: 8-bit components
//   - YUV: the space the mask threshold is applied in
//   - HSL and HSV: Hue (0-360), other components as percentages
package imaging

package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// cachedFrame is a decoded frame plus the size it had on disk.
type cachedFrame struct {
	img          image.Image
	sourceWidth  int
	sourceHeight int
}

// FrameCache provides thread-safe caching of decoded frames to avoid
// redundant disk reads.
//
// The cache stores decoded frames keyed by their file path. When the cache
// was created with a target size, every frame is resized to exactly that
// size before it is cached, so the pipeline always sees the stream
// resolution regardless of how the snapshot was captured.
//
// Cached frames remain in memory until explicitly removed via Evict() or
// Clear(). A directory replay that loops over many files should evict each
// frame after processing it.
//
// # Example Usage
//
//	cache := imaging.NewFrameCache(320, 240)
//	img, err := cache.Load("/path/to/frame.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/frame.png")
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]cachedFrame
	width  int
	height int
}

// NewFrameCache creates an empty cache. When width and height are both
// positive, loaded frames are resized to width x height; otherwise frames
// keep their native size.
func NewFrameCache(width, height int) *FrameCache {
	if width <= 0 || height <= 0 {
		width, height = 0, 0
	}
	return &FrameCache{
		frames: make(map[string]cachedFrame),
		width:  width,
		height: height,
	}
}

// TargetSize returns the size frames are resized to, or (0, 0) when frames
// keep their native size.
func (c *FrameCache) TargetSize() (width, height int) {
	return c.width, c.height
}

// Load retrieves a frame from the cache or loads it from disk if not cached.
//
// EXIF orientation is applied while decoding so that a phone snapshot
// appears upright. The frame is cached using the exact path string
// provided.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func (c *FrameCache) Load(path string) (image.Image, error) {
	f, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return f.img, nil
}

func (c *FrameCache) load(path string) (cachedFrame, error) {
	c.mu.RLock()
	if f, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	if _, err := os.Stat(path); err != nil {
		return cachedFrame{}, fmt.Errorf("failed to open frame: %w", err)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return cachedFrame{}, fmt.Errorf("failed to decode frame: %w", err)
	}

	f := cachedFrame{
		img:          img,
		sourceWidth:  img.Bounds().Dx(),
		sourceHeight: img.Bounds().Dy(),
	}
	if c.width > 0 && (f.sourceWidth != c.width || f.sourceHeight != c.height) {
		f.img = imaging.Resize(img, c.width, c.height, imaging.Linear)
	}

	c.mu.Lock()
	c.frames[path] = f
	c.mu.Unlock()

	return f, nil
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]cachedFrame)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path. If the path is
// not in the cache, this method does nothing.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// FrameInfo contains metadata about a frame file.
type FrameInfo struct {
	// Width and Height are the dimensions the pipeline will see, after any
	// resize to the stream resolution.
	Width  int `json:"width"`
	Height int `json:"height"`

	// SourceWidth and SourceHeight are the dimensions stored in the file.
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`

	// Resized reports whether the frame was scaled on load.
	Resized bool `json:"resized"`

	// Format is the detected image format from the file extension.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded frame has an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the frame file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// formatByExt maps lower-case file extensions to format names.
var formatByExt = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
	".bmp":  "bmp",
	".tif":  "tiff",
	".tiff": "tiff",
	".webp": "webp",
}

// FormatForPath returns the format name for path's extension, or "unknown".
func FormatForPath(path string) string {
	if f, ok := formatByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return "unknown"
}

// IsFrameFile reports whether path has an extension the loader can decode.
func IsFrameFile(path string) bool {
	return FormatForPath(path) != "unknown"
}

// LoadFrameInfo loads a frame into the cache (if not already cached) and
// returns its metadata.
//
// Color depth and alpha are derived from the decoded source type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadFrameInfo(cache *FrameCache, path string) (*FrameInfo, error) {
	f, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch f.img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := f.img.Bounds()
	return &FrameInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		SourceWidth:   f.sourceWidth,
		SourceHeight:  f.sourceHeight,
		Resized:       bounds.Dx() != f.sourceWidth || bounds.Dy() != f.sourceHeight,
		Format:        FormatForPath(path),
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

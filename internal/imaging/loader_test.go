package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestImage writes a solid color PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writePNG(t, filepath.Join(t.TempDir(), "frame.png"), img)
}

func writePNG(t *testing.T, path string, img image.Image) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestNewFrameCache(t *testing.T) {
	cache := NewFrameCache(0, 0)
	if cache == nil {
		t.Fatal("NewFrameCache returned nil")
	}
	if cache.frames == nil {
		t.Fatal("NewFrameCache did not initialize frames map")
	}
	if w, h := cache.TargetSize(); w != 0 || h != 0 {
		t.Errorf("TargetSize: got %dx%d, want 0x0", w, h)
	}

	// A half-specified size means native size.
	if w, h := NewFrameCache(320, 0).TargetSize(); w != 0 || h != 0 {
		t.Errorf("TargetSize: got %dx%d, want 0x0", w, h)
	}
}

func TestFrameCache_Load(t *testing.T) {
	cache := NewFrameCache(0, 0)
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestFrameCache_LoadResizes(t *testing.T) {
	cache := NewFrameCache(320, 240)
	imgPath := createTestImage(t, 640, 480, color.RGBA{255, 255, 0, 255})

	img, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 240 {
		t.Errorf("resized dimensions: got %dx%d, want 320x240", img.Bounds().Dx(), img.Bounds().Dy())
	}
	r, g, b, _ := img.At(160, 120).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("resized color: got (%d,%d,%d), want yellow", r>>8, g>>8, b>>8)
	}
}

func TestFrameCache_Load_NonExistent(t *testing.T) {
	cache := NewFrameCache(0, 0)
	_, err := cache.Load("/nonexistent/path/to/image.png")
	if err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestFrameCache_Load_InvalidImage(t *testing.T) {
	cache := NewFrameCache(0, 0)

	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := cache.Load(path)
	if err == nil {
		t.Error("Load should fail for invalid image data")
	}
	if cache.Len() != 0 {
		t.Error("failed loads should not be cached")
	}
}

func TestFrameCache_Clear(t *testing.T) {
	cache := NewFrameCache(0, 0)
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Clear did not empty cache: %d frames remain", cache.Len())
	}
}

func TestFrameCache_Evict(t *testing.T) {
	cache := NewFrameCache(0, 0)
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 0, 255, 255})

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(imgPath)

	cache.mu.RLock()
	_, exists := cache.frames[imgPath]
	cache.mu.RUnlock()

	if exists {
		t.Error("Evict did not remove frame from cache")
	}
}

func TestFrameCache_Evict_NonExistent(t *testing.T) {
	cache := NewFrameCache(0, 0)
	// Should not panic
	cache.Evict("/nonexistent/path")
}

func TestFrameCache_ConcurrentAccess(t *testing.T) {
	cache := NewFrameCache(32, 24)
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errors := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errors <- err
			}
		}()
	}

	wg.Wait()
	close(errors)

	for err := range errors {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoadFrameInfo(t *testing.T) {
	cache := NewFrameCache(0, 0)
	imgPath := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})

	info, err := LoadFrameInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadFrameInfo failed: %v", err)
	}

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("size: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Resized {
		t.Error("Resized should be false for a native-size cache")
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadFrameInfo_Resized(t *testing.T) {
	cache := NewFrameCache(320, 240)
	imgPath := createTestImage(t, 64, 48, color.RGBA{10, 20, 30, 255})

	info, err := LoadFrameInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadFrameInfo failed: %v", err)
	}

	if info.Width != 320 || info.Height != 240 {
		t.Errorf("size: got %dx%d, want 320x240", info.Width, info.Height)
	}
	if info.SourceWidth != 64 || info.SourceHeight != 48 {
		t.Errorf("source size: got %dx%d, want 64x48", info.SourceWidth, info.SourceHeight)
	}
	if !info.Resized {
		t.Error("Resized should be true")
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path   string
		format string
	}{
		{"a.png", "png"},
		{"a.jpg", "jpeg"},
		{"a.JPEG", "jpeg"},
		{"a.gif", "gif"},
		{"a.bmp", "bmp"},
		{"a.tif", "tiff"},
		{"a.webp", "webp"},
		{"a.xyz", "unknown"},
		{"noext", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatForPath(tt.path); got != tt.format {
				t.Errorf("FormatForPath(%s): got %s, want %s", tt.path, got, tt.format)
			}
			if got := IsFrameFile(tt.path); got != (tt.format != "unknown") {
				t.Errorf("IsFrameFile(%s): got %v", tt.path, got)
			}
		})
	}
}

func TestLoadFrameInfo_NonExistent(t *testing.T) {
	cache := NewFrameCache(0, 0)
	_, err := LoadFrameInfo(cache, "/nonexistent/image.png")
	if err == nil {
		t.Error("LoadFrameInfo should fail for non-existent file")
	}
}

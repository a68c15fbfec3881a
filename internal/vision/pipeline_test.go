package vision

import (
	"image"
	"image/color"
	"math"
	"sync"
	"testing"
)

// noErosion returns the default config with denoising disabled so block
// geometry survives unchanged.
func noErosion() Config {
	cfg := DefaultConfig()
	cfg.ErosionIterations = 0
	return cfg
}

func mustNew(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

// streamFrame creates a 320x240 black frame with yellow blocks
func streamFrame(blocks ...image.Rectangle) *image.RGBA {
	img := createTestFrame(DefaultStreamWidth, DefaultStreamHeight, black)
	for _, b := range blocks {
		fillRect(img, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, yellow)
	}
	return img
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold.Min[0] = 300

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestPipeline_UnknownBeforeFirstFrame(t *testing.T) {
	p := mustNew(t, DefaultConfig())

	if got := p.Position(); got != PositionUnknown {
		t.Errorf("Position before any frame: got %v, want UNKNOWN", got)
	}
	if got := p.Stage(); got != StageAnnotated {
		t.Errorf("Stage: got %v, want annotated", got)
	}
}

func TestPipeline_EmptyFrameIsLeft(t *testing.T) {
	p := mustNew(t, DefaultConfig())

	res := p.Analyze(streamFrame())

	if len(res.Contours) != 0 {
		t.Errorf("Expected no contours, got %d", len(res.Contours))
	}
	if res.Position != PositionLeft {
		t.Errorf("FrameResult.Position: got %v, want LEFT", res.Position)
	}
	if got := p.Position(); got != PositionLeft {
		t.Errorf("published Position: got %v, want LEFT", got)
	}
}

func TestPipeline_Positions(t *testing.T) {
	outer := image.Rect(100, 210, 140, 230)  // centroid y=220
	middle := image.Rect(100, 140, 140, 160) // centroid y=150
	inner := image.Rect(100, 20, 140, 40)    // centroid y=30

	tests := []struct {
		name   string
		blocks []image.Rectangle
		want   Position
	}{
		{"outer only", []image.Rectangle{outer}, PositionCenter},
		{"outer and middle", []image.Rectangle{outer, middle}, PositionRight},
		{"outer and inner", []image.Rectangle{outer, inner}, PositionCenter},
		{"middle and inner", []image.Rectangle{middle, inner}, PositionLeft},
		{"all zones", []image.Rectangle{outer, middle, inner}, PositionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustNew(t, noErosion())
			res := p.Analyze(streamFrame(tt.blocks...))

			if len(res.Votes) != len(tt.blocks) {
				t.Errorf("votes: got %d, want %d", len(res.Votes), len(tt.blocks))
			}
			if res.Position != tt.want {
				t.Errorf("Position: got %v, want %v", res.Position, tt.want)
			}
			if got := p.Position(); got != tt.want {
				t.Errorf("published Position: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPipeline_DefaultErosion(t *testing.T) {
	p := mustNew(t, DefaultConfig())

	// 60x40 block shrinks to 30x10 at x 100..129, y 190..199.
	res := p.Analyze(streamFrame(image.Rect(100, 190, 159, 229)))

	if len(res.Votes) != 1 {
		t.Fatalf("votes: got %d, want 1", len(res.Votes))
	}
	c := res.Votes[0].Centroid
	if math.Abs(c.X-114.5) > 1e-9 || math.Abs(c.Y-194.5) > 1e-9 {
		t.Errorf("Centroid: got (%v,%v), want (114.5,194.5)", c.X, c.Y)
	}
	if res.Position != PositionCenter {
		t.Errorf("Position: got %v, want CENTER", res.Position)
	}
}

func TestPipeline_ErosionRemovesSpeckles(t *testing.T) {
	p := mustNew(t, DefaultConfig())

	res := p.Analyze(streamFrame(image.Rect(50, 220, 54, 224), image.Rect(200, 30, 205, 35)))

	if len(res.Contours) != 0 {
		t.Errorf("speckles should be eroded away, got %d contours", len(res.Contours))
	}
	if res.Position != PositionLeft {
		t.Errorf("Position: got %v, want LEFT", res.Position)
	}
}

func TestPipeline_HoldOnEmpty(t *testing.T) {
	tests := []struct {
		name string
		hold bool
		want Position
	}{
		{"recompute every frame", false, PositionLeft},
		{"hold last position", true, PositionCenter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := noErosion()
			cfg.HoldOnEmpty = tt.hold
			p := mustNew(t, cfg)

			p.Analyze(streamFrame(image.Rect(100, 210, 140, 230)))
			if got := p.Position(); got != PositionCenter {
				t.Fatalf("first frame: got %v, want CENTER", got)
			}

			p.Analyze(streamFrame())
			if got := p.Position(); got != tt.want {
				t.Errorf("after empty frame: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcessFrame_StageOutputs(t *testing.T) {
	frame := streamFrame(image.Rect(100, 210, 140, 230))
	p := mustNew(t, noErosion())

	// Annotated (initial stage): cut-lines at rows 192 and 108.
	out := p.ProcessFrame(frame)
	if got := color.RGBAModel.Convert(out.At(5, 192)).(color.RGBA); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("outer line pixel: got %v, want white", got)
	}
	if got := color.RGBAModel.Convert(out.At(5, 108)).(color.RGBA); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("inner line pixel: got %v, want red", got)
	}
	if got := color.RGBAModel.Convert(out.At(100, 215)).(color.RGBA); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("contour pixel: got %v, want green", got)
	}
	if got := color.RGBAModel.Convert(out.At(120, 220)).(color.RGBA); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("centroid marker pixel: got %v, want blue", got)
	}

	// Raw
	if got := p.AdvanceStage(); got != StageRaw {
		t.Fatalf("AdvanceStage: got %v, want raw", got)
	}
	out = p.ProcessFrame(frame)
	if got := color.RGBAModel.Convert(out.At(5, 192)).(color.RGBA); got != black {
		t.Errorf("raw output should be untouched, got %v", got)
	}
	if got := color.RGBAModel.Convert(out.At(120, 220)).(color.RGBA); got != yellow {
		t.Errorf("raw output block pixel: got %v, want yellow", got)
	}

	// Mask
	p.AdvanceStage()
	out = p.ProcessFrame(frame)
	if got := color.RGBAModel.Convert(out.At(120, 220)).(color.RGBA); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("mask set pixel: got %v, want white", got)
	}
	if got := color.RGBAModel.Convert(out.At(5, 5)).(color.RGBA); got != black {
		t.Errorf("mask clear pixel: got %v, want black", got)
	}

	if got := p.FramesProcessed(); got != 3 {
		t.Errorf("FramesProcessed: got %d, want 3", got)
	}
}

func TestProcessFrame_PositionIndependentOfStage(t *testing.T) {
	frame := streamFrame(image.Rect(100, 210, 140, 230), image.Rect(100, 140, 140, 160))

	for _, st := range stages {
		t.Run(st.String(), func(t *testing.T) {
			cfg := noErosion()
			cfg.InitialStage = st
			p := mustNew(t, cfg)
			p.ProcessFrame(frame)
			if got := p.Position(); got != PositionRight {
				t.Errorf("Position: got %v, want RIGHT", got)
			}
		})
	}
}

func TestProcessFrame_PreservesDimensions(t *testing.T) {
	frame := image.NewRGBA(image.Rect(7, 3, 87, 63))

	for _, st := range stages {
		t.Run(st.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.InitialStage = st
			p := mustNew(t, cfg)
			out := p.ProcessFrame(frame)
			if out.Bounds().Dx() != 80 || out.Bounds().Dy() != 60 {
				t.Errorf("output size: got %dx%d, want 80x60", out.Bounds().Dx(), out.Bounds().Dy())
			}
		})
	}
}

func TestProcessFrame_DoesNotModifyInput(t *testing.T) {
	frame := streamFrame(image.Rect(100, 210, 140, 230))
	before := append([]uint8(nil), frame.Pix...)

	p := mustNew(t, noErosion())
	p.ProcessFrame(frame)

	for i := range before {
		if frame.Pix[i] != before[i] {
			t.Fatalf("input modified at byte %d", i)
		}
	}
}

func TestPipeline_ConcurrentQueries(t *testing.T) {
	p := mustNew(t, noErosion())
	frames := []image.Image{
		streamFrame(image.Rect(100, 210, 140, 230)),
		streamFrame(),
		streamFrame(image.Rect(100, 210, 140, 230), image.Rect(100, 140, 140, 160)),
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			switch pos := p.Position(); pos {
			case PositionUnknown, PositionLeft, PositionCenter, PositionRight:
			default:
				t.Errorf("torn position value %d", pos)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if s := p.AdvanceStage(); !s.Valid() {
				t.Errorf("invalid stage %d", s)
				return
			}
		}
	}()

	for i := 0; i < 9; i++ {
		p.ProcessFrame(frames[i%len(frames)])
	}
	close(done)
	wg.Wait()

	if got := p.Position(); got != PositionRight {
		t.Errorf("final Position: got %v, want RIGHT", got)
	}
}

func TestProcessorFunc(t *testing.T) {
	p := mustNew(t, DefaultConfig())
	var proc Processor = ProcessorFunc(p.ProcessFrame)

	out := proc.ProcessFrame(streamFrame())

	if out.Bounds().Dx() != DefaultStreamWidth {
		t.Errorf("width: got %d, want %d", out.Bounds().Dx(), DefaultStreamWidth)
	}
	if got := p.Position(); got != PositionLeft {
		t.Errorf("Position: got %v, want LEFT", got)
	}
}

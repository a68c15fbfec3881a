package server

import (
	"encoding/json"
	"fmt"
	"log"
	"math"

	"github.com/ironsheep/zonevision/internal/imaging"
	"github.com/ironsheep/zonevision/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "vision_process_frame").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if s.Debug {
		log.Printf("tools/call %s", params.Name)
	}
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.Debug {
			log.Printf("tools/call %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Pipeline
	case "vision_process_frame":
		return s.handleProcessFrame(args)
	case "vision_get_position":
		return s.handleGetPosition()
	case "vision_advance_stage":
		return s.handleAdvanceStage()
	case "vision_get_stage":
		return s.handleGetStage()
	case "vision_get_config":
		return s.handleGetConfig()

	// Tuning
	case "vision_sample_color":
		return s.handleSampleColor(args)
	case "vision_sample_colors_multi":
		return s.handleSampleColorsMulti(args)
	case "vision_frame_info":
		return s.handleFrameInfo(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating missing arguments as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Pipeline Handlers ===

type processFrameArgs struct {
	Path         string  `json:"path"`
	Stage        string  `json:"stage"`
	IncludeImage *bool   `json:"include_image"`
	Scale        float64 `json:"scale"`
}

// ContourSummary describes one extracted contour.
type ContourSummary struct {
	Points   int              `json:"points"`
	Area     float64          `json:"area"`
	Centroid *vision.Centroid `json:"centroid,omitempty"`
	Zone     string           `json:"zone,omitempty"`
}

// CutLines are the boundary rows for the processed frame.
type CutLines struct {
	OuterRow float64 `json:"outer_row"`
	InnerRow float64 `json:"inner_row"`
}

// ProcessFrameResult is the outcome of vision_process_frame.
type ProcessFrameResult struct {
	Width           int                   `json:"width"`
	Height          int                   `json:"height"`
	Position        vision.Position       `json:"position"`
	Occupancy       vision.ZoneOccupancy  `json:"occupancy"`
	CutLines        CutLines              `json:"cut_lines"`
	Contours        []ContourSummary      `json:"contours"`
	Stage           vision.Stage          `json:"stage"`
	FramesProcessed uint64                `json:"frames_processed"`
	Image           *imaging.EncodedFrame `json:"image,omitempty"`
}

func (s *Server) handleProcessFrame(args json.RawMessage) (interface{}, error) {
	var a processFrameArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	stage := s.pipeline.Stage()
	if a.Stage != "" {
		st, err := vision.ParseStage(a.Stage)
		if err != nil {
			return nil, err
		}
		stage = st
	}

	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res := s.pipeline.Analyze(frame)
	outerRow, innerRow := s.pipeline.Config().Boundaries.Limits(float64(res.Height))

	result := &ProcessFrameResult{
		Width:           res.Width,
		Height:          res.Height,
		Position:        res.Position,
		Occupancy:       res.Occupancy,
		CutLines:        CutLines{OuterRow: outerRow, InnerRow: innerRow},
		Contours:        summarizeContours(res, s.pipeline.Config().Boundaries),
		Stage:           stage,
		FramesProcessed: s.pipeline.FramesProcessed(),
	}

	if a.IncludeImage == nil || *a.IncludeImage {
		enc, err := imaging.EncodePNG(res.Output(frame, stage), a.Scale)
		if err != nil {
			return nil, err
		}
		result.Image = enc
	}
	return result, nil
}

func summarizeContours(res *vision.FrameResult, b vision.ZoneBoundaries) []ContourSummary {
	out := make([]ContourSummary, 0, len(res.Contours))
	for _, c := range res.Contours {
		sum := ContourSummary{Points: len(c.Points), Area: c.Area()}
		if centroid, ok := c.Centroid(); ok {
			sum.Centroid = &centroid
			sum.Zone = vision.ZoneFor(centroid.Y, float64(res.Height), b).String()
		}
		out = append(out, sum)
	}
	return out
}

// PositionResult is the outcome of vision_get_position.
type PositionResult struct {
	Position        vision.Position `json:"position"`
	FramesProcessed uint64          `json:"frames_processed"`
}

func (s *Server) handleGetPosition() (interface{}, error) {
	return &PositionResult{
		Position:        s.pipeline.Position(),
		FramesProcessed: s.pipeline.FramesProcessed(),
	}, nil
}

// StageResult reports the debug stage.
type StageResult struct {
	Stage vision.Stage `json:"stage"`
}

func (s *Server) handleAdvanceStage() (interface{}, error) {
	return &StageResult{Stage: s.pipeline.AdvanceStage()}, nil
}

func (s *Server) handleGetStage() (interface{}, error) {
	return &StageResult{Stage: s.pipeline.Stage()}, nil
}

// ConfigResult is the outcome of vision_get_config.
type ConfigResult struct {
	vision.Config
	StreamWidth  int `json:"stream_width"`
	StreamHeight int `json:"stream_height"`
}

func (s *Server) handleGetConfig() (interface{}, error) {
	w, h := s.cache.TargetSize()
	return &ConfigResult{Config: s.pipeline.Config(), StreamWidth: w, StreamHeight: h}, nil
}

// === Tuning Handlers ===

type sampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// ThresholdColorResult is a color sample plus whether it passes the
// configured threshold window.
type ThresholdColorResult struct {
	imaging.ColorResult
	InRange bool `json:"in_range"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	c, err := imaging.SampleColor(img, a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return &ThresholdColorResult{
		ColorResult: *c,
		InRange:     s.pipeline.Config().Threshold.Contains(c.YUV.Triple()),
	}, nil
}

type sampleColorsMultiArgs struct {
	Path   string                 `json:"path"`
	Points []imaging.LabeledPoint `json:"points"`
}

// LabeledThresholdSample is one point of vision_sample_colors_multi.
type LabeledThresholdSample struct {
	imaging.LabeledColorResult
	InRange bool `json:"in_range"`
}

// MultiSampleResult is the outcome of vision_sample_colors_multi.
type MultiSampleResult struct {
	Samples []LabeledThresholdSample `json:"samples"`

	// SuggestedRange is the tightest YUV window covering every sample.
	SuggestedRange *vision.ColorRange `json:"suggested_range,omitempty"`
}

func (s *Server) handleSampleColorsMulti(args json.RawMessage) (interface{}, error) {
	var a sampleColorsMultiArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	samples, err := imaging.SampleColorsMulti(img, a.Points)
	if err != nil {
		return nil, err
	}

	rng := s.pipeline.Config().Threshold
	result := &MultiSampleResult{Samples: make([]LabeledThresholdSample, 0, len(samples))}
	for _, smp := range samples {
		result.Samples = append(result.Samples, LabeledThresholdSample{
			LabeledColorResult: smp,
			InRange:            rng.Contains(smp.Color.YUV.Triple()),
		})
	}
	if len(samples) > 0 {
		suggested := coveringRange(samples)
		result.SuggestedRange = &suggested
	}
	return result, nil
}

// coveringRange returns the per-channel min/max of the samples' YUV values.
func coveringRange(samples []imaging.LabeledColorResult) vision.ColorRange {
	r := vision.ColorRange{
		Min: vision.Scalar{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: vision.Scalar{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for _, smp := range samples {
		v := smp.Color.YUV.Triple()
		for i := 0; i < 3; i++ {
			r.Min[i] = math.Min(r.Min[i], float64(v[i]))
			r.Max[i] = math.Max(r.Max[i], float64(v[i]))
		}
	}
	return r
}

type frameInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleFrameInfo(args json.RawMessage) (interface{}, error) {
	var a frameInfoArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

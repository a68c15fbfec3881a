package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the frame image file",
	}
}

func noArguments() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Pipeline
		{
			Name: "vision_process_frame",
			Description: "Run one frame through the zone pipeline: threshold in YUV, denoise, extract contours, " +
				"vote centroids into the outer/middle/inner bands and resolve the target position. " +
				"Publishes the position and returns the per-contour breakdown plus a PNG of the selected debug stage.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"stage": map[string]interface{}{
						"type":        "string",
						"description": "Stage to render instead of the current debug stage. Does not change the debug stage.",
						"enum":        []string{"raw", "mask", "annotated", "noop", "threshold"},
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the rendered stage as base64 PNG. Default true",
						"default":     true,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the returned image (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "vision_get_position",
			Description: "Get the most recently published target position (LEFT, CENTER, RIGHT or UNKNOWN). UNKNOWN until the first frame is processed.",
			InputSchema: noArguments(),
		},
		{
			Name:        "vision_advance_stage",
			Description: "Advance the debug stage raw -> mask -> annotated -> raw. Equivalent to tapping the preview.",
			InputSchema: noArguments(),
		},
		{
			Name:        "vision_get_stage",
			Description: "Get the current debug stage.",
			InputSchema: noArguments(),
		},
		{
			Name:        "vision_get_config",
			Description: "Get the session configuration: threshold window, blur radius, erosion iterations, zone boundaries and stream size.",
			InputSchema: noArguments(),
		},

		// Tuning
		{
			Name:        "vision_sample_color",
			Description: "Sample the color at a pixel in RGB, YUV, HSL and HSV, and report whether it passes the configured threshold window.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "vision_sample_colors_multi",
			Description: "Sample several labeled pixels, report which pass the threshold window and suggest the tightest YUV window covering all of them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Points to sample",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"path", "points"},
			},
		},
		{
			Name:        "vision_frame_info",
			Description: "Load a frame file and return its dimensions as the pipeline sees them, its stored size, format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

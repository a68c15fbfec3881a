// Package server implements the MCP (Model Context Protocol) server for the
// zone vision pipeline.
//
// The server exposes a single vision.Pipeline session. Any MCP client can
// feed it frames from disk, read back the published target position and
// cycle the debug stage, which is how the pipeline is tuned and inspected
// without a camera attached.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Pipeline:
//   - vision_process_frame: Process a frame and publish its position
//   - vision_get_position: Latest published position
//   - vision_advance_stage: Tap event, cycles raw/mask/annotated
//   - vision_get_stage: Current debug stage
//   - vision_get_config: Session configuration
//
// Tuning:
//   - vision_sample_color: Pixel color in RGB/YUV/HSL/HSV plus threshold test
//   - vision_sample_colors_multi: Several labeled pixels and a covering YUV window
//   - vision_frame_info: Frame metadata
//
// # Concurrency
//
// Requests are handled one at a time, so frames are processed sequentially.
// Position and stage reads go through the pipeline's atomic state and
// never observe a half-written value.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	p, _ := vision.New(vision.DefaultConfig())
//	srv := server.New(p, imaging.NewFrameCache(320, 240))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server

// Package server implements the MCP (Model Context Protocol) server for
// calcaneal pitch measurement.
//
// This package provides a JSON-RPC 2.0 server that exposes the measurement
// pipeline through the MCP protocol, so an MCP client can measure lateral
// foot radiographs, review the landmarks and correct them.
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
// Image information:
//   - image_load: Load a radiograph and report size, format and bit depth
//   - image_evict: Drop one cached radiograph, or clear the cache
//
// Automatic measurement:
//   - pitch_analyze: Segment, locate landmarks, measure and classify
//   - pitch_analyze_mask: Same, starting from an existing bone mask
//   - pitch_analyze_batch: Analyze several files, with a summary
//
// Manual editing:
//   - pitch_recompute: Re-measure edited calcaneus and ground lines
//   - pitch_classify: Diagnosis for an angle
//   - pitch_measure_lines: Angle between two free lines, graded as Meary's angle
//
// Side marker:
//   - pitch_detect_side: OCR of the L/R marker
//
// pitch_analyze_batch reports progress with notifications/progress when the
// call carries a _meta.progressToken.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across tool calls, so image_load followed by
// pitch_analyze reads the file once. A file replaced on disk is only read
// again after image_evict drops its path.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed"
//   - data: {"kind", "message"} for measurement failures, where kind is one
//     of input_error, model_unavailable, no_bone_detected or
//     ambiguous_geometry; the plain error string otherwise
//
// # Usage
//
//	an := analyzer.New(pipeline)
//	srv := server.New(an, server.WithLogger(log))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server

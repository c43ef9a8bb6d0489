// Package server implements the MCP (Model Context Protocol) server that
// drives a progressive pixelation session.
//
// A client loads one image at a time. Loading starts an engine that computes
// every pixelation level in the background while the client moves a level
// selector; the level the client selects is computed next, so a slider feels
// responsive even on large images.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session:
//   - pixel_load: Load an image and start computing its levels
//   - pixel_close: Stop background work and drop the image
//   - pixel_status: State of every level
//
// Levels:
//   - pixel_select: Move the level selector, get the level if ready
//   - pixel_get_level: Get a level as PNG
//   - pixel_retry: Compute a failed level again
//   - pixel_export: Write ready levels to a directory or .tar.zst archive
//
// Inspection:
//   - pixel_sample_color: Color at a pixel and its block's sample point
//   - pixel_palette: Dominant colors
//   - pixel_crop: Zoom into a region
//   - pixel_grid_overlay: Draw the block grid
//   - pixel_compare: Difference between two levels
//
// Inspection tools take an optional level and default to the selection. The
// level has to be ready; they never wait for it.
//
// # Notifications
//
// When the selected level becomes ready the server pushes
//
//	{"jsonrpc":"2.0","method":"notifications/pixel/level_ready",
//	 "params":{"session":1,"level":12,"block_size":24,"selected":true}}
//
// Levels finished while another level is selected are not announced unless
// [engine] notify_all is set; pixel_status shows them. Failures are always
// announced as notifications/pixel/level_failed. The session number lets a
// client drop late notifications from an image it already replaced.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server

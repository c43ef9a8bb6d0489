package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// levelProperty is the optional level argument shared by the inspection
// tools.
var levelProperty = map[string]interface{}{
	"type":        "integer",
	"description": "Pixelation level (0 = original). Defaults to the current selection. The level must be ready.",
	"minimum":     0,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "pixel_load",
			Description: "Load an image file and start computing its pixelation levels in the background. Replaces the current image. Returns the level plan (number of levels and block size per level). Level readiness is pushed as notifications/pixel/level_ready.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (PNG, JPEG, GIF, BMP or WebP)",
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Read the file again even if it was loaded before. Default false",
						"default":     false,
					},
					"initial_selection": map[string]interface{}{
						"type":        "integer",
						"description": "Level selected before the first pixel_select. Defaults to the server configuration",
						"minimum":     0,
					},
					"strategy": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"sweep", "nearest"},
						"description": "Background order: sweep from fine to coarse with a jump to the selection, or always the unfinished level nearest the selection",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pixel_close",
			Description: "Stop background work and discard the current image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "pixel_status",
			Description: "Get the state of every level (empty, computing, ready, failed), the selection and whether background work has finished.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Levels
		{
			Name:        "pixel_select",
			Description: "Select the level to display. Out-of-range levels are clamped. The selected level is computed next if it is not ready yet. Returns the level as base64-encoded PNG when it is ready.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": map[string]interface{}{
						"type":        "integer",
						"description": "Pixelation level (0 = original)",
					},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Scale the returned image down to this width (0 = full size). Defaults to the server configuration",
						"minimum":     0,
					},
				},
				"required": []string{"level"},
			},
		},
		{
			Name:        "pixel_get_level",
			Description: "Get the state of a level and, when it is ready, the level as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": map[string]interface{}{
						"type":        "integer",
						"description": "Pixelation level (0 = original). Defaults to the current selection",
						"minimum":     0,
					},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Scale the returned image down to this width (0 = full size). Defaults to the server configuration",
						"minimum":     0,
					},
				},
			},
		},
		{
			Name:        "pixel_retry",
			Description: "Compute a failed level again. Returns the new state of the level.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": map[string]interface{}{
						"type":        "integer",
						"description": "Failed pixelation level",
						"minimum":     1,
					},
				},
				"required": []string{"level"},
			},
		},
		{
			Name:        "pixel_export",
			Description: "Write every ready level to a directory, one file per level, or to a zstd-compressed tar archive when the path ends in .tar.zst.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Output directory or .tar.zst archive path",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "bmp"},
						"description": "Image format of the level files. Defaults to the server configuration",
					},
					"jpeg_quality": map[string]interface{}{
						"type":        "integer",
						"description": "JPEG quality (1-100)",
						"minimum":     1,
						"maximum":     100,
					},
					"prefix": map[string]interface{}{
						"type":        "string",
						"description": "File name prefix. Default \"level\"",
					},
					"wait_seconds": map[string]interface{}{
						"type":        "number",
						"description": "Wait up to this long for background work to finish before exporting. Default 0",
						"minimum":     0,
					},
				},
				"required": []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "pixel_sample_color",
			Description: "Get the color at a pixel of a level, and the source pixel its block color was taken from.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": levelProperty,
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "pixel_palette",
			Description: "Extract the most common colors of a level, optionally within a region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": levelProperty,
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 8",
						"default":     8,
					},
					"exact": map[string]interface{}{
						"type":        "boolean",
						"description": "Count exact colors instead of grouping similar ones. Default false",
						"default":     false,
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional region to analyze",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
					},
				},
			},
		},
		{
			Name:        "pixel_crop",
			Description: "Crop a rectangular region from a level and return it as base64-encoded PNG. Enlarging keeps blocks sharp.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": levelProperty,
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 4.0 to zoom in). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "pixel_grid_overlay",
			Description: "Draw the block grid of a level on top of it. Grid spacing is the block size of the level.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": levelProperty,
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color as hex (e.g., '#FF0000' or '#FF000080' with alpha). Default semi-transparent red",
						"default":     "#FF000080",
					},
				},
			},
		},
		{
			Name:        "pixel_compare",
			Description: "Measure how much a level differs from another level, by default from the original (level 0).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": levelProperty,
					"against": map[string]interface{}{
						"type":        "integer",
						"description": "Level to compare against. Default 0 (original)",
						"default":     0,
					},
				},
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

package server

import (
	"testing"
)

func toolsByName() map[string]Tool {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}
	return toolMap
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"pixel_load",
		"pixel_close",
		"pixel_status",
		"pixel_select",
		"pixel_get_level",
		"pixel_retry",
		"pixel_export",
		"pixel_sample_color",
		"pixel_palette",
		"pixel_crop",
		"pixel_grid_overlay",
		"pixel_compare",
	}

	toolMap := toolsByName()
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Dispatch(t *testing.T) {
	s := newTestServer(t)

	// Every advertised tool is routed; without a session the routed ones
	// fail with errNoSession instead of "unknown tool".
	for _, tool := range GetToolDefinitions() {
		_, err := s.executeTool(tool.Name, nil)
		if err != nil && err.Error() == "unknown tool: "+tool.Name {
			t.Errorf("%s is advertised but not dispatched", tool.Name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter is declared
			if required, ok := tool.InputSchema["required"].([]string); ok {
				for _, r := range required {
					if _, ok := props[r]; !ok {
						t.Errorf("required parameter %s is not a property", r)
					}
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := map[string][]string{
		"pixel_load":         {"path"},
		"pixel_select":       {"level"},
		"pixel_retry":        {"level"},
		"pixel_export":       {"path"},
		"pixel_sample_color": {"x", "y"},
		"pixel_crop":         {"x1", "y1", "x2", "y2"},
	}

	toolMap := toolsByName()
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			tool, ok := toolMap[name]
			if !ok {
				t.Fatalf("tool %s not found", name)
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}

			have := make(map[string]bool)
			for _, r := range required {
				have[r] = true
			}
			for _, r := range want {
				if !have[r] {
					t.Errorf("%s should require '%s'", name, r)
				}
			}
		})
	}
}

func TestToolDefinitions_LevelIsOptionalForInspection(t *testing.T) {
	toolMap := toolsByName()
	for _, name := range []string{"pixel_get_level", "pixel_sample_color", "pixel_palette", "pixel_crop", "pixel_grid_overlay", "pixel_compare"} {
		tool := toolMap[name]
		props, _ := tool.InputSchema["properties"].(map[string]interface{})
		if _, ok := props["level"]; !ok {
			t.Errorf("%s should accept a level", name)
		}
		required, _ := tool.InputSchema["required"].([]string)
		for _, r := range required {
			if r == "level" {
				t.Errorf("%s should default level to the selection", name)
			}
		}
	}
}

func TestToolDefinitions_Enums(t *testing.T) {
	toolMap := toolsByName()

	tests := []struct {
		tool, param string
		want        []string
	}{
		{"pixel_load", "strategy", []string{"sweep", "nearest"}},
		{"pixel_export", "format", []string{"png", "jpeg", "bmp"}},
	}

	for _, tt := range tests {
		props := toolMap[tt.tool].InputSchema["properties"].(map[string]interface{})
		param, ok := props[tt.param].(map[string]interface{})
		if !ok {
			t.Errorf("%s.%s not found", tt.tool, tt.param)
			continue
		}
		enum, ok := param["enum"].([]string)
		if !ok {
			t.Errorf("%s.%s should have an enum", tt.tool, tt.param)
			continue
		}
		if len(enum) != len(tt.want) {
			t.Errorf("%s.%s enum: got %v, want %v", tt.tool, tt.param, enum, tt.want)
			continue
		}
		for i := range enum {
			if enum[i] != tt.want[i] {
				t.Errorf("%s.%s enum: got %v, want %v", tt.tool, tt.param, enum, tt.want)
				break
			}
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"pixel_load":         {"reload": false},
		"pixel_crop":         {"scale": 1.0},
		"pixel_palette":      {"count": 8, "exact": false},
		"pixel_grid_overlay": {"grid_color": "#FF000080"},
		"pixel_compare":      {"against": 0},
	}

	toolMap := toolsByName()
	for toolName, expectedDefaults := range toolDefaults {
		tool, ok := toolMap[toolName]
		if !ok {
			t.Errorf("Tool %s not found", toolName)
			continue
		}

		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: properties should be a map", toolName)
			continue
		}

		for paramName, expectedDefault := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found or not a map", toolName, paramName)
				continue
			}

			actualDefault, ok := param["default"]
			if !ok {
				t.Errorf("%s.%s: missing default value", toolName, paramName)
				continue
			}
			if actualDefault != expectedDefault {
				t.Errorf("%s.%s: default got %v (%T), want %v (%T)", toolName, paramName, actualDefault, actualDefault, expectedDefault, expectedDefault)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}

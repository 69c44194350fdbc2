package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// detectionsSchema describes the detector output accepted by the grouping tools.
func detectionsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"bbox": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "number"},
					"minItems":    4,
					"maxItems":    4,
					"description": "Bounding box [x1, y1, x2, y2] in pixels",
				},
				"confidence": map[string]interface{}{"type": "number"},
				"class":      map[string]interface{}{"type": "string"},
			},
			"required": []string{"bbox"},
		},
		"description": "Detections produced by the object detector",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_dimensions",
			Description: "Get the width, height and format of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "group_products",
			Description: "Group detected products by color and shelf row, and write a visualization " +
				"with one translucent color per group next to the image (detected_<name>). " +
				"Returns the detections with group and color added.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image the detections refer to",
					},
					"detections": detectionsSchema(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for the visualization. Defaults to detected_<name> beside the image",
					},
				},
				"required": []string{"image_path", "detections"},
			},
		},
		{
			Name: "extract_features",
			Description: "Return the grouping feature vector (weighted Lab color means and vertical position) of every detection, before and after normalization. " +
				"Detections are filtered like group_products, so indices match its grouped_detections.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image the detections refer to",
					},
					"detections": detectionsSchema(),
				},
				"required": []string{"image_path", "detections"},
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

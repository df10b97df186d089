package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// detectionListSchema describes an array of OCR text detections.
func detectionListSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"DetectedText": map[string]interface{}{
					"type":        "string",
					"description": "Recognized text of the fragment",
				},
				"Polygon": map[string]interface{}{
					"type":        "array",
					"description": "Corner points of the fragment in pixels",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"X": map[string]interface{}{"type": "number"},
							"Y": map[string]interface{}{"type": "number"},
						},
					},
				},
			},
			"required": []string{"DetectedText"},
		},
	}
}

// differenceListSchema describes an array of difference items as returned
// by documents_compare.
func differenceListSchema() map[string]interface{} {
	side := map[string]interface{}{
		"type": []string{"object", "null"},
		"properties": map[string]interface{}{
			"x":      map[string]interface{}{"type": "number"},
			"y":      map[string]interface{}{"type": "number"},
			"width":  map[string]interface{}{"type": "number"},
			"height": map[string]interface{}{"type": "number"},
			"text":   map[string]interface{}{"type": "string"},
		},
	}
	return map[string]interface{}{
		"type":        "array",
		"description": "Differences exactly as returned by documents_compare",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{"type": "string"},
				"type": map[string]interface{}{
					"type": "string",
					"enum": []string{"only-in-first", "only-in-second"},
				},
				"image1": side,
				"image2": side,
			},
			"required": []string{"id", "type"},
		},
	}
}

func boxSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x":      map[string]interface{}{"type": "number"},
			"y":      map[string]interface{}{"type": "number"},
			"width":  map[string]interface{}{"type": "number"},
			"height": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Reconciliation
		{
			Name:        "documents_compare",
			Description: "Compare the OCR text detections of two document images and return the fragments that appear in only one of them. Fragments both images share are removed locally; the rest are confirmed by the reasoning service, which ignores OCR noise and layout shifts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"first":  detectionListSchema("Text detections of the first image"),
					"second": detectionListSchema("Text detections of the second image"),
				},
				"required": []string{"first", "second"},
			},
		},
		{
			Name:        "documents_compare_images",
			Description: "Run OCR on two image files with Tesseract, then compare them like documents_compare.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path1": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the first image",
					},
					"path2": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the second image",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code, e.g. 'eng' or 'chi_sim+eng'. Defaults to the server setting",
					},
					"level": map[string]interface{}{
						"type":        "string",
						"description": "Detection granularity. Default 'line'",
						"enum":        []string{"line", "word"},
						"default":     "line",
					},
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Drop detections below this confidence (0.0-1.0). Default 0",
						"default":     0.0,
					},
				},
				"required": []string{"path1", "path2"},
			},
		},
		{
			Name:        "documents_first_pass",
			Description: "Show the fragments left after removing text both images share (after normalization), without calling the reasoning service. Useful to see what would be sent for confirmation.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"first":  detectionListSchema("Text detections of the first image"),
					"second": detectionListSchema("Text detections of the second image"),
				},
				"required": []string{"first", "second"},
			},
		},

		// Review helpers
		{
			Name:        "differences_render",
			Description: "Draw the differences of one side onto its page image and return a base64-encoded PNG. Each difference is outlined and labeled with its id.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the page image of the chosen side",
					},
					"differences": differenceListSchema(),
					"side": map[string]interface{}{
						"type":        "string",
						"description": "Which image the path shows. Default 'first'",
						"enum":        []string{"first", "second"},
						"default":     "first",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Optional highlight color as hex (e.g., '#FF0000'). Defaults to the side's color",
					},
					"dim": map[string]interface{}{
						"type":        "number",
						"description": "Darken the page by this fraction (0.0-1.0). Default 0.25",
						"default":     0.25,
					},
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each box with its difference id. Default true",
						"default":     true,
					},
				},
				"required": []string{"path", "differences"},
			},
		},
		{
			Name:        "difference_crop",
			Description: "Crop the area around one difference box and return it as base64-encoded PNG. Use this to zoom into a difference for close inspection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"box": boxSchema("The image1 or image2 box of a difference"),
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context around the box. Default 8",
						"default":     8,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "box"},
			},
		},
		{
			Name:        "differences_pair",
			Description: "Pair only-in-first and only-in-second differences whose boxes sit at nearly the same place on the page. A pair usually means the text was edited rather than added or removed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"differences": differenceListSchema(),
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Maximum distance in pixels between box centers. Default 100",
						"default":     100,
					},
				},
				"required": []string{"differences"},
			},
		},
		{
			Name:        "text_normalize",
			Description: "Show the normalized form used to decide whether two fragments are the same: only letters, digits, underscore and CJK ideographs, lowercased.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text to normalize",
					},
				},
				"required": []string{"text"},
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

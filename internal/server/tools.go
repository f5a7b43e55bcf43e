package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pointSchema matches the JSON form of image.Point.
var pointSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"X": map[string]interface{}{"type": "integer"},
		"Y": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"X", "Y"},
}

// segmentSchema matches the JSON form of geometry.Segment.
var segmentSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"p1": pointSchema,
		"p2": pointSchema,
	},
	"required": []string{"p1", "p2"},
}

func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load a radiograph and return its dimensions, format and bit depth. The decoded image is cached for later pitch_* calls on the same path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_evict",
			Description: "Drop a radiograph from the image cache so the next call re-reads it from disk, e.g. after the file was replaced. Without a path every cached image is dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Path of the image to drop; omit to clear the cache"),
				},
				"required": []string{},
			},
		},

		// Automatic measurement
		{
			Name:        "pitch_analyze",
			Description: "Segment the calcaneus in a lateral foot radiograph and measure the calcaneal pitch angle. Returns the angle in degrees (one decimal), the diagnosis (Pes Planus < 15, Borderline < 20, Normal <= 30, Pes Cavus above), the heel and toe landmarks, and the calcaneus and ground lines. Requires the segmentation model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the radiograph"),
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the radiograph with landmarks and lines drawn, as base64 PNG (default: false)",
					},
					"detect_side": map[string]interface{}{
						"type":        "boolean",
						"description": "Read the L/R side marker with OCR (default: false)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pitch_analyze_mask",
			Description: "Measure the calcaneal pitch angle from an existing binary bone mask instead of running the model. Any non-black pixel is bone. The radiograph is optional and only used for annotation.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mask_path": pathProperty("Absolute path to the mask image"),
					"path":      pathProperty("Absolute path to the radiograph the mask belongs to (optional)"),
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Return an annotated image as base64 PNG (default: false)",
					},
				},
				"required": []string{"mask_path"},
			},
		},
		{
			Name:        "pitch_analyze_batch",
			Description: "Analyze several radiographs in order. Failures are reported per file and do not stop the batch. Returns every item plus a summary with counts per diagnosis and angle statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"description": "Absolute paths to the radiographs",
						"items":       map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"paths"},
			},
		},

		// Manual editing
		{
			Name:        "pitch_recompute",
			Description: "Recompute angle and diagnosis from edited overlay lines, as returned by pitch_analyze. The first line is the calcaneus line from heel to toe; the second is the horizontal ground line.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lines": map[string]interface{}{
						"type":        "array",
						"description": "Calcaneus line followed by ground line",
						"items":       segmentSchema,
						"minItems":    2,
						"maxItems":    2,
					},
				},
				"required": []string{"lines"},
			},
		},
		{
			Name:        "pitch_classify",
			Description: "Classify a calcaneal pitch angle in degrees and return its diagnosis and display colour.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"angle": map[string]interface{}{
						"type":        "number",
						"description": "Angle in degrees",
					},
				},
				"required": []string{"angle"},
			},
		},
		{
			Name:        "pitch_measure_lines",
			Description: "Measure the angle between two hand-drawn lines (0-180 degrees) and grade it as a Meary angle: Normal <= 4, Mild Pes Planus <= 15, Severe Pes Planus <= 30, otherwise Deformity / Error.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"line1": segmentSchema,
					"line2": segmentSchema,
				},
				"required": []string{"line1", "line2"},
			},
		},

		// Side marker
		{
			Name:        "pitch_detect_side",
			Description: "Read the L/R side marker burned into the upper corners of a radiograph. Returns \"L\", \"R\" or an empty side when no marker was found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the radiograph"),
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

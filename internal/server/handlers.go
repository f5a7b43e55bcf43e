package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/calcpitch-mcp/internal/analyzer"
	"github.com/ironsheep/calcpitch-mcp/internal/batch"
	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
	"github.com/ironsheep/calcpitch-mcp/internal/imaging"
	"github.com/ironsheep/calcpitch-mcp/internal/mask"
	"github.com/ironsheep/calcpitch-mcp/internal/pitch"
)

// maskLevel is the luminance at or above which a mask file pixel is bone.
const maskLevel = 128

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "pitch_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token of the request.
	Meta struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta"`
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
// Measurement failures carry {"kind", "message"} as error data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(&params)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Debug("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", errorData(err))
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
func (s *Server) executeTool(params *ToolCallParams) (interface{}, error) {
	args := params.Arguments
	switch params.Name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_evict":
		return s.handleImageEvict(args)

	// Automatic measurement
	case "pitch_analyze":
		return s.handlePitchAnalyze(args)
	case "pitch_analyze_mask":
		return s.handlePitchAnalyzeMask(args)
	case "pitch_analyze_batch":
		return s.handlePitchAnalyzeBatch(args, params.Meta.ProgressToken)

	// Manual editing
	case "pitch_recompute":
		return s.handlePitchRecompute(args)
	case "pitch_classify":
		return s.handlePitchClassify(args)
	case "pitch_measure_lines":
		return s.handlePitchMeasureLines(args)

	case "pitch_detect_side":
		return s.handlePitchDetectSide(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", params.Name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

// errorData is the error payload for a failed tool: the kind and message of
// an analysis error, or the plain error text.
func errorData(err error) interface{} {
	var ae *analyzer.Error
	if errors.As(err, &ae) {
		return map[string]string{
			"kind":    string(ae.Kind),
			"message": ae.Error(),
		}
	}
	return err.Error()
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &analyzer.Error{Kind: analyzer.KindInput, Message: "invalid arguments", Err: err}
	}
	return nil
}

func inputError(format string, a ...interface{}) error {
	return &analyzer.Error{Kind: analyzer.KindInput, Message: fmt.Sprintf(format, a...)}
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, inputError("path is required")
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, &analyzer.Error{Kind: analyzer.KindInput, Message: "cannot load image", Err: err}
	}
	return info, nil
}

type imageEvictResult struct {
	// Evicted is the dropped path, or "*" when the cache was cleared.
	Evicted string `json:"evicted"`
	Cached  int    `json:"cached"`
}

func (s *Server) handleImageEvict(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		s.cache.Clear()
		a.Path = "*"
	} else {
		s.cache.Evict(a.Path)
	}
	s.log.WithField("path", a.Path).Debug("image cache evicted")
	return imageEvictResult{Evicted: a.Path, Cached: s.cache.Len()}, nil
}

// loadGray reads a radiograph through the cache.
func (s *Server) loadGray(path string) (*image.Gray, error) {
	if path == "" {
		return nil, inputError("path is required")
	}
	img, err := s.cache.LoadGray(path, s.window)
	if err != nil {
		return nil, &analyzer.Error{Kind: analyzer.KindInput, Message: fmt.Sprintf("cannot read %s", path), Err: err}
	}
	return img, nil
}

// === Measurement Handlers ===

// analysisOutput is the tool form of an analyzer.Result.
type analysisOutput struct {
	*analyzer.Result

	A image.Point `json:"a"`
	B image.Point `json:"b"`

	// AnnotatedPNG is the base64 PNG review image, when requested.
	AnnotatedPNG string `json:"annotated_png,omitempty"`
}

func (s *Server) output(res *analyzer.Result, base image.Image, annotate bool) (*analysisOutput, error) {
	out := &analysisOutput{Result: res}
	out.A, out.B = res.Points()
	if !annotate {
		return out, nil
	}
	annotated := res.Annotated
	if annotated == nil {
		var err error
		if annotated, err = imaging.Annotate(base, res.Overlay()); err != nil {
			return nil, err
		}
	}
	encoded, err := imaging.EncodePNGBase64(annotated)
	if err != nil {
		return nil, err
	}
	out.AnnotatedPNG = encoded
	return out, nil
}

type pitchAnalyzeArgs struct {
	Path       string `json:"path"`
	Annotate   bool   `json:"annotate"`
	DetectSide bool   `json:"detect_side"`
}

func (s *Server) handlePitchAnalyze(args json.RawMessage) (interface{}, error) {
	var a pitchAnalyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadGray(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.Analyze(img)
	if err != nil {
		return nil, err
	}
	res.Path = a.Path

	if a.DetectSide && res.Side == "" {
		if s.sides == nil {
			return nil, inputError("side-marker detection is disabled")
		}
		side, err := s.sides.DetectSide(img)
		if err != nil {
			s.log.WithError(err).WithField("path", a.Path).Warn("side marker detection failed")
		}
		res.Side = side
	}

	return s.output(res, img, a.Annotate)
}

type pitchAnalyzeMaskArgs struct {
	MaskPath string `json:"mask_path"`
	Path     string `json:"path"`
	Annotate bool   `json:"annotate"`
}

func (s *Server) handlePitchAnalyzeMask(args json.RawMessage) (interface{}, error) {
	var a pitchAnalyzeMaskArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MaskPath == "" {
		return nil, inputError("mask_path is required")
	}
	src, err := s.cache.Load(a.MaskPath)
	if err != nil {
		return nil, &analyzer.Error{Kind: analyzer.KindInput, Message: fmt.Sprintf("cannot read %s", a.MaskPath), Err: err}
	}
	m := mask.FromImage(src, maskLevel)

	var img image.Image
	if a.Path != "" {
		gray, err := s.loadGray(a.Path)
		if err != nil {
			return nil, err
		}
		img = gray
	}

	res, err := s.analyzer.AnalyzeMask(img, m)
	if err != nil {
		return nil, err
	}
	res.Path = a.Path

	base := img
	if base == nil {
		base = m.ToImage()
	}
	return s.output(res, base, a.Annotate)
}

type pitchAnalyzeBatchArgs struct {
	Paths []string `json:"paths"`
}

type batchOutput struct {
	Items   []batch.Item  `json:"items"`
	Summary batch.Summary `json:"summary"`
}

func (s *Server) handlePitchAnalyzeBatch(args json.RawMessage, progressToken interface{}) (interface{}, error) {
	var a pitchAnalyzeBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, inputError("paths must not be empty")
	}

	var progress batch.ProgressFunc
	if progressToken != nil {
		progress = func(done, total int) {
			s.notify("notifications/progress", map[string]interface{}{
				"progressToken": progressToken,
				"progress":      done,
				"total":         total,
			})
		}
	}

	items := batch.NewItems(a.Paths)
	if err := s.worker.Run(context.Background(), items, progress, nil); err != nil {
		return nil, err
	}
	return &batchOutput{Items: items, Summary: batch.Summarize(items)}, nil
}

type pitchRecomputeArgs struct {
	Lines []geometry.Segment `json:"lines"`
}

func (s *Server) handlePitchRecompute(args json.RawMessage) (interface{}, error) {
	var a pitchRecomputeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Lines) != 2 {
		return nil, inputError("expected 2 lines, got %d", len(a.Lines))
	}
	res, err := analyzer.Recompute([2]geometry.Segment{a.Lines[0], a.Lines[1]})
	if err != nil {
		return nil, err
	}
	return s.output(res, nil, false)
}

type pitchClassifyArgs struct {
	Angle *float64 `json:"angle"`
}

type classifyOutput struct {
	Angle     float64         `json:"angle"`
	Diagnosis pitch.Diagnosis `json:"diagnosis"`
	Color     string          `json:"color"`
}

func (s *Server) handlePitchClassify(args json.RawMessage) (interface{}, error) {
	var a pitchClassifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Angle == nil {
		return nil, inputError("angle is required")
	}
	d := pitch.Classify(*a.Angle)
	return &classifyOutput{Angle: *a.Angle, Diagnosis: d, Color: d.Hex()}, nil
}

type pitchMeasureLinesArgs struct {
	Line1 geometry.Segment `json:"line1"`
	Line2 geometry.Segment `json:"line2"`
}

type linesOutput struct {
	Angle     float64          `json:"angle"`
	Deviation float64          `json:"deviation"`
	Grade     pitch.MearyGrade `json:"grade"`
	Color     string           `json:"color"`
}

func (s *Server) handlePitchMeasureLines(args json.RawMessage) (interface{}, error) {
	var a pitchMeasureLinesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	angle := pitch.LineAngle(a.Line1, a.Line2)
	grade := pitch.GradeMeary(angle)
	return &linesOutput{
		Angle:     angle,
		Deviation: pitch.MearyDeviation(angle),
		Grade:     grade,
		Color:     grade.Hex(),
	}, nil
}

// === Side Marker Handler ===

type sideOutput struct {
	Path string `json:"path"`
	Side string `json:"side"`
}

func (s *Server) handlePitchDetectSide(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.sides == nil {
		return nil, inputError("side-marker detection is disabled")
	}
	if a.Path == "" {
		return nil, inputError("path is required")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, &analyzer.Error{Kind: analyzer.KindInput, Message: fmt.Sprintf("cannot read %s", a.Path), Err: err}
	}
	side, err := s.sides.DetectSide(img)
	if err != nil {
		return nil, err
	}
	return &sideOutput{Path: a.Path, Side: side}, nil
}

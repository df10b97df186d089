package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/docdiff/internal/geometry"
	"github.com/ironsheep/docdiff/internal/imaging"
	"github.com/ironsheep/docdiff/internal/ocr"
	"github.com/ironsheep/docdiff/internal/reconcile"
	"github.com/ironsheep/docdiff/internal/textnorm"
)

// ErrNoEngine is returned by the compare tools when no reasoning service is
// configured.
var ErrNoEngine = errors.New("reasoning service not configured: set DOCDIFF_REASONING_URL")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "documents_compare").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments and invalid detection sets return -32602; any other
// tool failure returns -32000 with the error text in data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log := s.log.WithField("tool", params.Name).WithError(err)
		var inputErr *reconcile.InputError
		if errors.As(err, &inputErr) {
			log.Debug("Rejected tool arguments")
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		log.Warn("Tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Reconciliation
	case "documents_compare":
		return s.handleDocumentsCompare(ctx, args)
	case "documents_compare_images":
		return s.handleDocumentsCompareImages(ctx, args)
	case "documents_first_pass":
		return s.handleDocumentsFirstPass(args)

	// Review helpers
	case "differences_render":
		return s.handleDifferencesRender(args)
	case "difference_crop":
		return s.handleDifferenceCrop(args)
	case "differences_pair":
		return s.handleDifferencesPair(args)
	case "text_normalize":
		return s.handleTextNormalize(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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

// mustMarshalJSON converts a value to pretty-printed JSON without HTML
// escaping, so OCR text such as "A&B" stays readable. On marshal failure it
// returns an empty string.
func mustMarshalJSON(v interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}

// decodeArgs unmarshals tool arguments, reporting failures as input errors.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &reconcile.InputError{Field: "arguments", Reason: err.Error()}
	}
	return nil
}

func (s *Server) runReconcile(ctx context.Context, a, b []reconcile.TextDetection) ([]reconcile.DifferenceItem, error) {
	if s.engine == nil {
		return nil, ErrNoEngine
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.engine.Reconcile(ctx, a, b)
}

// === Reconciliation Handlers ===

type documentsCompareArgs struct {
	First  []reconcile.TextDetection `json:"first"`
	Second []reconcile.TextDetection `json:"second"`
}

type compareResult struct {
	Differences []reconcile.DifferenceItem `json:"differences"`
	Count       int                        `json:"count"`
}

func (s *Server) handleDocumentsCompare(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentsCompareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	items, err := s.runReconcile(ctx, a.First, a.Second)
	if err != nil {
		return nil, err
	}
	return &compareResult{Differences: items, Count: len(items)}, nil
}

type documentsCompareImagesArgs struct {
	Path1         string  `json:"path1"`
	Path2         string  `json:"path2"`
	Language      string  `json:"language"`
	Level         string  `json:"level"`
	MinConfidence float64 `json:"min_confidence"`
}

type compareImagesResult struct {
	compareResult
	FirstDetections  int `json:"first_detections"`
	SecondDetections int `json:"second_detections"`
}

func (s *Server) handleDocumentsCompareImages(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentsCompareImagesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path1 == "" || a.Path2 == "" {
		return nil, &reconcile.InputError{Field: "path1/path2", Reason: "both image paths are required"}
	}
	if s.engine == nil {
		return nil, ErrNoEngine
	}

	opts := ocr.Options{
		Language:      a.Language,
		Level:         ocr.Level(a.Level),
		MinConfidence: a.MinConfidence,
	}
	if opts.Language == "" {
		opts.Language = s.language
	}

	first, err := s.detect(a.Path1, opts)
	if err != nil {
		return nil, fmt.Errorf("OCR of %s failed: %w", a.Path1, err)
	}
	second, err := s.detect(a.Path2, opts)
	if err != nil {
		return nil, fmt.Errorf("OCR of %s failed: %w", a.Path2, err)
	}

	items, err := s.runReconcile(ctx, first, second)
	if err != nil {
		return nil, err
	}
	return &compareImagesResult{
		compareResult:    compareResult{Differences: items, Count: len(items)},
		FirstDetections:  len(first),
		SecondDetections: len(second),
	}, nil
}

type residualEntry struct {
	Index      int                  `json:"index"`
	Text       string               `json:"text"`
	Normalized string               `json:"normalized"`
	Box        geometry.BoundingBox `json:"box"`
}

type firstPassResult struct {
	OnlyInFirst  []residualEntry `json:"only_in_first"`
	OnlyInSecond []residualEntry `json:"only_in_second"`
}

func residualEntries(items []reconcile.Indexed) []residualEntry {
	out := make([]residualEntry, 0, len(items))
	for _, it := range items {
		out = append(out, residualEntry{
			Index:      it.Index,
			Text:       it.Text,
			Normalized: textnorm.Normalize(it.Text),
			Box:        it.Box(),
		})
	}
	return out
}

func (s *Server) handleDocumentsFirstPass(args json.RawMessage) (interface{}, error) {
	var a documentsCompareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := reconcile.Validate(a.First, a.Second); err != nil {
		return nil, err
	}
	r := reconcile.FirstPass(a.First, a.Second)
	return &firstPassResult{
		OnlyInFirst:  residualEntries(r.OnlyInA),
		OnlyInSecond: residualEntries(r.OnlyInB),
	}, nil
}

// === Review Helper Handlers ===

type differencesRenderArgs struct {
	Path        string                     `json:"path"`
	Differences []reconcile.DifferenceItem `json:"differences"`
	Side        string                     `json:"side"`
	Color       string                     `json:"color"`
	Dim         *float64                   `json:"dim"`
	Labels      *bool                      `json:"labels"`
}

type renderResult struct {
	*imaging.RenderResult
	Side  string `json:"side"`
	Color string `json:"color"`
}

func (s *Server) handleDifferencesRender(args json.RawMessage) (interface{}, error) {
	var a differencesRenderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Side == "" {
		a.Side = "first"
	}

	side, err := imaging.ParseSide(a.Side)
	if err != nil {
		return nil, &reconcile.InputError{Field: "side", Reason: err.Error()}
	}
	c := side.Color()
	if a.Color != "" {
		if c, err = imaging.ParseColor(a.Color); err != nil {
			return nil, &reconcile.InputError{Field: "color", Reason: err.Error()}
		}
	}
	opts := imaging.RenderOptions{Dim: 0.25, Labels: true}
	if a.Dim != nil {
		opts.Dim = *a.Dim
	}
	if a.Labels != nil {
		opts.Labels = *a.Labels
	}

	var highlights []imaging.Highlight
	for _, it := range a.Differences {
		box := it.First
		if side == imaging.SideSecond {
			box = it.Second
		}
		if box == nil {
			continue
		}
		highlights = append(highlights, imaging.Highlight{Box: box.BoundingBox, Label: it.ID, Color: c})
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := imaging.RenderHighlights(img, highlights, opts)
	if err != nil {
		return nil, err
	}
	return &renderResult{RenderResult: res, Side: side.String(), Color: imaging.Hex(c)}, nil
}

type differenceCropArgs struct {
	Path    string                `json:"path"`
	Box     *geometry.BoundingBox `json:"box"`
	Padding *int                  `json:"padding"`
	Scale   float64               `json:"scale"`
}

func (s *Server) handleDifferenceCrop(args json.RawMessage) (interface{}, error) {
	var a differenceCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Box == nil {
		return nil, &reconcile.InputError{Field: "box", Reason: "missing"}
	}
	padding := 8
	if a.Padding != nil {
		padding = *a.Padding
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.CropBox(img, *a.Box, padding, a.Scale)
}

type differencesPairArgs struct {
	Differences []reconcile.DifferenceItem `json:"differences"`
	Threshold   float64                    `json:"threshold"`
}

type pairResult struct {
	Pairs     []reconcile.Pair           `json:"pairs"`
	Unpaired  []reconcile.DifferenceItem `json:"unpaired"`
	Threshold float64                    `json:"threshold"`
}

func (s *Server) handleDifferencesPair(args json.RawMessage) (interface{}, error) {
	var a differencesPairArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Threshold < 0 {
		return nil, &reconcile.InputError{Field: "threshold", Reason: "must not be negative"}
	}
	if a.Threshold == 0 {
		a.Threshold = s.threshold
	}
	pairs, unpaired := reconcile.PairClose(a.Differences, a.Threshold)
	return &pairResult{Pairs: pairs, Unpaired: unpaired, Threshold: a.Threshold}, nil
}

type textNormalizeArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleTextNormalize(args json.RawMessage) (interface{}, error) {
	var a textNormalizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return map[string]string{
		"text":       a.Text,
		"normalized": textnorm.Normalize(a.Text),
	}, nil
}

package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docdiff/internal/geometry"
	"github.com/ironsheep/docdiff/internal/imaging"
	"github.com/ironsheep/docdiff/internal/logging"
	"github.com/ironsheep/docdiff/internal/ocr"
	"github.com/ironsheep/docdiff/internal/reconcile"
)

const (
	serverName      = "docdiff"
	protocolVersion = "2024-11-05"
)

// DetectFunc recognizes the text of the image at path.
type DetectFunc func(path string, opts ocr.Options) ([]reconcile.TextDetection, error)

// Config wires a Server to its collaborators. Only Cache is required.
type Config struct {
	// Engine reconciles detection sets. When nil, the compare tools report
	// that no reasoning service is configured; the other tools still work.
	Engine *reconcile.Engine

	Cache *imaging.ImageCache

	// Detect defaults to ocr.DetectFile.
	Detect DetectFunc

	// Timeout bounds each reconciliation. Zero means no deadline.
	Timeout time.Duration

	// CloseThreshold is the default for differences_pair.
	CloseThreshold float64

	// OCRLanguage is the default language for documents_compare_images.
	OCRLanguage string

	Version string
	Logger  logrus.FieldLogger
}

// Server handles MCP protocol communication
type Server struct {
	engine    *reconcile.Engine
	cache     *imaging.ImageCache
	detect    DetectFunc
	timeout   time.Duration
	threshold float64
	language  string
	version   string
	log       logrus.FieldLogger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(cfg Config) (*Server, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("server: image cache is required")
	}

	s := &Server{
		engine:    cfg.Engine,
		cache:     cfg.Cache,
		detect:    cfg.Detect,
		timeout:   cfg.Timeout,
		threshold: cfg.CloseThreshold,
		language:  cfg.OCRLanguage,
		version:   cfg.Version,
		log:       cfg.Logger,
	}
	if s.detect == nil {
		s.detect = ocr.DetectFile
	}
	if s.threshold <= 0 {
		s.threshold = geometry.DefaultCloseThreshold
	}
	if s.language == "" {
		s.language = ocr.DefaultLanguage
	}
	if s.version == "" {
		s.version = "dev"
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s, nil
}

// Run serves MCP over stdin and stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from in and writes responses to
// out. Requests are handled in order.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Detection sets can be large
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("Failed to parse request")
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.WithError(err).Error("Failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.WithField("method", req.Method).Debug("Handling request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": s.version,
			},
		},
	}
}

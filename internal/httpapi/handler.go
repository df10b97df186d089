// Package httpapi exposes document comparison over HTTP.
//
// Routes:
//
//	GET  /                        liveness probe
//	POST /api/compare-documents   {image1Result, image2Result} -> {differences}
//
// Each side of the compare request is an OCR vendor result, either
// {"result":{"TextDetections":[...]}}, {"TextDetections":[...]} or a bare
// detection array.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docdiff/internal/logging"
	"github.com/ironsheep/docdiff/internal/reasoning"
	"github.com/ironsheep/docdiff/internal/reconcile"
)

// MaxBodyBytes caps the compare request body.
const MaxBodyBytes = 32 << 20

// Reconciler is the comparison operation served by the API.
type Reconciler interface {
	Reconcile(ctx context.Context, a, b []reconcile.TextDetection) ([]reconcile.DifferenceItem, error)
}

// Options configures a Handler.
type Options struct {
	// Timeout bounds each compare request, reasoning call included.
	// Zero means no deadline beyond the client's.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// Handler serves the HTTP API.
type Handler struct {
	rec     Reconciler
	timeout time.Duration
	log     logrus.FieldLogger
	mux     *http.ServeMux
}

// NewHandler returns the API handler, wrapped in CORS and access logging.
func NewHandler(rec Reconciler, opts Options) (http.Handler, error) {
	if rec == nil {
		return nil, errors.New("httpapi: reconciler is required")
	}
	h := &Handler{rec: rec, timeout: opts.Timeout, log: opts.Logger}
	if h.log == nil {
		h.log = logging.Discard()
	}

	h.mux = http.NewServeMux()
	h.mux.HandleFunc("GET /{$}", h.handleStatus)
	h.mux.HandleFunc("POST /api/compare-documents", h.handleCompare)

	return AccessLog(h.log, CORS(h.mux)), nil
}

type statusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Message: "document comparison service is up",
		Status:  "running",
	})
}

type compareRequest struct {
	Image1Result json.RawMessage `json:"image1Result"`
	Image2Result json.RawMessage `json:"image2Result"`
}

type compareResponse struct {
	Differences []reconcile.DifferenceItem `json:"differences"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &reconcile.InputError{Field: "body", Reason: err.Error()})
		return
	}

	first, err := decodeSide("image1Result", req.Image1Result)
	if err != nil {
		h.writeError(w, err)
		return
	}
	second, err := decodeSide("image2Result", req.Image2Result)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	diffs, err := h.rec.Reconcile(ctx, first, second)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"first":       len(first),
		"second":      len(second),
		"differences": len(diffs),
	}).Info("Compared documents")
	writeJSON(w, http.StatusOK, compareResponse{Differences: diffs})
}

// decodeSide turns one side of the request into detections. Any decoding
// failure is an input error naming the field.
func decodeSide(field string, raw json.RawMessage) ([]reconcile.TextDetection, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, &reconcile.InputError{Field: field, Reason: "missing"}
	}
	detections, err := reconcile.DecodeDetections(raw)
	if err != nil {
		var inputErr *reconcile.InputError
		if errors.As(err, &inputErr) {
			return nil, &reconcile.InputError{Field: field + "." + inputErr.Field, Reason: inputErr.Reason}
		}
		return nil, &reconcile.InputError{Field: field, Reason: err.Error()}
	}
	return detections, nil
}

// statusOf maps an operation error to an HTTP status.
func statusOf(err error) int {
	var inputErr *reconcile.InputError
	var serviceErr *reasoning.ServiceError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &serviceErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	label := "comparison failed"
	if status == http.StatusBadRequest {
		label = "invalid request"
	}

	entry := h.log.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("Compare request failed")
	} else {
		entry.Debug("Rejected compare request")
	}
	writeJSON(w, status, errorResponse{Error: label, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"encode response","message":%q}`, err.Error()), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

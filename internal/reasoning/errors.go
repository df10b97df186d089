package reasoning

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxDetail caps how much of a remote error body is carried in an error.
const maxDetail = 2048

// ErrNoFrame is returned when a reply contains no usable data frame.
var ErrNoFrame = errors.New("no data frame")

// ErrNoContent is returned when the data frame has no content field.
var ErrNoContent = errors.New("missing content field")

// ServiceError reports a failed call to the reasoning service: the request
// could not be sent, the reply could not be read, or the service answered
// with a non-2xx status.
type ServiceError struct {
	// Op is the step that failed: "build request", "send", "read" or "call".
	Op string

	// StatusCode is the HTTP status, or 0 when no reply was received.
	StatusCode int

	// Detail is the error text provided by the remote service, if any.
	Detail string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *ServiceError) Error() string {
	var b strings.Builder
	b.WriteString("reasoning service")
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	b.WriteString(": ")
	b.WriteString(e.Message())
	return b.String()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Message returns the remote detail when the service supplied one, the
// transport error otherwise, and a generic message as a last resort.
func (e *ServiceError) Message() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "request failed"
	}
}

// PayloadParseError reports why a reply could not be turned into a Result.
type PayloadParseError struct {
	// Stage is "frame", "envelope" or "content".
	Stage string

	// Offset is the byte offset into the content where the grammar stopped
	// matching, or -1 when the failure happened before the content stage.
	Offset int

	Err error
}

// Parse stages.
const (
	StageFrame    = "frame"
	StageEnvelope = "envelope"
	StageContent  = "content"
)

func (e *PayloadParseError) Error() string {
	return "reasoning payload: " + e.Stage + ": " + e.Err.Error()
}

func stageError(stage string, err error) *PayloadParseError {
	pe := &PayloadParseError{Stage: stage, Offset: -1, Err: err}
	var se *SyntaxError
	if errors.As(err, &se) {
		pe.Offset = se.Offset
	}
	return pe
}

func (e *PayloadParseError) Unwrap() error {
	return e.Err
}

// remoteDetail extracts a human-readable error from a reply body. JSON
// bodies are searched for the usual error fields; anything else is returned
// as trimmed text.
func remoteDetail(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err == nil {
		for _, key := range []string{"error", "message", "detail", "msg"} {
			if d := detailString(fields[key]); d != "" {
				return truncate(d)
			}
		}
	}
	return truncate(text)
}

func detailString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		return detailString(x["message"])
	default:
		return ""
	}
}

// truncate cuts s to at most maxDetail bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxDetail {
		return s
	}
	cut := maxDetail
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

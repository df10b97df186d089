package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docdiff/internal/logging"
)

// DefaultSessionID is sent when no session id is configured.
const DefaultSessionID = "docdiff"

// SessionScope selects how session ids are assigned to requests.
type SessionScope string

const (
	// SessionFixed reuses the configured session id for every request.
	SessionFixed SessionScope = "fixed"

	// SessionPerRequest mints a fresh random id for every request.
	SessionPerRequest SessionScope = "request"
)

// ParseSessionScope maps a configuration value to a SessionScope. The empty
// string selects SessionFixed.
func ParseSessionScope(s string) (SessionScope, error) {
	switch SessionScope(strings.ToLower(strings.TrimSpace(s))) {
	case "", SessionFixed:
		return SessionFixed, nil
	case SessionPerRequest:
		return SessionPerRequest, nil
	default:
		return "", fmt.Errorf("reasoning: unknown session scope %q", s)
	}
}

// Options configures a Client.
type Options struct {
	// Endpoint is the absolute http(s) URL requests are posted to.
	Endpoint string

	// Token, when set, is sent as a bearer Authorization header.
	Token string

	// SessionID is the id used with SessionFixed. Defaults to DefaultSessionID.
	SessionID string

	// Scope selects fixed or per-request session ids.
	Scope SessionScope

	// Headers are added to every request.
	Headers map[string]string

	// HTTPClient defaults to a client without a timeout; deadlines come from
	// the caller's context.
	HTTPClient *http.Client

	Logger logrus.FieldLogger
}

// Request is the JSON body posted to the reasoning service.
type Request struct {
	Content   string `json:"content"`
	SessionID string `json:"sessionId"`
}

// Client posts residual fragments to the reasoning service. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	endpoint  string
	token     string
	sessionID string
	scope     SessionScope
	headers   map[string]string
	http      *http.Client
	log       logrus.FieldLogger
}

// NewClient validates opts and returns a Client.
func NewClient(opts Options) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("reasoning: invalid endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("reasoning: endpoint must be an absolute http(s) URL, got %q", opts.Endpoint)
	}

	scope := opts.Scope
	if scope == "" {
		scope = SessionFixed
	}
	if scope != SessionFixed && scope != SessionPerRequest {
		return nil, fmt.Errorf("reasoning: unknown session scope %q", scope)
	}

	sessionID := strings.TrimSpace(opts.SessionID)
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &Client{
		endpoint:  endpoint,
		token:     strings.TrimSpace(opts.Token),
		sessionID: sessionID,
		scope:     scope,
		headers:   headers,
		http:      hc,
		log:       log,
	}, nil
}

// Ask sends the two residual lists to the service and returns the raw reply
// body. Any transport failure, unreadable body or non-2xx status is returned
// as a *ServiceError.
func (c *Client) Ask(ctx context.Context, onlyInFirst, onlyInSecond []string) (string, error) {
	sessionID := c.nextSessionID()
	body, err := json.Marshal(Request{
		Content:   BuildContent(onlyInFirst, onlyInSecond),
		SessionID: sessionID,
	})
	if err != nil {
		return "", &ServiceError{Op: "build request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ServiceError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream, application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		if k == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	log := c.log.WithFields(logrus.Fields{
		"session_id":     sessionID,
		"only_in_first":  len(onlyInFirst),
		"only_in_second": len(onlyInSecond),
	})
	log.Debug("Sending residual fragments to reasoning service")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ServiceError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ServiceError{Op: "read", StatusCode: resp.StatusCode, Err: err}
	}

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"bytes":    len(payload),
		"duration": time.Since(start).Round(time.Millisecond),
	})
	if resp.StatusCode/100 != 2 {
		log.Warn("Reasoning service returned an error status")
		return "", &ServiceError{Op: "call", StatusCode: resp.StatusCode, Detail: remoteDetail(payload)}
	}

	log.Debug("Reasoning service replied")
	return string(payload), nil
}

func (c *Client) nextSessionID() string {
	if c.scope == SessionPerRequest {
		return uuid.NewString()
	}
	return c.sessionID
}

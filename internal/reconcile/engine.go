package reconcile

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docdiff/internal/logging"
	"github.com/ironsheep/docdiff/internal/reasoning"
)

// Reasoner asks the reasoning service which residual fragments are genuine
// differences and returns its raw reply. *reasoning.Client implements it.
type Reasoner interface {
	Ask(ctx context.Context, onlyInFirst, onlyInSecond []string) (string, error)
}

// FallbackPolicy decides what Reconcile returns when the reasoning reply
// cannot be parsed.
type FallbackPolicy string

const (
	// FallbackEmpty reports no differences.
	FallbackEmpty FallbackPolicy = "empty"

	// FallbackResidual reports the unconfirmed first-pass residual.
	FallbackResidual FallbackPolicy = "residual"
)

// ParseFallbackPolicy maps a configuration value to a policy. The empty
// string selects FallbackEmpty.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch FallbackPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FallbackEmpty:
		return FallbackEmpty, nil
	case FallbackResidual:
		return FallbackResidual, nil
	default:
		return "", fmt.Errorf("reconcile: unknown fallback policy %q", s)
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithFallback sets the policy applied to unparseable replies.
func WithFallback(p FallbackPolicy) Option {
	return func(e *Engine) {
		e.fallback = p
	}
}

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine runs the two-pass reconciliation.
type Engine struct {
	reasoner Reasoner
	fallback FallbackPolicy
	log      logrus.FieldLogger
}

// NewEngine returns an Engine that confirms residuals with r.
func NewEngine(r Reasoner, opts ...Option) (*Engine, error) {
	if r == nil {
		return nil, ErrNoReasoner
	}

	e := &Engine{
		reasoner: r,
		fallback: FallbackEmpty,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, err := ParseFallbackPolicy(string(e.fallback)); err != nil {
		return nil, err
	}
	return e, nil
}

// Reconcile returns the differences between detection sets a and b.
//
// Invalid input is reported as *InputError before any network call. When
// the first pass leaves nothing to confirm the reasoning service is not
// called and the result is empty. A failed reasoning call aborts the
// request with an error wrapping *reasoning.ServiceError; no partial list is
// returned. A reply that cannot be parsed is logged and handled according
// to the fallback policy.
func (e *Engine) Reconcile(ctx context.Context, a, b []TextDetection) ([]DifferenceItem, error) {
	if err := Validate(a, b); err != nil {
		return nil, err
	}

	residual := FirstPass(a, b)
	log := e.log.WithFields(logrus.Fields{
		"first":          len(a),
		"second":         len(b),
		"only_in_first":  len(residual.OnlyInA),
		"only_in_second": len(residual.OnlyInB),
	})
	if residual.Empty() {
		log.Debug("First pass left no residual, skipping reasoning call")
		return []DifferenceItem{}, nil
	}

	onlyA, onlyB := residual.Texts()
	raw, err := e.reasoner.Ask(ctx, onlyA, onlyB)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	result, err := reasoning.Parse(raw)
	if err != nil {
		log.WithError(err).WithField("fallback", string(e.fallback)).
			Warn("Could not parse reasoning reply")
		if e.fallback == FallbackResidual {
			return AssembleResidual(residual), nil
		}
		return []DifferenceItem{}, nil
	}

	items := Assemble(a, b, result)
	log.WithField("differences", len(items)).Debug("Reconciled")
	return items, nil
}

// Validate checks both detection sets. A nil set is rejected; an empty one
// is not. Every polygon coordinate must be finite.
func Validate(a, b []TextDetection) error {
	if err := validateSet("first", a); err != nil {
		return err
	}
	return validateSet("second", b)
}

func validateSet(name string, detections []TextDetection) error {
	if detections == nil {
		return &InputError{Field: name, Reason: "detection set is missing"}
	}
	for i, d := range detections {
		for j, p := range d.Polygon {
			if !finite(p.X) || !finite(p.Y) {
				return &InputError{
					Field:  fmt.Sprintf("%s[%d].Polygon[%d]", name, i, j),
					Reason: "coordinate is not a finite number",
				}
			}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

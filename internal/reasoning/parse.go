package reasoning

import (
	"encoding/json"
	"sort"
	"strings"
)

const (
	framePrefix = "data:"
	doneToken   = "[DONE]"
)

// Set is a set of fragment texts.
type Set map[string]struct{}

// NewSet returns a set holding values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set. A nil set is empty.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// Result holds the fragments the reasoning service confirmed as genuine
// differences.
type Result struct {
	OnlyInFirst  Set `json:"confirmed_only_in_first"`
	OnlyInSecond Set `json:"confirmed_only_in_second"`
}

// PayloadFrame returns the first frame of raw that starts with "data:" and
// is not the "[DONE]" terminator, with the prefix removed. Lines are trimmed
// before they are inspected.
func PayloadFrame(raw string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, framePrefix) || strings.Contains(line, doneToken) {
			continue
		}
		return strings.TrimSpace(strings.TrimPrefix(line, framePrefix)), true
	}
	return "", false
}

// Parse turns a raw reasoning reply into a Result. Every failure is a
// *PayloadParseError naming the stage that failed.
func Parse(raw string) (*Result, error) {
	frame, ok := PayloadFrame(raw)
	if !ok {
		return nil, stageError(StageFrame, ErrNoFrame)
	}

	var envelope struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(frame), &envelope); err != nil {
		return nil, stageError(StageEnvelope, err)
	}
	if envelope.Content == nil {
		return nil, stageError(StageEnvelope, ErrNoContent)
	}

	assignments, err := ParseAssignments(*envelope.Content)
	if err != nil {
		return nil, stageError(StageContent, err)
	}

	return &Result{
		OnlyInFirst:  NewSet(pick(assignments, FirstLabel, 0)...),
		OnlyInSecond: NewSet(pick(assignments, SecondLabel, 1)...),
	}, nil
}

// ParsePayload is Parse without the error: it returns nil whenever the
// reply cannot be understood.
func ParsePayload(raw string) *Result {
	res, err := Parse(raw)
	if err != nil {
		return nil
	}
	return res
}

// pick returns the values assigned to name; a repeated name keeps its last
// assignment. When no assignment has that name, the assignment at position
// pos is used unless it carries the other known label.
func pick(assignments []Assignment, name string, pos int) []string {
	for i := len(assignments) - 1; i >= 0; i-- {
		if assignments[i].Name == name {
			return assignments[i].Values
		}
	}
	if pos < len(assignments) {
		if n := assignments[pos].Name; n != FirstLabel && n != SecondLabel {
			return assignments[pos].Values
		}
	}
	return nil
}

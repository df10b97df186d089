package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/docdiff/internal/geometry"
)

// TextDetection is one OCR-recognized text fragment. Detections carry no id;
// they are identified by their index in the input slice.
type TextDetection struct {
	Text    string           `json:"DetectedText"`
	Polygon []geometry.Point `json:"Polygon"`
}

// UnmarshalJSON accepts both the vendor field names (DetectedText, Polygon)
// and their lower-case forms (text, polygon).
func (d *TextDetection) UnmarshalJSON(data []byte) error {
	var raw struct {
		DetectedText *string          `json:"DetectedText"`
		Text         *string          `json:"text"`
		Polygon      []geometry.Point `json:"Polygon"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = TextDetection{Polygon: raw.Polygon}
	switch {
	case raw.DetectedText != nil:
		d.Text = *raw.DetectedText
	case raw.Text != nil:
		d.Text = *raw.Text
	}
	return nil
}

// Box returns the bounding box of the detection's polygon.
func (d TextDetection) Box() geometry.BoundingBox {
	return geometry.BoundingBoxOf(d.Polygon)
}

// Kind says which image a difference belongs to.
type Kind string

const (
	OnlyInFirst  Kind = "only-in-first"
	OnlyInSecond Kind = "only-in-second"
)

// Side is the box and text of a difference on one image.
type Side struct {
	geometry.BoundingBox
	Text string `json:"text"`
}

// DifferenceItem is one reconciled difference. Exactly one of First and
// Second is set, matching Kind; the other encodes as JSON null.
type DifferenceItem struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"type"`
	First  *Side  `json:"image1"`
	Second *Side  `json:"image2"`
}

// Side returns whichever side of the item is populated.
func (it DifferenceItem) Side() *Side {
	if it.First != nil {
		return it.First
	}
	return it.Second
}

// DecodeDetections decodes a detection list from JSON. Three shapes are
// accepted: a bare array, an object with a TextDetections field, and the
// vendor envelope {"result":{"TextDetections":[...]}}.
func DecodeDetections(data []byte) ([]TextDetection, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &InputError{Field: "detections", Reason: "empty document"}
	}

	if data[0] == '[' {
		var list []TextDetection
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode detections: %w", err)
		}
		return list, nil
	}

	var env struct {
		TextDetections []TextDetection `json:"TextDetections"`
		Result         *struct {
			TextDetections []TextDetection `json:"TextDetections"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}

	switch {
	case env.TextDetections != nil:
		return env.TextDetections, nil
	case env.Result != nil && env.Result.TextDetections != nil:
		return env.Result.TextDetections, nil
	default:
		return nil, &InputError{Field: "TextDetections", Reason: "missing"}
	}
}

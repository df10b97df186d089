package reconcile

import (
	"fmt"

	"github.com/ironsheep/docdiff/internal/reasoning"
)

// Assemble maps the confirmed fragments in result back to the detections
// they came from. Membership is tested on raw text, so every detection whose
// text was confirmed is reported. All only-in-first items precede all
// only-in-second items, each group in index order. A nil result yields an
// empty, non-nil slice.
func Assemble(a, b []TextDetection, result *reasoning.Result) []DifferenceItem {
	items := []DifferenceItem{}
	if result == nil {
		return items
	}

	for i, d := range a {
		if result.OnlyInFirst.Has(d.Text) {
			items = append(items, firstItem(i, d))
		}
	}
	for i, d := range b {
		if result.OnlyInSecond.Has(d.Text) {
			items = append(items, secondItem(i, d))
		}
	}
	return items
}

// AssembleResidual builds items straight from a first-pass residual, without
// any confirmation step.
func AssembleResidual(r Residual) []DifferenceItem {
	items := make([]DifferenceItem, 0, len(r.OnlyInA)+len(r.OnlyInB))
	for _, it := range r.OnlyInA {
		items = append(items, firstItem(it.Index, it.TextDetection))
	}
	for _, it := range r.OnlyInB {
		items = append(items, secondItem(it.Index, it.TextDetection))
	}
	return items
}

func firstItem(index int, d TextDetection) DifferenceItem {
	return DifferenceItem{
		ID:    fmt.Sprintf("only-in-1-%d", index),
		Kind:  OnlyInFirst,
		First: &Side{BoundingBox: d.Box(), Text: d.Text},
	}
}

func secondItem(index int, d TextDetection) DifferenceItem {
	return DifferenceItem{
		ID:     fmt.Sprintf("only-in-2-%d", index),
		Kind:   OnlyInSecond,
		Second: &Side{BoundingBox: d.Box(), Text: d.Text},
	}
}

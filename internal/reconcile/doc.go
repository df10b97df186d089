// Package reconcile compares the text detections of two document images and
// produces the list of fragments that appear in only one of them.
//
// Reconciliation runs in two passes. The first pass is a pure set
// difference on normalized text, which removes every fragment both images
// agree on. The residual fragments are then sent to an external reasoning
// service which decides, with knowledge of OCR noise and layout shifts,
// which of them are genuine differences. Confirmed fragments are mapped back
// to their original detections and returned as DifferenceItems.
//
// An Engine is immutable after construction and safe for concurrent use.
package reconcile

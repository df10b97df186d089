// Package ocr produces text detections from page images using Tesseract.
//
// It is an optional collaborator of the reconciler: the core accepts
// detections from any OCR engine, and this package lets the command-line and
// MCP front ends compare two image files directly.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Chinese: tesseract-ocr-chi-sim
//
// Several languages can be combined with "+", for example "chi_sim+eng".
//
// # Detections
//
// Each recognized line (or word, with LevelWord) becomes one
// reconcile.TextDetection whose polygon is the four corners of Tesseract's
// box, listed clockwise from the top-left.
package ocr

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/docdiff/internal/geometry"
	"github.com/ironsheep/docdiff/internal/reconcile"
)

// DefaultLanguage is used when Options.Language is empty.
const DefaultLanguage = "eng"

// Level selects the granularity of the returned detections.
type Level string

const (
	// LevelLine returns one detection per text line, like hosted OCR
	// services do.
	LevelLine Level = "line"

	// LevelWord returns one detection per word.
	LevelWord Level = "word"
)

// Options configures recognition.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "chi_sim+eng".
	Language string

	// Level defaults to LevelLine.
	Level Level

	// MinConfidence drops detections below this confidence (0.0 to 1.0).
	MinConfidence float64
}

func (o Options) iteratorLevel() (gosseract.PageIteratorLevel, error) {
	switch o.Level {
	case "", LevelLine:
		return gosseract.RIL_TEXTLINE, nil
	case LevelWord:
		return gosseract.RIL_WORD, nil
	default:
		return 0, fmt.Errorf("unknown OCR level %q: want line or word", o.Level)
	}
}

func (o Options) languages() []string {
	lang := strings.TrimSpace(o.Language)
	if lang == "" {
		lang = DefaultLanguage
	}
	return strings.Split(lang, "+")
}

// DetectFile runs OCR on the image file at path.
func DetectFile(path string, opts Options) ([]reconcile.TextDetection, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return detect(opts, func(c *gosseract.Client) error {
		return c.SetImage(path)
	})
}

// DetectImage runs OCR on an in-memory image.
func DetectImage(img image.Image, opts Options) ([]reconcile.TextDetection, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return detect(opts, func(c *gosseract.Client) error {
		return c.SetImageFromBytes(buf.Bytes())
	})
}

func detect(opts Options, setImage func(*gosseract.Client) error) ([]reconcile.TextDetection, error) {
	level, err := opts.iteratorLevel()
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(opts.languages()...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := setImage(client); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(level)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	return toDetections(boxes, opts.MinConfidence), nil
}

// toDetections converts Tesseract boxes, dropping blank text and boxes below
// minConfidence. The result is never nil.
func toDetections(boxes []gosseract.BoundingBox, minConfidence float64) []reconcile.TextDetection {
	out := make([]reconcile.TextDetection, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		if box.Confidence/100.0 < minConfidence {
			continue
		}
		out = append(out, reconcile.TextDetection{
			Text:    text,
			Polygon: PolygonOf(box.Box),
		})
	}
	return out
}

// PolygonOf returns the corners of r clockwise from the top-left.
func PolygonOf(r image.Rectangle) []geometry.Point {
	x1, y1 := float64(r.Min.X), float64(r.Min.Y)
	x2, y2 := float64(r.Max.X), float64(r.Max.Y)
	return []geometry.Point{
		{X: x1, Y: y1},
		{X: x2, Y: y1},
		{X: x2, Y: y2},
		{X: x1, Y: y2},
	}
}

// Version reports the linked Tesseract version.
func Version() string {
	return gosseract.Version()
}

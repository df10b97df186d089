package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/docdiff/internal/geometry"
)

const (
	outlineWidth = 2
	fillAlpha    = 64
	labelPadding = 2
)

// Highlight marks one difference on a page.
type Highlight struct {
	Box   geometry.BoundingBox
	Label string
	Color color.RGBA
}

// RenderOptions controls overlay rendering.
type RenderOptions struct {
	// Dim darkens the page by this fraction (0 to 1) so the highlights stand
	// out. Zero leaves the page unchanged.
	Dim float64

	// Labels draws each highlight's label above its box.
	Labels bool
}

// RenderResult contains the rendered overlay.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Highlights  int    `json:"highlights"`
	Skipped     int    `json:"skipped"`
}

// RenderHighlights draws highlights on a copy of img and returns it as a
// base64 PNG. Each highlight gets a translucent fill, a solid outline and,
// when requested, its label. Highlights whose box lies entirely outside the
// image are skipped and counted.
func RenderHighlights(img image.Image, highlights []Highlight, opts RenderOptions) (*RenderResult, error) {
	if opts.Dim < 0 || opts.Dim > 1 {
		return nil, fmt.Errorf("dim must be between 0 and 1, got %g", opts.Dim)
	}

	// Clone normalizes the origin to (0,0), matching OCR coordinates.
	var page image.Image = imaging.Clone(img)
	if opts.Dim > 0 {
		page = adjust.Brightness(page, -opts.Dim)
	}
	bounds := page.Bounds()

	layer := image.NewNRGBA(bounds)
	var drawn []Highlight
	var rects []image.Rectangle
	skipped := 0
	for _, h := range highlights {
		r := h.Box.Rect(0).Intersect(bounds)
		if r.Empty() {
			skipped++
			continue
		}
		fill := color.NRGBA{R: h.Color.R, G: h.Color.G, B: h.Color.B, A: fillAlpha}
		draw.Draw(layer, r, image.NewUniform(fill), image.Point{}, draw.Over)
		drawn = append(drawn, h)
		rects = append(rects, r)
	}

	out := blend.Normal(page, layer)
	for i, h := range drawn {
		drawOutline(out, rects[i], h.Color)
		if opts.Labels && h.Label != "" {
			drawLabel(out, rects[i], h.Label, h.Color)
		}
	}

	encoded, err := encodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &RenderResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Highlights:  len(drawn),
		Skipped:     skipped,
	}, nil
}

// drawOutline strokes r on the inside so the outline never leaves the image.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	src := image.NewUniform(c)
	w := min(outlineWidth, r.Dx(), r.Dy())
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e, src, image.Point{}, draw.Src)
	}
}

// drawLabel writes text in white on a tag of colour c, above r when there is
// room and inside its top edge otherwise.
func drawLabel(img *image.RGBA, r image.Rectangle, text string, c color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 2*labelPadding
	height := face.Height + labelPadding

	top := r.Min.Y - height
	if top < img.Bounds().Min.Y {
		top = r.Min.Y
	}
	tag := image.Rect(r.Min.X, top, r.Min.X+width, top+height).Intersect(img.Bounds())
	if tag.Empty() {
		return
	}
	draw.Draw(img, tag, image.NewUniform(c), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(tag.Min.X+labelPadding, top+face.Ascent+labelPadding/2),
	}
	d.DrawString(text)
}

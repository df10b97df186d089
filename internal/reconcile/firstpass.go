package reconcile

import "github.com/ironsheep/docdiff/internal/textnorm"

// Indexed is a detection together with its index in the input slice.
type Indexed struct {
	Index int
	TextDetection
}

// Residual holds the detections whose normalized text has no counterpart in
// the other image.
type Residual struct {
	OnlyInA []Indexed
	OnlyInB []Indexed
}

// Empty reports whether neither side has residual detections.
func (r Residual) Empty() bool {
	return len(r.OnlyInA) == 0 && len(r.OnlyInB) == 0
}

// Texts returns the raw texts of both sides, in order.
func (r Residual) Texts() (a, b []string) {
	return texts(r.OnlyInA), texts(r.OnlyInB)
}

func texts(items []Indexed) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

// FirstPass removes every detection whose normalized text also occurs in the
// other set. Geometry is not consulted. Input order is preserved.
func FirstPass(a, b []TextDetection) Residual {
	inA := normalizedSet(a)
	inB := normalizedSet(b)

	return Residual{
		OnlyInA: missingFrom(a, inB),
		OnlyInB: missingFrom(b, inA),
	}
}

func normalizedSet(detections []TextDetection) map[string]struct{} {
	set := make(map[string]struct{}, len(detections))
	for _, d := range detections {
		set[textnorm.Normalize(d.Text)] = struct{}{}
	}
	return set
}

func missingFrom(detections []TextDetection, other map[string]struct{}) []Indexed {
	var out []Indexed
	for i, d := range detections {
		if _, ok := other[textnorm.Normalize(d.Text)]; ok {
			continue
		}
		out = append(out, Indexed{Index: i, TextDetection: d})
	}
	return out
}

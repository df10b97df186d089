// Package geometry derives axis-aligned bounding boxes from OCR polygons and
// measures how far apart two boxes are.
//
// # Coordinate System
//
// Coordinates follow the image convention used by OCR engines:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Values are float64 because OCR vendors report both integer pixel positions
// and sub-pixel positions; nothing in this package rounds.
//
// # Proximity
//
// Two boxes are "close" when the Euclidean distance between their centers is
// strictly below a caller-supplied threshold. DefaultCloseThreshold is the
// value the comparison service has always used, but it is never applied
// implicitly.
package geometry

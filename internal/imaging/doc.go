// Package imaging renders document images for reviewing reconciled
// differences.
//
// It loads page images through a bounded cache, crops the region around a
// single difference, and draws highlight overlays that mark every
// difference of one page with its id.
//
// # Coordinate System
//
// Boxes use the OCR coordinate system: (0,0) is the top-left pixel, X grows
// rightward and Y grows downward. Fractional boxes are widened to whole
// pixels so that the rendered rectangle always covers the detected text.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Rendering functions never modify
// their input image and can run concurrently on the same cached image.
//
// # Error Handling
//
// Functions return errors for boxes that fall entirely outside the image,
// unreadable files and encoding failures.
package imaging

package preprocess

import (
	"fmt"

	"framelapse/internal/validation"
)

// Rect is a crop rectangle in image coordinates. Invariant: Right > Left and
// Bottom > Upper, all coordinates >= 0. Construct it through FromXYWH so
// malformed input degrades to "no crop" instead of producing a bad rectangle.
type Rect struct {
	Left   int
	Upper  int
	Right  int
	Bottom int
}

// FromXYWH converts a caller-supplied (x, y, width, height) tuple into a crop
// rectangle. Negative x or y, or non-positive width or height, disables
// cropping by returning ok=false rather than an error: a malformed crop
// request should not abort a whole run. Bounds checking against the actual
// image is a separate, fatal concern (ValidateAgainst).
func FromXYWH(x, y, w, h int) (Rect, bool) {
	if x < 0 || y < 0 || w <= 0 || h <= 0 {
		return Rect{}, false
	}
	return Rect{Left: x, Upper: y, Right: x + w, Bottom: y + h}, true
}

// ValidateAgainst checks the rectangle against real image dimensions. Unlike
// FromXYWH this does fail: geometry that escapes the image must be caught
// before it reaches the image library.
func (r Rect) ValidateAgainst(imageW, imageH int) error {
	if r.Left < 0 || r.Upper < 0 {
		return &validation.ValidationError{
			Field: "crop",
			Msg:   fmt.Sprintf("coordinates must be non-negative, got (%d, %d)", r.Left, r.Upper),
		}
	}
	if r.Right > imageW || r.Bottom > imageH {
		return &validation.ValidationError{
			Field: "crop",
			Msg: fmt.Sprintf("rectangle (%d, %d, %d, %d) exceeds image dimensions %dx%d",
				r.Left, r.Upper, r.Right, r.Bottom, imageW, imageH),
		}
	}
	if r.Right <= r.Left || r.Bottom <= r.Upper {
		return &validation.ValidationError{
			Field: "crop",
			Msg: fmt.Sprintf("rectangle (%d, %d, %d, %d) has no area",
				r.Left, r.Upper, r.Right, r.Bottom),
		}
	}
	return nil
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.Left, r.Upper, r.Right, r.Bottom)
}

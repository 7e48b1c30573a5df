package media

import (
	"image"
)

// DefaultCropPadding is the extra margin added around a face box before
// cropping, as a fraction of the box size. Recognition models behave better
// with some context around the face.
const DefaultCropPadding = 0.2

// PixelRect converts a relative bounding box to a pixel rectangle on an image
// of the given dimensions, expanded by the padding fraction and clamped to the
// image bounds. Returns a zero rectangle when the box degenerates.
func PixelRect(box BoundingBox, padding float64, imgWidth, imgHeight int) image.Rectangle {
	padW := padding * box.Width
	padH := padding * box.Height

	x1 := int(clamp01(box.X-padW) * float64(imgWidth))
	y1 := int(clamp01(box.Y-padH) * float64(imgHeight))
	x2 := int(clamp01(box.X+box.Width+padW) * float64(imgWidth))
	y2 := int(clamp01(box.Y+box.Height+padH) * float64(imgHeight))

	if x2 <= x1 || y2 <= y1 {
		return image.Rectangle{}
	}
	return image.Rect(x1, y1, x2, y2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

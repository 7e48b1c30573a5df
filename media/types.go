// Package media holds the image-side collaborators of the library core: face
// detection, embedding extraction, cropping and blob storage.
package media

// BoundingBox is a face location in relative coordinates, all values in [0,1].
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the box lies inside the unit square with positive area.
func (b BoundingBox) Valid() bool {
	return b.X >= 0 && b.X <= 1 &&
		b.Y >= 0 && b.Y <= 1 &&
		b.Width > 0 && b.Width <= 1 &&
		b.Height > 0 && b.Height <= 1
}

// Detection is one detected face: a relative bounding box plus the detector's
// confidence score.
type Detection struct {
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
}

// Detector produces face detections from raw image bytes. Implementations
// must return relative coordinates. An image with no faces yields an empty
// slice, not an error.
type Detector interface {
	DetectFaces(imageBytes []byte) ([]Detection, error)
}

// Embedder extracts a fixed-length embedding vector from a face region.
// Returning (nil, nil) is legitimate: the face was detected but could not be
// represented; callers treat it the same as an extraction error, minus the log
// noise.
type Embedder interface {
	ExtractEmbedding(imageBytes []byte, box BoundingBox) ([]float32, error)
	ModelName() string
}

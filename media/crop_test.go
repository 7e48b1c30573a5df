package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxValid(t *testing.T) {
	assert.True(t, BoundingBox{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5}.Valid())
	assert.True(t, BoundingBox{X: 0, Y: 0, Width: 1, Height: 1}.Valid())
	assert.False(t, BoundingBox{X: 0.1, Y: 0.1, Width: 0, Height: 0.5}.Valid())
	assert.False(t, BoundingBox{X: -0.1, Y: 0.1, Width: 0.5, Height: 0.5}.Valid())
	assert.False(t, BoundingBox{X: 1.1, Y: 0.1, Width: 0.5, Height: 0.5}.Valid())
}

func TestPixelRectAppliesPadding(t *testing.T) {
	box := BoundingBox{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5}

	rect := PixelRect(box, 0, 100, 100)
	assert.Equal(t, 25, rect.Min.X)
	assert.Equal(t, 25, rect.Min.Y)
	assert.Equal(t, 75, rect.Max.X)
	assert.Equal(t, 75, rect.Max.Y)

	padded := PixelRect(box, 0.2, 100, 100)
	assert.Equal(t, 15, padded.Min.X)
	assert.Equal(t, 15, padded.Min.Y)
	assert.Equal(t, 85, padded.Max.X)
	assert.Equal(t, 85, padded.Max.Y)
}

func TestPixelRectClampsToImageBounds(t *testing.T) {
	box := BoundingBox{X: 0.0, Y: 0.0, Width: 0.9, Height: 0.9}
	rect := PixelRect(box, 0.5, 200, 100)

	assert.Equal(t, 0, rect.Min.X)
	assert.Equal(t, 0, rect.Min.Y)
	assert.LessOrEqual(t, rect.Max.X, 200)
	assert.LessOrEqual(t, rect.Max.Y, 100)
}

func TestPixelRectDegenerateBox(t *testing.T) {
	rect := PixelRect(BoundingBox{X: 0.5, Y: 0.5, Width: 0, Height: 0}, 0, 100, 100)
	assert.True(t, rect.Empty())
}

package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("photo.jpg"))
	assert.True(t, IsSupportedImage("PHOTO.JPEG"))
	assert.True(t, IsSupportedImage("scan.png"))
	assert.True(t, IsSupportedImage("anim.webp"))
	assert.False(t, IsSupportedImage("notes.txt"))
	assert.False(t, IsSupportedImage("archive.zip"))
	assert.False(t, IsSupportedImage("noextension"))
}

func TestStoredFilenameKeepsExtension(t *testing.T) {
	name := StoredFilename("My Holiday.JPG")
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotContains(t, name, " ")
	assert.NotContains(t, name, "-")
	assert.NotEqual(t, StoredFilename("a.jpg"), StoredFilename("a.jpg"))
}

func TestSortNatural(t *testing.T) {
	values := []string{"trip10", "trip2", "alps"}
	SortNatural(values)
	assert.Equal(t, []string{"alps", "trip2", "trip10"}, values)
}

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/facette/natsort"
	"github.com/google/uuid"
)

var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsSupportedImage checks if the filename has an accepted image extension
func IsSupportedImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

// StoredFilename generates an opaque on-disk name for an upload, keeping the
// original extension so static file serving picks the right content type.
func StoredFilename(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return strings.ReplaceAll(uuid.New().String(), "-", "") + ext
}

// SortNatural sorts strings in natural order ("tag2" before "tag10").
func SortNatural(values []string) {
	natsort.Sort(values)
}

// GenerateThumbnail creates a thumbnail with a UUID filename
// returns the full path where the thumbnail was saved
func GenerateThumbnail(originalImagePath, thumbnailDir string, maxWidth, maxHeight int) (string, error) {
	if err := os.MkdirAll(thumbnailDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory %s: %w", thumbnailDir, err)
	}

	img, err := imaging.Open(originalImagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image %s: %w", originalImagePath, err)
	}

	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	thumbFilename := strings.ReplaceAll(uuid.New().String(), "-", "") + ".jpg"
	thumbnailSavePath := filepath.Join(thumbnailDir, thumbFilename)

	err = imaging.Save(thumb, thumbnailSavePath, imaging.JPEGQuality(80))
	if err != nil {
		return "", fmt.Errorf("failed to save thumbnail to %s: %w", thumbnailSavePath, err)
	}

	return thumbnailSavePath, nil
}

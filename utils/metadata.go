package utils

import (
	"bytes"
	"image"
	"log"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
)

type Metadata struct {
	Width   *int   `json:"width,omitempty"`
	Height  *int   `json:"height,omitempty"`
	TakenAt *int64 `json:"taken_at,omitempty"`
}

// ExtractMetadata reads image dimensions and the EXIF capture timestamp from
// raw image bytes. Missing EXIF data is normal and never an error.
func ExtractMetadata(imageBytes []byte) *Metadata {
	meta := &Metadata{}

	config, _, err := image.DecodeConfig(bytes.NewReader(imageBytes))
	if err == nil {
		w, h := config.Width, config.Height
		meta.Width = &w
		meta.Height = &h
	}

	exifData, err := exif.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		// not necessarily a problem, file might just lack EXIF data
		return meta
	}

	dt, err := exifData.DateTime()
	if err == nil {
		ts := dt.Unix()
		meta.TakenAt = &ts
	} else {
		log.Printf("metadata: could not read capture time: %v", err)
	}

	return meta
}

package models

import "time"

// Photo represents an uploaded photo and its stored file.
// It corresponds to the 'photos' table.
//
// FileHash is the MD5 hex digest of the full file content, computed once at
// upload time and never changed; it drives exact-duplicate detection.
type Photo struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	Filename         string    `gorm:"not null;size:255" json:"filename"` // stored name (uuid hex + ext)
	OriginalFilename string    `gorm:"not null;size:255" json:"original_filename"`
	MimeType         *string   `gorm:"size:50" json:"mime_type,omitempty"`
	FileSize         *int64    `json:"file_size,omitempty"`
	FileHash         *string   `gorm:"size:32;index" json:"file_hash,omitempty"`
	ThumbnailPath    *string   `gorm:"size:255" json:"thumbnail_path,omitempty"`
	IsFavorite       bool      `gorm:"not null;default:false" json:"is_favorite"`
	TakenAt          *int64    `json:"taken_at,omitempty"` // EXIF capture time, Unix seconds
	UploadedAt       time.Time `gorm:"not null;index" json:"uploaded_at"`

	// Faces are owned exclusively by the photo; deleting the photo deletes them
	Faces []Face `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE" json:"faces,omitempty"`
	Tags  []Tag  `gorm:"many2many:photo_tags;" json:"tags,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}

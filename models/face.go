package models

import "math"

// Face represents a detected face in a photo, optionally linked to a Person.
// It corresponds to the 'faces' table.
//
// The bounding box uses relative coordinates in [0,1] so it survives any
// resizing of the underlying image. The embedding vector is stored inline as
// a little-endian float32 BLOB together with the model tag that produced it;
// both are written atomically and an embedding is never stored without its tag.
type Face struct {
	ID       uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	PhotoID  uint  `gorm:"not null;index" json:"photo_id"`
	PersonID *uint `gorm:"index" json:"person_id,omitempty"` // nullable link to persons table

	X      float64 `gorm:"not null" json:"x"`
	Y      float64 `gorm:"not null" json:"y"`
	Width  float64 `gorm:"not null" json:"width"`
	Height float64 `gorm:"not null" json:"height"`

	Confidence *float64 `json:"confidence,omitempty"`

	EmbeddingData  []byte  `gorm:"column:embedding" json:"-"`
	EmbeddingModel *string `gorm:"size:50" json:"embedding_model,omitempty"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"` // Unix timestamp

	Photo  *Photo  `gorm:"foreignKey:PhotoID" json:"-"`
	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Face) TableName() string {
	return "faces"
}

// HasEmbedding reports whether an embedding vector has been stored.
func (f *Face) HasEmbedding() bool {
	return len(f.EmbeddingData) > 0
}

// GetEmbedding converts the BLOB data to []float32, or nil if never set.
func (f *Face) GetEmbedding() []float32 {
	if len(f.EmbeddingData) == 0 {
		return nil
	}

	embedding := make([]float32, len(f.EmbeddingData)/4) // 4 bytes per float32
	for i := 0; i < len(embedding); i++ {
		offset := i * 4
		bits := uint32(f.EmbeddingData[offset]) |
			uint32(f.EmbeddingData[offset+1])<<8 |
			uint32(f.EmbeddingData[offset+2])<<16 |
			uint32(f.EmbeddingData[offset+3])<<24
		embedding[i] = math.Float32frombits(bits)
	}
	return embedding
}

// SetEmbedding converts []float32 to BLOB data and records the model tag.
func (f *Face) SetEmbedding(embedding []float32, modelTag string) {
	if len(embedding) == 0 {
		f.EmbeddingData = nil
		f.EmbeddingModel = nil
		return
	}

	f.EmbeddingData = EncodeEmbedding(embedding)
	f.EmbeddingModel = &modelTag
}

// EncodeEmbedding serializes a float32 vector as a little-endian BLOB.
func EncodeEmbedding(embedding []float32) []byte {
	data := make([]byte, len(embedding)*4)
	for i, val := range embedding {
		offset := i * 4
		bits := math.Float32bits(val)
		data[offset] = byte(bits)
		data[offset+1] = byte(bits >> 8)
		data[offset+2] = byte(bits >> 16)
		data[offset+3] = byte(bits >> 24)
	}
	return data
}

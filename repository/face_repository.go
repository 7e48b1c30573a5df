package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/drishyamitra/photobackend/models"
	"github.com/drishyamitra/photobackend/recognition"
)

// FaceRepository handles database operations for Face entities
type FaceRepository struct {
	DB *gorm.DB
}

// Ensure FaceRepository implements FaceRepositoryInterface
var _ FaceRepositoryInterface = (*FaceRepository)(nil)

// Ensure FaceRepository can serve the identity matcher
var _ recognition.EmbeddingSource = (*FaceRepository)(nil)

// NewFaceRepository creates a new instance of FaceRepository
func NewFaceRepository(db *gorm.DB) *FaceRepository {
	return &FaceRepository{DB: db}
}

// Create creates a new face record in the database
func (r *FaceRepository) Create(face *models.Face) error {
	now := time.Now().Unix()
	if face.CreatedAt == 0 {
		face.CreatedAt = now
	}
	face.UpdatedAt = now

	err := r.DB.Create(face).Error
	if err != nil {
		return fmt.Errorf("failed to create face for photo ID %d: %w", face.PhotoID, err)
	}
	return nil
}

// GetByID retrieves a face by its ID, preloading the associated Person and Photo
func (r *FaceRepository) GetByID(id uint) (*models.Face, error) {
	var face models.Face
	err := r.DB.Preload("Person").Preload("Photo").First(&face, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get face by ID %d: %w", id, err)
	}
	return &face, nil
}

// GetByIDForUser retrieves a face by ID only if its photo belongs to the user.
// Out-of-scope faces are indistinguishable from missing ones.
func (r *FaceRepository) GetByIDForUser(id, userID uint) (*models.Face, error) {
	var face models.Face
	err := r.DB.Preload("Person").Preload("Photo").
		Joins("JOIN photos ON photos.id = faces.photo_id").
		Where("faces.id = ? AND photos.user_id = ?", id, userID).
		First(&face).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get face by ID %d for user %d: %w", id, userID, err)
	}
	return &face, nil
}

// ListByPhotoID retrieves all faces of a photo ordered by ID, preloading Person
func (r *FaceRepository) ListByPhotoID(photoID uint) ([]models.Face, error) {
	var faces []models.Face
	err := r.DB.Preload("Person").Where("photo_id = ?", photoID).Order("id ASC").Find(&faces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list faces for photo ID %d: %w", photoID, err)
	}
	return faces, nil
}

// SetEmbedding stores the embedding vector and its model tag on a face in one
// UPDATE. An existing embedding is overwritten. The tag must be non-empty.
func (r *FaceRepository) SetEmbedding(faceID uint, embedding []float32, modelTag string) error {
	if modelTag == "" {
		return fmt.Errorf("refusing to store embedding for face ID %d without a model tag", faceID)
	}

	updates := map[string]interface{}{
		"embedding":       models.EncodeEmbedding(embedding),
		"embedding_model": modelTag,
		"updated_at":      time.Now().Unix(),
	}
	result := r.DB.Model(&models.Face{}).Where("id = ?", faceID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set embedding on face ID %d: %w", faceID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TagFace assigns a PersonID to an existing face
func (r *FaceRepository) TagFace(faceID, personID uint) error {
	updates := map[string]interface{}{
		"person_id":  personID,
		"updated_at": time.Now().Unix(),
	}
	result := r.DB.Model(&models.Face{}).Where("id = ?", faceID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to tag face ID %d with person ID %d: %w", faceID, personID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UntagFace sets the PersonID of an existing face to NULL
func (r *FaceRepository) UntagFace(faceID uint) error {
	updates := map[string]interface{}{
		"person_id":  gorm.Expr("NULL"),
		"updated_at": time.Now().Unix(),
	}
	result := r.DB.Model(&models.Face{}).Where("id = ?", faceID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to untag face ID %d: %w", faceID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UnlinkPerson sets person_id to NULL on every face referencing the person.
// The faces survive, un-identified.
func (r *FaceRepository) UnlinkPerson(personID uint) error {
	err := r.DB.Model(&models.Face{}).
		Where("person_id = ?", personID).
		Updates(map[string]interface{}{
			"person_id":  gorm.Expr("NULL"),
			"updated_at": time.Now().Unix(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to unlink faces from person ID %d: %w", personID, err)
	}
	return nil
}

// CountByPersonID returns the number of faces referencing the person
func (r *FaceRepository) CountByPersonID(personID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Face{}).Where("person_id = ?", personID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count faces for person ID %d: %w", personID, err)
	}
	return count, nil
}

// CountUnknownByUser returns the number of unidentified faces in the user's scope
func (r *FaceRepository) CountUnknownByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Face{}).
		Joins("JOIN photos ON photos.id = faces.photo_id").
		Where("photos.user_id = ? AND faces.person_id IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unknown faces for user %d: %w", userID, err)
	}
	return count, nil
}

// ListPhotoIDsByPersonID returns the distinct photo IDs containing the person
func (r *FaceRepository) ListPhotoIDsByPersonID(personID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.Face{}).
		Where("person_id = ?", personID).
		Distinct().
		Order("photo_id ASC").
		Pluck("photo_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photo IDs for person ID %d: %w", personID, err)
	}
	return ids, nil
}

// ListIdentifiedEmbeddings returns every embedding in the user's scope whose
// face is linked to a person and was produced by the given model, ordered by
// face ID ascending. The ordering makes the matcher's tie-break deterministic.
func (r *FaceRepository) ListIdentifiedEmbeddings(userID uint, modelTag string) ([]recognition.Candidate, error) {
	var faces []models.Face
	err := r.DB.
		Joins("JOIN photos ON photos.id = faces.photo_id").
		Where("photos.user_id = ? AND faces.person_id IS NOT NULL AND faces.embedding IS NOT NULL AND faces.embedding_model = ?",
			userID, modelTag).
		Order("faces.id ASC").
		Find(&faces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list identified embeddings for user %d: %w", userID, err)
	}

	candidates := make([]recognition.Candidate, 0, len(faces))
	for _, face := range faces {
		embedding := face.GetEmbedding()
		if embedding == nil || face.PersonID == nil {
			continue
		}
		candidates = append(candidates, recognition.Candidate{
			FaceID:    face.ID,
			PersonID:  *face.PersonID,
			Embedding: embedding,
		})
	}
	return candidates, nil
}

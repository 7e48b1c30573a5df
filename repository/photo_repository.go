package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/drishyamitra/photobackend/models"
)

// PhotoRepository handles database operations for Photo entities
type PhotoRepository struct {
	DB *gorm.DB
}

// Ensure PhotoRepository implements PhotoRepositoryInterface
var _ PhotoRepositoryInterface = (*PhotoRepository)(nil)

// NewPhotoRepository creates a new instance of PhotoRepository
func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{DB: db}
}

// Create creates a new photo record in the database
func (r *PhotoRepository) Create(photo *models.Photo) error {
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}

	err := r.DB.Create(photo).Error
	if err != nil {
		return fmt.Errorf("failed to create photo %s: %w", photo.OriginalFilename, err)
	}
	return nil
}

// GetByID retrieves a photo by ID within the user's scope, preloading faces
// and tags
func (r *PhotoRepository) GetByID(photoID, userID uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.Preload("Faces").Preload("Faces.Person").Preload("Tags").
		Where("id = ? AND user_id = ?", photoID, userID).
		First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo by ID %d: %w", photoID, err)
	}
	return &photo, nil
}

// applyListOptions builds the filtered, user-scoped photo query
func (r *PhotoRepository) applyListOptions(userID uint, opts PhotoListOptions) *gorm.DB {
	query := r.DB.Model(&models.Photo{}).Where("photos.user_id = ?", userID)

	if opts.FavoritesOnly {
		query = query.Where("photos.is_favorite = ?", true)
	}

	if opts.PersonID != nil {
		query = query.Joins("JOIN faces ON faces.photo_id = photos.id").
			Where("faces.person_id = ?", *opts.PersonID).
			Distinct("photos.*")
	}

	if opts.Tag != "" {
		query = query.
			Joins("JOIN photo_tags ON photo_tags.photo_id = photos.id").
			Joins("JOIN tags ON tags.id = photo_tags.tag_id").
			Where("tags.name = ?", opts.Tag)
	}

	if opts.Search != "" {
		like := "%" + strings.ToLower(opts.Search) + "%"
		query = query.
			Joins("LEFT JOIN photo_tags spt ON spt.photo_id = photos.id").
			Joins("LEFT JOIN tags st ON st.id = spt.tag_id").
			Joins("LEFT JOIN faces sf ON sf.photo_id = photos.id").
			Joins("LEFT JOIN persons sp ON sp.id = sf.person_id").
			Where("LOWER(photos.original_filename) LIKE ? OR LOWER(st.name) LIKE ? OR LOWER(sp.name) LIKE ?",
				like, like, like).
			Distinct("photos.*")
	}

	if opts.DuplicatesOnly {
		query = query.Where(
			"photos.file_hash IN (?)",
			r.DB.Model(&models.Photo{}).
				Select("file_hash").
				Where("user_id = ? AND file_hash IS NOT NULL", userID).
				Group("file_hash").
				Having("COUNT(*) > 1"),
		)
	}

	return query
}

// List retrieves photos in the user's scope, newest upload first
func (r *PhotoRepository) List(userID uint, opts PhotoListOptions) ([]models.Photo, error) {
	query := r.applyListOptions(userID, opts).
		Preload("Tags").
		Order("photos.uploaded_at DESC, photos.id DESC")

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var photos []models.Photo
	if err := query.Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to list photos for user %d: %w", userID, err)
	}
	return photos, nil
}

// Count returns the number of photos matching the options in the user's scope.
// The joined filters (search, person) can multiply rows, so the count is
// always over distinct photo IDs; counting DISTINCT photos.* is not valid SQL.
func (r *PhotoRepository) Count(userID uint, opts PhotoListOptions) (int64, error) {
	var count int64
	opts.Limit = 0
	opts.Offset = 0
	err := r.applyListOptions(userID, opts).
		Distinct("photos.id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count photos for user %d: %w", userID, err)
	}
	return count, nil
}

// ListByIDs retrieves the photos among the given IDs that belong to the user
func (r *PhotoRepository) ListByIDs(photoIDs []uint, userID uint) ([]models.Photo, error) {
	if len(photoIDs) == 0 {
		return []models.Photo{}, nil
	}
	var photos []models.Photo
	err := r.DB.Preload("Faces").
		Where("id IN ? AND user_id = ?", photoIDs, userID).
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos by IDs: %w", err)
	}
	return photos, nil
}

// ListByHash retrieves all photos in the user's scope sharing the given
// content hash, ordered by upload time ascending (oldest first)
func (r *PhotoRepository) ListByHash(userID uint, fileHash string) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.Where("user_id = ? AND file_hash = ?", userID, fileHash).
		Order("uploaded_at ASC, id ASC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos by hash %s: %w", fileHash, err)
	}
	return photos, nil
}

// SetFavorite updates the favorite flag on a photo in the user's scope
func (r *PhotoRepository) SetFavorite(photoID, userID uint, favorite bool) error {
	result := r.DB.Model(&models.Photo{}).
		Where("id = ? AND user_id = ?", photoID, userID).
		Update("is_favorite", favorite)
	if result.Error != nil {
		return fmt.Errorf("failed to update favorite on photo ID %d: %w", photoID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetThumbnailPath records the generated thumbnail location on a photo
func (r *PhotoRepository) SetThumbnailPath(photoID, userID uint, path string) error {
	result := r.DB.Model(&models.Photo{}).
		Where("id = ? AND user_id = ?", photoID, userID).
		Update("thumbnail_path", path)
	if result.Error != nil {
		return fmt.Errorf("failed to set thumbnail path on photo ID %d: %w", photoID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a photo in the user's scope. Its faces are deleted in the
// same transaction; photo_tags join rows go with the photo via the
// association table cleanup.
func (r *PhotoRepository) Delete(photoID, userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var photo models.Photo
		if err := tx.Where("id = ? AND user_id = ?", photoID, userID).First(&photo).Error; err != nil {
			return err
		}

		if err := tx.Where("photo_id = ?", photoID).Delete(&models.Face{}).Error; err != nil {
			return fmt.Errorf("failed to delete faces of photo ID %d: %w", photoID, err)
		}
		if err := tx.Model(&photo).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear tags of photo ID %d: %w", photoID, err)
		}
		if err := tx.Delete(&photo).Error; err != nil {
			return fmt.Errorf("failed to delete photo ID %d: %w", photoID, err)
		}
		return nil
	})
}

// AttachTags finds or creates tags by name and links them to the photo
func (r *PhotoRepository) AttachTags(photo *models.Photo, tagNames []string) error {
	for _, name := range tagNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var tag models.Tag
		err := r.DB.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error
		if err != nil {
			return fmt.Errorf("failed to find or create tag '%s': %w", name, err)
		}
		if err := r.DB.Model(photo).Association("Tags").Append(&tag); err != nil {
			return fmt.Errorf("failed to attach tag '%s' to photo ID %d: %w", name, photo.ID, err)
		}
	}
	return nil
}

// ListTagNames returns the distinct tag names used by the user's photos
func (r *PhotoRepository) ListTagNames(userID uint) ([]string, error) {
	var names []string
	err := r.DB.Model(&models.Tag{}).
		Joins("JOIN photo_tags ON photo_tags.tag_id = tags.id").
		Joins("JOIN photos ON photos.id = photo_tags.photo_id").
		Where("photos.user_id = ?", userID).
		Distinct().
		Pluck("tags.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tag names for user %d: %w", userID, err)
	}
	return names, nil
}

// TotalSize returns the summed file size of the user's photos in bytes
func (r *PhotoRepository) TotalSize(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&models.Photo{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum photo sizes for user %d: %w", userID, err)
	}
	return total, nil
}

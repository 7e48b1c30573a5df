package services

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"mime"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/drishyamitra/photobackend/apperr"
	"github.com/drishyamitra/photobackend/media"
	"github.com/drishyamitra/photobackend/models"
	"github.com/drishyamitra/photobackend/repository"
	"github.com/drishyamitra/photobackend/utils"
	"gorm.io/gorm"
)

// PhotoService handles the upload pipeline and photo lifecycle. Deleting a
// photo removes its faces, its stored file and, afterwards, any person the
// deletion left without faces.
type PhotoService struct {
	photoRepo        repository.PhotoRepositoryInterface
	faceRepo         repository.FaceRepositoryInterface
	personService    *PersonService
	duplicateService *DuplicateService
	store            media.Store
	thumbnailMaxSize int
}

// NewPhotoService creates a new photo service
func NewPhotoService(
	photoRepo repository.PhotoRepositoryInterface,
	faceRepo repository.FaceRepositoryInterface,
	personService *PersonService,
	duplicateService *DuplicateService,
	store media.Store,
	thumbnailMaxSize int,
) *PhotoService {
	return &PhotoService{
		photoRepo:        photoRepo,
		faceRepo:         faceRepo,
		personService:    personService,
		duplicateService: duplicateService,
		store:            store,
		thumbnailMaxSize: thumbnailMaxSize,
	}
}

// UploadResult carries the created photo plus any pre-existing photos with
// identical content, so callers can surface a duplicate warning.
type UploadResult struct {
	Photo        *models.Photo  `json:"photo"`
	DuplicateOf  []models.Photo `json:"duplicate_of,omitempty"`
	FacesPending bool           `json:"-"`
}

// Upload validates, stores and records a new photo. The file content is
// hashed before insertion so the duplicate check covers the upload itself.
func (s *PhotoService) Upload(userID uint, originalFilename string, data []byte, tags []string) (*UploadResult, error) {
	if !utils.IsSupportedImage(originalFilename) {
		return nil, fmt.Errorf("unsupported file type '%s': %w", filepath.Ext(originalFilename), apperr.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload: %w", apperr.ErrInvalidInput)
	}

	hash := HashBytes(data)
	existing, err := s.duplicateService.CheckAgainstLibrary(userID, hash)
	if err != nil {
		return nil, err
	}

	storedName := utils.StoredFilename(originalFilename)
	userDir := strconv.FormatUint(uint64(userID), 10)
	relPath, err := s.store.Save(media.AssetTypePhoto, userDir, storedName, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store upload '%s': %w", originalFilename, err)
	}

	meta := utils.ExtractMetadata(data)
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(originalFilename)))
	fileSize := int64(len(data))

	photo := &models.Photo{
		UserID:           userID,
		Filename:         storedName,
		OriginalFilename: originalFilename,
		FileSize:         &fileSize,
		FileHash:         &hash,
		TakenAt:          meta.TakenAt,
		UploadedAt:       time.Now().UTC(),
	}
	if mimeType != "" {
		photo.MimeType = &mimeType
	}

	if err := s.photoRepo.Create(photo); err != nil {
		if delErr := s.store.Delete(relPath); delErr != nil {
			log.Printf("photo: failed to remove stored file after create error: %v", delErr)
		}
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	if len(tags) > 0 {
		if err := s.photoRepo.AttachTags(photo, tags); err != nil {
			log.Printf("photo: failed to attach tags to photo %d: %v", photo.ID, err)
		}
	}

	s.generateThumbnail(photo, relPath, userDir)

	return &UploadResult{Photo: photo, DuplicateOf: existing, FacesPending: true}, nil
}

// generateThumbnail is best effort; a photo without a thumbnail is still fully
// usable.
func (s *PhotoService) generateThumbnail(photo *models.Photo, relPath, userDir string) {
	fullPath, err := s.store.GetFullPath(relPath)
	if err != nil {
		log.Printf("photo: cannot resolve stored path for thumbnail of photo %d: %v", photo.ID, err)
		return
	}
	thumbDir, err := s.store.EnsureDir(media.AssetTypeThumbnail)
	if err != nil {
		log.Printf("photo: cannot ensure thumbnail dir for photo %d: %v", photo.ID, err)
		return
	}
	thumbPath, err := utils.GenerateThumbnail(fullPath, filepath.Join(thumbDir, userDir), s.thumbnailMaxSize, s.thumbnailMaxSize)
	if err != nil {
		log.Printf("photo: thumbnail generation failed for photo %d: %v", photo.ID, err)
		return
	}
	rel := path.Join(string(media.AssetTypeThumbnail), userDir, filepath.Base(thumbPath))
	if err := s.photoRepo.SetThumbnailPath(photo.ID, photo.UserID, rel); err != nil {
		log.Printf("photo: failed to record thumbnail path of photo %d: %v", photo.ID, err)
		return
	}
	photo.ThumbnailPath = &rel
}

// StoragePath returns the photo's path relative to the media storage root.
func StoragePath(photo *models.Photo) string {
	return path.Join(string(media.AssetTypePhoto), strconv.FormatUint(uint64(photo.UserID), 10), photo.Filename)
}

// Get returns a photo in the user's scope with faces and tags loaded.
func (s *PhotoService) Get(photoID, userID uint) (*models.Photo, error) {
	photo, err := s.photoRepo.GetByID(photoID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("photo %d: %w", photoID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load photo %d: %w", photoID, err)
	}
	return photo, nil
}

// List returns the user's photos narrowed by the given options.
func (s *PhotoService) List(userID uint, opts repository.PhotoListOptions) ([]models.Photo, error) {
	photos, err := s.photoRepo.List(userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for user %d: %w", userID, err)
	}
	return photos, nil
}

// Count returns the number of the user's photos matching the options.
func (s *PhotoService) Count(userID uint, opts repository.PhotoListOptions) (int64, error) {
	count, err := s.photoRepo.Count(userID, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to count photos for user %d: %w", userID, err)
	}
	return count, nil
}

// ToggleFavorite flips the favorite flag and returns the new state.
func (s *PhotoService) ToggleFavorite(photoID, userID uint) (bool, error) {
	photo, err := s.Get(photoID, userID)
	if err != nil {
		return false, err
	}
	newState := !photo.IsFavorite
	if err := s.photoRepo.SetFavorite(photoID, userID, newState); err != nil {
		return false, fmt.Errorf("failed to set favorite on photo %d: %w", photoID, err)
	}
	return newState, nil
}

// ListTags returns the distinct tag names used in the user's scope, naturally
// sorted.
func (s *PhotoService) ListTags(userID uint) ([]string, error) {
	names, err := s.photoRepo.ListTagNames(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for user %d: %w", userID, err)
	}
	utils.SortNatural(names)
	return names, nil
}

// Delete removes a single photo, its faces and its stored files, then cleans
// up any person the deletion orphaned.
func (s *PhotoService) Delete(photoID, userID uint) error {
	return s.DeleteBatch([]uint{photoID}, userID)
}

// DeleteBatch removes multiple photos. The orphan cleanup runs once per
// affected person after all photos are gone, not once per photo.
func (s *PhotoService) DeleteBatch(photoIDs []uint, userID uint) error {
	if len(photoIDs) == 0 {
		return nil
	}

	photos, err := s.photoRepo.ListByIDs(photoIDs, userID)
	if err != nil {
		return fmt.Errorf("failed to load photos for deletion: %w", err)
	}
	if len(photos) == 0 {
		return fmt.Errorf("no photos found for deletion: %w", apperr.ErrNotFound)
	}

	var affectedPersonIDs []uint
	for i := range photos {
		photo := &photos[i]
		for _, face := range photo.Faces {
			if face.PersonID != nil {
				affectedPersonIDs = append(affectedPersonIDs, *face.PersonID)
			}
		}

		if err := s.photoRepo.Delete(photo.ID, userID); err != nil {
			return fmt.Errorf("failed to delete photo %d: %w", photo.ID, err)
		}

		if err := s.store.Delete(StoragePath(photo)); err != nil {
			log.Printf("photo: failed to delete stored file of photo %d: %v", photo.ID, err)
		}
		if photo.ThumbnailPath != nil {
			if err := s.store.Delete(*photo.ThumbnailPath); err != nil {
				log.Printf("photo: failed to delete thumbnail of photo %d: %v", photo.ID, err)
			}
		}
	}

	s.personService.CleanupOrphans(affectedPersonIDs)
	return nil
}

// LibraryStats aggregates the counters shown on the library dashboard.
type LibraryStats struct {
	TotalPhotos     int64 `json:"total_photos"`
	FavoriteCount   int64 `json:"favorite_count"`
	TotalSize       int64 `json:"total_size"`
	PersonCount     int64 `json:"person_count"`
	UnknownFaces    int64 `json:"unknown_faces"`
	DuplicateGroups int   `json:"duplicate_groups"`
	DuplicatePhotos int   `json:"duplicate_photos"`
}

// Stats computes the library statistics for a user.
func (s *PhotoService) Stats(userID uint) (*LibraryStats, error) {
	total, err := s.photoRepo.Count(userID, repository.PhotoListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to count photos for user %d: %w", userID, err)
	}
	favorites, err := s.photoRepo.Count(userID, repository.PhotoListOptions{FavoritesOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to count favorites for user %d: %w", userID, err)
	}
	size, err := s.photoRepo.TotalSize(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum file sizes for user %d: %w", userID, err)
	}
	people, err := s.personService.ListPeople(userID)
	if err != nil {
		return nil, err
	}
	unknown, err := s.faceRepo.CountUnknownByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unknown faces for user %d: %w", userID, err)
	}
	groups, err := s.duplicateService.GroupDuplicates(userID)
	if err != nil {
		return nil, err
	}
	duplicatePhotos := 0
	for _, group := range groups {
		duplicatePhotos += len(group.Photos)
	}

	return &LibraryStats{
		TotalPhotos:     total,
		FavoriteCount:   favorites,
		TotalSize:       size,
		PersonCount:     int64(len(people)),
		UnknownFaces:    unknown,
		DuplicateGroups: len(groups),
		DuplicatePhotos: duplicatePhotos,
	}, nil
}

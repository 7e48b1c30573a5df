package repository

import (
	"github.com/drishyamitra/photobackend/models"
	"github.com/drishyamitra/photobackend/recognition"
)

// PhotoListOptions narrows a scoped photo listing.
type PhotoListOptions struct {
	FavoritesOnly  bool
	PersonID       *uint
	Tag            string
	Search         string // matches original filename, tag names and person names
	DuplicatesOnly bool   // restrict to photos whose hash appears more than once
	Limit          int
	Offset         int
}

// PhotoRepositoryInterface defines the methods for photo data operations.
// Every method takes or embeds the owning user's ID; no call crosses scopes.
type PhotoRepositoryInterface interface {
	Create(photo *models.Photo) error
	GetByID(photoID, userID uint) (*models.Photo, error)
	List(userID uint, opts PhotoListOptions) ([]models.Photo, error)
	Count(userID uint, opts PhotoListOptions) (int64, error)
	ListByIDs(photoIDs []uint, userID uint) ([]models.Photo, error)
	ListByHash(userID uint, fileHash string) ([]models.Photo, error)
	SetFavorite(photoID, userID uint, favorite bool) error
	SetThumbnailPath(photoID, userID uint, path string) error
	Delete(photoID, userID uint) error
	AttachTags(photo *models.Photo, tagNames []string) error
	ListTagNames(userID uint) ([]string, error)
	TotalSize(userID uint) (int64, error)
}

// FaceRepositoryInterface defines the methods for face data operations
type FaceRepositoryInterface interface {
	Create(face *models.Face) error
	GetByID(id uint) (*models.Face, error)
	GetByIDForUser(id, userID uint) (*models.Face, error)
	ListByPhotoID(photoID uint) ([]models.Face, error)
	SetEmbedding(faceID uint, embedding []float32, modelTag string) error
	TagFace(faceID, personID uint) error
	UntagFace(faceID uint) error
	UnlinkPerson(personID uint) error
	CountByPersonID(personID uint) (int64, error)
	CountUnknownByUser(userID uint) (int64, error)
	ListPhotoIDsByPersonID(personID uint) ([]uint, error)

	// recognition.EmbeddingSource
	ListIdentifiedEmbeddings(userID uint, modelTag string) ([]recognition.Candidate, error)
}

// PersonRepositoryInterface defines the methods for person data operations
type PersonRepositoryInterface interface {
	FindOrCreate(userID uint, name string) (*models.Person, error)
	GetByID(id uint) (*models.Person, error)
	GetByIDForUser(id, userID uint) (*models.Person, error)
	ListByUser(userID uint) ([]models.Person, error)
	Rename(personID, userID uint, name string) error
	Delete(id uint) error
}

// UserRepositoryInterface defines the methods for user data operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
}

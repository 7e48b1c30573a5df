package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/drishyamitra/photobackend/database"
	"github.com/drishyamitra/photobackend/media"
	"github.com/drishyamitra/photobackend/models"
	"github.com/drishyamitra/photobackend/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv bundles the repositories and services wired against a throwaway
// sqlite database.
type testEnv struct {
	db         *gorm.DB
	userRepo   *repository.UserRepository
	photoRepo  *repository.PhotoRepository
	faceRepo   *repository.FaceRepository
	personRepo *repository.PersonRepository

	personService    *PersonService
	duplicateService *DuplicateService
	photoService     *PhotoService

	user *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store, err := media.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		photoRepo:  repository.NewPhotoRepository(db),
		faceRepo:   repository.NewFaceRepository(db),
		personRepo: repository.NewPersonRepository(db),
	}
	env.personService = NewPersonService(env.personRepo, env.faceRepo, env.photoRepo)
	env.duplicateService = NewDuplicateService(env.photoRepo, sqlDB)
	env.photoService = NewPhotoService(env.photoRepo, env.faceRepo, env.personService, env.duplicateService, store, 300)

	env.user = &models.User{Username: "tester"}
	require.NoError(t, env.user.SetPassword("secret"))
	require.NoError(t, env.userRepo.Create(env.user))

	return env
}

// addPhoto inserts a bare photo row with the given content hash and upload time.
func (env *testEnv) addPhoto(t *testing.T, name, hash string, uploadedAt time.Time) *models.Photo {
	t.Helper()
	photo := &models.Photo{
		UserID:           env.user.ID,
		Filename:         name,
		OriginalFilename: name,
		UploadedAt:       uploadedAt,
	}
	if hash != "" {
		photo.FileHash = &hash
	}
	require.NoError(t, env.photoRepo.Create(photo))
	return photo
}

// addFace inserts a face on the photo, optionally linked to a person.
func (env *testEnv) addFace(t *testing.T, photoID uint, personID *uint) *models.Face {
	t.Helper()
	face := &models.Face{
		PhotoID:  photoID,
		PersonID: personID,
		X:        0.1, Y: 0.1, Width: 0.2, Height: 0.2,
	}
	require.NoError(t, env.faceRepo.Create(face))
	return face
}

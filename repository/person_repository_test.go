package repository

import (
	"path/filepath"
	"testing"

	"github.com/drishyamitra/photobackend/database"
	"github.com/drishyamitra/photobackend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, user.SetPassword("secret"))
	require.NoError(t, NewUserRepository(db).Create(user))
	return user
}

func TestPersonFindOrCreateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonRepository(db)
	user := createUser(t, db, "alice")

	first, err := repo.FindOrCreate(user.ID, "Grandma")
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := repo.FindOrCreate(user.ID, "Grandma")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Person{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPersonFindOrCreateScopedPerUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	p1, err := repo.FindOrCreate(alice.ID, "Grandma")
	require.NoError(t, err)
	p2, err := repo.FindOrCreate(bob.ID, "Grandma")
	require.NoError(t, err)

	assert.NotEqual(t, p1.ID, p2.ID)
}

func TestPersonRenameAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonRepository(db)
	user := createUser(t, db, "alice")

	person, err := repo.FindOrCreate(user.ID, "Grandma")
	require.NoError(t, err)

	require.NoError(t, repo.Rename(person.ID, user.ID, "Grandmother"))
	reloaded, err := repo.GetByID(person.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grandmother", reloaded.Name)

	// wrong scope must not rename
	err = repo.Rename(person.ID, user.ID+1, "Nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(person.ID))
	err = repo.Delete(person.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListIdentifiedEmbeddingsFilters(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "alice")
	photoRepo := NewPhotoRepository(db)
	faceRepo := NewFaceRepository(db)
	personRepo := NewPersonRepository(db)

	photo := &models.Photo{UserID: user.ID, Filename: "a.jpg", OriginalFilename: "a.jpg"}
	require.NoError(t, photoRepo.Create(photo))

	person, err := personRepo.FindOrCreate(user.ID, "Alice")
	require.NoError(t, err)

	// identified face with embedding: eligible
	eligible := &models.Face{PhotoID: photo.ID, X: 0.1, Y: 0.1, Width: 0.2, Height: 0.2}
	require.NoError(t, faceRepo.Create(eligible))
	require.NoError(t, faceRepo.TagFace(eligible.ID, person.ID))
	require.NoError(t, faceRepo.SetEmbedding(eligible.ID, []float32{1, 0, 0}, "arcface"))

	// identified face without embedding: skipped
	noEmbedding := &models.Face{PhotoID: photo.ID, X: 0.3, Y: 0.1, Width: 0.2, Height: 0.2}
	require.NoError(t, faceRepo.Create(noEmbedding))
	require.NoError(t, faceRepo.TagFace(noEmbedding.ID, person.ID))

	// unidentified face with embedding: skipped
	unknown := &models.Face{PhotoID: photo.ID, X: 0.5, Y: 0.1, Width: 0.2, Height: 0.2}
	require.NoError(t, faceRepo.Create(unknown))
	require.NoError(t, faceRepo.SetEmbedding(unknown.ID, []float32{0, 1, 0}, "arcface"))

	// wrong model tag: skipped
	otherModel := &models.Face{PhotoID: photo.ID, X: 0.7, Y: 0.1, Width: 0.2, Height: 0.2}
	require.NoError(t, faceRepo.Create(otherModel))
	require.NoError(t, faceRepo.TagFace(otherModel.ID, person.ID))
	require.NoError(t, faceRepo.SetEmbedding(otherModel.ID, []float32{0, 0, 1}, "facenet"))

	candidates, err := faceRepo.ListIdentifiedEmbeddings(user.ID, "arcface")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, eligible.ID, candidates[0].FaceID)
	assert.Equal(t, person.ID, candidates[0].PersonID)
	assert.Equal(t, []float32{1, 0, 0}, candidates[0].Embedding)
}

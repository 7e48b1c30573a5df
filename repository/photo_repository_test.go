package repository

import (
	"testing"

	"github.com/drishyamitra/photobackend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountWithSearchFilter(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "alice")
	photoRepo := NewPhotoRepository(db)

	sunset := &models.Photo{UserID: user.ID, Filename: "s.jpg", OriginalFilename: "sunset.jpg"}
	require.NoError(t, photoRepo.Create(sunset))
	city := &models.Photo{UserID: user.ID, Filename: "c.jpg", OriginalFilename: "city.jpg"}
	require.NoError(t, photoRepo.Create(city))

	// two tags matching the term on one photo must not double-count it
	require.NoError(t, photoRepo.AttachTags(sunset, []string{"sunset-trip", "sunset-2024"}))

	count, err := photoRepo.Count(user.ID, PhotoListOptions{Search: "sunset"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = photoRepo.Count(user.ID, PhotoListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCountWithPersonFilter(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "alice")
	photoRepo := NewPhotoRepository(db)
	faceRepo := NewFaceRepository(db)
	personRepo := NewPersonRepository(db)

	photo := &models.Photo{UserID: user.ID, Filename: "a.jpg", OriginalFilename: "a.jpg"}
	require.NoError(t, photoRepo.Create(photo))
	other := &models.Photo{UserID: user.ID, Filename: "b.jpg", OriginalFilename: "b.jpg"}
	require.NoError(t, photoRepo.Create(other))

	person, err := personRepo.FindOrCreate(user.ID, "Alice")
	require.NoError(t, err)

	// the person appears twice on the same photo; the photo counts once
	for i := 0; i < 2; i++ {
		face := &models.Face{PhotoID: photo.ID, X: 0.1, Y: 0.1, Width: 0.2, Height: 0.2}
		require.NoError(t, faceRepo.Create(face))
		require.NoError(t, faceRepo.TagFace(face.ID, person.ID))
	}

	count, err := photoRepo.Count(user.ID, PhotoListOptions{PersonID: &person.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

package services

import (
	"testing"
	"time"

	"github.com/drishyamitra/photobackend/apperr"
	"github.com/drishyamitra/photobackend/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.photoService.Upload(env.user.ID, "notes.txt", []byte("hello"), nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = env.photoService.Upload(env.user.ID, "empty.jpg", nil, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUploadRecordsHashAndMetadata(t *testing.T) {
	env := newTestEnv(t)
	data := []byte("fake image bytes")

	result, err := env.photoService.Upload(env.user.ID, "holiday.jpg", data, []string{"beach", "2024"})
	require.NoError(t, err)
	require.NotNil(t, result.Photo)
	assert.Empty(t, result.DuplicateOf)

	photo, err := env.photoService.Get(result.Photo.ID, env.user.ID)
	require.NoError(t, err)
	require.NotNil(t, photo.FileHash)
	assert.Equal(t, HashBytes(data), *photo.FileHash)
	assert.Equal(t, "holiday.jpg", photo.OriginalFilename)
	assert.NotEqual(t, "holiday.jpg", photo.Filename)
	require.NotNil(t, photo.FileSize)
	assert.Equal(t, int64(len(data)), *photo.FileSize)
	assert.Len(t, photo.Tags, 2)
}

func TestUploadFlagsExactDuplicates(t *testing.T) {
	env := newTestEnv(t)
	data := []byte("identical content")

	first, err := env.photoService.Upload(env.user.ID, "x.jpg", data, nil)
	require.NoError(t, err)
	assert.Empty(t, first.DuplicateOf)

	second, err := env.photoService.Upload(env.user.ID, "y.jpg", data, nil)
	require.NoError(t, err)
	require.Len(t, second.DuplicateOf, 1)
	assert.Equal(t, first.Photo.ID, second.DuplicateOf[0].ID)

	// both land in the library and form one duplicate group
	groups, err := env.duplicateService.GroupDuplicates(env.user.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Photos, 2)
	assert.Equal(t, first.Photo.ID, groups[0].Photos[0].ID)
	assert.Equal(t, second.Photo.ID, groups[0].Photos[1].ID)
}

func TestUploadDifferentContentNeverGroups(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.photoService.Upload(env.user.ID, "x.jpg", []byte("content one"), nil)
	require.NoError(t, err)
	_, err = env.photoService.Upload(env.user.ID, "y.jpg", []byte("content two"), nil)
	require.NoError(t, err)

	groups, err := env.duplicateService.GroupDuplicates(env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestDeleteRemovesFacesAndOrphanedPersons(t *testing.T) {
	env := newTestEnv(t)
	photo := env.addPhoto(t, "a.jpg", "", time.Now())
	face := env.addFace(t, photo.ID, nil)

	alice, err := env.personService.AssignFace(face.ID, env.user.ID, "Alice")
	require.NoError(t, err)

	require.NoError(t, env.photoService.Delete(photo.ID, env.user.ID))

	_, err = env.photoService.Get(photo.ID, env.user.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = env.faceRepo.GetByID(face.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = env.personRepo.GetByID(alice.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteBatchKeepsPersonSeenElsewhere(t *testing.T) {
	env := newTestEnv(t)
	photo1 := env.addPhoto(t, "a.jpg", "", time.Now())
	photo2 := env.addPhoto(t, "b.jpg", "", time.Now())
	photo3 := env.addPhoto(t, "c.jpg", "", time.Now())

	face1 := env.addFace(t, photo1.ID, nil)
	face2 := env.addFace(t, photo2.ID, nil)
	face3 := env.addFace(t, photo3.ID, nil)

	alice, err := env.personService.AssignFace(face1.ID, env.user.ID, "Alice")
	require.NoError(t, err)
	_, err = env.personService.AssignFace(face2.ID, env.user.ID, "Alice")
	require.NoError(t, err)
	bob, err := env.personService.AssignFace(face3.ID, env.user.ID, "Bob")
	require.NoError(t, err)

	// deleting photos 2 and 3: Alice survives via photo 1, Bob is orphaned
	require.NoError(t, env.photoService.DeleteBatch([]uint{photo2.ID, photo3.ID}, env.user.ID))

	_, err = env.personRepo.GetByID(alice.ID)
	assert.NoError(t, err)
	_, err = env.personRepo.GetByID(bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteBatchUnknownPhotos(t *testing.T) {
	env := newTestEnv(t)
	err := env.photoService.DeleteBatch([]uint{999}, env.user.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestToggleFavorite(t *testing.T) {
	env := newTestEnv(t)
	photo := env.addPhoto(t, "a.jpg", "", time.Now())

	state, err := env.photoService.ToggleFavorite(photo.ID, env.user.ID)
	require.NoError(t, err)
	assert.True(t, state)

	state, err = env.photoService.ToggleFavorite(photo.ID, env.user.ID)
	require.NoError(t, err)
	assert.False(t, state)

	_, err = env.photoService.ToggleFavorite(photo.ID, env.user.ID+1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListTagsNaturalOrder(t *testing.T) {
	env := newTestEnv(t)
	photo := env.addPhoto(t, "a.jpg", "", time.Now())
	require.NoError(t, env.photoRepo.AttachTags(photo, []string{"trip10", "trip2", "alps"}))

	tags, err := env.photoService.ListTags(env.user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alps", "trip2", "trip10"}, tags)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	photo1 := env.addPhoto(t, "a.jpg", "", time.Now())
	env.addPhoto(t, "b.jpg", "", time.Now())

	size := int64(100)
	require.NoError(t, env.db.Model(photo1).Update("file_size", size).Error)
	require.NoError(t, env.photoRepo.SetFavorite(photo1.ID, env.user.ID, true))

	face1 := env.addFace(t, photo1.ID, nil)
	env.addFace(t, photo1.ID, nil)
	_, err := env.personService.AssignFace(face1.ID, env.user.ID, "Alice")
	require.NoError(t, err)

	stats, err := env.photoService.Stats(env.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPhotos)
	assert.Equal(t, int64(1), stats.FavoriteCount)
	assert.Equal(t, int64(100), stats.TotalSize)
	assert.Equal(t, int64(1), stats.PersonCount)
	assert.Equal(t, int64(1), stats.UnknownFaces)
	assert.Equal(t, 0, stats.DuplicateGroups)
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)
	photo1 := env.addPhoto(t, "sunset.jpg", "", time.Now().Add(-time.Hour))
	photo2 := env.addPhoto(t, "city.jpg", "", time.Now())
	require.NoError(t, env.photoRepo.SetFavorite(photo2.ID, env.user.ID, true))
	require.NoError(t, env.photoRepo.AttachTags(photo1, []string{"nature"}))

	favorites, err := env.photoService.List(env.user.ID, repository.PhotoListOptions{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, photo2.ID, favorites[0].ID)

	tagged, err := env.photoService.List(env.user.ID, repository.PhotoListOptions{Tag: "nature"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, photo1.ID, tagged[0].ID)

	searched, err := env.photoService.List(env.user.ID, repository.PhotoListOptions{Search: "sunset"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, photo1.ID, searched[0].ID)
}

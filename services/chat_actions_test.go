package services

import (
	"testing"
	"time"

	"github.com/drishyamitra/photobackend/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatEnv(t *testing.T) (*testEnv, *ChatService) {
	env := newTestEnv(t)
	chat := NewChatService(env.photoService, env.personService, env.duplicateService, env.faceRepo)
	return env, chat
}

func TestChatRejectsUnknownAction(t *testing.T) {
	_, chat := newChatEnv(t)

	_, err := chat.Execute(1, ChatRequest{Action: "MAKE_COFFEE"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestChatSearchPhotos(t *testing.T) {
	env, chat := newChatEnv(t)
	env.addPhoto(t, "sunset.jpg", "", time.Now())
	env.addPhoto(t, "city.jpg", "", time.Now())

	resp, err := chat.Execute(env.user.ID, ChatRequest{Action: ActionSearchPhotos, Query: "sunset"})
	require.NoError(t, err)
	assert.Len(t, resp.Photos, 1)

	_, err = chat.Execute(env.user.ID, ChatRequest{Action: ActionSearchPhotos})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestChatSearchDuplicatesKeyword(t *testing.T) {
	env, chat := newChatEnv(t)
	env.addPhoto(t, "a1.jpg", "aaaa", time.Now().Add(-time.Hour))
	env.addPhoto(t, "a2.jpg", "aaaa", time.Now())
	env.addPhoto(t, "unique.jpg", "bbbb", time.Now())

	resp, err := chat.Execute(env.user.ID, ChatRequest{Action: ActionSearchPhotos, Query: "duplicates"})
	require.NoError(t, err)
	assert.Len(t, resp.Photos, 2)
}

func TestChatShowFavoritesAndRecent(t *testing.T) {
	env, chat := newChatEnv(t)
	photo := env.addPhoto(t, "a.jpg", "", time.Now())
	env.addPhoto(t, "b.jpg", "", time.Now())
	require.NoError(t, env.photoRepo.SetFavorite(photo.ID, env.user.ID, true))

	resp, err := chat.Execute(env.user.ID, ChatRequest{Action: ActionShowFavorites})
	require.NoError(t, err)
	require.Len(t, resp.Photos, 1)
	assert.Equal(t, photo.ID, resp.Photos[0].ID)

	resp, err = chat.Execute(env.user.ID, ChatRequest{Action: ActionShowRecent})
	require.NoError(t, err)
	assert.Len(t, resp.Photos, 2)
}

func TestChatDeletePhotosRequiresConfirmation(t *testing.T) {
	env, chat := newChatEnv(t)
	photo := env.addPhoto(t, "a.jpg", "", time.Now())

	resp, err := chat.Execute(env.user.ID, ChatRequest{Action: ActionDeletePhotos, PhotoIDs: []uint{photo.ID}})
	require.NoError(t, err)
	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, []uint{photo.ID}, resp.PendingDeleteIDs)

	// nothing deleted yet
	_, err = env.photoService.Get(photo.ID, env.user.ID)
	require.NoError(t, err)

	_, err = chat.Execute(env.user.ID, ChatRequest{Action: ActionDeletePhotos, PhotoIDs: []uint{photo.ID}, Confirmed: true})
	require.NoError(t, err)
	_, err = env.photoService.Get(photo.ID, env.user.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChatDeleteDuplicatesFlow(t *testing.T) {
	env, chat := newChatEnv(t)
	base := time.Now().Add(-2 * time.Hour)
	keep := env.addPhoto(t, "a1.jpg", "aaaa", base)
	drop := env.addPhoto(t, "a2.jpg", "aaaa", base.Add(time.Hour))

	resp, err := chat.Execute(env.user.ID, ChatRequest{Action: ActionDeleteDuplicates})
	require.NoError(t, err)
	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, []uint{drop.ID}, resp.PendingDeleteIDs)

	resp, err = chat.Execute(env.user.ID, ChatRequest{
		Action:    ActionDeleteDuplicates,
		PhotoIDs:  resp.PendingDeleteIDs,
		Confirmed: true,
	})
	require.NoError(t, err)
	assert.False(t, resp.RequiresConfirmation)

	_, err = env.photoService.Get(keep.ID, env.user.ID)
	assert.NoError(t, err)
	_, err = env.photoService.Get(drop.ID, env.user.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChatDeleteDuplicatesNothingToClean(t *testing.T) {
	env, chat := newChatEnv(t)
	env.addPhoto(t, "a.jpg", "aaaa", time.Now())

	resp, err := chat.Execute(env.user.ID, ChatRequest{Action: ActionDeleteDuplicates})
	require.NoError(t, err)
	assert.False(t, resp.RequiresConfirmation)
	assert.Empty(t, resp.PendingDeleteIDs)
}

func TestChatShowPersonPhotos(t *testing.T) {
	env, chat := newChatEnv(t)
	photo := env.addPhoto(t, "a.jpg", "", time.Now())
	face := env.addFace(t, photo.ID, nil)
	_, err := env.personService.AssignFace(face.ID, env.user.ID, "Alice")
	require.NoError(t, err)

	resp, err := chat.Execute(env.user.ID, ChatRequest{Action: ActionShowPersonPhotos, PersonName: "alice"})
	require.NoError(t, err)
	assert.Len(t, resp.Photos, 1)

	_, err = chat.Execute(env.user.ID, ChatRequest{Action: ActionShowPersonPhotos, PersonName: "nobody"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChatStatsAndCounts(t *testing.T) {
	env, chat := newChatEnv(t)
	photo := env.addPhoto(t, "a.jpg", "", time.Now())
	env.addFace(t, photo.ID, nil)

	resp, err := chat.Execute(env.user.ID, ChatRequest{Action: ActionShowStats})
	require.NoError(t, err)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, int64(1), resp.Stats.TotalPhotos)
	assert.Equal(t, int64(1), resp.Stats.UnknownFaces)

	resp, err = chat.Execute(env.user.ID, ChatRequest{Action: ActionCountPhotos})
	require.NoError(t, err)
	require.NotNil(t, resp.Count)
	assert.Equal(t, int64(1), *resp.Count)

	resp, err = chat.Execute(env.user.ID, ChatRequest{Action: ActionShowUnknownFaces})
	require.NoError(t, err)
	require.NotNil(t, resp.Count)
	assert.Equal(t, int64(1), *resp.Count)
}

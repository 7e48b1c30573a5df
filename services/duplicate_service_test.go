package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	hash, err := ContentHash(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", hash)
	assert.Equal(t, hash, HashBytes([]byte("hello")))
}

func TestGroupDuplicates(t *testing.T) {
	env := newTestEnv(t)
	base := time.Now().Add(-6 * time.Hour)

	// hashes: A A B C C C -> two groups (A and C)
	env.addPhoto(t, "a1.jpg", "aaaa", base)
	env.addPhoto(t, "a2.jpg", "aaaa", base.Add(time.Hour))
	env.addPhoto(t, "b1.jpg", "bbbb", base.Add(2*time.Hour))
	env.addPhoto(t, "c1.jpg", "cccc", base.Add(3*time.Hour))
	env.addPhoto(t, "c2.jpg", "cccc", base.Add(4*time.Hour))
	env.addPhoto(t, "c3.jpg", "cccc", base.Add(5*time.Hour))

	groups, err := env.duplicateService.GroupDuplicates(env.user.ID)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	sizes := map[string]int{}
	for _, group := range groups {
		sizes[group.Hash] = len(group.Photos)
		// oldest copy first
		for i := 1; i < len(group.Photos); i++ {
			assert.False(t, group.Photos[i].UploadedAt.Before(group.Photos[i-1].UploadedAt))
		}
	}
	assert.Equal(t, map[string]int{"aaaa": 2, "cccc": 3}, sizes)
}

func TestGroupDuplicatesIgnoresUniqueAndUnhashed(t *testing.T) {
	env := newTestEnv(t)

	env.addPhoto(t, "a.jpg", "aaaa", time.Now())
	env.addPhoto(t, "b.jpg", "", time.Now())
	env.addPhoto(t, "c.jpg", "", time.Now())

	groups, err := env.duplicateService.GroupDuplicates(env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroupDuplicatesScopedToUser(t *testing.T) {
	env := newTestEnv(t)
	env.addPhoto(t, "a.jpg", "aaaa", time.Now())
	// same hash under another user must not group with ours
	other := env.addPhoto(t, "b.jpg", "aaaa", time.Now())
	require.NoError(t, env.db.Model(other).Update("user_id", env.user.ID+1).Error)

	groups, err := env.duplicateService.GroupDuplicates(env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestStagePurgeKeepsOldestOfEachGroup(t *testing.T) {
	env := newTestEnv(t)
	base := time.Now().Add(-6 * time.Hour)

	keepA := env.addPhoto(t, "a1.jpg", "aaaa", base)
	dropA := env.addPhoto(t, "a2.jpg", "aaaa", base.Add(time.Hour))
	keepC := env.addPhoto(t, "c1.jpg", "cccc", base.Add(2*time.Hour))
	dropC1 := env.addPhoto(t, "c2.jpg", "cccc", base.Add(3*time.Hour))
	dropC2 := env.addPhoto(t, "c3.jpg", "cccc", base.Add(4*time.Hour))

	plan, err := env.duplicateService.StagePurge(env.user.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Groups)
	assert.ElementsMatch(t, []uint{dropA.ID, dropC1.ID, dropC2.ID}, plan.DeleteIDs)
	assert.NotContains(t, plan.DeleteIDs, keepA.ID)
	assert.NotContains(t, plan.DeleteIDs, keepC.ID)
}

func TestCheckAgainstLibrary(t *testing.T) {
	env := newTestEnv(t)
	photo := env.addPhoto(t, "a.jpg", "aaaa", time.Now())

	matches, err := env.duplicateService.CheckAgainstLibrary(env.user.ID, "aaaa")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, photo.ID, matches[0].ID)

	matches, err = env.duplicateService.CheckAgainstLibrary(env.user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

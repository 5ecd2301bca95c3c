package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michat/michat-api/cache"
	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/databases/mocks"
)

func TestCachedUserLoader_CachesAfterFirstLoad(t *testing.T) {
	userDB := &mocks.UserDatabase{}
	userDB.On("FindByID", context.Background(), int64(1)).
		Return(chatUser(1, "alice"), nil).Once()

	loader := NewCachedUserLoader(userDB, cache.NewMemoryCache())

	first, err := loader.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Details.Username)

	// second load must be served from cache, the mock only allows one call
	second, err := loader.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	userDB.AssertExpectations(t)
}

func TestCachedUserLoader_InvalidateForcesReload(t *testing.T) {
	fresh := chatUser(1, "alice")
	banned := chatUser(1, "alice")
	banned.Details.IsBanned = true

	userDB := &mocks.UserDatabase{}
	userDB.On("FindByID", context.Background(), int64(1)).Return(fresh, nil).Once()
	userDB.On("FindByID", context.Background(), int64(1)).Return(banned, nil).Once()

	loader := NewCachedUserLoader(userDB, cache.NewMemoryCache())

	user, err := loader.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, user.Details.IsBanned)

	loader.Invalidate(context.Background(), 1)

	user, err = loader.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, user.Details.IsBanned)

	userDB.AssertExpectations(t)
}

func TestCachedUserLoader_PropagatesNotFound(t *testing.T) {
	userDB := &mocks.UserDatabase{}
	userDB.On("FindByID", context.Background(), int64(404)).
		Return(nil, databases.ErrNotFound)

	loader := NewCachedUserLoader(userDB, cache.NewMemoryCache())

	user, err := loader.FindByID(context.Background(), 404)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, databases.ErrNotFound)
}

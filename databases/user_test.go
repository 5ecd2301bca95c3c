package databases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/databases/mocks"
	"github.com/michat/michat-api/models"
)

func TestUserDatabase_FindByID(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperNoDoc databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperNoDoc = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperNoDoc.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(mongo.ErrNoDocuments)

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.User)
		arg.ID = 7
		arg.Details.Username = "alice"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": int64(500)}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": int64(404)}).
		Return(srHelperNoDoc)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": int64(7)}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "users").Return(collectionHelper)

	userDba := databases.NewUserDatabase(dbHelper, &mocks.CounterDatabase{})

	user, err := userDba.FindByID(context.Background(), 500)
	assert.Empty(t, user)
	assert.EqualError(t, err, "mocked-error")

	// a missing document maps onto the shared not-found sentinel
	user, err = userDba.FindByID(context.Background(), 404)
	assert.Empty(t, user)
	assert.ErrorIs(t, err, databases.ErrNotFound)

	user, err = userDba.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "alice", user.Details.Username)
}

func TestUserDatabase_FindByUsername(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperNoDoc databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperNoDoc = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperNoDoc.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(mongo.ErrNoDocuments)

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.User)
		arg.ID = 7
		arg.Details.Username = "alice"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"user.username": "ghost"}).
		Return(srHelperNoDoc)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"user.username": "alice"}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "users").Return(collectionHelper)

	userDba := databases.NewUserDatabase(dbHelper, &mocks.CounterDatabase{})

	user, err := userDba.FindByUsername(context.Background(), "ghost")
	assert.Empty(t, user)
	assert.ErrorIs(t, err, databases.ErrNotFound)

	user, err = userDba.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Details.Username)
}

func TestUserDatabase_Insert(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	counter := &mocks.CounterDatabase{}

	counter.On("Next", context.Background(), databases.UserSequence).Return(int64(12), nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), mock.MatchedBy(func(u models.User) bool {
			return u.ID == 12 && u.Details.Username == "alice"
		})).
		Return(nil, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "users").Return(collectionHelper)

	userDba := databases.NewUserDatabase(dbHelper, counter)

	created, err := userDba.Insert(context.Background(), models.UserDetails{
		Username:  "alice",
		Color:     "#ffffff",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), created.ID)
	counter.AssertExpectations(t)
}

func TestUserDatabase_InsertCounterFailure(t *testing.T) {
	counter := &mocks.CounterDatabase{}
	counter.On("Next", context.Background(), databases.UserSequence).
		Return(int64(0), errors.New("mocked-error"))

	userDba := databases.NewUserDatabase(&mocks.DatabaseHelper{}, counter)

	_, err := userDba.Insert(context.Background(), models.UserDetails{Username: "alice"})
	assert.EqualError(t, err, "mocked-error")
}

func TestUserDatabase_ModerationUpdates(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	until := time.Now().UTC().Add(10 * time.Minute)

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"_id": int64(2)}, bson.M{"$set": bson.M{"user.isBanned": true}}).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"_id": int64(2)}, bson.M{"$set": bson.M{"user.mutedUntil": &until}}).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"_id": int64(2)}, bson.M{"$set": bson.M{"user.isDeleted": true}}).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	// the target does not exist
	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"_id": int64(404)}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "users").Return(collectionHelper)

	userDba := databases.NewUserDatabase(dbHelper, &mocks.CounterDatabase{})

	assert.NoError(t, userDba.SetBanned(context.Background(), 2, true))
	assert.NoError(t, userDba.SetMutedUntil(context.Background(), 2, &until))
	assert.NoError(t, userDba.SoftDelete(context.Background(), 2))

	assert.ErrorIs(t, userDba.SetBanned(context.Background(), 404, true), databases.ErrNotFound)
	assert.ErrorIs(t, userDba.SoftDelete(context.Background(), 404), databases.ErrNotFound)
}

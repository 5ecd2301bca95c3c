package databases_test

import (
	"context"
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

func TestTokenDatabase_Insert(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	expiresAt := time.Now().UTC().Add(24 * time.Hour)

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), mock.MatchedBy(func(tok models.Token) bool {
			return tok.ID == "jti-123" &&
				tok.Details.UserID == 7 &&
				tok.Details.ExpiresAt.Equal(expiresAt)
		})).
		Return(nil, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "tokens").Return(collectionHelper)

	tokenDba := databases.NewTokenDatabase(dbHelper)

	assert.NoError(t, tokenDba.Insert(context.Background(), "jti-123", 7, expiresAt))
	collectionHelper.(*mocks.CollectionHelper).AssertExpectations(t)
}

func TestTokenDatabase_FindByID(t *testing.T) {

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
		arg := args.Get(0).(*models.Token)
		arg.ID = "jti-123"
		arg.Details.UserID = 7
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": "revoked"}).
		Return(srHelperNoDoc)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": "jti-123"}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "tokens").Return(collectionHelper)

	tokenDba := databases.NewTokenDatabase(dbHelper)

	// a revoked jti is simply absent
	token, err := tokenDba.FindByID(context.Background(), "revoked")
	assert.Empty(t, token)
	assert.ErrorIs(t, err, databases.ErrNotFound)

	token, err = tokenDba.FindByID(context.Background(), "jti-123")
	require.NoError(t, err)
	assert.Equal(t, "jti-123", token.ID)
	assert.Equal(t, int64(7), token.Details.UserID)
}

func TestTokenDatabase_DeleteByUserID(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("DeleteMany", context.Background(), bson.M{"token.userId": int64(7)}).
		Return(&mongo.DeleteResult{DeletedCount: 2}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "tokens").Return(collectionHelper)

	tokenDba := databases.NewTokenDatabase(dbHelper)

	removed, err := tokenDba.DeleteByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestTokenDatabase_DeleteExpired(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	now := time.Now().UTC()

	collectionHelper.(*mocks.CollectionHelper).
		On("DeleteMany", context.Background(), bson.M{"token.expiresAt": bson.M{"$lt": now}}).
		Return(&mongo.DeleteResult{DeletedCount: 5}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "tokens").Return(collectionHelper)

	tokenDba := databases.NewTokenDatabase(dbHelper)

	removed, err := tokenDba.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), removed)
}

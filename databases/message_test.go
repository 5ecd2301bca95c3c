package databases_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/databases/mocks"
	"github.com/michat/michat-api/models"
)

func TestValidateContent(t *testing.T) {
	trimmed, err := databases.ValidateContent("  hello  ")
	assert.NoError(t, err)
	assert.Equal(t, "hello", trimmed)

	_, err = databases.ValidateContent("")
	assert.ErrorIs(t, err, databases.ErrEmptyContent)

	_, err = databases.ValidateContent("   \n\t ")
	assert.ErrorIs(t, err, databases.ErrEmptyContent)

	// the limit counts runes, not bytes
	_, err = databases.ValidateContent(strings.Repeat("é", databases.MaxContentLength))
	assert.NoError(t, err)

	_, err = databases.ValidateContent(strings.Repeat("a", databases.MaxContentLength+1))
	assert.ErrorIs(t, err, databases.ErrContentTooLong)
}

func messageAuthor() *models.User {
	return &models.User{
		ID:      4,
		Details: models.UserDetails{Username: "alice", Color: "#f00", IsAdmin: true},
	}
}

func TestMessageDatabase_AppendGlobal(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	counter := &mocks.CounterDatabase{}

	counter.On("Next", context.Background(), databases.MessageSequence).Return(int64(9), nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), mock.MatchedBy(func(m models.Message) bool {
			return m.ID == 9 &&
				m.Details.UserID == 4 &&
				m.Details.RecipientID == nil &&
				m.Details.Username == "alice" &&
				m.Details.IsAdmin &&
				m.Details.Content == "hello room"
		})).
		Return(nil, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "messages").Return(collectionHelper)

	messageDba := databases.NewMessageDatabase(dbHelper, counter)

	// leading and trailing whitespace is trimmed before storage
	msg, err := messageDba.AppendGlobal(context.Background(), messageAuthor(), "  hello room  ")
	require.NoError(t, err)
	assert.Equal(t, int64(9), msg.ID)
	assert.Equal(t, "hello room", msg.Details.Content)
	assert.Nil(t, msg.Details.RecipientID)
}

func TestMessageDatabase_AppendPrivate(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	counter := &mocks.CounterDatabase{}

	counter.On("Next", context.Background(), databases.MessageSequence).Return(int64(10), nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), mock.MatchedBy(func(m models.Message) bool {
			return m.ID == 10 &&
				m.Details.RecipientID != nil &&
				*m.Details.RecipientID == 8
		})).
		Return(nil, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "messages").Return(collectionHelper)

	messageDba := databases.NewMessageDatabase(dbHelper, counter)

	recipient := &models.User{ID: 8, Details: models.UserDetails{Username: "bob"}}
	msg, err := messageDba.AppendPrivate(context.Background(), messageAuthor(), recipient, "psst")
	require.NoError(t, err)
	require.NotNil(t, msg.Details.RecipientID)
	assert.Equal(t, int64(8), *msg.Details.RecipientID)
}

func TestMessageDatabase_AppendInvalidContentBurnsNoID(t *testing.T) {
	counter := &mocks.CounterDatabase{}
	messageDba := databases.NewMessageDatabase(&mocks.DatabaseHelper{}, counter)

	_, err := messageDba.AppendGlobal(context.Background(), messageAuthor(), "   ")
	assert.ErrorIs(t, err, databases.ErrEmptyContent)

	_, err = messageDba.AppendGlobal(context.Background(), messageAuthor(), strings.Repeat("a", databases.MaxContentLength+1))
	assert.ErrorIs(t, err, databases.ErrContentTooLong)

	// a rejected send must not consume a sequence number
	counter.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
}

func TestMessageDatabase_ListGlobalInitialLoadReverses(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	// mongo hands back newest-first; the store flips to display order
	cursorHelper.(*mocks.CursorHelper).
		On("All", context.Background(), mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Message)
		*arg = []models.Message{{ID: 3}, {ID: 2}, {ID: 1}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"message.recipientId": nil}, mock.Anything).
		Return(cursorHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "messages").Return(collectionHelper)

	messageDba := databases.NewMessageDatabase(dbHelper, &mocks.CounterDatabase{})

	messages, err := messageDba.ListGlobal(context.Background(), 0, 50)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, int64(1), messages[0].ID)
	assert.Equal(t, int64(2), messages[1].ID)
	assert.Equal(t, int64(3), messages[2].ID)
}

func TestMessageDatabase_ListGlobalAfterID(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).
		On("All", context.Background(), mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Message)
		*arg = []models.Message{{ID: 43}, {ID: 44}}
	})

	expectedFilter := bson.M{
		"message.recipientId": nil,
		"_id":                 bson.M{"$gt": int64(42)},
	}
	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), expectedFilter, mock.Anything).
		Return(cursorHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "messages").Return(collectionHelper)

	messageDba := databases.NewMessageDatabase(dbHelper, &mocks.CounterDatabase{})

	// cursor polls come back ascending already, no reversal
	messages, err := messageDba.ListGlobal(context.Background(), 42, 50)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(43), messages[0].ID)
	assert.Equal(t, int64(44), messages[1].ID)
}

func TestMessageDatabase_ListPrivateCoversBothDirections(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).
		On("All", context.Background(), mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Message)
		*arg = []models.Message{{ID: 6}, {ID: 5}}
	})

	expectedFilter := bson.M{
		"message.recipientId": bson.M{"$ne": nil},
		"$or": []bson.M{
			{"message.userId": int64(1), "message.recipientId": int64(2)},
			{"message.userId": int64(2), "message.recipientId": int64(1)},
		},
	}
	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), expectedFilter, mock.Anything).
		Return(cursorHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "messages").Return(collectionHelper)

	messageDba := databases.NewMessageDatabase(dbHelper, &mocks.CounterDatabase{})

	messages, err := messageDba.ListPrivate(context.Background(), 1, 2, 100)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(5), messages[0].ID)
	assert.Equal(t, int64(6), messages[1].ID)
}

package databases

// go generate: mockery --name MessageDatabase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/michat/michat-api/models"
)

const messageName = "messages"

// MaxContentLength bounds message content, matching the column limit of the
// message log
const MaxContentLength = 1000

// MessageDatabase is the append-only message log. Appends validate content
// first and only then consume an id from the counter, so rejected sends never
// burn sequence numbers.
type MessageDatabase interface {
	AppendGlobal(ctx context.Context, author *models.User, content string) (*models.Message, error)
	AppendPrivate(ctx context.Context, author *models.User, recipient *models.User, content string) (*models.Message, error)
	ListGlobal(ctx context.Context, afterID int64, limit int64) ([]models.Message, error)
	ListPrivate(ctx context.Context, userA, userB int64, limit int64) ([]models.Message, error)
}

type messageDatabase struct {
	db      DatabaseHelper
	counter CounterDatabase
}

// NewMessageDatabase initializes a new instance of message database with the provided db connection
func NewMessageDatabase(db DatabaseHelper, counter CounterDatabase) MessageDatabase {
	return &messageDatabase{
		db:      db,
		counter: counter,
	}
}

// ValidateContent trims content and enforces the length bounds shared by
// every append path
func ValidateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

func (m *messageDatabase) AppendGlobal(ctx context.Context, author *models.User, content string) (*models.Message, error) {
	return m.append(ctx, author, nil, content)
}

func (m *messageDatabase) AppendPrivate(ctx context.Context, author *models.User, recipient *models.User, content string) (*models.Message, error) {
	recipientID := recipient.ID
	return m.append(ctx, author, &recipientID, content)
}

func (m *messageDatabase) append(ctx context.Context, author *models.User, recipientID *int64, content string) (*models.Message, error) {
	content, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}

	id, err := m.counter.Next(ctx, MessageSequence)
	if err != nil {
		return nil, err
	}

	msg := models.Message{
		ID: id,
		Details: models.MessageDetails{
			UserID:      author.ID,
			RecipientID: recipientID,
			Username:    author.Details.Username,
			Color:       author.Details.Color,
			IsAdmin:     author.Details.IsAdmin,
			Content:     content,
			CreatedAt:   time.Now().UTC(),
		},
	}
	if _, err := m.db.Collection(messageName).InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *messageDatabase) ListGlobal(ctx context.Context, afterID int64, limit int64) ([]models.Message, error) {
	filter := bson.M{"message.recipientId": nil}

	if afterID > 0 {
		// cursor poll: everything newer than the caller's last seen id,
		// already in ascending order
		filter["_id"] = bson.M{"$gt": afterID}
		opts := options.Find().SetLimit(limit).SetSort(bson.M{"_id": 1})
		return m.list(ctx, filter, opts, false)
	}

	// initial load: newest N, returned ascending for display
	opts := options.Find().SetLimit(limit).SetSort(bson.M{"_id": -1})
	return m.list(ctx, filter, opts, true)
}

func (m *messageDatabase) ListPrivate(ctx context.Context, userA, userB int64, limit int64) ([]models.Message, error) {
	filter := bson.M{
		"message.recipientId": bson.M{"$ne": nil},
		"$or": []bson.M{
			{"message.userId": userA, "message.recipientId": userB},
			{"message.userId": userB, "message.recipientId": userA},
		},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.M{"_id": -1})
	return m.list(ctx, filter, opts, true)
}

func (m *messageDatabase) list(ctx context.Context, filter interface{}, opts *options.FindOptions, reverse bool) ([]models.Message, error) {
	cursor, err := m.db.Collection(messageName).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	if reverse {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}
	return messages, nil
}

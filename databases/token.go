package databases

// go generate: mockery --name TokenDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/michat/michat-api/models"
)

const tokenName = "tokens"

// TokenDatabase tracks issued access tokens by jti so bans and deletes can
// revoke them before they expire
type TokenDatabase interface {
	Insert(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	FindByID(ctx context.Context, jti string) (*models.Token, error)
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenDatabase struct {
	db DatabaseHelper
}

// NewTokenDatabase initializes a new instance of token database with the provided db connection
func NewTokenDatabase(db DatabaseHelper) TokenDatabase {
	return &tokenDatabase{
		db: db,
	}
}

func (t *tokenDatabase) Insert(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	token := models.Token{
		ID: jti,
		Details: models.TokenDetails{
			UserID:    userID,
			ExpiresAt: expiresAt,
			CreatedAt: time.Now().UTC(),
		},
	}
	_, err := t.db.Collection(tokenName).InsertOne(ctx, token)
	return err
}

func (t *tokenDatabase) FindByID(ctx context.Context, jti string) (*models.Token, error) {
	var token models.Token
	err := t.db.Collection(tokenName).FindOne(ctx, bson.M{"_id": jti}).Decode(&token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (t *tokenDatabase) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	res, err := t.db.Collection(tokenName).DeleteMany(ctx, bson.M{"token.userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (t *tokenDatabase) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := t.db.Collection(tokenName).DeleteMany(ctx, bson.M{"token.expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

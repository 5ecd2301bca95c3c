package databases

// go generate: mockery --name UserDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/michat/michat-api/models"
)

const userName = "users"

// UserDatabase contains the methods to use with the user database. Users are
// never physically removed; SoftDelete tombstones them so message history
// keeps resolving.
type UserDatabase interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.User, error)
	Insert(ctx context.Context, details models.UserDetails) (*models.User, error)
	SetBanned(ctx context.Context, id int64, banned bool) error
	SetMutedUntil(ctx context.Context, id int64, until *time.Time) error
	SoftDelete(ctx context.Context, id int64) error
}

type userDatabase struct {
	db      DatabaseHelper
	counter CounterDatabase
}

// NewUserDatabase initializes a new instance of user database with the provided db connection
func NewUserDatabase(db DatabaseHelper, counter CounterDatabase) UserDatabase {
	return &userDatabase{
		db:      db,
		counter: counter,
	}
}

func (u *userDatabase) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := u.db.Collection(userName).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *userDatabase) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := u.db.Collection(userName).FindOne(ctx, bson.M{"user.username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *userDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.User, error) {
	cursor, err := u.db.Collection(userName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (u *userDatabase) Insert(ctx context.Context, details models.UserDetails) (*models.User, error) {
	id, err := u.counter.Next(ctx, UserSequence)
	if err != nil {
		return nil, err
	}
	user := models.User{ID: id, Details: details}
	if _, err := u.db.Collection(userName).InsertOne(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *userDatabase) SetBanned(ctx context.Context, id int64, banned bool) error {
	return u.updateByID(ctx, id, bson.M{"$set": bson.M{"user.isBanned": banned}})
}

func (u *userDatabase) SetMutedUntil(ctx context.Context, id int64, until *time.Time) error {
	return u.updateByID(ctx, id, bson.M{"$set": bson.M{"user.mutedUntil": until}})
}

func (u *userDatabase) SoftDelete(ctx context.Context, id int64) error {
	return u.updateByID(ctx, id, bson.M{"$set": bson.M{"user.isDeleted": true}})
}

func (u *userDatabase) updateByID(ctx context.Context, id int64, update interface{}) error {
	res, err := u.db.Collection(userName).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

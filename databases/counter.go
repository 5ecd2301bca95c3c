package databases

// go generate: mockery --name CounterDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterName = "counters"

// Sequence names used by the stores
const (
	UserSequence    = "users"
	MessageSequence = "messages"
)

// CounterDatabase hands out strictly increasing integer ids. Next is atomic:
// two concurrent callers can never observe the same value.
type CounterDatabase interface {
	Next(ctx context.Context, name string) (int64, error)
}

type counterDatabase struct {
	db DatabaseHelper
}

// NewCounterDatabase initializes a new instance of counter database with the provided db connection
func NewCounterDatabase(db DatabaseHelper) CounterDatabase {
	return &counterDatabase{
		db: db,
	}
}

func (c *counterDatabase) Next(ctx context.Context, name string) (int64, error) {
	// $inc on a single document is atomic server-side, ReturnDocument(After)
	// hands back the freshly assigned value
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := c.db.Collection(counterName).FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/edulane/gurukul/core"
)

// Collections
const (
	accountCollection = "users"
	tutorCollection   = "tutors"
	studentCollection = "students"
	parentCollection  = "parents"
	sessionCollection = "sessions"
)

// Open connects to the document store and pings it. Close via
// db.Client().Disconnect.
func Open(conf *core.Config) (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return client.Database(conf.Database.Name), nil
}

// EnsureIndexes creates the indexes the application relies on: the unique
// email index backing account uniqueness and the unique back-references
// enforcing one profile per account.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(coll, field string) error {
		_, err := db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		return errors.Wrapf(err, "indexing %s.%s", coll, field)
	}

	if err := unique(accountCollection, "email"); err != nil {
		return err
	}
	for _, coll := range []string{tutorCollection, studentCollection, parentCollection} {
		if err := unique(coll, "userId"); err != nil {
			return err
		}
	}
	return nil
}

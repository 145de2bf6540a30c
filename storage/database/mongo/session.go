package mongodb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/edulane/gurukul/core/session"
)

type sessionRepository struct {
	coll *mongo.Collection
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *mongo.Database) session.Repository {
	return &sessionRepository{coll: db.Collection(sessionCollection)}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, s session.Session) (session.Session, error) {
	s.ID = uuid.NewString()
	if _, err := repo.coll.InsertOne(ctx, s); err != nil {
		return session.Session{}, errors.Wrap(err, "inserting session")
	}
	return s, nil
}

func (repo *sessionRepository) query(ctx context.Context, filter bson.M) ([]session.Session, error) {
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]session.Session, 0)
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, errors.Wrap(err, "decoding sessions")
	}
	return sessions, nil
}

func (repo *sessionRepository) QueryAllSessions(ctx context.Context) ([]session.Session, error) {
	return repo.query(ctx, bson.M{})
}

func (repo *sessionRepository) FilterSessions(ctx context.Context, filter session.QueryFilter) ([]session.Session, error) {
	query := bson.M{}
	if filter.TutorID != "" {
		query["tutorId"] = filter.TutorID
	}
	if filter.StudentID != "" {
		query["studentId"] = filter.StudentID
	}
	if filter.StudentIDs != nil {
		query["studentId"] = bson.M{"$in": filter.StudentIDs}
	}
	return repo.query(ctx, query)
}

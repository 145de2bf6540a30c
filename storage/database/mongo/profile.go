package mongodb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/edulane/gurukul/core/account"
)

// profileRepository maps each profile kind to its own collection through a
// closed lookup table; unknown kinds never reach storage.
type profileRepository struct {
	colls map[string]*mongo.Collection
}

var _ account.ProfileRepository = (*profileRepository)(nil)

func NewProfileRepository(db *mongo.Database) account.ProfileRepository {
	return &profileRepository{colls: map[string]*mongo.Collection{
		account.RoleTutor:   db.Collection(tutorCollection),
		account.RoleStudent: db.Collection(studentCollection),
		account.RoleParent:  db.Collection(parentCollection),
	}}
}

func (repo *profileRepository) collection(kind string) (*mongo.Collection, error) {
	coll, ok := repo.colls[kind]
	if !ok {
		return nil, errors.Errorf("unknown profile kind %q", kind)
	}
	return coll, nil
}

func (repo *profileRepository) CreateProfile(ctx context.Context, p account.Profile) (account.Profile, error) {
	coll, err := repo.collection(p.Kind)
	if err != nil {
		return account.Profile{}, err
	}

	id := uuid.NewString()
	var doc interface{}
	switch p.Kind {
	case account.RoleTutor:
		p.Tutor.ID = id
		doc = p.Tutor
	case account.RoleStudent:
		p.Student.ID = id
		doc = p.Student
	case account.RoleParent:
		p.Parent.ID = id
		doc = p.Parent
	}

	if _, err = coll.InsertOne(ctx, doc); err != nil {
		return account.Profile{}, errors.Wrapf(err, "inserting %s profile", p.Kind)
	}
	return p, nil
}

func (repo *profileRepository) GetProfileByID(ctx context.Context, kind, id string) (account.Profile, error) {
	coll, err := repo.collection(kind)
	if err != nil {
		return account.Profile{}, err
	}

	res := coll.FindOne(ctx, bson.M{"_id": id})
	p := account.Profile{Kind: kind}
	switch kind {
	case account.RoleTutor:
		p.Tutor = new(account.TutorProfile)
		err = res.Decode(p.Tutor)
	case account.RoleStudent:
		p.Student = new(account.StudentProfile)
		err = res.Decode(p.Student)
	case account.RoleParent:
		p.Parent = new(account.ParentProfile)
		err = res.Decode(p.Parent)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return account.Profile{}, account.ErrProfileNotFound
		}
		return account.Profile{}, errors.Wrapf(err, "finding %s profile", kind)
	}
	return p, nil
}

func (repo *profileRepository) DeleteProfileByID(ctx context.Context, kind, id string) error {
	coll, err := repo.collection(kind)
	if err != nil {
		return err
	}
	_, err = coll.DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrapf(err, "deleting %s profile", kind)
}

package inmemdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edulane/gurukul/core/account"
)

type profileRepository struct {
	db *DB
}

var _ account.ProfileRepository = (*profileRepository)(nil)

func NewProfileRepository(db *DB) account.ProfileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) CreateProfile(_ context.Context, p account.Profile) (account.Profile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	id := uuid.NewString()
	switch p.Kind {
	case account.RoleTutor:
		tutor := *p.Tutor
		tutor.ID = id
		repo.db.tutors[id] = &tutor
		p.Tutor = &tutor
	case account.RoleStudent:
		student := *p.Student
		student.ID = id
		repo.db.students[id] = &student
		p.Student = &student
	case account.RoleParent:
		parent := *p.Parent
		parent.ID = id
		repo.db.parents[id] = &parent
		p.Parent = &parent
	default:
		return account.Profile{}, errors.Errorf("unknown profile kind %q", p.Kind)
	}
	return p, nil
}

func (repo *profileRepository) GetProfileByID(_ context.Context, kind, id string) (account.Profile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	switch kind {
	case account.RoleTutor:
		if tutor, ok := repo.db.tutors[id]; ok {
			t := *tutor
			return account.Profile{Kind: kind, Tutor: &t}, nil
		}
	case account.RoleStudent:
		if student, ok := repo.db.students[id]; ok {
			s := *student
			return account.Profile{Kind: kind, Student: &s}, nil
		}
	case account.RoleParent:
		if parent, ok := repo.db.parents[id]; ok {
			p := *parent
			return account.Profile{Kind: kind, Parent: &p}, nil
		}
	default:
		return account.Profile{}, errors.Errorf("unknown profile kind %q", kind)
	}
	return account.Profile{}, account.ErrProfileNotFound
}

func (repo *profileRepository) DeleteProfileByID(_ context.Context, kind, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	switch kind {
	case account.RoleTutor:
		delete(repo.db.tutors, id)
	case account.RoleStudent:
		delete(repo.db.students, id)
	case account.RoleParent:
		delete(repo.db.parents, id)
	}
	return nil
}

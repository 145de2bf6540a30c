package session

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/edulane/gurukul/core"
	"github.com/edulane/gurukul/core/account"
)

type (
	Repository interface {
		CreateSession(ctx context.Context, s Session) (Session, error)
		QueryAllSessions(ctx context.Context) ([]Session, error)
		// FilterSessions applies the QueryFilter; an empty filter matches nothing.
		FilterSessions(ctx context.Context, filter QueryFilter) ([]Session, error)
	}

	Service struct {
		repo     Repository
		profiles account.ProfileRepository
	}
)

func NewService(repo Repository, profiles account.ProfileRepository) *Service {
	return &Service{repo: repo, profiles: profiles}
}

// Create books a session after checking that both profile references exist.
func (svc *Service) Create(ctx context.Context, ns NewSession) (Session, error) {
	if err := svc.checkProfileRef(ctx, account.RoleTutor, ns.TutorID, "tutorId"); err != nil {
		return Session{}, err
	}
	if err := svc.checkProfileRef(ctx, account.RoleStudent, ns.StudentID, "studentId"); err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateSession(ctx, Session{
		TutorID:       ns.TutorID,
		StudentID:     ns.StudentID,
		Subject:       ns.Subject,
		Grade:         ns.Grade,
		Board:         ns.Board,
		ScheduledTime: ns.ScheduledTime.UTC(),
		Status:        StatusScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (svc *Service) checkProfileRef(ctx context.Context, kind, id, field string) error {
	if _, err := svc.profiles.GetProfileByID(ctx, kind, id); err != nil {
		if err == account.ErrProfileNotFound {
			return core.NewValidationError(err, core.FieldError{Field: field, Error: "no such " + kind})
		}
		return pkgerrors.Wrapf(err, "checking %s", field)
	}
	return nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Session, error) {
	return svc.repo.QueryAllSessions(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Session, error) {
	if filter.IsEmpty() {
		return []Session{}, nil
	}
	return svc.repo.FilterSessions(ctx, filter)
}

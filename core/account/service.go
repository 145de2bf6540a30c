package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/edulane/gurukul/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidProfileData = errors.New("missing or invalid profile data")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateAccount(ctx context.Context, acct Account) (Account, error)
		GetAccountByID(ctx context.Context, id string) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		QueryAllAccounts(ctx context.Context) ([]Account, error)
		SetAccountProfile(ctx context.Context, id, profileID string) (Account, error)
		UpdateOrCreateAccount(ctx context.Context, acct Account) (Account, error)
		// DeleteAccountsByID is idempotent: deleting an absent ID is not an error.
		DeleteAccountsByID(ctx context.Context, ids ...string) error
	}

	// ProfileRepository stores the role-specific profile documents. Kind is
	// always one of the profile-bearing roles (tutor, student, parent).
	ProfileRepository interface {
		CreateProfile(ctx context.Context, p Profile) (Profile, error)
		GetProfileByID(ctx context.Context, kind, id string) (Profile, error)
		DeleteProfileByID(ctx context.Context, kind, id string) error
	}

	Service struct {
		repo     Repository
		profiles ProfileRepository
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

func NewService(repo Repository, profiles ProfileRepository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		mailSvc:  mailSvc,
		conf:     conf,
	}
}

// Register creates an Account with its role-specific Profile. The profile
// payload is checked after the Account write, mirroring the storage
// contract: when it fails, the Account is deleted again (compensating
// rollback, no multi-document transaction) so the email stays available.
func (svc *Service) Register(ctx context.Context, na NewAccount) (Account, Profile, error) {
	if err := svc.repo.CheckEmailUniqueness(ctx, na.Email); err != nil {
		if err == ErrEmailExists {
			return Account{}, Profile{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Account{}, Profile{}, pkgerrors.Wrap(err, "checking email uniqueness")
	}

	now := time.Now().UTC()
	acct := Account{
		Email:     na.Email,
		Role:      na.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acct.SetPassword(na.Password); err != nil {
		return Account{}, Profile{}, pkgerrors.Wrap(err, "hashing password")
	}

	acct, err := svc.repo.CreateAccount(ctx, acct)
	if err != nil {
		if err == ErrEmailExists { // lost the race on the unique index
			return Account{}, Profile{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Account{}, Profile{}, pkgerrors.Wrap(err, "creating account")
	}

	if err = na.Profile.ValidateFor(na.Role); err != nil {
		svc.rollbackAccount(ctx, acct.ID)
		return Account{}, Profile{}, err
	}

	profile, err := svc.profiles.CreateProfile(ctx, na.Profile.Build(na.Role, acct.ID))
	if err != nil {
		svc.rollbackAccount(ctx, acct.ID)
		return Account{}, Profile{}, pkgerrors.Wrap(err, "creating profile")
	}

	acct, err = svc.repo.SetAccountProfile(ctx, acct.ID, profile.ID())
	if err != nil {
		_ = svc.profiles.DeleteProfileByID(ctx, profile.Kind, profile.ID())
		svc.rollbackAccount(ctx, acct.ID)
		return Account{}, Profile{}, pkgerrors.Wrap(err, "linking profile")
	}

	svc.sendWelcomeEmail(acct, profile)
	return acct, profile, nil
}

// rollbackAccount compensates a failed registration. The delete is
// idempotent and retried once; a second failure leaves an orphaned Account
// that expires with the unique-email constraint unbroken.
func (svc *Service) rollbackAccount(ctx context.Context, id string) {
	if err := svc.repo.DeleteAccountsByID(ctx, id); err != nil {
		_ = svc.repo.DeleteAccountsByID(ctx, id)
	}
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password both yield ErrInvalidCredentials to prevent account enumeration.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Account, error) {
	acct, err := svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, pkgerrors.Wrap(err, "finding account by email")
	}
	if err = acct.CheckPassword(pwd); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// CreateAdmin provisions (or re-keys) an admin account. Admins carry no
// profile and cannot be created through signup.
func (svc *Service) CreateAdmin(ctx context.Context, email, pwd string) (Account, error) {
	email = core.CleanString(email, true /* lower */)
	if _, err := mail.ParseAddress(email); err != nil {
		return Account{}, core.NewValidationError(errors.New("invalid email address"), core.FieldError{Field: "email", Error: "invalid email address"})
	}
	if len(pwd) < 6 {
		return Account{}, core.NewValidationError(errors.New("password must be at least 6 characters long"), core.FieldError{Field: "password", Error: "password must be at least 6 characters long"})
	}

	// role is immutable: never turn an existing non-admin account into an admin
	if existing, err := svc.repo.GetAccountByEmail(ctx, email); err == nil && !existing.IsAdmin() {
		return Account{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if err != nil && err != ErrNotFound {
		return Account{}, pkgerrors.Wrap(err, "finding account by email")
	}

	now := time.Now().UTC()
	acct := Account{
		Email:     email,
		Role:      RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acct.SetPassword(pwd); err != nil {
		return Account{}, pkgerrors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdateOrCreateAccount(ctx, acct)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Account, error) {
	return svc.repo.QueryAllAccounts(ctx)
}

// GetProfile resolves the account's linked profile document. Admin accounts
// (and accounts with no link) yield a zero Profile.
func (svc *Service) GetProfile(ctx context.Context, acct Account) (Profile, error) {
	if acct.IsAdmin() || acct.ProfileID == "" {
		return Profile{}, nil
	}
	return svc.profiles.GetProfileByID(ctx, acct.Role, acct.ProfileID)
}

func (svc *Service) sendWelcomeEmail(acct Account, profile Profile) {
	if svc.mailSvc == nil {
		return
	}
	var name string
	switch profile.Kind {
	case RoleTutor:
		name = profile.Tutor.Name
	case RoleStudent:
		name = profile.Student.Name
	case RoleParent:
		name = profile.Parent.Name
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: name, Address: acct.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour %s account is ready. Log in at %s to get started.\n",
			name, acct.Role, svc.conf.FrontendBaseURL,
		),
	})
}

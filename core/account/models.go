package account

import (
	"encoding/json"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edulane/gurukul/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTutor   = "tutor"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// Tutor payout types
const (
	PayoutSessionWise = "session-wise"
	PayoutPartTime    = "part-time"
)

// SelfRegisterableRoles are the roles accepted on signup; admin accounts
// are provisioned via the admin CLI only.
var SelfRegisterableRoles = []string{RoleTutor, RoleStudent, RoleParent}

// Account represents one login identity. Role is fixed at creation and
// determines which profile kind, if any, is linked.
type Account struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash []byte    `bson:"passwordHash" json:"-"`
	Role         string    `bson:"role" json:"role"`
	ProfileID    string    `bson:"profileId,omitempty" json:"profileId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"` // UTC
	UpdatedAt    time.Time `bson:"updatedAt" json:"updated_at"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Account) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a *Account) IsTutor() bool   { return a.Role == RoleTutor }
func (a *Account) IsStudent() bool { return a.Role == RoleStudent }
func (a *Account) IsParent() bool  { return a.Role == RoleParent }

type TutorProfile struct {
	ID                string   `bson:"_id,omitempty" json:"id"`
	AccountID         string   `bson:"userId" json:"-"`
	Name              string   `bson:"name" json:"name"`
	Experience        int      `bson:"experience" json:"experience"` // years
	Qualification     string   `bson:"qualification" json:"qualification"`
	GradesTaught      []string `bson:"gradesTaught" json:"gradesTaught"`
	SubjectsTaught    []string `bson:"subjectsTaught" json:"subjectsTaught"`
	PayoutType        string   `bson:"payoutType" json:"payoutType"`
	PartTimeBenchmark *int     `bson:"partTimeBenchmark,omitempty" json:"partTimeBenchmark,omitempty"`
}

type StudentProfile struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	AccountID string `bson:"userId" json:"-"`
	Name      string `bson:"name" json:"name"`
	Grade     string `bson:"grade" json:"grade"`
	Board     string `bson:"board" json:"board"` // e.g. "CBSE", "ICSE", "State Board"
	ParentID  string `bson:"parentId,omitempty" json:"parentId,omitempty"`
}

type ParentProfile struct {
	ID        string   `bson:"_id,omitempty" json:"id"`
	AccountID string   `bson:"userId" json:"-"`
	Name      string   `bson:"name" json:"name"`
	Children  []string `bson:"children" json:"children"` // student profile IDs
}

// Profile is a closed union over the role-specific profile kinds. Exactly
// one of the pointers is set, matching Kind; the zero value means "no
// profile" (admin accounts).
type Profile struct {
	Kind    string
	Tutor   *TutorProfile
	Student *StudentProfile
	Parent  *ParentProfile
}

func (p Profile) IsZero() bool { return p.Kind == "" }

func (p Profile) ID() string {
	switch p.Kind {
	case RoleTutor:
		return p.Tutor.ID
	case RoleStudent:
		return p.Student.ID
	case RoleParent:
		return p.Parent.ID
	}
	return ""
}

func (p Profile) AccountID() string {
	switch p.Kind {
	case RoleTutor:
		return p.Tutor.AccountID
	case RoleStudent:
		return p.Student.AccountID
	case RoleParent:
		return p.Parent.AccountID
	}
	return ""
}

// MarshalJSON renders the profile as its inner document; a zero Profile
// renders as null.
func (p Profile) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case RoleTutor:
		return json.Marshal(p.Tutor)
	case RoleStudent:
		return json.Marshal(p.Student)
	case RoleParent:
		return json.Marshal(p.Parent)
	}
	return []byte("null"), nil
}

// NewAccount contains information needed to register a new Account.
// Profile data is validated separately against Role (see ProfileData).
type NewAccount struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     string      `json:"role" validate:"required,regrole"`
	Profile  ProfileData `json:"profileData"`
}

func (na *NewAccount) Validate() error {
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Role = core.CleanString(na.Role, true /* lower */)
	return core.Validate.Struct(na)
}

// ProfileData is the raw role-specific profile payload submitted on signup.
type ProfileData struct {
	Name string `json:"name"`

	// tutor
	Experience        *int     `json:"experience,omitempty"`
	Qualification     string   `json:"qualification,omitempty"`
	GradesTaught      []string `json:"gradesTaught,omitempty"`
	SubjectsTaught    []string `json:"subjectsTaught,omitempty"`
	PayoutType        string   `json:"payoutType,omitempty"`
	PartTimeBenchmark *int     `json:"partTimeBenchmark,omitempty"`

	// student
	Grade    string `json:"grade,omitempty"`
	Board    string `json:"board,omitempty"`
	ParentID string `json:"parentId,omitempty"`

	// parent
	Children []string `json:"children,omitempty"`
}

// ValidateFor checks the role-specific required fields. It returns a
// *core.ValidationError listing every missing or out-of-range field.
func (pd *ProfileData) ValidateFor(role string) error {
	pd.Name = core.CleanString(pd.Name)

	var flds []core.FieldError
	missing := func(field string) {
		flds = append(flds, core.FieldError{Field: field, Error: requiredText})
	}

	if pd.Name == "" {
		missing("name")
	}
	switch role {
	case RoleTutor:
		if pd.Experience == nil {
			missing("experience")
		} else if *pd.Experience < 0 {
			flds = append(flds, core.FieldError{Field: "experience", Error: "experience cannot be negative"})
		}
		if core.CleanString(pd.Qualification) == "" {
			missing("qualification")
		}
		if len(pd.GradesTaught) == 0 {
			missing("gradesTaught")
		}
		if len(pd.SubjectsTaught) == 0 {
			missing("subjectsTaught")
		}
		switch pd.PayoutType {
		case "", PayoutSessionWise: // session-wise is the default
		case PayoutPartTime:
			if pd.PartTimeBenchmark == nil {
				missing("partTimeBenchmark")
			} else if *pd.PartTimeBenchmark < 0 || *pd.PartTimeBenchmark > 100 {
				flds = append(flds, core.FieldError{Field: "partTimeBenchmark", Error: "benchmark must be between 0 and 100"})
			}
		default:
			flds = append(flds, core.FieldError{Field: "payoutType", Error: "invalid payout type"})
		}
	case RoleStudent:
		if core.CleanString(pd.Grade) == "" {
			missing("grade")
		}
		if core.CleanString(pd.Board) == "" {
			missing("board")
		}
	case RoleParent:
		// only name is required
	}

	if flds != nil {
		return core.NewValidationError(ErrInvalidProfileData, flds...)
	}
	return nil
}

// Build assembles the Profile union value for the given role and owner.
func (pd ProfileData) Build(role, accountID string) Profile {
	switch role {
	case RoleTutor:
		payoutType := pd.PayoutType
		if payoutType == "" {
			payoutType = PayoutSessionWise
		}
		return Profile{Kind: RoleTutor, Tutor: &TutorProfile{
			AccountID:         accountID,
			Name:              pd.Name,
			Experience:        *pd.Experience,
			Qualification:     core.CleanString(pd.Qualification),
			GradesTaught:      pd.GradesTaught,
			SubjectsTaught:    pd.SubjectsTaught,
			PayoutType:        payoutType,
			PartTimeBenchmark: pd.PartTimeBenchmark,
		}}
	case RoleStudent:
		return Profile{Kind: RoleStudent, Student: &StudentProfile{
			AccountID: accountID,
			Name:      pd.Name,
			Grade:     core.CleanString(pd.Grade),
			Board:     core.CleanString(pd.Board),
			ParentID:  pd.ParentID,
		}}
	case RoleParent:
		children := pd.Children
		if children == nil {
			children = []string{}
		}
		return Profile{Kind: RoleParent, Parent: &ParentProfile{
			AccountID: accountID,
			Name:      pd.Name,
			Children:  children,
		}}
	}
	return Profile{}
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return core.Validate.Struct(c)
}

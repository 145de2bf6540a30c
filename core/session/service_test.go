package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/edulane/gurukul/core"
	"github.com/edulane/gurukul/core/account"
	"github.com/edulane/gurukul/core/session"
	"github.com/edulane/gurukul/storage/database/inmem"
)

func setup(t *testing.T) (*session.Service, account.ProfileRepository) {
	t.Helper()
	db := inmemdb.Open()
	profiles := inmemdb.NewProfileRepository(db)
	return session.NewService(inmemdb.NewSessionRepository(db), profiles), profiles
}

func createProfile(t *testing.T, profiles account.ProfileRepository, p account.Profile) account.Profile {
	t.Helper()
	created, err := profiles.CreateProfile(context.Background(), p)
	if err != nil {
		t.Fatalf("createProfile(): %v", err)
	}
	return created
}

func newSession(tutorID, studentID string) session.NewSession {
	return session.NewSession{
		TutorID:       tutorID,
		StudentID:     studentID,
		Subject:       "Physics",
		Grade:         "9",
		Board:         "CBSE",
		ScheduledTime: time.Now().Add(24 * time.Hour),
	}
}

func Test_Service_Create(t *testing.T) {
	svc, profiles := setup(t)
	ctx := context.Background()

	tutor := createProfile(t, profiles, account.Profile{Kind: account.RoleTutor, Tutor: &account.TutorProfile{Name: "Guru Ji"}})
	student := createProfile(t, profiles, account.Profile{Kind: account.RoleStudent, Student: &account.StudentProfile{Name: "Chhotu"}})

	// both profile references are checked
	if _, err := svc.Create(ctx, newSession("nope", student.ID())); err == nil {
		t.Error("Create() accepted an unknown tutorId")
	} else if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("Create() error = %T; want *core.ValidationError", err)
	}
	if _, err := svc.Create(ctx, newSession(tutor.ID(), "nope")); err == nil {
		t.Error("Create() accepted an unknown studentId")
	}

	s, err := svc.Create(ctx, newSession(tutor.ID(), student.ID()))
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if s.ID == "" {
		t.Error("session ID not set")
	}
	if s.Status != session.StatusScheduled {
		t.Errorf("Status = %v; want %v", s.Status, session.StatusScheduled)
	}
	if s.TutorID != tutor.ID() || s.StudentID != student.ID() {
		t.Errorf("refs = (%v, %v); want (%v, %v)", s.TutorID, s.StudentID, tutor.ID(), student.ID())
	}
}

func Test_Service_Filter(t *testing.T) {
	svc, profiles := setup(t)
	ctx := context.Background()

	tutor1 := createProfile(t, profiles, account.Profile{Kind: account.RoleTutor, Tutor: &account.TutorProfile{Name: "Guru Ji"}})
	tutor2 := createProfile(t, profiles, account.Profile{Kind: account.RoleTutor, Tutor: &account.TutorProfile{Name: "Masterji"}})
	student1 := createProfile(t, profiles, account.Profile{Kind: account.RoleStudent, Student: &account.StudentProfile{Name: "Chhotu"}})
	student2 := createProfile(t, profiles, account.Profile{Kind: account.RoleStudent, Student: &account.StudentProfile{Name: "Motu"}})

	mustCreate := func(tutorID, studentID string) session.Session {
		s, err := svc.Create(ctx, newSession(tutorID, studentID))
		if err != nil {
			t.Fatalf("Create(): %v", err)
		}
		return s
	}
	s1 := mustCreate(tutor1.ID(), student1.ID())
	s2 := mustCreate(tutor1.ID(), student2.ID())
	s3 := mustCreate(tutor2.ID(), student1.ID())

	tests := []struct {
		name   string
		filter session.QueryFilter
		want   []string // session IDs
	}{
		{name: "empty filter matches nothing", filter: session.QueryFilter{}, want: nil},
		{name: "by tutor", filter: session.QueryFilter{TutorID: tutor1.ID()}, want: []string{s1.ID, s2.ID}},
		{name: "by student", filter: session.QueryFilter{StudentID: student1.ID()}, want: []string{s1.ID, s3.ID}},
		{name: "by student set", filter: session.QueryFilter{StudentIDs: []string{student1.ID(), student2.ID()}}, want: []string{s1.ID, s2.ID, s3.ID}},
		{name: "by empty student set", filter: session.QueryFilter{StudentIDs: []string{}}, want: nil},
		{name: "tutor and student", filter: session.QueryFilter{TutorID: tutor2.ID(), StudentID: student2.ID()}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Filter(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Filter(): %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Filter() returned %v sessions; want %v", len(got), len(tt.want))
			}
			ids := make(map[string]bool, len(got))
			for _, s := range got {
				ids[s.ID] = true
			}
			for _, id := range tt.want {
				if !ids[id] {
					t.Errorf("Filter() missing session %v", id)
				}
			}
		})
	}

	all, err := svc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll(): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("QueryAll() returned %v sessions; want 3", len(all))
	}
}

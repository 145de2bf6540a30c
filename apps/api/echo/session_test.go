package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/edulane/gurukul/core/account"
	"github.com/edulane/gurukul/core/session"
)

func sessionBody(t *testing.T, tutorID, studentID string) []byte {
	return marchallObj(t, session.NewSession{
		TutorID:       tutorID,
		StudentID:     studentID,
		Subject:       "Physics",
		Grade:         "9",
		Board:         "CBSE",
		ScheduledTime: time.Date(2026, 9, 15, 16, 0, 0, 0, time.UTC),
	})
}

func Test_sessionApi_sessionCreate(t *testing.T) {
	env := setup(t)

	tutor := createAccount(t, env, account.RoleTutor, "guru@test.cd")
	student := createAccount(t, env, account.RoleStudent, "chhotu@test.cd")
	admin := createAccount(t, env, account.RoleAdmin, "boss@test.cd")
	adminToken := getToken(t, env, admin)

	requiredText := "this field is required"
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNoToken401)},
		{
			name: "Admin required", token: getToken(t, env, tutor), body: sessionBody(t, tutor.ProfileID, student.ProfileID),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "role (tutor) is not authorized to access this route"}),
		},
		{
			name: "required fields", token: adminToken, body: marchallObj(t, struct{}{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"tutorId":       requiredText,
				"studentId":     requiredText,
				"subject":       requiredText,
				"grade":         requiredText,
				"board":         requiredText,
				"scheduledTime": requiredText,
			}),
		},
		{
			name: "unknown tutor", token: adminToken, body: sessionBody(t, "nope", student.ProfileID),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"tutorId": "no such tutor"}),
		},
		{
			name: "unknown student", token: adminToken, body: sessionBody(t, tutor.ProfileID, "nope"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"studentId": "no such student"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/sessions"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Session booked", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/sessions", adminToken, sessionBody(t, tutor.ProfileID, student.ProfileID))
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var s session.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if s.ID == "" {
			t.Error("session ID not set")
		}
		if s.Status != session.StatusScheduled {
			t.Errorf("status = %v; want %v", s.Status, session.StatusScheduled)
		}
		if s.TutorID != tutor.ProfileID || s.StudentID != student.ProfileID {
			t.Errorf("refs = (%v, %v); want (%v, %v)", s.TutorID, s.StudentID, tutor.ProfileID, student.ProfileID)
		}
	})
}

func Test_sessionApi_sessionQuery(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	tutor1 := createAccount(t, env, account.RoleTutor, "guru@test.cd")
	tutor2 := createAccount(t, env, account.RoleTutor, "masterji@test.cd", tutorData())
	student1 := createAccount(t, env, account.RoleStudent, "chhotu@test.cd")
	student2 := createAccount(t, env, account.RoleStudent, "motu@test.cd", account.ProfileData{Name: "Motu", Grade: "9", Board: "ICSE"})
	parent := createAccount(t, env, account.RoleParent, "papa@test.cd", account.ProfileData{Name: "Papa", Children: []string{student1.ProfileID}})
	admin := createAccount(t, env, account.RoleAdmin, "boss@test.cd")

	book := func(tutorID, studentID string) session.Session {
		s, err := env.sessSvc.Create(ctx, session.NewSession{
			TutorID:       tutorID,
			StudentID:     studentID,
			Subject:       "Physics",
			Grade:         "9",
			Board:         "CBSE",
			ScheduledTime: time.Now().Add(24 * time.Hour),
		})
		if err != nil {
			t.Fatalf("Create(): %v", err)
		}
		return s
	}
	s1 := book(tutor1.ProfileID, student1.ProfileID)
	s2 := book(tutor1.ProfileID, student2.ProfileID)
	s3 := book(tutor2.ProfileID, student1.ProfileID)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNoToken401)},
		{name: "admin sees all", token: getToken(t, env, admin), wantData: marchallList(t, s1, s2, s3)},
		{name: "tutor sees own", token: getToken(t, env, tutor1), wantData: marchallList(t, s1, s2)},
		{name: "student sees own", token: getToken(t, env, student1), wantData: marchallList(t, s1, s3)},
		{name: "parent sees children's", token: getToken(t, env, parent), wantData: marchallList(t, s1, s3)},
		{name: "other student sees own only", token: getToken(t, env, student2), wantData: marchallList(t, s2)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/sessions"
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/edulane/gurukul/core/account"
)

func signupBody(t *testing.T, email, password, role string, data account.ProfileData) []byte {
	return marchallObj(t, account.NewAccount{
		Email:    email,
		Password: password,
		Role:     role,
		Profile:  data,
	})
}

func Test_authApi_signup(t *testing.T) {
	env := setup(t)

	createAccount(t, env, account.RoleTutor, "taken@test.cd")

	requiredText := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", body: marchallObj(t, struct{}{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": requiredText, "password": requiredText, "role": requiredText}),
		},
		{
			name: "invalid email", body: signupBody(t, "lol", "hunter12", account.RoleTutor, tutorData()),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "short password", body: signupBody(t, "guru@test.cd", "pwd", account.RoleTutor, tutorData()),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must be at least 6 characters in length"}),
		},
		{
			name: "admin role rejected", body: signupBody(t, "boss@test.cd", "hunter12", account.RoleAdmin, account.ProfileData{Name: "Boss"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "role must be one of: tutor, student, parent"}),
		},
		{
			name: "unknown role rejected", body: signupBody(t, "guru@test.cd", "hunter12", "guru", account.ProfileData{Name: "X"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "role must be one of: tutor, student, parent"}),
		},
		{
			name: "missing tutor profile data", body: signupBody(t, "guru@test.cd", "hunter12", account.RoleTutor, account.ProfileData{Name: "Guru Ji"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"experience":     requiredText,
				"qualification":  requiredText,
				"gradesTaught":   requiredText,
				"subjectsTaught": requiredText,
			}),
		},
		{
			name: "missing student profile data", body: signupBody(t, "chhotu@test.cd", "hunter12", account.RoleStudent, account.ProfileData{Name: "Chhotu"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"grade": requiredText, "board": requiredText}),
		},
		{
			name: "duplicate email", body: signupBody(t, "taken@test.cd", "hunter12", account.RoleTutor, tutorData()),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/signup"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_signup_ok(t *testing.T) {
	env := setup(t)

	body := signupBody(t, "guru@test.cd", "hunter12", account.RoleTutor, tutorData())
	req, rec := newRequest(http.MethodPost, "/api/auth/signup", body)
	env.app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if resp.Message != "User registered successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.User.Email != "guru@test.cd" || resp.User.Role != account.RoleTutor {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.User.ProfileID == "" {
		t.Error("user.profileId not set")
	}
	if resp.ExpiresIn != 600 {
		t.Errorf("expiresIn = %v; want 600", resp.ExpiresIn)
	}
	if claims, err := env.tokens.VerifyAccessToken(resp.AccessToken); err != nil || claims.Subject != resp.User.ID {
		t.Errorf("access token does not verify: claims = %+v, err = %v", claims, err)
	}

	cookie := getCookie(rec, refreshCookieName)
	if cookie == nil {
		t.Fatal("refresh cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("refresh cookie not HttpOnly")
	}
	if !cookie.Secure {
		t.Error("refresh cookie not Secure")
	}
	if cookie.Path != authPathPrefix {
		t.Errorf("cookie path = %v; want %v", cookie.Path, authPathPrefix)
	}
	if claims, err := env.tokens.VerifyRefreshToken(cookie.Value); err != nil || claims.Subject != resp.User.ID {
		t.Errorf("refresh cookie does not verify: claims = %+v, err = %v", claims, err)
	}
}

// a rejected signup must leave the email claimable.
func Test_authApi_signup_rollback(t *testing.T) {
	env := setup(t)

	incomplete := signupBody(t, "guru@test.cd", "hunter12", account.RoleTutor, account.ProfileData{Name: "Guru Ji"})
	req, rec := newRequest(http.MethodPost, "/api/auth/signup", incomplete)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	complete := signupBody(t, "guru@test.cd", "hunter12", account.RoleTutor, tutorData())
	req, rec = newRequest(http.MethodPost, "/api/auth/signup", complete)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("retry code = %v; want %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func Test_authApi_login(t *testing.T) {
	env := setup(t)

	acct := createAccount(t, env, account.RoleStudent, "chhotu@test.cd")
	invalidCreds := marchallObj(t, httpErr{Error: "invalid credentials"})
	requiredText := "this field is required"

	tests := []httpTest{
		{
			name: "required fields", body: marchallObj(t, struct{}{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": requiredText, "password": requiredText}),
		},
		{
			name: "unknown email", body: marchallObj(t, account.Credentials{Email: "nobody@test.cd", Password: "hunter12"}),
			wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
		{
			name: "wrong password", body: marchallObj(t, account.Credentials{Email: "chhotu@test.cd", Password: "letmein"}),
			wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			// no refresh cookie on failure
			if cookie := getCookie(rec, refreshCookieName); cookie != nil && cookie.Value != "" {
				t.Errorf("refresh cookie set on failed login: %v", cookie)
			}
		})
	}

	t.Run("Logged in", func(t *testing.T) {
		body := marchallObj(t, account.Credentials{Email: "chhotu@test.cd", Password: "hunter12"})
		req, rec := newRequest(http.MethodPost, "/api/auth/login", body)
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp authResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if resp.Message != "Logged in successfully" {
			t.Errorf("message = %q", resp.Message)
		}
		if resp.User.ID != acct.ID {
			t.Errorf("user.id = %v; want %v", resp.User.ID, acct.ID)
		}
		if claims, err := env.tokens.VerifyAccessToken(resp.AccessToken); err != nil || claims.Subject != acct.ID {
			t.Errorf("access token does not verify: claims = %+v, err = %v", claims, err)
		}
		cookie := getCookie(rec, refreshCookieName)
		if cookie == nil || cookie.Value == "" {
			t.Fatal("refresh cookie not set")
		}
		if _, err := env.tokens.VerifyRefreshToken(cookie.Value); err != nil {
			t.Errorf("refresh cookie does not verify: %v", err)
		}
	})
}

func Test_authApi_logout(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodPost, "/api/auth/logout")
	env.app.ServeHTTP(rec, req)

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, map[string]string{"message": "Logged out successfully"}),
	}
	checkCodeAndData(t, tt, rec)

	cookie := getCookie(rec, refreshCookieName)
	if cookie == nil {
		t.Fatal("expired refresh cookie not sent")
	}
	if cookie.Value != "" {
		t.Errorf("cookie value = %q; want empty", cookie.Value)
	}
	if cookie.MaxAge >= 0 && cookie.Expires.After(time.Now()) {
		t.Errorf("cookie not expired: MaxAge = %v, Expires = %v", cookie.MaxAge, cookie.Expires)
	}
}

func Test_authApi_refreshToken(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	acct := createAccount(t, env, account.RoleStudent, "chhotu@test.cd")

	// token for an account that no longer exists
	goner := createAccount(t, env, account.RoleStudent, "goner@test.cd", account.ProfileData{Name: "Goner", Grade: "9", Board: "ICSE"})
	gonerRefresh := getRefreshToken(t, env, goner)
	if err := env.acctRepo.DeleteAccountsByID(ctx, goner.ID); err != nil {
		t.Fatalf("DeleteAccountsByID(): %v", err)
	}

	invalidData := marchallObj(t, httpErr{Error: "invalid or expired refresh token, please log in again"})
	tests := []httpTest{
		{
			name: "no cookie", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "no refresh token provided"}),
		},
		{name: "garbage cookie", cookie: "lmaooolol", wantCode: http.StatusUnauthorized, wantData: invalidData},
		{
			// an access token must never pass as a refresh token
			name: "access token in cookie", cookie: getToken(t, env, acct),
			wantCode: http.StatusUnauthorized, wantData: invalidData,
		},
		{
			name: "deleted account", cookie: gonerRefresh, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "not authorized, user not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/refresh-token"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: tt.cookie})
			}
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "garbage cookie" || tt.name == "access token in cookie" {
				// the bad cookie is cleared
				cookie := getCookie(rec, refreshCookieName)
				if cookie == nil || cookie.Value != "" {
					t.Errorf("bad refresh cookie not cleared: %v", cookie)
				}
			}
		})
	}

	t.Run("Token refreshed", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/refresh-token")
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: getRefreshToken(t, env, acct)})
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp refreshResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if resp.Message != "Access token refreshed" {
			t.Errorf("message = %q", resp.Message)
		}
		if claims, err := env.tokens.VerifyAccessToken(resp.AccessToken); err != nil || claims.Subject != acct.ID {
			t.Errorf("access token does not verify: claims = %+v, err = %v", claims, err)
		}

		// the refresh token is rotated alongside
		cookie := getCookie(rec, refreshCookieName)
		if cookie == nil || cookie.Value == "" {
			t.Fatal("rotated refresh cookie not set")
		}
		if claims, err := env.tokens.VerifyRefreshToken(cookie.Value); err != nil || claims.Subject != acct.ID {
			t.Errorf("rotated refresh cookie does not verify: claims = %+v, err = %v", claims, err)
		}
	})
}

func Test_authApi_me(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	student := createAccount(t, env, account.RoleStudent, "chhotu@test.cd")
	profile, err := env.acctSvc.GetProfile(ctx, student)
	if err != nil {
		t.Fatalf("GetProfile(): %v", err)
	}
	admin := createAccount(t, env, account.RoleAdmin, "boss@test.cd")

	goner := createAccount(t, env, account.RoleStudent, "goner@test.cd", account.ProfileData{Name: "Goner", Grade: "9", Board: "ICSE"})
	gonerToken := getToken(t, env, goner)
	if err = env.acctRepo.DeleteAccountsByID(ctx, goner.ID); err != nil {
		t.Fatalf("DeleteAccountsByID(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNoToken401)},
		{name: "malformed token", token: "lmaooolol", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errTokenInvalid401)},
		{name: "expired token", token: getExpiredToken(t, env, student), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errTokenExpired401)},
		{
			name: "deleted account", token: gonerToken, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "not authorized, user not found"}),
		},
		{
			name: "student with profile", token: getToken(t, env, student), wantCode: http.StatusOK,
			wantData: marchallObj(t, meResponse{User: student, Profile: profile}),
		},
		{
			name: "admin without profile", token: getToken(t, env, admin), wantCode: http.StatusOK,
			wantData: marchallObj(t, meResponse{User: admin}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/auth/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

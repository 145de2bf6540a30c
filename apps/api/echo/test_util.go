package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edulane/gurukul/core"
	"github.com/edulane/gurukul/core/account"
	"github.com/edulane/gurukul/core/session"
	"github.com/edulane/gurukul/services/email"
	"github.com/edulane/gurukul/storage/database/inmem"
)

var (
	errNoToken401      = httpErr{Error: "not authorized, no token"}
	errTokenExpired401 = httpErr{Error: "not authorized, token expired"}
	errTokenInvalid401 = httpErr{Error: "not authorized, token failed"}
	errForbidden403    = httpErr{Error: "permission denied"}
)

func testConf() *core.Config {
	return &core.Config{
		Debug:            false, // exercise the production error rendering
		TestMode:         true,
		AppName:          "Gurukul",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "noreply@localhost",
		Server: core.ServerConfig{
			AccessTokenSecret:  "access-secret",
			RefreshTokenSecret: "refresh-secret",
			AccessTokenTTL:     10 * time.Minute,
			RefreshTokenTTL:    4 * time.Hour,
			RefreshCookieTTL:   7 * 24 * time.Hour,
		},
	}
}

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	app      *Server
	conf     *core.Config
	tokens   *account.TokenService
	acctSvc  *account.Service
	sessSvc  *session.Service
	acctRepo account.Repository
	profRepo account.ProfileRepository
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := testConf()
	db := inmemdb.Open()
	acctRepo := inmemdb.NewAccountRepository(db)
	profRepo := inmemdb.NewProfileRepository(db)

	acctSvc := account.NewService(acctRepo, profRepo, emailsvc.NewConsoleServiceMock(conf), conf)
	tokenSvc := account.NewTokenService(conf)
	sessSvc := session.NewService(inmemdb.NewSessionRepository(db), profRepo)

	app := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testLogger{},
		AccountSvc: acctSvc,
		TokenSvc:   tokenSvc,
		SessionSvc: sessSvc,
	})
	return &testEnv{
		app:      app,
		conf:     conf,
		tokens:   tokenSvc,
		acctSvc:  acctSvc,
		sessSvc:  sessSvc,
		acctRepo: acctRepo,
		profRepo: profRepo,
	}
}

func iPtr(i int) *int { return &i }

func tutorData() account.ProfileData {
	return account.ProfileData{
		Name:           "Guru Ji",
		Experience:     iPtr(5),
		Qualification:  "MSc Physics",
		GradesTaught:   []string{"9", "10"},
		SubjectsTaught: []string{"Physics"},
	}
}

// createAccount registers an account of the given role through the service;
// admin accounts go through CreateAdmin.
func createAccount(t *testing.T, env *testEnv, role, email string, data ...account.ProfileData) account.Account {
	t.Helper()
	ctx := context.Background()

	if role == account.RoleAdmin {
		acct, err := env.acctSvc.CreateAdmin(ctx, email, "hunter12")
		if err != nil {
			t.Fatalf("createAccount(): %v", err)
		}
		return acct
	}

	profile := account.ProfileData{Name: "Someone"}
	switch {
	case len(data) > 0:
		profile = data[0]
	case role == account.RoleTutor:
		profile = tutorData()
	case role == account.RoleStudent:
		profile = account.ProfileData{Name: "Chhotu", Grade: "8", Board: "CBSE"}
	}

	acct, _, err := env.acctSvc.Register(ctx, account.NewAccount{
		Email:    email,
		Password: "hunter12",
		Role:     role,
		Profile:  profile,
	})
	if err != nil {
		t.Fatalf("createAccount(): %v", err)
	}
	return acct
}

func getToken(t *testing.T, env *testEnv, acct account.Account) string {
	t.Helper()
	token, err := env.tokens.AccessToken(acct)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func getRefreshToken(t *testing.T, env *testEnv, acct account.Account) string {
	t.Helper()
	token, err := env.tokens.RefreshToken(acct)
	if err != nil {
		t.Fatalf("getRefreshToken(): %v", err)
	}
	return token
}

// getExpiredToken mints an access token whose expiry is already in the past.
func getExpiredToken(t *testing.T, env *testEnv, acct account.Account) string {
	t.Helper()
	account.NowFunc = func() time.Time { return time.Now().Add(-24 * time.Hour) }
	defer func() { account.NowFunc = time.Now }()
	return getToken(t, env, acct)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	cookie   string // refreshToken cookie value
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

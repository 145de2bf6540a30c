package echoapi

import (
	"net/http"
	"testing"

	"github.com/edulane/gurukul/core/account"
)

func Test_userApi_userQuery(t *testing.T) {
	env := setup(t)

	tutor := createAccount(t, env, account.RoleTutor, "guru@test.cd")
	student := createAccount(t, env, account.RoleStudent, "chhotu@test.cd")
	parent := createAccount(t, env, account.RoleParent, "papa@test.cd", account.ProfileData{Name: "Papa"})
	admin := createAccount(t, env, account.RoleAdmin, "boss@test.cd")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNoToken401)},
		{
			name: "Admin required (tutor)", token: getToken(t, env, tutor), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "role (tutor) is not authorized to access this route"}),
		},
		{
			name: "Admin required (student)", token: getToken(t, env, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "role (student) is not authorized to access this route"}),
		},
		{
			name: "Admin required (parent)", token: getToken(t, env, parent), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "role (parent) is not authorized to access this route"}),
		},
		{
			name: "Get all", token: getToken(t, env, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, tutor, student, parent, admin),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/users"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userRetrieve(t *testing.T) {
	env := setup(t)

	tutor := createAccount(t, env, account.RoleTutor, "guru@test.cd")
	student := createAccount(t, env, account.RoleStudent, "chhotu@test.cd")
	admin := createAccount(t, env, account.RoleAdmin, "boss@test.cd")

	tests := []httpTest{
		{name: "Auth required", path: "/api/users/" + student.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNoToken401)},
		{
			name: "own account", path: "/api/users/" + student.ID, token: getToken(t, env, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, student),
		},
		{
			name: "other account forbidden", path: "/api/users/" + tutor.ID, token: getToken(t, env, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden403),
		},
		{
			name: "admin reads anyone", path: "/api/users/" + tutor.ID, token: getToken(t, env, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, tutor),
		},
		{
			name: "admin, unknown account", path: "/api/users/nope", token: getToken(t, env, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			// non-admins get a 403 before existence is checked
			name: "unknown account forbidden", path: "/api/users/nope", token: getToken(t, env, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden403),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulane/gurukul/core"
	"github.com/edulane/gurukul/core/account"
)

const (
	// refreshCookieName is the HTTP-only cookie carrying the refresh token;
	// it is scoped to the auth route prefix so it never travels with
	// regular API calls.
	refreshCookieName = "refreshToken"
	authPathPrefix    = "/api/auth"

	contextAccountKey = "account"
	contextClaimsKey  = "accountClaims"
	contextObjectKey  = "object"
)

func refreshCookie(conf *core.Config, token string) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     authPathPrefix,
		Expires:  time.Now().Add(conf.Server.RefreshCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !conf.Debug, // HTTPS only in production
	}
}

func attachRefreshCookie(ctx echo.Context, conf *core.Config, token string) {
	ctx.SetCookie(refreshCookie(conf, token))
}

func clearRefreshCookie(ctx echo.Context, conf *core.Config) {
	cookie := refreshCookie(conf, "")
	cookie.Expires = time.Unix(0, 0)
	cookie.MaxAge = -1
	ctx.SetCookie(cookie)
}

func contextAccount(ctx echo.Context) (account.Account, error) {
	if acct, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acct, nil
	}
	return account.Account{}, errors.New("account object not found in echo.Context")
}

func contextClaims(ctx echo.Context) (*account.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*account.Claims); ok {
		return claims, nil
	}
	return nil, errors.New("claims not found in echo.Context")
}

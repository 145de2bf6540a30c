package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulane/gurukul/core"
	"github.com/edulane/gurukul/core/account"
)

type authApi struct {
	svc    *account.Service
	tokens *account.TokenService
	conf   *core.Config
}

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *account.Service, tokens *account.TokenService, conf *core.Config) {
	api := authApi{svc: svc, tokens: tokens, conf: conf}

	ag := g.Group("/auth")
	ag.POST("/signup", api.signup)
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.POST("/refresh-token", api.refreshToken)
	ag.GET("/me", api.me, auth)
}

// Handlers

func (api *authApi) signup(ctx echo.Context) error {
	data := new(account.NewAccount)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	acct, _, err := api.svc.Register(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}

	accessToken, refreshToken, err := api.issueTokens(acct)
	if err != nil {
		return err
	}
	attachRefreshCookie(ctx, api.conf, refreshToken)

	return ctx.JSON(http.StatusCreated, authResponse{
		Message:     "User registered successfully",
		User:        acct,
		AccessToken: accessToken,
		ExpiresIn:   api.tokens.AccessTokenExpiry(),
	})
}

func (api *authApi) login(ctx echo.Context) error {
	data := new(account.Credentials)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	acct, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return mapAccountErr(err)
	}

	accessToken, refreshToken, err := api.issueTokens(acct)
	if err != nil {
		return err
	}
	attachRefreshCookie(ctx, api.conf, refreshToken)

	return ctx.JSON(http.StatusOK, authResponse{
		Message:     "Logged in successfully",
		User:        acct,
		AccessToken: accessToken,
		ExpiresIn:   api.tokens.AccessTokenExpiry(),
	})
}

// logout clears the refresh cookie. Stateless access tokens are not
// invalidated early; this always succeeds.
func (api *authApi) logout(ctx echo.Context) error {
	clearRefreshCookie(ctx, api.conf)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// refreshToken rotates the session credential pair. The refresh token is
// only ever read from the HTTP-only cookie; on any token failure the cookie
// is cleared so a stale credential cannot be retried forever.
func (api *authApi) refreshToken(ctx echo.Context) error {
	cookie, err := ctx.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return errMissingRefreshToken
	}

	claims, err := api.tokens.VerifyRefreshToken(cookie.Value)
	if err != nil {
		clearRefreshCookie(ctx, api.conf)
		return errInvalidRefreshToken
	}

	acct, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if err == account.ErrNotFound {
			return errAccountGone
		}
		return errors.Wrap(err, "finding account by ID")
	}

	accessToken, newRefreshToken, err := api.issueTokens(acct)
	if err != nil {
		return err
	}
	attachRefreshCookie(ctx, api.conf, newRefreshToken)

	return ctx.JSON(http.StatusOK, refreshResponse{
		Message:     "Access token refreshed",
		AccessToken: accessToken,
		ExpiresIn:   api.tokens.AccessTokenExpiry(),
	})
}

func (api *authApi) me(ctx echo.Context) error {
	acct, err := contextAccount(ctx)
	if err != nil {
		return err
	}
	profile, err := api.svc.GetProfile(ctx.Request().Context(), acct)
	if err != nil && err != account.ErrProfileNotFound {
		return errors.Wrap(err, "finding profile")
	}
	return ctx.JSON(http.StatusOK, meResponse{User: acct, Profile: profile})
}

func (api *authApi) issueTokens(acct account.Account) (access, refresh string, err error) {
	if access, err = api.tokens.AccessToken(acct); err != nil {
		return "", "", errors.Wrap(err, "generating access token")
	}
	if refresh, err = api.tokens.RefreshToken(acct); err != nil {
		return "", "", errors.Wrap(err, "generating refresh token")
	}
	return access, refresh, nil
}

type (
	authResponse struct {
		Message     string          `json:"message"`
		User        account.Account `json:"user"`
		AccessToken string          `json:"accessToken"`
		ExpiresIn   int64           `json:"expiresIn"` // seconds
	}

	refreshResponse struct {
		Message     string `json:"message"`
		AccessToken string `json:"accessToken"`
		ExpiresIn   int64  `json:"expiresIn"` // seconds
	}

	meResponse struct {
		User    account.Account `json:"user"`
		Profile account.Profile `json:"profile"`
	}
)

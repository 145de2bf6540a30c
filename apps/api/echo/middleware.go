package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulane/gurukul/core/account"
)

// authMiddleware is the request authorization gate: it extracts the bearer
// access token, verifies it, resolves the encoded identity against the
// account store and stashes it in the request context. Expired tokens are
// rejected distinctly from malformed ones so clients know when to refresh.
func authMiddleware(svc *account.Service, tokens *account.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return errNoToken
			}

			claims, err := tokens.VerifyAccessToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				if err == account.ErrTokenExpired {
					return errTokenExpired
				}
				return errTokenInvalid
			}

			acct, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if err == account.ErrNotFound {
					return errAccountGone
				}
				return errors.Wrap(err, "finding account by ID")
			}

			ctx.Set(contextAccountKey, acct)
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

// roleMiddleware restricts a route to the given roles; it must run after
// authMiddleware.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			acct, err := contextAccount(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context account")
			}
			for _, role := range roles {
				if acct.Role == role {
					return next(ctx)
				}
			}
			return echo.NewHTTPError(
				http.StatusForbidden,
				fmt.Sprintf("role (%s) is not authorized to access this route", acct.Role),
			)
		}
	}
}

// ctxAccountOrAdminMiddleware gates detail routes: the target account is
// loaded into the context when the requester owns it or is an admin.
func ctxAccountOrAdminMiddleware(svc *account.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxAcct, err := contextAccount(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context account")
			}

			id := ctx.Param("id")
			if id != ctxAcct.ID && !ctxAcct.IsAdmin() {
				return errHttpForbidden
			}

			acct, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if err == account.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding account by ID")
			}
			ctx.Set(contextObjectKey, acct)
			return next(ctx)
		}
	}
}

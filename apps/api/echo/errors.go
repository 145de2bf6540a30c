package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulane/gurukul/core"
	"github.com/edulane/gurukul/core/account"
)

var (
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")
	errNoToken              = echo.NewHTTPError(http.StatusUnauthorized, "not authorized, no token")
	errTokenExpired         = echo.NewHTTPError(http.StatusUnauthorized, "not authorized, token expired")
	errTokenInvalid         = echo.NewHTTPError(http.StatusUnauthorized, "not authorized, token failed")
	errAccountGone          = echo.NewHTTPError(http.StatusUnauthorized, "not authorized, user not found")
	errMissingRefreshToken  = echo.NewHTTPError(http.StatusUnauthorized, "no refresh token provided")
	errInvalidRefreshToken  = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token, please log in again")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if acct, aErr := contextAccount(ctx); aErr == nil {
				args = append(args, acct)
			}
			logger.Error(msg, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// mapAccountErr translates account sentinel errors raised outside the
// validation path into their HTTP equivalents.
func mapAccountErr(err error) error {
	switch errors.Cause(err) {
	case account.ErrInvalidCredentials:
		return errAuthenticationFailed
	case account.ErrNotFound:
		return errHttpNotFound
	}
	return err
}

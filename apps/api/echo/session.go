package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulane/gurukul/core/account"
	"github.com/edulane/gurukul/core/session"
)

type sessionApi struct {
	svc     *session.Service
	acctSvc *account.Service
}

func registerSessionAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *session.Service, acctSvc *account.Service) {
	api := sessionApi{svc: svc, acctSvc: acctSvc}

	sg := g.Group("/sessions", auth)
	sg.POST("", api.sessionCreate, roleMiddleware(account.RoleAdmin))
	sg.GET("", api.sessionQuery)
}

// Handlers

func (api *sessionApi) sessionCreate(ctx echo.Context) error {
	data := new(session.NewSession)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

// sessionQuery lists sessions visible to the caller: admins see all,
// tutors and students their own, parents those of their children.
func (api *sessionApi) sessionQuery(ctx echo.Context) error {
	acct, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}

	reqCtx := ctx.Request().Context()
	var sessions []session.Session

	switch acct.Role {
	case account.RoleAdmin:
		sessions, err = api.svc.QueryAll(reqCtx)
	case account.RoleTutor:
		sessions, err = api.svc.Filter(reqCtx, session.QueryFilter{TutorID: acct.ProfileID})
	case account.RoleStudent:
		sessions, err = api.svc.Filter(reqCtx, session.QueryFilter{StudentID: acct.ProfileID})
	case account.RoleParent:
		var profile account.Profile
		if profile, err = api.acctSvc.GetProfile(reqCtx, acct); err != nil {
			return errors.Wrap(err, "finding parent profile")
		}
		sessions, err = api.svc.Filter(reqCtx, session.QueryFilter{StudentIDs: profile.Parent.Children})
	default:
		return errHttpForbidden
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sessions)
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulane/gurukul/core/account"
)

type userApi struct {
	svc *account.Service
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *account.Service) {
	api := userApi{svc: svc}

	ug := g.Group("/users", auth)
	ug.GET("", api.userQuery, roleMiddleware(account.RoleAdmin))

	// detail endpoints
	dg := ug.Group("/:id", ctxAccountOrAdminMiddleware(api.svc))
	dg.GET("", api.userRetrieve)
}

// Handlers

func (api *userApi) userQuery(ctx echo.Context) error {
	accounts, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, accounts)
}

func (api *userApi) userRetrieve(ctx echo.Context) error {
	acct, ok := ctx.Get(contextObjectKey).(account.Account)
	if !ok {
		return errors.New("account object not found in echo.Context")
	}
	return ctx.JSON(http.StatusOK, acct)
}

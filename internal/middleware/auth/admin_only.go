package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminOnly is RequireLogin plus an admin role check.
func (g *Guard) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.resolveUser(c)
		if err != nil {
			return err
		}
		if user.Role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		setUserContext(c, user)
		return next(c)
	}
}

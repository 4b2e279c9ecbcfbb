package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/token"
)

// Guard authenticates requests from the Authorization bearer header.
type Guard struct {
	DB     *gorm.DB
	Tokens *token.Service
}

// RequireLogin rejects the request unless it carries a valid access token
// for an existing, active user. The resolved user is stored on the context.
func (g *Guard) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.resolveUser(c)
		if err != nil {
			return err
		}
		setUserContext(c, user)
		return next(c)
	}
}

func (g *Guard) resolveUser(c echo.Context) (*models.User, error) {
	raw := bearerToken(c)
	if raw == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	claims, err := g.Tokens.ParseAccess(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var user models.User
	if err := g.DB.First(&user, claims.UserID).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "user not found")
	}
	if !user.IsActive {
		return nil, echo.NewHTTPError(http.StatusForbidden, "inactive user")
	}
	return &user, nil
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func setUserContext(c echo.Context, user *models.User) {
	c.Set("userID", user.ID)
	c.Set("role", user.Role)
	c.Set("user", user)
}

// UserID returns the authenticated user's id from the context.
func UserID(c echo.Context) uint {
	id, _ := c.Get("userID").(uint)
	return id
}

// CurrentUser returns the authenticated user from the context.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get("user").(*models.User)
	return user
}

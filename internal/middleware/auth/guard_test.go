package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/token"
)

func newTestGuard(t *testing.T) (*Guard, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	tokens := &token.Service{
		DB:            db,
		JWTSecret:     []byte("test-access"),
		RefreshSecret: []byte("test-refresh"),
	}
	return &Guard{DB: db, Tokens: tokens}, db
}

func doGuarded(g *Guard, mw func(echo.HandlerFunc) echo.HandlerFunc, bearer string) (error, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	return mw(next)(c), c
}

func TestRequireLoginSetsUserContext(t *testing.T) {
	g, db := newTestGuard(t)
	user := models.User{Email: "jane@example.com", Role: "customer", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	access, err := g.Tokens.SignAccessToken(user.ID, user.Role)
	require.NoError(t, err)

	err, c := doGuarded(g, g.RequireLogin, access)
	require.NoError(t, err)
	require.Equal(t, user.ID, UserID(c))
	require.Equal(t, "jane@example.com", CurrentUser(c).Email)
}

func TestRequireLoginRejectsMissingAndBadTokens(t *testing.T) {
	g, _ := newTestGuard(t)

	err, _ := doGuarded(g, g.RequireLogin, "")
	require.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)

	err, _ = doGuarded(g, g.RequireLogin, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
}

func TestRequireLoginRejectsInactiveUser(t *testing.T) {
	g, db := newTestGuard(t)
	user := models.User{Email: "jane@example.com", Role: "customer", IsActive: false}
	require.NoError(t, db.Create(&user).Error)

	access, err := g.Tokens.SignAccessToken(user.ID, user.Role)
	require.NoError(t, err)

	guardErr, _ := doGuarded(g, g.RequireLogin, access)
	require.Equal(t, http.StatusForbidden, guardErr.(*echo.HTTPError).Code)
}

func TestAdminOnly(t *testing.T) {
	g, db := newTestGuard(t)
	customer := models.User{Email: "jane@example.com", Role: "customer", IsActive: true}
	admin := models.User{Email: "boss@example.com", Role: "admin", IsActive: true}
	require.NoError(t, db.Create(&customer).Error)
	require.NoError(t, db.Create(&admin).Error)

	customerToken, err := g.Tokens.SignAccessToken(customer.ID, customer.Role)
	require.NoError(t, err)
	adminToken, err := g.Tokens.SignAccessToken(admin.ID, admin.Role)
	require.NoError(t, err)

	guardErr, _ := doGuarded(g, g.AdminOnly, customerToken)
	require.Equal(t, http.StatusForbidden, guardErr.(*echo.HTTPError).Code)

	guardErr, c := doGuarded(g, g.AdminOnly, adminToken)
	require.NoError(t, guardErr)
	require.Equal(t, admin.ID, UserID(c))
}

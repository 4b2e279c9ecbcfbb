package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/config"
	"github.com/vendorr/restaurant-backend/internal/hash"
	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/mykafka"
	"github.com/vendorr/restaurant-backend/internal/notify"
	"github.com/vendorr/restaurant-backend/internal/service"
	"github.com/vendorr/restaurant-backend/internal/token"
	"github.com/vendorr/restaurant-backend/internal/ws"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *token.Service
	Hub    *ws.Hub
	Orders *service.OrderService

	Auth      *AuthHandler
	Menu      *MenuHandler
	MenuAdmin *MenuAdminHandler
	Order     *OrderHandler
	Admin     *AdminHandler
	Review    *ReviewHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	tokens := &token.Service{
		DB:            db,
		JWTSecret:     []byte("test-access"),
		RefreshSecret: []byte("test-refresh"),
	}
	hub := ws.NewHub(nil)
	producer := &mykafka.Producer{}
	orders := &service.OrderService{
		DB:       db,
		Notifier: notify.New(db, hub, nil),
		Producer: producer,
		TaxRate:  0.08,
	}

	return &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		Tokens: tokens,
		Hub:    hub,
		Orders: orders,
		Auth:      &AuthHandler{DB: db, Tokens: tokens, Producer: producer},
		Menu:      &MenuHandler{DB: db},
		MenuAdmin: &MenuAdminHandler{DB: db, Producer: producer},
		Order:     &OrderHandler{DB: db, Orders: orders, UploadDir: t.TempDir(), MaxFileSize: 5 << 20},
		Admin:     &AdminHandler{DB: db, Orders: orders},
		Review:    &ReviewHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(method, path string, payload any) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(env.T, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

// asUser stores the user on the context the way the auth middleware does.
func (env *testEnv) asUser(c echo.Context, user *models.User) {
	c.Set("userID", user.ID)
	c.Set("role", user.Role)
	c.Set("user", user)
}

func (env *testEnv) seedUser(email, password, role string) *models.User {
	env.T.Helper()

	passwordHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)
	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(env.T, env.DB.Create(user).Error)
	return user
}

func (env *testEnv) seedMenuItem(name string, price float64) *models.MenuItem {
	env.T.Helper()

	item := &models.MenuItem{
		Name:            name,
		Price:           price,
		IsAvailable:     true,
		Status:          "available",
		PreparationTime: 15,
	}
	require.NoError(env.T, env.DB.Create(item).Error)
	return item
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return he.Code
}

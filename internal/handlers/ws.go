package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/token"
	"github.com/vendorr/restaurant-backend/internal/ws"
)

var (
	errAuthRequired  = errors.New("authentication required")
	errInvalidToken  = errors.New("invalid token")
	errAdminRequired = errors.New("admin access required")
)

// WSHandler upgrades push connections. Browsers cannot set headers on a
// WebSocket handshake, so the access token travels in the query string and is
// checked after the upgrade; failures close the socket with a policy
// violation code so clients can distinguish auth problems from network ones.
type WSHandler struct {
	DB       *gorm.DB
	Tokens   *token.Service
	Hub      *ws.Hub
	Upgrader websocket.Upgrader
}

func NewWSHandler(db *gorm.DB, tokens *token.Service, hub *ws.Hub, allowedOrigins []string) *WSHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &WSHandler{
		DB:     db,
		Tokens: tokens,
		Hub:    hub,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				return origins[r.Header.Get("Origin")]
			},
		},
	}
}

// Notifications is the customer push endpoint.
func (h *WSHandler) Notifications(c echo.Context) error {
	return h.serve(c, false)
}

// Admin is the admin push endpoint; non-admin tokens are rejected.
func (h *WSHandler) Admin(c echo.Context) error {
	return h.serve(c, true)
}

func (h *WSHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Hub.Stats())
}

func (h *WSHandler) serve(c echo.Context, wantAdmin bool) error {
	socket, err := h.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // Upgrade already wrote the HTTP error
	}

	user, err := h.authenticate(c.QueryParam("token"), wantAdmin)
	if err != nil {
		closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = socket.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = socket.Close()
		return nil
	}

	conn := ws.NewSocketConn(socket)
	// admins land in the admin set regardless of which endpoint they hit
	isAdmin := user.Role == "admin"
	h.Hub.Connect(conn, user.ID, isAdmin)
	defer func() {
		h.Hub.Disconnect(conn, user.ID, isAdmin)
		_ = conn.Close()
	}()

	ack, _ := json.Marshal(map[string]any{
		"type":     "connection",
		"user_id":  user.ID,
		"is_admin": isAdmin,
	})
	if err := conn.WriteText(ack); err != nil {
		return nil
	}

	// Receive loop. The only inbound message we act on is the literal
	// keepalive ping; everything else is ignored.
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return nil
		}
		if string(msg) == "ping" {
			if err := conn.WriteText([]byte("pong")); err != nil {
				return nil
			}
		}
	}
}

func (h *WSHandler) authenticate(raw string, wantAdmin bool) (*models.User, error) {
	if raw == "" {
		return nil, errAuthRequired
	}
	claims, err := h.Tokens.ParseAccess(raw)
	if err != nil {
		return nil, errInvalidToken
	}

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		return nil, errInvalidToken
	}
	if !user.IsActive {
		return nil, errInvalidToken
	}
	if wantAdmin && user.Role != "admin" {
		return nil, errAdminRequired
	}
	return &user, nil
}

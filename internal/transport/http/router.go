package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/handlers"
	"github.com/vendorr/restaurant-backend/internal/middleware/auth"
)

type Deps struct {
	DB                  *gorm.DB
	Guard               *auth.Guard
	AuthHandler         *handlers.AuthHandler
	MenuHandler         *handlers.MenuHandler
	MenuAdminHandler    *handlers.MenuAdminHandler
	OrderHandler        *handlers.OrderHandler
	AdminHandler        *handlers.AdminHandler
	SettingsHandler     *handlers.SettingsHandler
	ReviewHandler       *handlers.ReviewHandler
	NotificationHandler *handlers.NotificationHandler
	WSHandler           *handlers.WSHandler
	UploadDir           string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.Static("/uploads", d.UploadDir)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/refresh-token", d.AuthHandler.RefreshToken)
	authGroup.POST("/logout", d.AuthHandler.Logout)
	authGroup.GET("/me", d.AuthHandler.Me, d.Guard.RequireLogin)
	authGroup.PUT("/me", d.AuthHandler.UpdateMe, d.Guard.RequireLogin)
	authGroup.POST("/change-password", d.AuthHandler.ChangePassword, d.Guard.RequireLogin)

	menu := api.Group("/menu")
	menu.GET("/categories", d.MenuHandler.ListCategories)
	menu.GET("/categories/:id", d.MenuHandler.GetCategory)
	menu.GET("/search", d.MenuHandler.SearchItems)
	menu.GET("/items", d.MenuHandler.ListItems)
	menu.GET("/items/:id", d.MenuHandler.GetItem)
	menu.GET("/items/:id/reviews", d.ReviewHandler.ListForItem)
	menu.GET("/featured", d.MenuHandler.FeaturedItems)
	menu.GET("/popular", d.MenuHandler.PopularItems)

	orders := api.Group("/orders")
	orders.GET("/track/:number", d.OrderHandler.Track)
	orders.POST("", d.OrderHandler.Create, d.Guard.RequireLogin)
	orders.GET("/my", d.OrderHandler.ListMine, d.Guard.RequireLogin)
	orders.GET("/:id", d.OrderHandler.Get, d.Guard.RequireLogin)
	orders.POST("/:id/cancel", d.OrderHandler.Cancel, d.Guard.RequireLogin)
	orders.POST("/:id/upload-payment-proof", d.OrderHandler.UploadPaymentProof, d.Guard.RequireLogin)
	orders.GET("/:id/payment-proof", d.OrderHandler.GetPaymentProof, d.Guard.RequireLogin)

	api.POST("/reviews", d.ReviewHandler.Create, d.Guard.RequireLogin)

	notifications := api.Group("/notifications", d.Guard.RequireLogin)
	notifications.GET("", d.NotificationHandler.ListMine)
	notifications.POST("/:id/read", d.NotificationHandler.MarkRead)
	notifications.POST("/read-all", d.NotificationHandler.MarkAllRead)

	api.GET("/settings/whatsapp", d.SettingsHandler.Get)
	api.PUT("/settings/whatsapp", d.SettingsHandler.Update, d.Guard.AdminOnly)
	api.GET("/settings/bank-details", d.SettingsHandler.BankDetails)

	admin := e.Group("/admin/api", d.Guard.AdminOnly)
	admin.GET("/stats", d.AdminHandler.Stats)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.GET("/orders/:id", d.AdminHandler.GetOrder)
	admin.POST("/orders/:id/update-status", d.AdminHandler.UpdateOrderStatus)
	admin.POST("/orders/:id/update-payment-status", d.AdminHandler.UpdatePaymentStatus)
	admin.GET("/orders/:id/payment-proof", d.AdminHandler.GetPaymentProof)
	admin.POST("/menu/categories", d.MenuAdminHandler.CreateCategory)
	admin.PATCH("/menu/categories/:id", d.MenuAdminHandler.UpdateCategory)
	admin.DELETE("/menu/categories/:id", d.MenuAdminHandler.DeleteCategory)
	admin.POST("/menu/items", d.MenuAdminHandler.CreateItem)
	admin.PATCH("/menu/items/:id", d.MenuAdminHandler.UpdateItem)
	admin.PATCH("/menu/items/:id/availability", d.MenuAdminHandler.SetItemAvailability)
	admin.DELETE("/menu/items/:id", d.MenuAdminHandler.DeleteItem)

	e.GET("/ws/notifications", d.WSHandler.Notifications)
	e.GET("/ws/admin", d.WSHandler.Admin)
	e.GET("/ws/stats", d.WSHandler.Stats, d.Guard.AdminOnly)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/config"
	"github.com/vendorr/restaurant-backend/internal/models"
)

type SettingsHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Get returns the public app settings, falling back to defaults when nothing
// has been configured yet.
func (h *SettingsHandler) Get(c echo.Context) error {
	var settings models.AppSettings
	err := h.DB.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusOK, models.AppSettings{
			WhatsappEnabled: true,
			RestaurantName:  "Vendorr",
		})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, settings)
}

type settingsRequest struct {
	WhatsappLink      *string `json:"whatsapp_link"`
	WhatsappEnabled   *bool   `json:"whatsapp_enabled"`
	RestaurantName    *string `json:"restaurant_name"`
	RestaurantPhone   *string `json:"restaurant_phone"`
	RestaurantEmail   *string `json:"restaurant_email"`
	RestaurantAddress *string `json:"restaurant_address"`
}

func (h *SettingsHandler) Update(c echo.Context) error {
	var req settingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var settings models.AppSettings
	err := h.DB.First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if req.WhatsappLink != nil {
		settings.WhatsappLink = *req.WhatsappLink
	}
	if req.WhatsappEnabled != nil {
		settings.WhatsappEnabled = *req.WhatsappEnabled
	}
	if req.RestaurantName != nil {
		settings.RestaurantName = *req.RestaurantName
	}
	if req.RestaurantPhone != nil {
		settings.RestaurantPhone = *req.RestaurantPhone
	}
	if req.RestaurantEmail != nil {
		settings.RestaurantEmail = *req.RestaurantEmail
	}
	if req.RestaurantAddress != nil {
		settings.RestaurantAddress = *req.RestaurantAddress
	}

	if err := h.DB.Save(&settings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, settings)
}

// BankDetails exposes the transfer destination shown at checkout.
func (h *SettingsHandler) BankDetails(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"bank_name":      h.Cfg.BANK_NAME,
		"account_number": h.Cfg.BANK_ACCOUNT_NUMBER,
		"account_name":   h.Cfg.BANK_ACCOUNT_NAME,
	})
}

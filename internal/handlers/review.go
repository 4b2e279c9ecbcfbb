package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/vendorr/restaurant-backend/internal/middleware/auth"
	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/status"
	"github.com/vendorr/restaurant-backend/internal/util"
)

type ReviewHandler struct {
	DB *gorm.DB
}

type reviewRequest struct {
	MenuItemID uint   `json:"menu_item_id"`
	OrderID    uint   `json:"order_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// Create accepts a review for a menu item the customer actually ordered.
// Reviews tied to a completed order are marked verified.
func (h *ReviewHandler) Create(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	if req.MenuItemID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "menu_item_id is required")
	}

	customerID := authmw.UserID(c)

	var item models.MenuItem
	if err := h.DB.First(&item, req.MenuItemID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}

	verified := false
	if req.OrderID != 0 {
		var order models.Order
		if err := h.DB.
			Where("id = ? AND customer_id = ?", req.OrderID, customerID).
			First(&order).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}

		var count int64
		if err := h.DB.Model(&models.OrderItem{}).
			Where("order_id = ? AND menu_item_id = ?", req.OrderID, req.MenuItemID).
			Count(&count).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if count == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "menu item was not part of this order")
		}
		verified = order.Status == status.OrderCompleted.String()
	}

	var existing models.Review
	err := h.DB.
		Where("customer_id = ? AND menu_item_id = ? AND order_id = ?", customerID, req.MenuItemID, req.OrderID).
		First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "review already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	review := models.Review{
		CustomerID: customerID,
		MenuItemID: req.MenuItemID,
		OrderID:    req.OrderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsVerified: verified,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListForItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.Review{}).Where("menu_item_id = ?", id)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var average float64
	if err := h.DB.Model(&models.Review{}).
		Where("menu_item_id = ?", id).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&average).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var reviews []models.Review
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"reviews":        reviews,
		"total":          total,
		"average_rating": average,
		"page":           page,
		"page_size":      limit,
	})
}

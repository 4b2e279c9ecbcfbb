package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/service"
	"github.com/vendorr/restaurant-backend/internal/status"
	"github.com/vendorr/restaurant-backend/internal/util"
)

// AdminHandler owns the staff-facing order management surface.
type AdminHandler struct {
	DB     *gorm.DB
	Orders *service.OrderService
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.Order{})
	if st := c.QueryParam("status"); st != "" {
		if _, err := status.ParseOrder(st); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown order status")
		}
		query = query.Where("status = ?", st)
	}
	if ps := c.QueryParam("payment_status"); ps != "" {
		parsed, err := status.ParsePayment(ps)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown payment status")
		}
		query = query.Where("payment_status = ?", parsed.String())
	}
	if from := c.QueryParam("from"); from != "" {
		query = query.Where("created_at >= ?", from)
	}
	if to := c.QueryParam("to"); to != "" {
		query = query.Where("created_at <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var orders []models.Order
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders":    orders,
		"total":     total,
		"page":      page,
		"page_size": limit,
	})
}

func (h *AdminHandler) GetOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.Preload("Items").First(&order, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, order)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Orders.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

type paymentUpdateRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func (h *AdminHandler) UpdatePaymentStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req paymentUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Orders.SetPaymentStatus(c.Request().Context(), id, req.PaymentStatus)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) GetPaymentProof(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	// customerID zero skips the ownership check.
	transfer, err := h.Orders.GetPaymentProof(c.Request().Context(), id, 0)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transfer)
}

// Stats aggregates today's order and revenue figures for the admin dashboard.
func (h *AdminHandler) Stats(c echo.Context) error {
	dayStart := time.Now().Truncate(24 * time.Hour)

	var (
		todayOrders  int64
		pendingCount int64
		activeCount  int64
		revenue      float64
	)

	if err := h.DB.Model(&models.Order{}).
		Where("created_at >= ?", dayStart).
		Count(&todayOrders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Model(&models.Order{}).
		Where("status = ?", status.OrderPendingPayment.String()).
		Count(&pendingCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Model(&models.Order{}).
		Where("status IN ?", []string{
			status.OrderPaymentConfirmed.String(),
			status.OrderPreparing.String(),
			status.OrderReadyForPickup.String(),
		}).
		Count(&activeCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Model(&models.Order{}).
		Where("created_at >= ? AND payment_status = ?", dayStart, status.PaymentCompleted.String()).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders_today":           todayOrders,
		"pending_payment_orders": pendingCount,
		"active_orders":          activeCount,
		"revenue_today":          revenue,
	})
}

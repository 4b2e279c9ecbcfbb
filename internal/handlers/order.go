package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/vendorr/restaurant-backend/internal/middleware/auth"
	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/service"
	"github.com/vendorr/restaurant-backend/internal/util"
)

// OrderHandler is the customer-facing order surface. All business rules live
// in the order service; this layer binds, authorizes and maps errors.
type OrderHandler struct {
	DB          *gorm.DB
	Orders      *service.OrderService
	UploadDir   string
	MaxFileSize int64
}

func (h *OrderHandler) Create(c echo.Context) error {
	var req service.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Orders.CreateOrder(c.Request().Context(), authmw.CurrentUser(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.Order{}).Where("customer_id = ?", authmw.UserID(c))
	if st := c.QueryParam("status"); st != "" {
		query = query.Where("status = ?", st)
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

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.
		Preload("Items").
		Where("id = ? AND customer_id = ?", id, authmw.UserID(c)).
		First(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, order)
}

// Track is the unauthenticated tracking endpoint. It deliberately exposes
// only the fields a guest with the order number should see.
func (h *OrderHandler) Track(c echo.Context) error {
	number := c.Param("number")

	var order models.Order
	if err := h.DB.Where("order_number = ?", number).First(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_number":         order.OrderNumber,
		"status":               order.Status,
		"payment_status":       order.PaymentStatus,
		"estimated_ready_time": order.EstimatedReadyTime,
		"actual_ready_time":    order.ActualReadyTime,
		"created_at":           order.CreatedAt,
	})
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Orders.Cancel(c.Request().Context(), id, authmw.UserID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "order cancelled"})
}

func (h *OrderHandler) UploadPaymentProof(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	proof := service.PaymentProofInput{
		ReferenceNumber: c.FormValue("reference_number"),
		SenderName:      c.FormValue("sender_name"),
		SenderAccount:   c.FormValue("sender_account"),
		Notes:           c.FormValue("notes"),
	}
	if raw := c.FormValue("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid amount")
		}
		proof.Amount = amount
	}
	if raw := c.FormValue("transfer_date"); raw != "" {
		date, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid transfer_date")
		}
		proof.TransferDate = &date
	}

	if file, err := c.FormFile("receipt"); err == nil {
		path, saveErr := h.saveReceipt(file)
		if saveErr != nil {
			return saveErr
		}
		proof.ReceiptImagePath = path
	}

	transfer, err := h.Orders.UploadPaymentProof(c.Request().Context(), id, authmw.UserID(c), proof)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, transfer)
}

func (h *OrderHandler) GetPaymentProof(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	transfer, err := h.Orders.GetPaymentProof(c.Request().Context(), id, authmw.UserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transfer)
}

var allowedReceiptExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".pdf": true,
}

func (h *OrderHandler) saveReceipt(file *multipart.FileHeader) (string, error) {
	if file.Size > h.MaxFileSize {
		return "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "receipt file too large")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedReceiptExtensions[ext] {
		return "", echo.NewHTTPError(http.StatusBadRequest, "unsupported receipt file type")
	}

	src, err := file.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "cannot read receipt")
	}
	defer src.Close()

	dir := filepath.Join(h.UploadDir, "receipts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	name := uuid.NewString() + ext
	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return dstPath, nil
}

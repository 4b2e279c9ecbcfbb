package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/status"
	"github.com/vendorr/restaurant-backend/internal/ws"
)

// Notifier stores a Notification row for the recipient and then pushes the
// event over the hub. It runs strictly after the business transaction has
// committed; a failure here is logged and never propagated to the caller.
type Notifier struct {
	DB     *gorm.DB
	Hub    *ws.Hub
	Logger *slog.Logger
}

func New(db *gorm.DB, hub *ws.Hub, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{DB: db, Hub: hub, Logger: logger}
}

// OrderStatusChanged notifies the order's customer of a status transition.
func (n *Notifier) OrderStatusChanged(ctx context.Context, order *models.Order, newStatus status.Order) {
	msg := status.OrderMessage(newStatus, order.OrderNumber)

	n.persist(ctx, order.CustomerID, &order.ID, msg, "order_status")

	n.Hub.SendToUser(ws.Event{
		Title:            msg.Title,
		Message:          msg.Body,
		Type:             msg.Type,
		NotificationType: "order_status",
		Data: map[string]any{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"status":       newStatus.String(),
		},
	}, order.CustomerID)
}

// PaymentStatusChanged notifies the order's customer of a payment status
// transition.
func (n *Notifier) PaymentStatusChanged(ctx context.Context, order *models.Order, newStatus status.Payment) {
	msg := status.PaymentMessage(newStatus, order.OrderNumber)

	n.persist(ctx, order.CustomerID, &order.ID, msg, "payment_status")

	n.Hub.SendToUser(ws.Event{
		Title:            msg.Title,
		Message:          msg.Body,
		Type:             msg.Type,
		NotificationType: "payment_status",
		Data: map[string]any{
			"order_id":       order.ID,
			"order_number":   order.OrderNumber,
			"payment_status": newStatus.String(),
		},
	}, order.CustomerID)
}

// AdminNewOrder tells every connected admin dashboard about a fresh order.
func (n *Notifier) AdminNewOrder(order *models.Order) {
	n.Hub.SendToAdmins(ws.Event{
		Title:            "New Order Received",
		Message:          fmt.Sprintf("New order %s from %s - Total: %.2f", order.OrderNumber, order.CustomerName, order.TotalAmount),
		Type:             "info",
		NotificationType: "new_order",
		Data: map[string]any{
			"order_id":      order.ID,
			"order_number":  order.OrderNumber,
			"customer_name": order.CustomerName,
			"total_amount":  order.TotalAmount,
		},
	})
}

// AdminPaymentProofUploaded tells admins a customer submitted payment proof.
func (n *Notifier) AdminPaymentProofUploaded(order *models.Order) {
	n.Hub.SendToAdmins(ws.Event{
		Title:            "Payment Proof Uploaded",
		Message:          fmt.Sprintf("Customer %s uploaded payment proof for order %s", order.CustomerName, order.OrderNumber),
		Type:             "warning",
		NotificationType: "payment_proof",
		Data: map[string]any{
			"order_id":      order.ID,
			"order_number":  order.OrderNumber,
			"customer_name": order.CustomerName,
		},
	})
}

func (n *Notifier) persist(ctx context.Context, userID uint, orderID *uint, msg status.Message, notificationType string) {
	row := models.Notification{
		UserID:           userID,
		OrderID:          orderID,
		Title:            msg.Title,
		Message:          msg.Body,
		Type:             msg.Type,
		NotificationType: notificationType,
	}
	if err := n.DB.WithContext(ctx).Create(&row).Error; err != nil {
		n.Logger.Error("failed to store notification", "user_id", userID, "error", err)
	}
}

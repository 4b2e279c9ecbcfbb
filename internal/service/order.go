package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/mykafka"
	"github.com/vendorr/restaurant-backend/internal/notify"
	"github.com/vendorr/restaurant-backend/internal/status"
)

const maxItemQuantity = 50

type OrderService struct {
	DB       *gorm.DB
	Notifier *notify.Notifier
	Producer *mykafka.Producer
	TaxRate  float64
	Logger   *slog.Logger
}

type CreateOrderItem struct {
	MenuItemID          uint           `json:"menu_item_id"`
	Quantity            int            `json:"quantity"`
	Customizations      map[string]any `json:"customizations,omitempty"`
	SpecialInstructions string         `json:"special_instructions,omitempty"`
}

type CreateOrderRequest struct {
	Items               []CreateOrderItem `json:"items"`
	CustomerName        string            `json:"customer_name,omitempty"`
	CustomerPhone       string            `json:"customer_phone,omitempty"`
	CustomerEmail       string            `json:"customer_email,omitempty"`
	SpecialInstructions string            `json:"special_instructions,omitempty"`
	PaymentMethod       string            `json:"payment_method,omitempty"`
}

// round2 rounds to cents, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CreateOrder validates the request, freezes unit prices off the live menu,
// computes totals with the configured tax rate, and persists the order plus
// its items in one transaction. Admins are notified after commit.
func (s *OrderService) CreateOrder(ctx context.Context, customer *models.User, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}
	for _, it := range req.Items {
		if it.Quantity < 1 || it.Quantity > maxItemQuantity {
			return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, maxItemQuantity)
		}
	}

	var order models.Order

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			subtotal float64
			items    []models.OrderItem
			maxPrep  int
		)

		for _, it := range req.Items {
			var menuItem models.MenuItem
			if err := tx.First(&menuItem, it.MenuItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: menu item %d", ErrNotFound, it.MenuItemID)
				}
				return err
			}
			if menuItem.Status != "available" {
				return fmt.Errorf("%w: menu item %q is not available", ErrValidation, menuItem.Name)
			}

			lineTotal := round2(menuItem.Price * float64(it.Quantity))
			subtotal += lineTotal
			if menuItem.PreparationTime > maxPrep {
				maxPrep = menuItem.PreparationTime
			}

			var customizations string
			if len(it.Customizations) > 0 {
				raw, err := json.Marshal(it.Customizations)
				if err != nil {
					return fmt.Errorf("%w: invalid customizations", ErrValidation)
				}
				customizations = string(raw)
			}

			items = append(items, models.OrderItem{
				MenuItemID:     menuItem.ID,
				Quantity:       it.Quantity,
				UnitPrice:      menuItem.Price,
				TotalPrice:     lineTotal,
				Customizations: customizations,
				Notes:          it.SpecialInstructions,
			})
		}

		subtotal = round2(subtotal)
		taxAmount := round2(subtotal * s.TaxRate)
		totalAmount := round2(subtotal + taxAmount)

		var count int64
		if err := tx.Model(&models.Order{}).Count(&count).Error; err != nil {
			return err
		}
		// The unique index on order_number backs this against concurrent
		// writers; a collision fails the transaction.
		orderNumber := fmt.Sprintf("ORD%06d", count+1)

		estimated := time.Now().Add(time.Duration(maxPrep) * time.Minute)

		order = models.Order{
			OrderNumber:        orderNumber,
			CustomerID:         customer.ID,
			Status:             status.OrderPendingPayment.String(),
			PaymentStatus:      status.PaymentPending.String(),
			Subtotal:           subtotal,
			TaxAmount:          taxAmount,
			TotalAmount:        totalAmount,
			CustomerName:       fallback(req.CustomerName, customer.FirstName+" "+customer.LastName),
			CustomerPhone:      fallback(req.CustomerPhone, customer.Phone),
			CustomerEmail:      fallback(req.CustomerEmail, customer.Email),
			Notes:              req.SpecialInstructions,
			PaymentMethod:      fallback(req.PaymentMethod, "bank_transfer"),
			EstimatedReadyTime: &estimated,
			Items:              items,
		}
		return tx.Create(&order).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Notifier.AdminNewOrder(&order)
	s.publish(ctx, mykafka.TopicOrderEvents, order.OrderNumber, map[string]any{
		"type":         "order_created",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"customer_id":  order.CustomerID,
		"total_amount": order.TotalAmount,
	})

	return &order, nil
}

// SetStatus is the administrative status transition: any recognized status is
// accepted, the customer is notified after commit.
func (s *OrderService) SetStatus(ctx context.Context, orderID uint, raw string) (*models.Order, error) {
	newStatus, err := status.ParseOrder(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	order.Status = newStatus.String()
	if newStatus == status.OrderReadyForPickup {
		now := time.Now()
		order.ActualReadyTime = &now
	}
	if err := s.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}

	s.Notifier.OrderStatusChanged(ctx, &order, newStatus)
	s.publish(ctx, mykafka.TopicOrderEvents, order.OrderNumber, map[string]any{
		"type":         "order_status_changed",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       newStatus.String(),
	})

	return &order, nil
}

// SetPaymentStatus updates the payment status; when payment completes while
// the order still awaits it, the order advances to payment_confirmed in the
// same transaction. The payment notification goes out first, then the order
// status one.
func (s *OrderService) SetPaymentStatus(ctx context.Context, orderID uint, raw string) (*models.Order, error) {
	newPayment, err := status.ParsePayment(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var (
		order    models.Order
		advanced bool
	)

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}

		order.PaymentStatus = newPayment.String()
		if newPayment.Paid() && order.Status == status.OrderPendingPayment.String() {
			order.Status = status.OrderPaymentConfirmed.String()
			advanced = true
		}
		return tx.Save(&order).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Notifier.PaymentStatusChanged(ctx, &order, newPayment)
	if advanced {
		s.Notifier.OrderStatusChanged(ctx, &order, status.OrderPaymentConfirmed)
	}
	s.publish(ctx, mykafka.TopicPaymentEvents, order.OrderNumber, map[string]any{
		"type":           "payment_status_changed",
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"payment_status": newPayment.String(),
	})

	return &order, nil
}

// Cancel is the customer-initiated cancellation, permitted only while the
// order still awaits payment.
func (s *OrderService) Cancel(ctx context.Context, orderID, customerID uint) error {
	var order models.Order
	if err := s.DB.WithContext(ctx).
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return err
	}

	if order.Status != status.OrderPendingPayment.String() {
		return fmt.Errorf("%w: order cannot be cancelled at this stage", ErrConflict)
	}

	order.Status = status.OrderCancelled.String()
	if err := s.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return err
	}

	s.publish(ctx, mykafka.TopicOrderEvents, order.OrderNumber, map[string]any{
		"type":         "order_cancelled",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

type PaymentProofInput struct {
	ReferenceNumber  string     `json:"reference_number"`
	Amount           float64    `json:"amount"`
	SenderName       string     `json:"sender_name"`
	SenderAccount    string     `json:"sender_account"`
	TransferDate     *time.Time `json:"transfer_date"`
	Notes            string     `json:"notes"`
	ReceiptImagePath string     `json:"-"`
}

// UploadPaymentProof records a customer's bank-transfer confirmation for the
// order, updating an existing record if one was already submitted. Admins
// are notified after commit.
func (s *OrderService) UploadPaymentProof(ctx context.Context, orderID, customerID uint, proof PaymentProofInput) (*models.BankTransfer, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	var transfer models.BankTransfer
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("order_id = ?", orderID).First(&transfer).Error
		switch {
		case err == nil:
			transfer.ReferenceNumber = fallback(proof.ReferenceNumber, transfer.ReferenceNumber)
			transfer.SenderName = fallback(proof.SenderName, transfer.SenderName)
			transfer.SenderAccount = fallback(proof.SenderAccount, transfer.SenderAccount)
			transfer.ReceiptImagePath = fallback(proof.ReceiptImagePath, transfer.ReceiptImagePath)
			transfer.Notes = fallback(proof.Notes, transfer.Notes)
			if proof.Amount > 0 {
				transfer.TransferAmount = proof.Amount
			}
			if proof.TransferDate != nil {
				transfer.TransferDate = proof.TransferDate
			}
			transfer.VerificationStatus = "pending"
			if err := tx.Save(&transfer).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			transfer = models.BankTransfer{
				OrderID:            orderID,
				ReferenceNumber:    fallback(proof.ReferenceNumber, "REF-"+order.OrderNumber),
				TransferAmount:     proof.Amount,
				SenderName:         proof.SenderName,
				SenderAccount:      proof.SenderAccount,
				TransferDate:       proof.TransferDate,
				ReceiptImagePath:   proof.ReceiptImagePath,
				VerificationStatus: "pending",
				Notes:              proof.Notes,
			}
			if transfer.TransferAmount == 0 {
				transfer.TransferAmount = order.TotalAmount
			}
			if err := tx.Create(&transfer).Error; err != nil {
				return err
			}
		default:
			return err
		}

		order.PaymentStatus = status.PaymentPending.String()
		return tx.Save(&order).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Notifier.AdminPaymentProofUploaded(&order)
	s.publish(ctx, mykafka.TopicPaymentEvents, order.OrderNumber, map[string]any{
		"type":         "payment_proof_uploaded",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})

	return &transfer, nil
}

// GetPaymentProof fetches the bank transfer record for an order. customerID
// of zero skips the ownership check (admin path).
func (s *OrderService) GetPaymentProof(ctx context.Context, orderID, customerID uint) (*models.BankTransfer, error) {
	if customerID != 0 {
		var order models.Order
		if err := s.DB.WithContext(ctx).
			Where("id = ? AND customer_id = ?", orderID, customerID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return nil, err
		}
	}

	var transfer models.BankTransfer
	if err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no payment proof for order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return &transfer, nil
}

func (s *OrderService) publish(ctx context.Context, topic, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.Producer.PublishEvent(pubCtx, topic, key, event); err != nil {
		s.logger().Error("kafka publish error", "topic", topic, "error", err)
	}
}

func (s *OrderService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

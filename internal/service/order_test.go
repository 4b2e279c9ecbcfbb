package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/config"
	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/mykafka"
	"github.com/vendorr/restaurant-backend/internal/notify"
	"github.com/vendorr/restaurant-backend/internal/status"
	"github.com/vendorr/restaurant-backend/internal/ws"
)

type recordConn struct {
	messages [][]byte
}

func (r *recordConn) WriteText(data []byte) error {
	r.messages = append(r.messages, data)
	return nil
}

func (r *recordConn) Close() error { return nil }

func (r *recordConn) events(t *testing.T) []ws.Event {
	t.Helper()
	out := make([]ws.Event, len(r.messages))
	for i, m := range r.messages {
		require.NoError(t, json.Unmarshal(m, &out[i]))
	}
	return out
}

type orderTestEnv struct {
	DB        *gorm.DB
	Orders    *OrderService
	Hub       *ws.Hub
	Customer  models.User
	CustConn  *recordConn
	AdminConn *recordConn
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	hub := ws.NewHub(nil)

	customer := models.User{
		Email:     "jane@example.com",
		Phone:     "+15550100",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      "customer",
		IsActive:  true,
	}
	require.NoError(t, db.Create(&customer).Error)

	custConn := &recordConn{}
	adminConn := &recordConn{}
	hub.Connect(custConn, customer.ID, false)
	hub.Connect(adminConn, 0, true)

	return &orderTestEnv{
		DB: db,
		Orders: &OrderService{
			DB:       db,
			Notifier: notify.New(db, hub, nil),
			Producer: &mykafka.Producer{},
			TaxRate:  0.08,
		},
		Hub:       hub,
		Customer:  customer,
		CustConn:  custConn,
		AdminConn: adminConn,
	}
}

func (env *orderTestEnv) seedItem(t *testing.T, name string, price float64, prepMinutes int) models.MenuItem {
	t.Helper()
	item := models.MenuItem{
		Name:            name,
		Price:           price,
		IsAvailable:     true,
		Status:          "available",
		PreparationTime: prepMinutes,
	}
	require.NoError(t, env.DB.Create(&item).Error)
	return item
}

func TestCreateOrderTotals(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Pad Thai", 12.99, 20)

	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	require.Equal(t, 25.98, order.Subtotal)
	require.Equal(t, 2.08, order.TaxAmount)
	require.Equal(t, 28.06, order.TotalAmount)
	require.Equal(t, "ORD000001", order.OrderNumber)
	require.Equal(t, status.OrderPendingPayment.String(), order.Status)
	require.Equal(t, status.PaymentPending.String(), order.PaymentStatus)
	require.Equal(t, "bank_transfer", order.PaymentMethod)
	require.NotNil(t, order.EstimatedReadyTime)

	require.Len(t, order.Items, 1)
	require.Equal(t, 12.99, order.Items[0].UnitPrice)
	require.Equal(t, 25.98, order.Items[0].TotalPrice)

	// contact fields fall back to the account
	require.Equal(t, "Jane Doe", order.CustomerName)
	require.Equal(t, "jane@example.com", order.CustomerEmail)
}

func TestCreateOrderPriceSnapshot(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Green Curry", 10.00, 15)

	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, env.DB.Model(&item).Update("price", 14.50).Error)

	var stored models.OrderItem
	require.NoError(t, env.DB.Where("order_id = ?", order.ID).First(&stored).Error)
	require.Equal(t, 10.00, stored.UnitPrice)
	require.Equal(t, 10.00, stored.TotalPrice)
}

func TestCreateOrderSequentialNumbers(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Spring Rolls", 5.50, 10)

	first, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	second, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.Equal(t, "ORD000001", first.OrderNumber)
	require.Equal(t, "ORD000002", second.OrderNumber)
}

func TestCreateOrderUnavailableItemLeavesNoRows(t *testing.T) {
	env := newOrderTestEnv(t)
	good := env.seedItem(t, "Tom Yum", 9.99, 15)
	bad := env.seedItem(t, "Mango Sticky Rice", 6.99, 10)
	require.NoError(t, env.DB.Model(&bad).Updates(map[string]any{"status": "unavailable", "is_available": false}).Error)

	_, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{
			{MenuItemID: good.ID, Quantity: 1},
			{MenuItemID: bad.ID, Quantity: 1},
		},
	})
	require.ErrorIs(t, err, ErrValidation)

	var orders, items int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, env.DB.Model(&models.OrderItem{}).Count(&items).Error)
	require.Zero(t, orders)
	require.Zero(t, items)
}

func TestCreateOrderQuantityBounds(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Dumplings", 7.00, 10)

	_, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 0}},
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 51}},
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrderMissingItem(t *testing.T) {
	env := newOrderTestEnv(t)

	_, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: 999, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrderNotifiesAdmins(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Satay", 8.50, 12)

	_, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	events := env.AdminConn.events(t)
	require.Len(t, events, 1)
	require.Equal(t, "New Order Received", events[0].Title)
	require.Equal(t, "new_order", events[0].NotificationType)
	require.Empty(t, env.CustConn.messages)
}

func TestSetStatusNotifiesCustomer(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Fried Rice", 9.00, 15)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := env.Orders.SetStatus(context.Background(), order.ID, "preparing")
	require.NoError(t, err)
	require.Equal(t, status.OrderPreparing.String(), updated.Status)

	events := env.CustConn.events(t)
	require.Len(t, events, 1)
	require.Equal(t, "Order Preparing", events[0].Title)
	require.Equal(t, "order_status", events[0].NotificationType)

	var row models.Notification
	require.NoError(t, env.DB.Where("user_id = ?", env.Customer.ID).First(&row).Error)
	require.Equal(t, "Order Preparing", row.Title)
}

func TestSetStatusReadyStampsActualTime(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Noodle Soup", 11.00, 15)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Nil(t, order.ActualReadyTime)

	updated, err := env.Orders.SetStatus(context.Background(), order.ID, "ready_for_pickup")
	require.NoError(t, err)
	require.NotNil(t, updated.ActualReadyTime)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	env := newOrderTestEnv(t)
	_, err := env.Orders.SetStatus(context.Background(), 1, "teleported")
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Orders.SetStatus(context.Background(), 999, "preparing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentCompletionAdvancesOrder(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Basil Chicken", 10.50, 15)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := env.Orders.SetPaymentStatus(context.Background(), order.ID, "completed")
	require.NoError(t, err)
	require.Equal(t, status.PaymentCompleted.String(), updated.PaymentStatus)
	require.Equal(t, status.OrderPaymentConfirmed.String(), updated.Status)

	// exactly two pushes, payment first, then the order transition
	events := env.CustConn.events(t)
	require.Len(t, events, 2)
	require.Equal(t, "payment_status", events[0].NotificationType)
	require.Equal(t, "Payment Successful", events[0].Title)
	require.Equal(t, "order_status", events[1].NotificationType)
	require.Equal(t, "Payment Confirmed", events[1].Title)

	var rows []models.Notification
	require.NoError(t, env.DB.Where("user_id = ?", env.Customer.ID).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	require.Equal(t, "payment_status", rows[0].NotificationType)
	require.Equal(t, "order_status", rows[1].NotificationType)
}

func TestPaymentConfirmedAliasAdvancesOrder(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Larb", 9.25, 15)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := env.Orders.SetPaymentStatus(context.Background(), order.ID, "confirmed")
	require.NoError(t, err)
	require.Equal(t, status.PaymentCompleted.String(), updated.PaymentStatus)
	require.Equal(t, status.OrderPaymentConfirmed.String(), updated.Status)
}

func TestPaymentFailureDoesNotAdvanceOrder(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Papaya Salad", 8.00, 10)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := env.Orders.SetPaymentStatus(context.Background(), order.ID, "failed")
	require.NoError(t, err)
	require.Equal(t, status.PaymentFailed.String(), updated.PaymentStatus)
	require.Equal(t, status.OrderPendingPayment.String(), updated.Status)

	events := env.CustConn.events(t)
	require.Len(t, events, 1)
	require.Equal(t, "Payment Failed", events[0].Title)
}

func TestPaymentCompletionAfterPreparingKeepsStatus(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Khao Soi", 12.00, 20)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.Orders.SetStatus(context.Background(), order.ID, "preparing")
	require.NoError(t, err)

	updated, err := env.Orders.SetPaymentStatus(context.Background(), order.ID, "completed")
	require.NoError(t, err)
	require.Equal(t, status.OrderPreparing.String(), updated.Status)
}

func TestCancelPendingOrder(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Roti", 4.50, 8)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, env.Orders.Cancel(context.Background(), order.ID, env.Customer.ID))

	var stored models.Order
	require.NoError(t, env.DB.First(&stored, order.ID).Error)
	require.Equal(t, status.OrderCancelled.String(), stored.Status)
}

func TestCancelRejectedOncePaymentConfirmed(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Massaman", 11.75, 25)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.Orders.SetPaymentStatus(context.Background(), order.ID, "completed")
	require.NoError(t, err)

	err = env.Orders.Cancel(context.Background(), order.ID, env.Customer.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestCancelEnforcesOwnership(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Som Tam", 7.25, 10)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	err = env.Orders.Cancel(context.Background(), order.ID, env.Customer.ID+1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUploadPaymentProofDefaults(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Pineapple Rice", 10.25, 18)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	transfer, err := env.Orders.UploadPaymentProof(context.Background(), order.ID, env.Customer.ID, PaymentProofInput{})
	require.NoError(t, err)
	require.Equal(t, "REF-"+order.OrderNumber, transfer.ReferenceNumber)
	require.Equal(t, order.TotalAmount, transfer.TransferAmount)
	require.Equal(t, "pending", transfer.VerificationStatus)

	adminEvents := env.AdminConn.events(t)
	require.Equal(t, "Payment Proof Uploaded", adminEvents[len(adminEvents)-1].Title)
}

func TestUploadPaymentProofUpserts(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Crab Omelette", 13.00, 15)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	first, err := env.Orders.UploadPaymentProof(context.Background(), order.ID, env.Customer.ID, PaymentProofInput{
		ReferenceNumber: "TX-100",
		SenderName:      "Jane Doe",
	})
	require.NoError(t, err)

	second, err := env.Orders.UploadPaymentProof(context.Background(), order.ID, env.Customer.ID, PaymentProofInput{
		ReferenceNumber: "TX-200",
		Amount:          14.04,
	})
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "TX-200", second.ReferenceNumber)
	require.Equal(t, 14.04, second.TransferAmount)
	require.Equal(t, "Jane Doe", second.SenderName)

	var count int64
	require.NoError(t, env.DB.Model(&models.BankTransfer{}).Where("order_id = ?", order.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUploadPaymentProofEnforcesOwnership(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Duck Noodles", 12.50, 20)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.Orders.UploadPaymentProof(context.Background(), order.ID, env.Customer.ID+5, PaymentProofInput{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetPaymentProofAdminSkipsOwnership(t *testing.T) {
	env := newOrderTestEnv(t)
	item := env.seedItem(t, "Oyster Pancake", 9.75, 15)
	order, err := env.Orders.CreateOrder(context.Background(), &env.Customer, CreateOrderRequest{
		Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.Orders.UploadPaymentProof(context.Background(), order.ID, env.Customer.ID, PaymentProofInput{})
	require.NoError(t, err)

	transfer, err := env.Orders.GetPaymentProof(context.Background(), order.ID, 0)
	require.NoError(t, err)
	require.Equal(t, order.ID, transfer.OrderID)

	_, err = env.Orders.GetPaymentProof(context.Background(), order.ID, env.Customer.ID+9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRound2(t *testing.T) {
	require.Equal(t, 2.08, round2(25.98*0.08))
	require.Equal(t, 0.01, round2(0.005))
	require.Equal(t, 1.0, round2(0.999))
}

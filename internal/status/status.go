package status

import "fmt"

// Order is the lifecycle status of an order. The persisted representation is
// the plain string value; conversion happens only at the storage boundary.
type Order string

const (
	OrderPendingPayment   Order = "pending_payment"
	OrderPaymentConfirmed Order = "payment_confirmed"
	OrderPreparing        Order = "preparing"
	OrderAlmostReady      Order = "almost_ready"
	OrderReadyForPickup   Order = "ready_for_pickup"
	OrderCompleted        Order = "completed"
	OrderCancelled        Order = "cancelled"
)

var orderStatuses = map[Order]bool{
	OrderPendingPayment:   true,
	OrderPaymentConfirmed: true,
	OrderPreparing:        true,
	OrderAlmostReady:      true,
	OrderReadyForPickup:   true,
	OrderCompleted:        true,
	OrderCancelled:        true,
}

func (s Order) Valid() bool {
	return orderStatuses[s]
}

func (s Order) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

func (s Order) String() string { return string(s) }

// Payment is the payment status of an order. The canonical set is the one
// persisted by the database layer; the legacy confirmed/rejected spelling
// used by some clients maps onto it via ParsePayment.
type Payment string

const (
	PaymentPending   Payment = "pending"
	PaymentCompleted Payment = "completed"
	PaymentFailed    Payment = "failed"
	PaymentRefunded  Payment = "refunded"
)

var paymentStatuses = map[Payment]bool{
	PaymentPending:   true,
	PaymentCompleted: true,
	PaymentFailed:    true,
	PaymentRefunded:  true,
}

func (p Payment) Valid() bool {
	return paymentStatuses[p]
}

// Paid reports whether this status means the customer's money has arrived.
func (p Payment) Paid() bool { return p == PaymentCompleted }

func (p Payment) String() string { return string(p) }

// ParsePayment normalizes a wire value to the canonical payment status set.
// "confirmed" and "rejected" are accepted as aliases for completed/failed.
func ParsePayment(raw string) (Payment, error) {
	switch raw {
	case "confirmed":
		return PaymentCompleted, nil
	case "rejected":
		return PaymentFailed, nil
	}
	p := Payment(raw)
	if !p.Valid() {
		return "", fmt.Errorf("unknown payment status %q", raw)
	}
	return p, nil
}

// ParseOrder validates a wire value against the order status set.
func ParseOrder(raw string) (Order, error) {
	s := Order(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

package status

import "fmt"

// Message is the human-facing text pushed to a customer when a status
// changes. Type is the severity shown by the client (info/success/warning/
// error).
type Message struct {
	Title string
	Body  string
	Type  string
}

var orderMessages = map[Order]Message{
	OrderPendingPayment:   {"Order Created", "Order %s created. Please complete payment.", "info"},
	OrderPaymentConfirmed: {"Payment Confirmed", "Payment confirmed for order %s. We're preparing your meal!", "success"},
	OrderPreparing:        {"Order Preparing", "Your order %s is being prepared by our chefs.", "info"},
	OrderAlmostReady:      {"Almost Ready!", "Your order %s is almost ready!", "warning"},
	OrderReadyForPickup:   {"Order Ready!", "Your order %s is ready for pickup!", "success"},
	OrderCompleted:        {"Order Completed", "Thank you! Order %s has been completed.", "success"},
	OrderCancelled:        {"Order Cancelled", "Order %s has been cancelled.", "error"},
}

var paymentMessages = map[Payment]Message{
	PaymentCompleted: {"Payment Successful", "Payment for order %s has been confirmed!", "success"},
	PaymentFailed:    {"Payment Failed", "Payment for order %s failed. Please try again.", "error"},
	PaymentRefunded:  {"Payment Refunded", "Payment for order %s has been refunded.", "info"},
}

// OrderMessage returns the notification text for an order status change,
// falling back to a generic update for unknown values.
func OrderMessage(s Order, orderNumber string) Message {
	m, ok := orderMessages[s]
	if !ok {
		return Message{
			Title: "Order Update",
			Body:  fmt.Sprintf("Order %s status changed to %s", orderNumber, s),
			Type:  "info",
		}
	}
	m.Body = fmt.Sprintf(m.Body, orderNumber)
	return m
}

// PaymentMessage returns the notification text for a payment status change.
func PaymentMessage(p Payment, orderNumber string) Message {
	m, ok := paymentMessages[p]
	if !ok {
		return Message{
			Title: "Payment Update",
			Body:  fmt.Sprintf("Payment status for order %s changed to %s", orderNumber, p),
			Type:  "info",
		}
	}
	m.Body = fmt.Sprintf(m.Body, orderNumber)
	return m
}

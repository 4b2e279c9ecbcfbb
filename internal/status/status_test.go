package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOrder(t *testing.T) {
	s, err := ParseOrder("preparing")
	require.NoError(t, err)
	require.Equal(t, OrderPreparing, s)

	_, err = ParseOrder("shipped")
	require.Error(t, err)

	_, err = ParseOrder("")
	require.Error(t, err)
}

func TestOrderTerminal(t *testing.T) {
	require.True(t, OrderCompleted.Terminal())
	require.True(t, OrderCancelled.Terminal())
	require.False(t, OrderPendingPayment.Terminal())
	require.False(t, OrderReadyForPickup.Terminal())
}

func TestParsePaymentAliases(t *testing.T) {
	p, err := ParsePayment("confirmed")
	require.NoError(t, err)
	require.Equal(t, PaymentCompleted, p)

	p, err = ParsePayment("rejected")
	require.NoError(t, err)
	require.Equal(t, PaymentFailed, p)

	p, err = ParsePayment("refunded")
	require.NoError(t, err)
	require.Equal(t, PaymentRefunded, p)

	_, err = ParsePayment("charged_back")
	require.Error(t, err)
}

func TestPaymentPaid(t *testing.T) {
	require.True(t, PaymentCompleted.Paid())
	require.False(t, PaymentPending.Paid())
	require.False(t, PaymentFailed.Paid())
	require.False(t, PaymentRefunded.Paid())
}

func TestOrderMessageText(t *testing.T) {
	msg := OrderMessage(OrderPreparing, "ORD000007")
	require.Equal(t, "Order Preparing", msg.Title)
	require.Equal(t, "Your order ORD000007 is being prepared by our chefs.", msg.Body)
	require.Equal(t, "info", msg.Type)
}

func TestOrderMessageFallback(t *testing.T) {
	msg := OrderMessage(Order("weird"), "ORD000001")
	require.Equal(t, "Order Update", msg.Title)
	require.Contains(t, msg.Body, "ORD000001")
	require.Contains(t, msg.Body, "weird")
}

func TestPaymentMessageText(t *testing.T) {
	msg := PaymentMessage(PaymentCompleted, "ORD000002")
	require.Equal(t, "Payment Successful", msg.Title)
	require.Equal(t, "Payment for order ORD000002 has been confirmed!", msg.Body)
	require.Equal(t, "success", msg.Type)

	fallback := PaymentMessage(PaymentPending, "ORD000002")
	require.Equal(t, "Payment Update", fallback.Title)
}

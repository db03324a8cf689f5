package notify

import (
	"context"
	"testing"

	"github.com/safar/coffee-shop/internal/config"
	"github.com/safar/coffee-shop/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *models.Order {
	return &models.Order{
		ID:          42,
		OrderNumber: "ORD-ABCDEF123456",
		TotalAmount: decimal.RequireFromString("7"),
		Shipping: models.ShippingSnapshot{
			Name:         "Ada <Lovelace>",
			AddressLine1: "1 Bean St",
			City:         "Portland",
			State:        "OR",
			PostalCode:   "97201",
			Country:      "US",
		},
		Items: []models.OrderItem{
			{ProductName: "Espresso", Quantity: 2, UnitPrice: decimal.RequireFromString("3.5"), LineTotal: decimal.RequireFromString("7")},
		},
	}
}

func TestOwnerOrderEmail(t *testing.T) {
	msg, err := OwnerOrderEmail("owner@shop.test", "ada@example.com", sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, "owner@shop.test", msg.To)
	assert.Equal(t, "New Order #ORD-ABCDEF123456", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "<td>Espresso</td><td>2</td><td>$3.50</td><td>$7.00</td>")
	assert.Contains(t, msg.HTMLBody, "Order Total: $7.00")
	assert.Contains(t, msg.HTMLBody, "Email: ada@example.com")
	assert.Contains(t, msg.HTMLBody, "Ada &lt;Lovelace&gt;")
	assert.NotContains(t, msg.HTMLBody, "<p></p>", "empty address line 2 is omitted")
}

func TestCustomerOrderEmail(t *testing.T) {
	msg, err := CustomerOrderEmail("ada@example.com", sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "We received your order #ORD-ABCDEF123456", msg.Subject)
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, NopSender{}, NewSender(config.SMTPConfig{}))
	assert.IsType(t, &SMTPMailer{}, NewSender(config.SMTPConfig{Host: "smtp.test", Port: 587, User: "shop@test"}))

	err := NopSender{}.Send(context.Background(), Message{To: "x@test"})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSMTPMailerRejectsEmptyRecipient(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "smtp.test", Port: 587, User: "shop@test"})
	assert.Error(t, m.Send(context.Background(), Message{Subject: "hi"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{To: "x@test"}), context.Canceled)
}

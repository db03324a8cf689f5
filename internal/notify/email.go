package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/safar/coffee-shop/internal/models"
)

var orderTemplate = template.Must(template.New("order").Parse(`<html>
<body>
	<h2>{{.Heading}}</h2>
	<h3>Customer Information:</h3>
	<p>Name: {{.Order.Shipping.Name}}</p>
	<p>Email: {{.Email}}</p>
	<p>Phone: {{.Order.Shipping.Phone}}</p>

	<h3>Shipping Address:</h3>
	<p>{{.Order.Shipping.AddressLine1}}</p>
	{{- if .Order.Shipping.AddressLine2}}
	<p>{{.Order.Shipping.AddressLine2}}</p>
	{{- end}}
	<p>{{.Order.Shipping.City}}, {{.Order.Shipping.State}} {{.Order.Shipping.PostalCode}}</p>
	<p>{{.Order.Shipping.Country}}</p>

	<h3>Order Items:</h3>
	<table border="1" style="border-collapse: collapse;">
		<thead>
			<tr><th>Product</th><th>Quantity</th><th>Price</th><th>Total</th></tr>
		</thead>
		<tbody>
		{{- range .Order.Items}}
			<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>${{.UnitPrice.StringFixed 2}}</td><td>${{.LineTotal.StringFixed 2}}</td></tr>
		{{- end}}
		</tbody>
	</table>

	<h3>Order Total: ${{.Order.TotalAmount.StringFixed 2}}</h3>
</body>
</html>
`))

type orderView struct {
	Heading string
	Email   string
	Order   *models.Order
}

// OwnerOrderEmail is the new-order notice sent to the shop owner.
func OwnerOrderEmail(to, customerEmail string, order *models.Order) (Message, error) {
	subject := fmt.Sprintf("New Order #%s", order.OrderNumber)
	return renderOrderEmail(to, subject, customerEmail, order)
}

// CustomerOrderEmail is the receipt sent to the customer.
func CustomerOrderEmail(to string, order *models.Order) (Message, error) {
	subject := fmt.Sprintf("We received your order #%s", order.OrderNumber)
	return renderOrderEmail(to, subject, to, order)
}

func renderOrderEmail(to, subject, customerEmail string, order *models.Order) (Message, error) {
	var buf bytes.Buffer
	err := orderTemplate.Execute(&buf, orderView{
		Heading: subject,
		Email:   customerEmail,
		Order:   order,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render order email: %w", err)
	}

	return Message{To: to, Subject: subject, HTMLBody: buf.String()}, nil
}

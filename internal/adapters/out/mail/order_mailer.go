// internal/adapters/out/mail/order_mailer.go
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	orderdom "storefront/internal/domain/order"
)

// EmailClient is the minimal outbound mail port.
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// OrderMailer sends the order confirmation after a successful checkout.
// Checkout 自体の成否には関与しない（best-effort、失敗はログのみ）。
type OrderMailer struct {
	Client EmailClient
	From   string
}

func NewOrderMailer(client EmailClient, from string) *OrderMailer {
	return &OrderMailer{Client: client, From: strings.TrimSpace(from)}
}

// SendConfirmation renders and sends the confirmation for one order.
func (m *OrderMailer) SendConfirmation(ctx context.Context, orderID string, d orderdom.Draft) error {
	if m == nil || m.Client == nil {
		return errors.New("order_mailer: email client is nil")
	}
	to := strings.TrimSpace(d.UserEmail)
	if to == "" {
		// email 無しの注文は送りようがないのでスキップ（エラーにしない）
		return nil
	}

	var b strings.Builder
	name := strings.TrimSpace(d.UserName)
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Thanks for your order %s.\n\n", orderID)
	for _, it := range d.Items {
		fmt.Fprintf(&b, "  %d x %s — $%.2f\n", it.Quantity, it.Title, it.Price)
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f\n", d.Total)
	if addr := strings.TrimSpace(d.ShippingAddress); addr != "" {
		fmt.Fprintf(&b, "Shipping to: %s\n", addr)
	}

	subject := fmt.Sprintf("Order confirmation %s", orderID)
	return m.Client.Send(ctx, m.From, to, subject, b.String())
}

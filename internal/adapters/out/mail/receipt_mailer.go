// internal/adapters/out/mail/receipt_mailer.go
package mail

import (
	"context"
	"fmt"
	"html"
	"strings"

	cartdom "pharmacy/internal/domain/cart"
)

// EmailClient is the transport used by ReceiptMailer. Rendering (plain text
// and HTML) happens above it.
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, plain, html string) error
}

// ReceiptMailer sends a purchase receipt to the buyer.
// Best-effort by contract; the purchase has already committed when this runs.
type ReceiptMailer struct {
	client EmailClient
	from   string
}

func NewReceiptMailer(client EmailClient, from string) *ReceiptMailer {
	return &ReceiptMailer{client: client, from: from}
}

// SendPurchaseReceipt mails an order summary for a finalized cart, as plain
// text with an HTML table alternative.
func (m *ReceiptMailer) SendPurchaseReceipt(ctx context.Context, to, username string, c *cartdom.Cart) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("receipt_mailer: email client is nil")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("receipt_mailer: recipient is empty")
	}
	if c == nil {
		return fmt.Errorf("receipt_mailer: cart is nil")
	}

	name := strings.TrimSpace(username)
	if name == "" {
		name = "there"
	}

	subject := "Your pharmacy order"
	return m.client.Send(ctx, m.from, to, subject, renderPlain(name, c), renderHTML(name, c))
}

func renderPlain(name string, c *cartdom.Cart) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order.\n\n", name)
	for _, it := range c.Items {
		fmt.Fprintf(&b, "  %s x%d  %.2f L.E.\n", it.DrugName, it.Quantity, it.Total)
	}
	fmt.Fprintf(&b, "\nSubtotal: %.2f L.E.\n", c.SubTotal)
	return b.String()
}

func renderHTML(name string, c *cartdom.Cart) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p><p>Thanks for your order.</p>", html.EscapeString(name))
	b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Total</th></tr>")
	for _, it := range c.Items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%.2f L.E.</td></tr>",
			html.EscapeString(it.DrugName), it.Quantity, it.Total)
	}
	fmt.Fprintf(&b, "</table><p>Subtotal: %.2f L.E.</p>", c.SubTotal)
	return b.String()
}

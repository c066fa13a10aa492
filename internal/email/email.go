package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/storefront-labs/storefront-backend/internal/order"
)

// Sender dispatches buyer-facing mail. The webhook handler only needs order
// confirmations.
type Sender interface {
	SendOrderConfirmation(to string, o order.Order) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	host string
	port string
	from string
}

func NewSMTPSender(host, port, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, from: from}
}

func (s *SMTPSender) SendOrderConfirmation(to string, o order.Order) error {
	subject := fmt.Sprintf("Order #%d confirmation", o.ID)
	body := BuildOrderConfirmationBody(o)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

// BuildOrderConfirmationBody renders the plain-text confirmation with the
// order's snapshot lines and total.
func BuildOrderConfirmationBody(o order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order!\n\n")
	fmt.Fprintf(&b, "Order #%d\n\n", o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %dx %s: %s\n", it.Quantity, it.ProductName, formatAmount(it.Cost(), o.Currency))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", formatAmount(order.TotalCost(o), o.Currency))
	if o.FullName != "" {
		fmt.Fprintf(&b, "\nShipping to: %s, %s, %s\n", o.FullName, o.Address, o.City)
	}
	return b.String()
}

// formatAmount renders minor currency units as a decimal string.
func formatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, currency)
}

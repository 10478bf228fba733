package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends plain-text mail. Auth is optional; host-only setups
// (local relay) leave Username empty.
type SMTPMailer struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	var auth smtp.Auth
	if m.Username != "" {
		host := m.Addr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.Username, m.Password, host)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.From, to, subject, body)
	return smtp.SendMail(m.Addr, auth, m.From, []string{to}, []byte(msg))
}

func confirmationBody(p OrderConfirmedPayload) (subject, body string) {
	subject = fmt.Sprintf("Order %s confirmed", p.OrderNumber)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", p.CustomerName)
	fmt.Fprintf(&b, "Your order %s has been confirmed.\n\n", p.OrderNumber)
	for _, it := range p.Items {
		fmt.Fprintf(&b, "  %s (%s) x%d\n", it.ProductName, it.Variant, it.Qty)
	}
	fmt.Fprintf(&b, "\nTotal: %d.%02d\n\nThank you for shopping with us.\n",
		p.AmountPaise/100, p.AmountPaise%100)
	return subject, b.String()
}

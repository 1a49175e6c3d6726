// Package email renders and dispatches transactional mail. The SMTP
// sender is for real deployments; LogSender keeps local runs quiet.
package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type LogSender struct{}

func (LogSender) Send(ctx context.Context, m Message) error {
	log.Printf("email to=%s subject=%q", m.To, m.Subject)
	return nil
}

type SMTPSender struct {
	Addr string // host:port
	From string
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("\r\n")
	b.WriteString(m.Body)
	return smtp.SendMail(s.Addr, nil, s.From, []string{m.To}, []byte(b.String()))
}

func Welcome(to, name string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to ShopHub",
		Body: fmt.Sprintf("Hi %s,\n\nYour ShopHub account is ready. Happy shopping!\n\n- The ShopHub team\n",
			name),
	}
}

func OrderConfirmation(to, name, orderID string, totalCents int) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Order %s confirmed", orderID),
		Body: fmt.Sprintf("Hi %s,\n\nWe received your order %s (total %.2f). We'll let you know when it ships.\n\n- The ShopHub team\n",
			name, orderID, float64(totalCents)/100),
	}
}

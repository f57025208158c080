package notification

import (
	"context"
	"fmt"
	"html"
	"strings"

	"easybook/models"

	"gopkg.in/gomail.v2"
)

// SMTPEmailSender sends mail through an SMTP relay.
type SMTPEmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPEmailSender(host string, port int, username, password, from string) *SMTPEmailSender {
	return &SMTPEmailSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPEmailSender) Send(ctx context.Context, msg models.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		message.AddAlternative("text/html", msg.HTML)
	}
	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

func renderEmail(firstName string, n models.Notification) string {
	var b strings.Builder
	b.WriteString("<p>Hi ")
	b.WriteString(html.EscapeString(firstName))
	b.WriteString(",</p><h2>")
	b.WriteString(html.EscapeString(n.Title))
	b.WriteString("</h2><p>")
	b.WriteString(html.EscapeString(n.Body))
	b.WriteString("</p>")
	if number := n.Data["bookingNumber"]; number != "" {
		b.WriteString("<p>Booking reference: <strong>")
		b.WriteString(html.EscapeString(number))
		b.WriteString("</strong></p>")
	}
	b.WriteString("<p>The EasyBook team</p>")
	return b.String()
}

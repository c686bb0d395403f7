package service

import (
	"fmt"
	"strings"

	"github.com/ptchurch/site/backend/internal/utils"
	"github.com/ptchurch/site/backend/internal/utils/email"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
)

type ContactService interface {
	Send(req api.ContactRequest) error
}

type Contact struct {
	mailer    Mailer
	recipient string
}

func NewContact(mailer Mailer, recipient string) ContactService {
	return &Contact{mailer: mailer, recipient: recipient}
}

// Send forwards the message to the church inbox with Reply-To set to the
// visitor. Any delivery failure is reported as an upstream error.
func (c *Contact) Send(req api.ContactRequest) error {
	name := utils.CleanText(req.Name)
	if name == "" {
		return invalidField("name", "Name is empty")
	}
	body := utils.CleanText(req.Message)
	if body == "" {
		return invalidField("message", "Message is empty")
	}
	if c.recipient == "" {
		logger.Log.Error("contact recipient is not configured", "component", "contact")
		return errors.Upstream()
	}

	subject := utils.CleanText(req.Subject)
	if subject == "" {
		subject = "Message from " + name
	}
	from := utils.NormalizeEmail(req.Email)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\n\n", name, from)
	b.WriteString(body)
	b.WriteString("\n")

	msg := email.Message{
		To:      c.recipient,
		ReplyTo: from,
		Subject: "[Contact] " + subject,
		Body:    b.String(),
	}
	if err := c.mailer.Send(msg); err != nil {
		logger.Log.Error("failed to send contact message", "component", "contact", "error", err)
		return errors.Upstream()
	}
	logger.Log.Info("contact message sent", "component", "contact")
	return nil
}

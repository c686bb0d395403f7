package email

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"time"

	"github.com/ptchurch/site/shared/config"
	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/middleware/metrics"
)

// Message is a plain-text UTF-8 email.
type Message struct {
	To      string
	ReplyTo string // optional
	Subject string
	Body    string
}

type Email struct {
	config    *config.Email
	auth      smtp.Auth
	msgDomain string
}

// New builds a mailer. msgDomain is used for Message-ID headers, normally the
// site host.
func New(config *config.Email, msgDomain string) *Email {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.SMTPServer)
	if msgDomain == "" {
		msgDomain = "localhost"
	}
	return &Email{
		config:    config,
		auth:      auth,
		msgDomain: msgDomain,
	}
}

func (e *Email) IsCorrect(email string) error {
	_, err := mail.ParseAddress(email)
	if err != nil {
		return &errors.ErrorWithStatusCode{Message: err.Error(), StatusCode: 400, Code: errors.CodeValidationFailed, Fields: []string{"email"}}
	}
	return nil
}

func (e *Email) Send(msg Message) error {
	if e.config.SMTPServer == "" {
		metrics.UpstreamFailure("smtp")
		return fmt.Errorf("smtp server not configured")
	}
	body := e.buildMessage(msg)
	address := fmt.Sprintf("%s:%d", e.config.SMTPServer, e.config.SMTPPort)

	var err error
	// Port 465 = implicit TLS, otherwise STARTTLS
	if e.config.SMTPPort == 465 {
		err = e.sendImplicitTLS(address, msg.To, body)
	} else {
		err = e.sendSTARTTLS(address, msg.To, body)
	}
	if err != nil {
		metrics.UpstreamFailure("smtp")
	}
	return err
}

func (e *Email) timeout() time.Duration {
	timeout := time.Duration(e.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return timeout
}

// sendImplicitTLS sends email over a connection that is TLS from the start (port 465).
func (e *Email) sendImplicitTLS(address, recipient string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: e.config.SMTPServer}

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: e.timeout()}, "tcp", address, tlsConfig)
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server (implicit TLS)", "address", address, "error", err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.config.SMTPServer)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	return e.sendViaClient(client, recipient, msg)
}

// sendSTARTTLS sends email by upgrading a plain connection to TLS (port 587).
func (e *Email) sendSTARTTLS(address, recipient string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", address, e.timeout())
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server", "address", address, "error", err)
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(3 * e.timeout()))

	client, err := smtp.NewClient(conn, e.config.SMTPServer)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: e.config.SMTPServer}
	if err = client.StartTLS(tlsConfig); err != nil {
		logger.Log.Error("failed to start TLS", "error", err)
		return err
	}

	return e.sendViaClient(client, recipient, msg)
}

// sendViaClient performs auth, sets sender/recipient, and sends the message body.
func (e *Email) sendViaClient(client *smtp.Client, recipient string, msg []byte) error {
	if err := client.Auth(e.auth); err != nil {
		logger.Log.Error("SMTP authentication failed", "error", err)
		return err
	}

	if err := client.Mail(e.config.Username); err != nil {
		logger.Log.Error("failed to set sender", "error", err)
		return err
	}

	if err := client.Rcpt(recipient); err != nil {
		logger.Log.Error("failed to set recipient", "error", err)
		return err
	}

	w, err := client.Data()
	if err != nil {
		logger.Log.Error("failed to get data writer", "error", err)
		return err
	}

	if _, err = w.Write(msg); err != nil {
		logger.Log.Error("failed to write message", "error", err)
		return err
	}

	if err = w.Close(); err != nil {
		logger.Log.Error("failed to close data writer", "error", err)
		return err
	}

	return client.Quit()
}

func generateMessageID(domain string) string {
	t := time.Now().UnixNano()
	pid := rand.Int63()
	return fmt.Sprintf("<%d.%d@%s>", t, pid, domain)
}

func (e *Email) buildMessage(msg Message) []byte {
	encodedSubject := mime.QEncoding.Encode("utf-8", msg.Subject)
	encodedSenderName := mime.QEncoding.Encode("utf-8", e.config.SenderName)

	headers := fmt.Sprintf(
		"Message-ID: %s\r\n"+
			"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n",
		generateMessageID(e.msgDomain), time.Now().Format(time.RFC1123Z),
		msg.To, encodedSenderName, e.config.Username,
	)
	if msg.ReplyTo != "" {
		headers += "Reply-To: " + msg.ReplyTo + "\r\n"
	}

	return fmt.Appendf(nil,
		"%s"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		headers, encodedSubject, msg.Body,
	)
}

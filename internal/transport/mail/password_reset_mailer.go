package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

type PasswordResetMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	useTLS   bool

	timeout    time.Duration
	maxRetries int
}

func NewPasswordResetMailer(host, port, username, password, from string, useTLS bool, timeout time.Duration, maxRetries int) *PasswordResetMailer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &PasswordResetMailer{
		host:       strings.TrimSpace(host),
		port:       strings.TrimSpace(port),
		username:   username,
		password:   password,
		from:       strings.TrimSpace(from),
		useTLS:     useTLS,
		timeout:    timeout,
		maxRetries: maxRetries,
	}
}

// SendPasswordReset delivers the reset link. Each SMTP attempt runs under its
// own connection deadline, and transient failures are retried with
// exponential backoff up to the configured cap.
func (m *PasswordResetMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	msg := buildMessage(m.from, email, "Password Reset Request", resetBody(link))

	backoff := retry.WithMaxRetries(uint64(m.maxRetries), retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := m.send(email, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (m *PasswordResetMailer) send(to string, msg []byte) error {
	addr := net.JoinHostPort(m.host, m.port)
	conn, err := net.DialTimeout("tcp", addr, m.timeout)
	if err != nil {
		return err
	}
	// One deadline bounds the whole SMTP exchange for this attempt.
	_ = conn.SetDeadline(time.Now().Add(m.timeout))

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if m.useTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
				return err
			}
		}
	}
	if m.username != "" || m.password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.username, m.password, m.host)
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func resetBody(link string) string {
	return fmt.Sprintf("Hello, you can reset your password here: %s\n\nIf you did not request this, ignore this email.", link)
}

func buildMessage(from, to, subject, body string) []byte {
	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")
	return []byte(message.String())
}

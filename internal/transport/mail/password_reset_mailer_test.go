package mail

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("noreply@app.example", "alice@gmail.com", "Password Reset Request", resetBody("https://app.example/reset?email=alice@gmail.com&token=abc")))

	assert.True(t, strings.HasPrefix(msg, "From: noreply@app.example\r\n"))
	assert.Contains(t, msg, "To: alice@gmail.com\r\n")
	assert.Contains(t, msg, "Subject: Password Reset Request\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.Contains(t, msg, "token=abc")
	assert.Contains(t, msg, "ignore this email")

	header, _, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found, "expected blank line separating headers and body")
	assert.NotContains(t, header, "token=", "secret belongs in the body, not the headers")
}

func TestSendPasswordResetMissingConfiguration(t *testing.T) {
	m := NewPasswordResetMailer("", "", "", "", "", false, time.Second, 0)
	err := m.SendPasswordReset(context.Background(), "alice@gmail.com", "https://app.example/reset")
	require.Error(t, err)
}

func TestSendPasswordResetHonorsContext(t *testing.T) {
	m := NewPasswordResetMailer("smtp.gmail.com", "587", "u", "p", "noreply@app.example", true, time.Second, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendPasswordReset(ctx, "alice@gmail.com", "https://app.example/reset")
	require.ErrorIs(t, err, context.Canceled)
}

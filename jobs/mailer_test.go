package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcomeEmail(t *testing.T) {
	payload := WelcomeEmail("alice@example.com", "https://app.voli.example/login")

	assert.Equal(t, "alice@example.com", payload.To)
	assert.NotEmpty(t, payload.Subject)
	assert.Contains(t, payload.Body, "https://app.voli.example/login")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("no-reply@voli.local", SendEmailPayload{
		To:      "alice@example.com",
		Subject: "Welcome to Voli",
		Body:    "hello",
	}))

	assert.Contains(t, msg, "From: no-reply@voli.local\r\n")
	assert.Contains(t, msg, "To: alice@example.com\r\n")
	assert.Contains(t, msg, "Subject: Welcome to Voli\r\n")
	assert.Contains(t, msg, "\r\n\r\nhello")
}

func TestSendEmailTaskRoundTrip(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{To: "alice@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())
	assert.Contains(t, string(task.Payload()), `"to":"alice@example.com"`)
}

func TestMailerRequiresHost(t *testing.T) {
	m := NewMailer(MailerConfig{})
	err := m.Send(SendEmailPayload{To: "alice@example.com"})
	require.Error(t, err)
}

package email

import (
	"context"
	"testing"
	"time"

	"devlaunch/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerRendersThroughSender(t *testing.T) {
	console := NewConsoleSender(logger.Nop())
	m := NewMailer(console)
	ctx := context.Background()

	require.NoError(t, m.SignupCode(ctx, "a@b.c", "Ann", "123456", 10*time.Minute))
	require.NoError(t, m.Enrolled(ctx, "a@b.c", "Ann", "Go <Basics>"))

	sent := console.Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].HTML, "123456")
	assert.Contains(t, sent[0].Text, "10 minutes")
	assert.Equal(t, "Enrolled: Go <Basics>", sent[1].Subject)
	assert.Contains(t, sent[1].HTML, "Go &lt;Basics&gt;")
}

func TestSendgridPayload(t *testing.T) {
	s := NewSendgridSender("key", "noreply@devlaunch.test", logger.Nop())
	m := s.prepare(Message{To: "a@b.c", Name: "Ann", Subject: "Hi", HTML: "<p>x</p>", Text: "x"})

	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "Hi", m.Personalizations[0].Subject)
	assert.Equal(t, "a@b.c", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "noreply@devlaunch.test", m.From.Address)
	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}

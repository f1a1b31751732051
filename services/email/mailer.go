package email

import (
	"context"
	"fmt"
	"html"
	"time"
)

// Mailer renders the application's messages and hands them to a Sender.
type Mailer struct {
	sender Sender
}

func NewMailer(sender Sender) *Mailer {
	return &Mailer{sender: sender}
}

func layout(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
		.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
		.header { background-color: #0B1F3A; padding: 30px; text-align: center; }
		.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
		.content { padding: 40px 30px; color: #0B1F3A; line-height: 1.6; }
		.code { font-size: 32px; font-weight: bold; letter-spacing: 8px; margin: 20px 0; }
		.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>DEVLAUNCH</h1></div>
		<div class="content">
			<h2>%s</h2>
			%s
		</div>
		<div class="footer">You are receiving this email because of activity on your DevLaunch account.</div>
	</div>
</body>
</html>`, html.EscapeString(title), body)
}

// SignupCode mails the one-time code that completes a signup.
func (m *Mailer) SignupCode(ctx context.Context, to, name, code string, ttl time.Duration) error {
	minutes := int(ttl.Minutes())
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Use this code to finish creating your account:</p>
		<div class="code">%s</div>
		<p>The code expires in %d minutes.</p>`, html.EscapeString(name), code, minutes)
	return m.sender.Send(ctx, Message{
		To:      to,
		Name:    name,
		Subject: "Your DevLaunch verification code",
		HTML:    layout("Verify your email", body),
		Text:    fmt.Sprintf("Your DevLaunch verification code is %s. It expires in %d minutes.", code, minutes),
	})
}

func (m *Mailer) Welcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account is ready. Browse the catalog and enroll in your first course.</p>`, html.EscapeString(name))
	return m.sender.Send(ctx, Message{
		To:      to,
		Name:    name,
		Subject: "Welcome to DevLaunch",
		HTML:    layout("Welcome aboard!", body),
		Text:    "Your DevLaunch account is ready.",
	})
}

func (m *Mailer) Enrolled(ctx context.Context, to, name, courseTitle string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You are now enrolled in <strong>%s</strong>. Mark videos as watched to track your progress.</p>`,
		html.EscapeString(name), html.EscapeString(courseTitle))
	return m.sender.Send(ctx, Message{
		To:      to,
		Name:    name,
		Subject: "Enrolled: " + courseTitle,
		HTML:    layout("Enrollment confirmed", body),
		Text:    fmt.Sprintf("You are now enrolled in %s.", courseTitle),
	})
}

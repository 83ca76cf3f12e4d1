// File: /services/email_service.go
package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
	"vastconnect-api/config"
	"vastconnect-api/models"
)

// EmailService mails selected notifications to their recipients over SMTP.
type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// SendNotificationEmail sends one notification to the recipient's address.
func (es *EmailService) SendNotificationEmail(recipient models.User, notification models.NotificationResponse) error {
	if recipient.Email == "" {
		return fmt.Errorf("recipient %s has no email address", recipient.ID)
	}
	return es.dialer.DialAndSend(es.buildMessage(recipient, notification))
}

func (es *EmailService) buildMessage(recipient models.User, notification models.NotificationResponse) *gomail.Message {
	actor := notification.Actor.Username
	if actor == "" {
		actor = "Someone"
	}
	subject := fmt.Sprintf("%s %s", actor, notification.Message)

	excerpt := ""
	if notification.Source != nil {
		excerpt = notification.Source.Excerpt
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", recipient.Email)
	m.SetHeader("Subject", "VastConnect - "+subject)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .quote { background: #f8f9fa; border-left: 4px solid #5b4bdb; padding: 12px 16px; margin: 16px 0; }
        .footer { margin-top: 20px; color: #666; font-size: 13px; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Hello %s,</h2>
        <p><strong>%s</strong> %s.</p>
        <div class="quote">%s</div>
        <p class="footer">You are receiving this because you have notifications enabled on VastConnect.</p>
    </div>
</body>
</html>`,
		html.EscapeString(recipient.Username),
		html.EscapeString(actor),
		html.EscapeString(notification.Message),
		html.EscapeString(excerpt),
	)

	textBody := fmt.Sprintf("Hello %s,\n\n%s %s.\n\n%s\n", recipient.Username, actor, notification.Message, excerpt)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)
	return m
}

package services

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const (
	otpSubject    = "Your OTP for NotesHive"
	senderName    = "NotesHive"
	mailerTimeout = 10 * time.Second
)

const otpHTMLTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #367AFF; text-align: center;">NotesHive Authentication</h2>
  <p>Your one-time password is:</p>
  <h1 style="text-align: center; letter-spacing: 8px; color: #232323;">%s</h1>
  <p>This code expires in 10 minutes.</p>
  <p style="color: #6C6C6C; font-size: 12px;">If you did not request this code, you can ignore this email.</p>
</div>`

func otpBodies(code string) (text, html string) {
	text = fmt.Sprintf("Your NotesHive OTP is %s. It expires in 10 minutes.", code)
	html = fmt.Sprintf(otpHTMLTemplate, code)
	return text, html
}

// SMTPMailer delivers OTP emails over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *logrus.Entry
}

func NewSMTPMailer(host string, port int, user, password string, logger *logrus.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
		logger: logger.WithField("component", "mailer"),
	}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text, html := otpBodies(code)

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, senderName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", otpSubject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.logger.WithField("to", to).Info("OTP email sent")
	return nil
}

// MailgunMailer delivers OTP emails through the Mailgun API.
type MailgunMailer struct {
	client *mg.MailgunImpl
	sender string
	logger *logrus.Entry
}

func NewMailgunMailer(domain, apiKey, sender string, logger *logrus.Logger) *MailgunMailer {
	return &MailgunMailer{
		client: mg.NewMailgun(domain, apiKey),
		sender: fmt.Sprintf("%s <%s>", senderName, sender),
		logger: logger.WithField("component", "mailer"),
	}
}

func (m *MailgunMailer) SendOTP(ctx context.Context, to, code string) error {
	text, html := otpBodies(code)
	msg := m.client.NewMessage(m.sender, otpSubject, text, to)
	msg.SetHtml(html)

	ctx, cancel := context.WithTimeout(ctx, mailerTimeout)
	defer cancel()
	_, id, err := m.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.logger.WithFields(logrus.Fields{"to": to, "id": id}).Info("OTP email sent")
	return nil
}

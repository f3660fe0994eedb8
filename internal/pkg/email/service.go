// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/sirupsen/logrus"
)

const (
	ProviderSMTP = "smtp"
	ProviderLog  = "log"
)

var templates = template.Must(template.New("email").Parse(`
{{define "order_placed"}}<p>Hi {{.BuyerName}},</p>
<p>Thanks for shopping at {{.StoreName}}. We received order #{{.OrderID}}: {{.Summary}}.</p>
<p>Amount: {{.Amount}}<br>Payment: {{.PaymentMethod}} ({{.PaymentStatus}})<br>Ship to: {{.Address}}</p>{{end}}
{{define "payment_confirmed"}}<p>Hi {{.BuyerName}},</p>
<p>Your payment of {{.Amount}} for order #{{.OrderID}} is confirmed.</p>{{end}}
{{define "booking_status"}}<p>Your booking for {{.PetName}} ({{.ServiceName}}) on {{.Date}} at {{.Time}} is now <strong>{{.Status}}</strong>.</p>
<p>{{.StoreName}}</p>{{end}}
`))

// EmailService renders and delivers transactional emails
type EmailService struct {
	config *config.Config
	logger *logrus.Logger
	send   func(*Email) error
}

// NewEmailService creates a new email service for the configured provider
func NewEmailService(cfg *config.Config, logger *logrus.Logger) *EmailService {
	s := &EmailService{
		config: cfg,
		logger: logger,
	}

	switch cfg.External.Email.Provider {
	case ProviderSMTP:
		s.send = s.sendSMTPEmail
	default:
		s.send = s.logEmail
	}

	return s
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if len(email.To) == 0 || strings.TrimSpace(email.To[0]) == "" {
		return fmt.Errorf("email has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.send(email)
}

// SendOrderPlaced sends the order confirmation to the buyer
func (s *EmailService) SendOrderPlaced(ctx context.Context, to string, data OrderData) error {
	data.StoreName = s.storeName()
	return s.sendTemplate(ctx, to, fmt.Sprintf("Order #%d received", data.OrderID), EmailTypeOrderPlaced, "order_placed", data)
}

// SendPaymentConfirmed tells the buyer their UPI payment was recorded
func (s *EmailService) SendPaymentConfirmed(ctx context.Context, to string, data OrderData) error {
	data.StoreName = s.storeName()
	return s.sendTemplate(ctx, to, fmt.Sprintf("Payment confirmed for order #%d", data.OrderID), EmailTypePaymentConfirmed, "payment_confirmed", data)
}

// SendBookingStatus notifies the booking contact of a status change
func (s *EmailService) SendBookingStatus(ctx context.Context, to string, data BookingData) error {
	data.StoreName = s.storeName()
	return s.sendTemplate(ctx, to, fmt.Sprintf("Booking %s: %s", data.Status, data.ServiceName), EmailTypeBookingStatus, "booking_status", data)
}

func (s *EmailService) sendTemplate(ctx context.Context, to, subject string, emailType EmailType, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s template: %w", name, err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{to},
		Subject:     subject,
		HTMLContent: buf.String(),
		Type:        emailType,
	})
}

// logEmail is the development provider: it only records that a mail would go out
func (s *EmailService) logEmail(email *Email) error {
	s.logger.WithFields(logrus.Fields{
		"to":      strings.Join(email.To, ","),
		"subject": email.Subject,
		"type":    email.Type,
	}).Info("email not sent, log provider active")
	return nil
}

func (s *EmailService) storeName() string {
	if s.config.External.Email.FromName != "" {
		return s.config.External.Email.FromName
	}
	return s.config.Payment.UPIPayeeName
}

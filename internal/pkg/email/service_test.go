package email

import (
	"context"
	"strings"
	"testing"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturingService(cfg *config.Config) (*EmailService, *[]*Email) {
	s := NewEmailService(cfg, logger.Discard())
	var sent []*Email
	s.send = func(e *Email) error {
		sent = append(sent, e)
		return nil
	}
	return s, &sent
}

func TestSendOrderPlaced_RendersTemplate(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.Email.FromName = "Pawverse Store"
	s, sent := newCapturingService(cfg)

	err := s.SendOrderPlaced(context.Background(), "buyer@example.com", OrderData{
		BuyerName: "Ravi",
		OrderID:   9,
		Summary:   "Golden Retriever",
		Amount:    "15000.00",
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, []string{"buyer@example.com"}, mail.To)
	assert.Equal(t, EmailTypeOrderPlaced, mail.Type)
	assert.Contains(t, mail.Subject, "#9")
	assert.Contains(t, mail.HTMLContent, "Golden Retriever")
	assert.Contains(t, mail.HTMLContent, "Pawverse Store")
}

func TestSendEmail_RequiresRecipient(t *testing.T) {
	s, sent := newCapturingService(&config.Config{})

	err := s.SendBookingStatus(context.Background(), "", BookingData{Status: "confirmed"})
	assert.Error(t, err)
	assert.Empty(t, *sent)
}

func TestLogProviderIsDefault(t *testing.T) {
	s := NewEmailService(&config.Config{}, logger.Discard())
	assert.NoError(t, s.SendEmail(context.Background(), &Email{To: []string{"a@example.com"}, Subject: "hi"}))
}

func TestBuildMessage_HeaderOrder(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.Email.FromEmail = "shop@example.com"
	cfg.External.Email.FromName = "Pawverse"
	cfg.External.Email.ReplyTo = "help@example.com"
	s := NewEmailService(cfg, logger.Discard())

	msg := string(s.buildMessage(&Email{To: []string{"a@example.com", "b@example.com"}, Subject: "Hello", HTMLContent: "<p>x</p>"}))

	head, body, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, "<p>x</p>", body)
	lines := strings.Split(head, "\r\n")
	assert.Equal(t, "From: Pawverse <shop@example.com>", lines[0])
	assert.Equal(t, "To: a@example.com, b@example.com", lines[1])
	assert.Equal(t, "Reply-To: help@example.com", lines[len(lines)-1])
}

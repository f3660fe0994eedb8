// internal/pkg/email/types.go
package email

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderPlaced      EmailType = "order_placed"
	EmailTypePaymentConfirmed EmailType = "payment_confirmed"
	EmailTypeBookingStatus    EmailType = "booking_status"
)

// Email represents an email message
type Email struct {
	To          []string               `json:"to"`
	Subject     string                 `json:"subject"`
	HTMLContent string                 `json:"html_content"`
	Type        EmailType              `json:"type"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// OrderData is rendered into order emails
type OrderData struct {
	StoreName     string
	BuyerName     string
	OrderID       uint
	Summary       string
	Amount        string
	PaymentMethod string
	PaymentStatus string
	Address       string
}

// BookingData is rendered into booking status emails
type BookingData struct {
	StoreName   string
	PetName     string
	ServiceName string
	Date        string
	Time        string
	Status      string
}

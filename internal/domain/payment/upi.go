// internal/domain/payment/upi.go
package payment

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/shopspring/decimal"
)

// Method is how the buyer chose to pay for an order
type Method string

const (
	MethodCOD  Method = "cod"
	MethodCard Method = "card"
	MethodUPI  Method = "upi"
)

// Status is the payment state of an order
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

var ErrInvalidMethod = errors.New("invalid payment method")

// ParseMethod validates a payment method coming from a request
func ParseMethod(raw string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(raw))); m {
	case MethodCOD, MethodCard, MethodUPI:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, raw)
	}
}

// UPIIntent carries the parameters of a upi://pay deep link
type UPIIntent struct {
	PayeeVPA       string
	PayeeName      string
	TransactionRef string
	Note           string
	Amount         decimal.Decimal
	Currency       string
}

// NewOrderIntent builds the payment intent for an order using the merchant
// settings from config
func NewOrderIntent(cfg *config.Config, orderID uint, amount decimal.Decimal) UPIIntent {
	currency := cfg.Payment.Currency
	if currency == "" {
		currency = "INR"
	}
	return UPIIntent{
		PayeeVPA:       cfg.Payment.UPIPayeeVPA,
		PayeeName:      cfg.Payment.UPIPayeeName,
		TransactionRef: fmt.Sprintf("ORDER%d", orderID),
		Note:           fmt.Sprintf("Payment for order %d", orderID),
		Amount:         amount,
		Currency:       currency,
	}
}

// URI renders the intent as upi://pay?pa=..&pn=..&tr=..&tn=..&am=..&cu=..
// Parameter order is fixed; some UPI apps are sensitive to it.
func (u UPIIntent) URI() string {
	params := []struct{ key, value string }{
		{"pa", u.PayeeVPA},
		{"pn", u.PayeeName},
		{"tr", u.TransactionRef},
		{"tn", u.Note},
		{"am", u.Amount.StringFixed(2)},
		{"cu", u.Currency},
	}

	var b strings.Builder
	b.WriteString("upi://pay?")
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

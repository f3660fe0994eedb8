// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/pawverse/petstore-backend/internal/config"
)

// Service renders order receipts as PDF through wkhtmltopdf
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.Invoice.WkhtmltopdfBin != "" {
		wkhtmltopdf.SetPath(cfg.Invoice.WkhtmltopdfBin)
	}
	return &Service{
		config: cfg,
	}
}

// ReceiptData is the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber   string
	IssuedAt        string
	OrderID         uint
	Summary         string
	BuyerName       string
	Email           string
	Phone           string
	ShippingAddress string
	PaymentMethod   string
	PaymentStatus   string
	Amount          string
	Currency        string
	Company         CompanyInfo
}

// CompanyInfo represents the seller block on the receipt
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
}

// GenerateReceipt renders the receipt HTML and converts it to PDF
func (s *Service) GenerateReceipt(data ReceiptData) (*bytes.Buffer, error) {
	data.Company = CompanyInfo{
		Name:    s.config.Invoice.CompanyName,
		Address: s.config.Invoice.CompanyAddress,
		Email:   s.config.Invoice.CompanyEmail,
	}

	htmlContent, err := RenderReceiptHTML(data)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderReceiptHTML executes the receipt template
func RenderReceiptHTML(data ReceiptData) ([]byte, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute receipt template: %w", err)
	}
	return buf.Bytes(), nil
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 12px; margin-bottom: 20px; }
        .title { font-size: 24px; font-weight: bold; color: #b45309; }
        table { width: 100%; border-collapse: collapse; }
        td { padding: 6px 0; vertical-align: top; }
        td.label { color: #777; width: 35%; }
        .total { font-size: 18px; font-weight: bold; border-top: 1px solid #ddd; }
    </style>
</head>
<body>
    <div class="header">
        <div class="title">{{.Company.Name}}</div>
        <div>{{.Company.Address}}</div>
        <div>{{.Company.Email}}</div>
    </div>
    <h2>Receipt {{.ReceiptNumber}}</h2>
    <table>
        <tr><td class="label">Date</td><td>{{.IssuedAt}}</td></tr>
        <tr><td class="label">Order</td><td>#{{.OrderID}}: {{.Summary}}</td></tr>
        <tr><td class="label">Customer</td><td>{{.BuyerName}}<br>{{.Email}}<br>{{.Phone}}</td></tr>
        <tr><td class="label">Ship to</td><td>{{.ShippingAddress}}</td></tr>
        <tr><td class="label">Payment</td><td>{{.PaymentMethod}} ({{.PaymentStatus}})</td></tr>
        <tr class="total"><td class="label">Total</td><td>{{.Currency}} {{.Amount}}</td></tr>
    </table>
</body>
</html>
`))

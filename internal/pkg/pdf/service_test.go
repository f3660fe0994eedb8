package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReceiptHTML(t *testing.T) {
	html, err := RenderReceiptHTML(ReceiptData{
		ReceiptNumber: "RCPT-00012",
		OrderID:       12,
		Summary:       "Cart order with 2 items",
		BuyerName:     "Asha <script>",
		Amount:        "899.00",
		Currency:      "INR",
		Company:       CompanyInfo{Name: "Pawverse Store"},
	})
	require.NoError(t, err)

	body := string(html)
	assert.Contains(t, body, "RCPT-00012")
	assert.Contains(t, body, "#12: Cart order with 2 items")
	assert.Contains(t, body, "INR 899.00")
	assert.Contains(t, body, "Asha &lt;script&gt;")
}

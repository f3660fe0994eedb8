package order_test

import (
	"testing"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/notify"
	"github.com/pawverse/petstore-backend/internal/domain/order"
	"github.com/pawverse/petstore-backend/internal/domain/payment"
	"github.com/pawverse/petstore-backend/internal/pkg/email"
	"github.com/pawverse/petstore-backend/internal/pkg/logger"
	"github.com/pawverse/petstore-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*order.Service, *notify.Dispatcher, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{Payment: config.PaymentConfig{Currency: "INR"}}
	log := logger.Discard()
	dispatcher := notify.NewDispatcher(nil, email.NewEmailService(cfg, log), log)
	return order.NewService(db, cfg, dispatcher, log), dispatcher, db
}

func seedOrder(t *testing.T, db *gorm.DB, o order.Order) *order.Order {
	t.Helper()
	if o.ItemName == "" {
		o.ItemName = "Rex"
	}
	o.BuyerName = "Kabir"
	if o.Email == "" {
		o.Email = "kabir@example.com"
	}
	o.Phone = "9000000000"
	o.ShippingAddress = "Somewhere"
	if o.PaymentStatus == "" {
		o.PaymentStatus = payment.StatusPending
	}
	if o.Amount.IsZero() {
		o.Amount = decimal.RequireFromString("499.00")
	}
	require.NoError(t, db.Create(&o).Error)
	return &o
}

func TestConfirmUPIPayment(t *testing.T) {
	svc, dispatcher, db := setup(t)
	owner := cart.Scope{UserID: testutil.UintPtr(1)}
	o := seedOrder(t, db, order.Order{UserID: testutil.UintPtr(1), PaymentMethod: payment.MethodUPI})

	_, err := svc.ConfirmUPIPayment(o.ID, cart.Scope{UserID: testutil.UintPtr(2)})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	paid, err := svc.ConfirmUPIPayment(o.ID, owner)
	require.NoError(t, err)
	dispatcher.Wait()
	assert.Equal(t, payment.StatusPaid, paid.PaymentStatus)
	assert.NotNil(t, paid.PaidAt)

	again, err := svc.ConfirmUPIPayment(o.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, again.PaymentStatus)

	_, err = svc.MarkPaymentFailed(o.ID)
	assert.ErrorIs(t, err, order.ErrPaymentFinalized)
}

func TestConfirmUPIPayment_RejectsOtherMethods(t *testing.T) {
	svc, _, db := setup(t)
	token := "guest-sess"
	o := seedOrder(t, db, order.Order{SessionToken: &token, PaymentMethod: payment.MethodCOD})

	_, err := svc.ConfirmUPIPayment(o.ID, cart.Scope{SessionToken: token})
	assert.ErrorIs(t, err, order.ErrNotUPIOrder)

	_, err = svc.ConfirmUPIPayment(o.ID, cart.Scope{SessionToken: "other"})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestMarkPaymentFailed(t *testing.T) {
	svc, _, db := setup(t)
	o := seedOrder(t, db, order.Order{PaymentMethod: payment.MethodUPI, UserID: testutil.UintPtr(5)})

	failed, err := svc.MarkPaymentFailed(o.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, failed.PaymentStatus)

	_, err = svc.ConfirmUPIPayment(o.ID, cart.Scope{UserID: testutil.UintPtr(5)})
	assert.ErrorIs(t, err, order.ErrPaymentFinalized)

	_, err = svc.MarkPaymentFailed(9999)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	svc, _, db := setup(t)
	seedOrder(t, db, order.Order{UserID: testutil.UintPtr(1), PaymentMethod: payment.MethodCOD})
	seedOrder(t, db, order.Order{UserID: testutil.UintPtr(1), PaymentMethod: payment.MethodUPI, ItemName: "Cart order with 3 items"})
	seedOrder(t, db, order.Order{UserID: testutil.UintPtr(2), PaymentMethod: payment.MethodCard, Email: "zoya@example.com"})

	mine, err := svc.ListUserOrders(1, 1, 10)
	require.NoError(t, err)
	assert.Len(t, mine.Orders, 2)
	assert.Equal(t, int64(2), mine.Pagination.Total)

	upi, err := svc.ListOrders(&order.OrderListRequest{PaymentMethod: "upi"})
	require.NoError(t, err)
	require.Len(t, upi.Orders, 1)
	assert.Equal(t, "Cart order with 3 items", upi.Orders[0].ItemName)

	found, err := svc.ListOrders(&order.OrderListRequest{Search: "ZOYA"})
	require.NoError(t, err)
	assert.Len(t, found.Orders, 1)
}

func TestExportOrders(t *testing.T) {
	svc, _, db := setup(t)
	upi := "kabir@upi"
	seedOrder(t, db, order.Order{PaymentMethod: payment.MethodUPI, UserUPIID: &upi, Amount: decimal.RequireFromString("1250.5")})
	seedOrder(t, db, order.Order{PaymentMethod: payment.MethodCOD})

	file, err := svc.ExportOrders(&order.OrderListRequest{})
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0].Cells[0].Value)
	assert.Equal(t, "Amount", rows[0].Cells[9].Value)

	var amounts, upiIDs []string
	for _, row := range rows[1:] {
		upiIDs = append(upiIDs, row.Cells[7].Value)
		amounts = append(amounts, row.Cells[9].Value)
	}
	assert.ElementsMatch(t, []string{"1250.50", "499.00"}, amounts)
	assert.Contains(t, upiIDs, "kabir@upi")
}

func TestReceiptData(t *testing.T) {
	o := &order.Order{ID: 42, ItemName: "Rex", PaymentMethod: payment.MethodUPI, PaymentStatus: payment.StatusPaid, Amount: decimal.NewFromInt(100)}

	data := order.ReceiptData(o, "INR")
	assert.Equal(t, "RCPT-00042", data.ReceiptNumber)
	assert.Equal(t, "UPI", data.PaymentMethod)
	assert.Equal(t, "100.00", data.Amount)
	assert.Equal(t, "ORDER42", o.Reference())
}

func TestGetOrder_GuestOwnership(t *testing.T) {
	svc, _, db := setup(t)
	token := "abc"
	o := seedOrder(t, db, order.Order{SessionToken: &token, PaymentMethod: payment.MethodCOD})

	got, err := svc.GetOrder(o.ID, cart.Scope{SessionToken: "abc"})
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.GetOrder(o.ID, cart.Scope{UserID: testutil.UintPtr(1)})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	_, err = svc.GetOrder(o.ID, cart.Scope{})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

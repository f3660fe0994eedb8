package checkout_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/checkout"
	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/pawverse/petstore-backend/internal/domain/notify"
	"github.com/pawverse/petstore-backend/internal/domain/order"
	"github.com/pawverse/petstore-backend/internal/domain/payment"
	"github.com/pawverse/petstore-backend/internal/pkg/email"
	"github.com/pawverse/petstore-backend/internal/pkg/logger"
	"github.com/pawverse/petstore-backend/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	cat        *testutil.Catalog
	carts      *cart.Service
	checkout   *checkout.Service
	dispatcher *notify.Dispatcher
	redis      *redis.Client
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := &config.Config{Payment: config.PaymentConfig{
		UPIPayeeVPA:  "your-merchant-upi@bank",
		UPIPayeeName: "Pawverse Store",
		Currency:     "INR",
	}}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.Discard()
	dispatcher := notify.NewDispatcher(rdb, email.NewEmailService(cfg, log), log)
	carts := cart.NewService(db, log)

	return &fixture{
		db:         db,
		cat:        testutil.SeedCatalog(t, db),
		carts:      carts,
		checkout:   checkout.NewService(db, cfg, carts, dispatcher, log),
		dispatcher: dispatcher,
		redis:      rdb,
	}
}

func form(method string) *checkout.PlaceOrderRequest {
	return &checkout.PlaceOrderRequest{
		BuyerName:       "Meera",
		Email:           "meera@example.com",
		Phone:           "9876543210",
		ShippingAddress: "221B MG Road, Pune",
		PaymentMethod:   method,
	}
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&order.Order{}).Count(&n).Error)
	return n
}

func TestPlaceOrder_CartConsumesLines(t *testing.T) {
	f := setup(t)
	scope := cart.Scope{UserID: testutil.UintPtr(1)}

	_, err := f.carts.AddItem(scope, "pet", f.cat.Dog.ID)
	require.NoError(t, err)
	_, err = f.carts.AddItem(scope, "product", f.cat.Food.ID)
	require.NoError(t, err)
	_, err = f.carts.AddItem(scope, "product", f.cat.Food.ID)
	require.NoError(t, err)

	res, err := f.checkout.PlaceOrder(scope, form("cod"))
	require.NoError(t, err)
	f.dispatcher.Wait()

	assert.Empty(t, res.UPIURI)
	assert.Equal(t, "Cart order with 2 items", res.Order.ItemName)
	assert.Equal(t, "120.50", res.Order.Amount.StringFixed(2))
	assert.Equal(t, payment.StatusPending, res.Order.PaymentStatus)
	assert.Nil(t, res.Order.UserUPIID)

	var removed int64
	f.db.Model(&cart.CartLine{}).Where("status = ?", cart.LineRemoved).Count(&removed)
	assert.Equal(t, int64(2), removed)

	count, err := f.carts.Count(scope)
	require.NoError(t, err)
	assert.Zero(t, count)

	// the same lines cannot be checked out twice
	_, err = f.checkout.PlaceOrder(scope, form("cod"))
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
	assert.Equal(t, int64(1), countOrders(t, f.db))

	events, err := f.redis.LLen(context.Background(), notify.EventsKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), events)
}

func TestPlaceOrder_UPIReturnsPaymentLink(t *testing.T) {
	f := setup(t)
	scope := cart.Scope{SessionToken: "guest-upi"}

	_, err := f.carts.AddItem(scope, "pet", f.cat.Cat.ID)
	require.NoError(t, err)

	req := form("upi")
	req.UserUPIID = "meera@okbank"
	res, err := f.checkout.PlaceOrder(scope, req)
	require.NoError(t, err)
	f.dispatcher.Wait()

	require.NotEmpty(t, res.UPIURI)
	u, err := url.Parse(res.UPIURI)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "upi", u.Scheme)
	assert.Equal(t, res.Order.Reference(), q.Get("tr"))
	assert.Equal(t, "250.50", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))

	require.NotNil(t, res.Order.UserUPIID)
	assert.Equal(t, "meera@okbank", *res.Order.UserUPIID)
	require.NotNil(t, res.Order.SessionToken)
	assert.Nil(t, res.Order.UserID)
}

func TestPlaceOrder_UPIIDOnlyStoredForUPI(t *testing.T) {
	f := setup(t)

	req := form("card")
	req.UserUPIID = "someone@bank"
	req.IsSingleItem = true
	req.ItemModel = "product"
	req.ItemID = f.cat.Toy.ID

	res, err := f.checkout.PlaceOrder(cart.Scope{SessionToken: "s"}, req)
	require.NoError(t, err)
	f.dispatcher.Wait()
	assert.Nil(t, res.Order.UserUPIID)
	assert.Equal(t, "Ball", res.Order.ItemName)
	assert.Equal(t, "3.00", res.Order.Amount.StringFixed(2))
}

func TestPlaceOrder_SingleItemLeavesCartAlone(t *testing.T) {
	f := setup(t)
	scope := cart.Scope{UserID: testutil.UintPtr(2)}

	_, err := f.carts.AddItem(scope, "product", f.cat.Food.ID)
	require.NoError(t, err)

	req := form("upi")
	req.IsSingleItem = true
	req.ItemModel = "pet"
	req.ItemID = f.cat.Dog.ID
	res, err := f.checkout.PlaceOrder(scope, req)
	require.NoError(t, err)
	f.dispatcher.Wait()

	assert.Equal(t, "Rex", res.Order.ItemName)
	assert.Contains(t, res.UPIURI, "am=100.00")

	count, err := f.carts.Count(scope)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPlaceOrder_ValidationWritesNothing(t *testing.T) {
	f := setup(t)
	scope := cart.Scope{UserID: testutil.UintPtr(3)}
	_, err := f.carts.AddItem(scope, "pet", f.cat.Dog.ID)
	require.NoError(t, err)

	for _, mutate := range []func(*checkout.PlaceOrderRequest){
		func(r *checkout.PlaceOrderRequest) { r.BuyerName = "" },
		func(r *checkout.PlaceOrderRequest) { r.Email = "  " },
		func(r *checkout.PlaceOrderRequest) { r.Phone = "" },
		func(r *checkout.PlaceOrderRequest) { r.ShippingAddress = "" },
		func(r *checkout.PlaceOrderRequest) { r.PaymentMethod = "" },
	} {
		req := form("cod")
		mutate(req)
		_, err := f.checkout.PlaceOrder(scope, req)
		assert.ErrorIs(t, err, checkout.ErrMissingFields)
	}

	_, err = f.checkout.PlaceOrder(scope, form("barter"))
	assert.ErrorIs(t, err, payment.ErrInvalidMethod)

	single := form("cod")
	single.IsSingleItem = true
	single.ItemModel = "dragon"
	single.ItemID = 1
	_, err = f.checkout.PlaceOrder(scope, single)
	assert.ErrorIs(t, err, itemref.ErrUnknownKind)

	single.ItemModel = "pet"
	single.ItemID = 777
	_, err = f.checkout.PlaceOrder(scope, single)
	assert.ErrorIs(t, err, itemref.ErrItemNotFound)

	assert.Zero(t, countOrders(t, f.db))
	count, err := f.carts.Count(scope)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPlaceOrder_EmptyOrMissingCart(t *testing.T) {
	f := setup(t)

	_, err := f.checkout.PlaceOrder(cart.Scope{SessionToken: "no-cart"}, form("cod"))
	assert.ErrorIs(t, err, cart.ErrNoCart)

	_, err = f.checkout.PlaceOrder(cart.Scope{UserID: testutil.UintPtr(8)}, form("cod"))
	assert.ErrorIs(t, err, cart.ErrEmptyCart)

	// every line points at a deleted pet
	scope := cart.Scope{UserID: testutil.UintPtr(9)}
	_, err = f.carts.AddItem(scope, "pet", f.cat.Cat.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Exec("DELETE FROM pets WHERE id = ?", f.cat.Cat.ID).Error)
	_, err = f.checkout.PlaceOrder(scope, form("cod"))
	assert.ErrorIs(t, err, cart.ErrEmptyCart)

	assert.Zero(t, countOrders(t, f.db))
}

func TestPreview(t *testing.T) {
	f := setup(t)
	scope := cart.Scope{SessionToken: "preview"}

	single, err := f.checkout.Preview(scope, "product", f.cat.Food.ID)
	require.NoError(t, err)
	assert.True(t, single.SingleItem)
	assert.Equal(t, 1, single.TotalQuantity)
	assert.Equal(t, "10.25", single.Total.StringFixed(2))
	assert.Len(t, single.PaymentOptions, 3)

	_, err = f.checkout.Preview(scope, "", 0)
	assert.ErrorIs(t, err, cart.ErrNoCart)

	_, err = f.checkout.Preview(scope, "reptile", 1)
	assert.ErrorIs(t, err, itemref.ErrUnknownKind)

	_, err = f.carts.AddItem(scope, "pet", f.cat.Dog.ID)
	require.NoError(t, err)
	_, err = f.carts.AddItem(scope, "pet", f.cat.Dog.ID)
	require.NoError(t, err)

	preview, err := f.checkout.Preview(scope, "", 0)
	require.NoError(t, err)
	assert.False(t, preview.SingleItem)
	assert.Len(t, preview.Lines, 1)
	assert.Equal(t, 2, preview.TotalQuantity)
	assert.Equal(t, "200.00", preview.Total.StringFixed(2))
}

package cart_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/pawverse/petstore-backend/internal/pkg/logger"
	"github.com/pawverse/petstore-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*cart.Service, *gorm.DB, *testutil.Catalog) {
	t.Helper()
	db := testutil.NewDB(t)
	fixtures := testutil.SeedCatalog(t, db)
	return cart.NewService(db, logger.Discard()), db, fixtures
}

func guest(token string) cart.Scope {
	return cart.Scope{SessionToken: token}
}

func member(id uint) cart.Scope {
	return cart.Scope{UserID: testutil.UintPtr(id)}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddItem_IncrementsThenDecrementDeletes(t *testing.T) {
	svc, db, fx := setup(t)
	scope := guest("sess-1")

	first, err := svc.AddItem(scope, "pet", fx.Dog.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	second, err := svc.AddItem(scope, "pet", fx.Dog.ID)
	require.NoError(t, err)
	assert.Equal(t, first.LineID, second.LineID)
	assert.Equal(t, 2, second.Quantity)
	assert.True(t, price("200").Equal(second.Subtotal))
	assert.Equal(t, 2, second.TotalQuantity)

	dec, err := svc.DecrementLine(scope, second.LineID)
	require.NoError(t, err)
	assert.Equal(t, 1, dec.Quantity)
	assert.True(t, price("100").Equal(dec.Subtotal))

	gone, err := svc.DecrementLine(scope, second.LineID)
	require.NoError(t, err)
	assert.Equal(t, 0, gone.Quantity)
	assert.True(t, gone.Subtotal.IsZero())
	assert.Equal(t, 0, gone.TotalQuantity)

	var count int64
	db.Model(&cart.CartLine{}).Count(&count)
	assert.Zero(t, count)
}

func TestAddItem_ReactivatesRemovedLineAtOne(t *testing.T) {
	svc, db, fx := setup(t)
	scope := member(7)

	var res *cart.LineResult
	var err error
	for i := 0; i < 3; i++ {
		res, err = svc.AddItem(scope, "product", fx.Food.ID)
		require.NoError(t, err)
	}
	require.Equal(t, 3, res.Quantity)

	require.NoError(t, svc.DeactivateLines(db, []uint{res.LineID}))

	again, err := svc.AddItem(scope, "product", fx.Food.ID)
	require.NoError(t, err)
	assert.Equal(t, res.LineID, again.LineID)
	assert.Equal(t, 1, again.Quantity)
	assert.Equal(t, 1, again.TotalQuantity)
}

func TestAddItem_Validation(t *testing.T) {
	svc, db, fx := setup(t)

	_, err := svc.AddItem(guest("s"), "hamster", fx.Dog.ID)
	assert.ErrorIs(t, err, itemref.ErrUnknownKind)

	_, err = svc.AddItem(guest("s"), "pet", 99999)
	assert.ErrorIs(t, err, itemref.ErrItemNotFound)

	_, err = svc.AddItem(cart.Scope{}, "pet", fx.Dog.ID)
	assert.ErrorIs(t, err, cart.ErrNoSession)

	var lines, carts int64
	db.Model(&cart.CartLine{}).Count(&lines)
	db.Model(&cart.Cart{}).Count(&carts)
	assert.Zero(t, lines)
	assert.Zero(t, carts)
}

func TestTotals_OnlyActiveLinesAtLivePrices(t *testing.T) {
	svc, db, fx := setup(t)
	scope := member(1)

	_, err := svc.AddItem(scope, "pet", fx.Dog.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(scope, "pet", fx.Dog.ID)
	require.NoError(t, err)
	food, err := svc.AddItem(scope, "product", fx.Food.ID)
	require.NoError(t, err)

	totals, err := svc.Totals(scope)
	require.NoError(t, err)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.True(t, price("210.25").Equal(totals.TotalPrice), totals.TotalPrice.String())

	require.NoError(t, svc.DeactivateLines(db, []uint{food.LineID}))

	totals, err = svc.Totals(scope)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.TotalQuantity)
	assert.True(t, price("200").Equal(totals.TotalPrice))

	// price change is picked up immediately
	require.NoError(t, db.Model(&catalog.Pet{}).Where("id = ?", fx.Dog.ID).Update("price", price("120")).Error)
	totals, err = svc.Totals(scope)
	require.NoError(t, err)
	assert.True(t, price("240").Equal(totals.TotalPrice))
}

func TestView_FlagsStaleLines(t *testing.T) {
	svc, db, fx := setup(t)
	scope := guest("stale")

	_, err := svc.AddItem(scope, "pet", fx.Cat.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(scope, "product", fx.Toy.ID)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&catalog.Pet{}, fx.Cat.ID).Error)

	view, err := svc.View(scope)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.True(t, view.Lines[0].Missing)
	assert.False(t, view.Lines[1].Missing)
	assert.Equal(t, "Ball", view.Lines[1].Name)
	assert.True(t, price("3").Equal(view.TotalPrice))
}

func TestView_GuestWithoutCart(t *testing.T) {
	svc, _, _ := setup(t)

	view, err := svc.View(guest("never-seen"))
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.TotalPrice.IsZero())

	count, err := svc.Count(guest("never-seen"))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteLine_RemovesRegardlessOfQuantity(t *testing.T) {
	svc, _, fx := setup(t)
	scope := guest("del")

	for i := 0; i < 4; i++ {
		_, err := svc.AddItem(scope, "product", fx.Food.ID)
		require.NoError(t, err)
	}
	res, err := svc.AddItem(scope, "pet", fx.Dog.ID)
	require.NoError(t, err)

	out, err := svc.DeleteLine(scope, res.LineID)
	require.NoError(t, err)
	assert.Equal(t, 4, out.TotalQuantity)
	assert.True(t, price("41").Equal(out.TotalPrice))

	_, err = svc.DeleteLine(scope, res.LineID)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)
}

func TestLineMutations_RequireOwnership(t *testing.T) {
	svc, db, fx := setup(t)

	mine, err := svc.AddItem(member(1), "pet", fx.Dog.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(member(1), "pet", fx.Dog.ID)
	require.NoError(t, err)

	_, err = svc.DecrementLine(member(2), mine.LineID)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)
	_, err = svc.DeleteLine(member(2), mine.LineID)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)

	_, err = svc.AddItem(guest("intruder"), "product", fx.Toy.ID)
	require.NoError(t, err)
	_, err = svc.DecrementLine(guest("intruder"), mine.LineID)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)

	var line cart.CartLine
	require.NoError(t, db.First(&line, mine.LineID).Error)
	assert.Equal(t, 2, line.Quantity)
}

func TestDecrementLine_IgnoresRemovedLines(t *testing.T) {
	svc, db, fx := setup(t)
	scope := member(3)

	res, err := svc.AddItem(scope, "pet", fx.Dog.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateLines(db, []uint{res.LineID}))

	_, err = svc.DecrementLine(scope, res.LineID)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)
}

func TestMerge_CollidingItemsAddUp(t *testing.T) {
	svc, db, fx := setup(t)
	const userID = 10

	for i := 0; i < 3; i++ {
		_, err := svc.AddItem(member(userID), "pet", fx.Dog.ID)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := svc.AddItem(guest("g1"), "pet", fx.Dog.ID)
		require.NoError(t, err)
	}
	_, err := svc.AddItem(guest("g1"), "product", fx.Toy.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Merge(userID, "g1"))

	view, err := svc.View(member(userID))
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, 5, view.Lines[0].Quantity)
	assert.Equal(t, itemref.KindProduct, view.Lines[1].Item.Kind)
	assert.Equal(t, 1, view.Lines[1].Quantity)

	var guestCarts, orphanLines int64
	db.Model(&cart.Cart{}).Where("session_token = ?", "g1").Count(&guestCarts)
	db.Model(&cart.CartLine{}).Where("user_id IS NULL").Count(&orphanLines)
	assert.Zero(t, guestCarts)
	assert.Zero(t, orphanLines)
}

func TestMerge_IsIdempotent(t *testing.T) {
	svc, _, fx := setup(t)

	_, err := svc.AddItem(guest("g2"), "product", fx.Food.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Merge(4, "g2"))
	require.NoError(t, svc.Merge(4, "g2"))
	require.NoError(t, svc.Merge(4, "unknown-token"))
	require.NoError(t, svc.Merge(4, ""))

	count, err := svc.Count(member(4))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMerge_RemovedLines(t *testing.T) {
	svc, db, fx := setup(t)
	const userID = 20

	// user line for the dog was consumed by an earlier order
	old, err := svc.AddItem(member(userID), "pet", fx.Dog.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateLines(db, []uint{old.LineID}))

	for i := 0; i < 2; i++ {
		_, err = svc.AddItem(guest("g3"), "pet", fx.Dog.ID)
		require.NoError(t, err)
	}
	removedGuest, err := svc.AddItem(guest("g3"), "product", fx.Food.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateLines(db, []uint{removedGuest.LineID}))

	require.NoError(t, svc.Merge(userID, "g3"))

	view, err := svc.View(member(userID))
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, old.LineID, view.Lines[0].ID)
	assert.Equal(t, 2, view.Lines[0].Quantity)

	var total int64
	db.Model(&cart.CartLine{}).Count(&total)
	assert.Equal(t, int64(1), total)
}

func TestActiveLines(t *testing.T) {
	svc, db, fx := setup(t)

	_, err := svc.ActiveLines(db, guest("nobody"))
	assert.ErrorIs(t, err, cart.ErrNoCart)

	_, err = svc.ActiveLines(db, member(5))
	assert.ErrorIs(t, err, cart.ErrEmptyCart)

	_, err = svc.AddItem(member(5), "product", fx.Toy.ID)
	require.NoError(t, err)
	lines, err := svc.ActiveLines(db, member(5))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, price("3").Equal(lines[0].Subtotal()))
}

func TestResolveCart_ReusesCart(t *testing.T) {
	svc, _, _ := setup(t)

	a, err := svc.ResolveCart(guest("same"))
	require.NoError(t, err)
	b, err := svc.ResolveCart(guest("same"))
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	u, err := svc.ResolveCart(member(9))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, u.ID)
	require.NotNil(t, u.UserID)
	assert.Equal(t, uint(9), *u.UserID)
}

func TestMerge_LineAlreadyMovedToUser(t *testing.T) {
	svc, db, fx := setup(t)
	const userID = 30

	guestCart, err := svc.ResolveCart(guest("g4"))
	require.NoError(t, err)

	// state left behind when another merge of the same session got there first
	line := cart.CartLine{
		UserID:   testutil.UintPtr(userID),
		CartID:   &guestCart.ID,
		Item:     itemref.Ref{Kind: itemref.KindPet, ID: fx.Dog.ID},
		Quantity: 2,
		Status:   cart.LineActive,
	}
	require.NoError(t, db.Create(&line).Error)

	require.NoError(t, svc.Merge(userID, "g4"))

	view, err := svc.View(member(userID))
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, line.ID, view.Lines[0].ID)
	assert.Equal(t, 2, view.Lines[0].Quantity)

	var reloaded cart.CartLine
	require.NoError(t, db.First(&reloaded, line.ID).Error)
	assert.Nil(t, reloaded.CartID)

	var guestCarts int64
	db.Model(&cart.Cart{}).Where("session_token = ?", "g4").Count(&guestCarts)
	assert.Zero(t, guestCarts)
}

func TestAddItem_GuestCartCreatedConcurrently(t *testing.T) {
	svc, db, fx := setup(t)
	const token = "racy"

	// Another request inserts the guest cart between our lookup and our insert.
	inserted := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:concurrent_cart", func(d *gorm.DB) {
		if inserted || d.Statement.Table != "carts" || !errors.Is(d.Error, gorm.ErrRecordNotFound) {
			return
		}
		inserted = true
		_, err := d.Statement.ConnPool.ExecContext(d.Statement.Context,
			"INSERT INTO carts (session_token, created_at) VALUES (?, ?)", token, time.Now().UTC())
		require.NoError(t, err)
	}))

	result, err := svc.AddItem(guest(token), "pet", fx.Dog.ID)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, 1, result.Quantity)

	var carts []cart.Cart
	require.NoError(t, db.Where("session_token = ?", token).Find(&carts).Error)
	require.Len(t, carts, 1)

	var line cart.CartLine
	require.NoError(t, db.First(&line, result.LineID).Error)
	require.NotNil(t, line.CartID)
	assert.Equal(t, carts[0].ID, *line.CartID)
}

func TestContains(t *testing.T) {
	svc, db, fx := setup(t)
	dog := itemref.Ref{Kind: itemref.KindPet, ID: fx.Dog.ID}

	in, err := svc.Contains(guest("nobody"), dog)
	require.NoError(t, err)
	assert.False(t, in)

	added, err := svc.AddItem(guest("g5"), "pet", fx.Dog.ID)
	require.NoError(t, err)

	in, err = svc.Contains(guest("g5"), dog)
	require.NoError(t, err)
	assert.True(t, in)

	in, err = svc.Contains(guest("g5"), itemref.Ref{Kind: itemref.KindProduct, ID: fx.Dog.ID})
	require.NoError(t, err)
	assert.False(t, in, "same id under another kind")

	require.NoError(t, svc.DeactivateLines(db, []uint{added.LineID}))
	in, err = svc.Contains(guest("g5"), dog)
	require.NoError(t, err)
	assert.False(t, in)
}

package orders_test

import (
	"testing"
	"time"

	"arvista/internal/domain/cart"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/orders"
	"arvista/internal/domain/users"
	"arvista/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pricing = orders.Pricing{Currency: "eur", ShippingFeeCents: 1500, FreeShippingThreshold: 50000}

func placeOne(t *testing.T, db *gorm.DB) (*orders.Order, catalog.Artwork) {
	t.Helper()
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	a := testutil.CreateArtwork(t, db, artist.ID, testutil.WithStock(2))
	require.NoError(t, cart.AddItem(db, buyer.ID, a.ID, 1))
	o, err := orders.Place(db, buyer.ID, orders.PlaceInput{}, pricing)
	require.NoError(t, err)
	return o, a
}

func TestPlaceRefusesWhenStockRanOut(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	first := testutil.CreateUser(t, db, users.RoleCustomer)
	second := testutil.CreateUser(t, db, users.RoleCustomer)
	a := testutil.CreateArtwork(t, db, artist.ID)

	// both carts hold the only unit
	require.NoError(t, cart.AddItem(db, first.ID, a.ID, 1))
	require.NoError(t, cart.AddItem(db, second.ID, a.ID, 1))

	_, err := orders.Place(db, first.ID, orders.PlaceInput{}, pricing)
	require.NoError(t, err)

	_, err = orders.Place(db, second.ID, orders.PlaceInput{}, pricing)
	assert.ErrorIs(t, err, orders.ErrUnavailable)

	// the losing cart is left untouched
	var n int64
	db.Model(&cart.CartItem{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	db := testutil.SetupDB(t)
	o, _ := placeOne(t, db)
	require.NoError(t, orders.AttachCheckoutSession(db, o.ID, "cs_1"))

	res := orders.PaymentResult{SessionID: "cs_1", PaymentIntentID: "pi_1", AmountCents: o.TotalCents, Currency: "eur"}
	paid, applied, err := orders.MarkPaid(db, res)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, orders.StatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	again, applied, err := orders.MarkPaid(db, res)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, orders.StatusPaid, again.Status)

	var payments int64
	db.Model(&orders.Payment{}).Where("order_id = ?", o.ID).Count(&payments)
	assert.Equal(t, int64(1), payments)
}

func TestMarkPaidFallsBackToOrderID(t *testing.T) {
	db := testutil.SetupDB(t)
	o, _ := placeOne(t, db)

	paid, applied, err := orders.MarkPaid(db, orders.PaymentResult{SessionID: "cs_new", OrderID: o.ID, AmountCents: o.TotalCents})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, o.ID, paid.ID)

	_, _, err = orders.MarkPaid(db, orders.PaymentResult{SessionID: "cs_other", OrderID: "not-a-uuid"})
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestMarkPaidAfterCancelKeepsStatus(t *testing.T) {
	db := testutil.SetupDB(t)
	o, _ := placeOne(t, db)
	require.NoError(t, orders.AttachCheckoutSession(db, o.ID, "cs_late"))
	_, err := orders.Cancel(db, o.ID, nil)
	require.NoError(t, err)

	got, applied, err := orders.MarkPaid(db, orders.PaymentResult{SessionID: "cs_late", OrderID: o.ID, AmountCents: o.TotalCents})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, orders.StatusCancelled, got.Status)
}

func TestUpdateStatus(t *testing.T) {
	db := testutil.SetupDB(t)
	o, a := placeOne(t, db)

	_, err := orders.UpdateStatus(db, o.ID, orders.StatusShipped)
	assert.ErrorIs(t, err, orders.ErrInvalidTransition)

	_, err = orders.UpdateStatus(db, o.ID, "lost")
	assert.ErrorIs(t, err, orders.ErrInvalidStatus)

	for _, s := range []string{orders.StatusPaid, orders.StatusProcessing, orders.StatusShipped} {
		got, err := orders.UpdateStatus(db, o.ID, s)
		require.NoError(t, err, s)
		assert.Equal(t, s, got.Status)
	}

	// shipped goods cannot be cancelled
	_, err = orders.UpdateStatus(db, o.ID, orders.StatusCancelled)
	assert.ErrorIs(t, err, orders.ErrInvalidTransition)

	var stock catalog.Artwork
	require.NoError(t, db.First(&stock, "id = ?", a.ID).Error)
	assert.Equal(t, 1, stock.Stock)
}

func TestExpireStale(t *testing.T) {
	db := testutil.SetupDB(t)
	old, a := placeOne(t, db)
	fresh, _ := placeOne(t, db)

	require.NoError(t, db.Model(&orders.Order{}).Where("id = ?", old.ID).
		UpdateColumn("created_at", time.Now().Add(-48*time.Hour)).Error)

	n, err := orders.ExpireStale(db, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := orders.Find(db, old.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, got.Status)

	got, err = orders.Find(db, fresh.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, got.Status)

	var back catalog.Artwork
	require.NoError(t, db.First(&back, "id = ?", a.ID).Error)
	assert.Equal(t, 2, back.Stock)
}

// afterOrderRead runs fn once, right after the next query on the orders table.
// It stands in for a concurrent writer landing between a read and the write
// that depends on it. sqlite has a single connection here, so when the read
// happens inside a transaction fn joins it as a savepoint and shares its fate.
func afterOrderRead(t *testing.T, db *gorm.DB, fn func(tx *gorm.DB)) {
	t.Helper()
	fired := false
	err := db.Callback().Query().After("gorm:query").Register("test:after_order_read", func(d *gorm.DB) {
		if fired || d.Statement.Table != "orders" {
			return
		}
		fired = true
		inner := d.Session(&gorm.Session{NewDB: true})
		inner.Error = nil
		fn(inner)
	})
	require.NoError(t, err)
}

func TestCancelRacingCancelReleasesStockOnce(t *testing.T) {
	db := testutil.SetupDB(t)
	o, a := placeOne(t, db)

	afterOrderRead(t, db, func(tx *gorm.DB) {
		_, err := orders.Cancel(tx, o.ID, nil)
		assert.NoError(t, err)
	})

	_, err := orders.Cancel(db, o.ID, nil)
	assert.ErrorIs(t, err, orders.ErrNotCancellable)

	// The loser rolled back together with the interleaved cancel: the order
	// still holds its unit and nothing was put back on the shelf twice.
	got, err := orders.Find(db, o.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, got.Status)
	var back catalog.Artwork
	require.NoError(t, db.First(&back, "id = ?", a.ID).Error)
	assert.Equal(t, 1, back.Stock)

	// without interference the same cancel releases exactly one unit
	_, err = orders.Cancel(db, o.ID, nil)
	require.NoError(t, err)
	require.NoError(t, db.First(&back, "id = ?", a.ID).Error)
	assert.Equal(t, 2, back.Stock)
}

func TestUpdateStatusRacingWriterLoses(t *testing.T) {
	db := testutil.SetupDB(t)
	o, _ := placeOne(t, db)

	afterOrderRead(t, db, func(tx *gorm.DB) {
		_, err := orders.Cancel(tx, o.ID, nil)
		assert.NoError(t, err)
	})

	_, err := orders.UpdateStatus(db, o.ID, orders.StatusPaid)
	assert.ErrorIs(t, err, orders.ErrInvalidTransition)

	got, err := orders.Find(db, o.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, orders.StatusPaid, got.Status)
	assert.Nil(t, got.PaidAt)
}

func TestMarkPaidRacingExpiryKeepsCancelled(t *testing.T) {
	db := testutil.SetupDB(t)
	o, a := placeOne(t, db)
	require.NoError(t, orders.AttachCheckoutSession(db, o.ID, "cs_race"))

	afterOrderRead(t, db, func(tx *gorm.DB) {
		_, err := orders.Cancel(tx, o.ID, nil)
		assert.NoError(t, err)
	})

	got, applied, err := orders.MarkPaid(db, orders.PaymentResult{SessionID: "cs_race", AmountCents: o.TotalCents, Currency: "eur"})
	require.NoError(t, err)
	assert.True(t, applied, "the payment is still recorded")
	assert.Equal(t, orders.StatusCancelled, got.Status)
	assert.Nil(t, got.PaidAt)

	var payments int64
	db.Model(&orders.Payment{}).Where("order_id = ?", o.ID).Count(&payments)
	assert.Equal(t, int64(1), payments)

	var back catalog.Artwork
	require.NoError(t, db.First(&back, "id = ?", a.ID).Error)
	assert.Equal(t, 2, back.Stock)
	assert.Equal(t, catalog.StatusAvailable, back.Status)
}

func TestPlaceReplaysAfterLosingIdempotencyRace(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	a := testutil.CreateArtwork(t, db, artist.ID, testutil.WithStock(5))
	require.NoError(t, cart.AddItem(db, buyer.ID, a.ID, 1))
	in := orders.PlaceInput{IdempotencyKey: "key-1"}

	// The winning request commits after the loser's key lookup missed.
	var winner *orders.Order
	afterOrderRead(t, db, func(tx *gorm.DB) {
		var err error
		winner, err = orders.Place(tx, buyer.ID, in, pricing)
		assert.NoError(t, err)
		assert.NoError(t, cart.AddItem(tx, buyer.ID, a.ID, 1))
	})

	got, err := orders.Place(db, buyer.ID, in, pricing)
	assert.ErrorIs(t, err, orders.ErrIdempotencyReplay)
	require.NotNil(t, winner)
	require.NotNil(t, got)
	assert.Equal(t, winner.ID, got.ID)

	var count int64
	db.Model(&orders.Order{}).Where("user_id = ?", buyer.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	var back catalog.Artwork
	require.NoError(t, db.First(&back, "id = ?", a.ID).Error)
	assert.Equal(t, 4, back.Stock)
}

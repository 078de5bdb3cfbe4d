package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"arvista/internal/app/http/middleware"
	"arvista/internal/domain/cart"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/orders"
	"arvista/internal/domain/users"
	"arvista/internal/infra/cache"
	stripeinfra "arvista/internal/infra/stripe"
	"arvista/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var address = gin.H{
	"shipping_name":    "Ada Lovelace",
	"shipping_line1":   "1 Gallery Road",
	"shipping_city":    "Berlin",
	"shipping_postal":  "10115",
	"shipping_country": "de",
}

func newRouter() *gin.Engine {
	r := gin.New()
	g := r.Group("/api", middleware.AuthMiddleware())
	g.POST("/orders", CreateOrder)
	g.GET("/orders", ListOrders)
	g.GET("/orders/:id", GetOrder)
	g.POST("/orders/:id/cancel", CancelOrder)
	g.POST("/orders/:id/checkout", CheckoutOrder)
	return r
}

func fillCart(t *testing.T, db *gorm.DB, userID uint, artworkID string, qty int) {
	t.Helper()
	require.NoError(t, cart.AddItem(db, userID, artworkID, qty))
}

func placeWithKey(t *testing.T, r http.Handler, tok, key string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(address)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Idempotency-Key", key)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderFromCart(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	unique := testutil.CreateArtwork(t, db, artist.ID, testutil.WithPrice(10000))
	edition := testutil.CreateArtwork(t, db, artist.ID, testutil.WithPrice(7500), testutil.WithStock(5))
	fillCart(t, db, buyer.ID, unique.ID, 1)
	fillCart(t, db, buyer.ID, edition.ID, 2)

	w := testutil.Do(t, newRouter(), http.MethodPost, "/api/orders", address, testutil.Token(t, buyer))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var o orders.Order
	testutil.Decode(t, w, &o)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, int64(25000), o.SubtotalCents)
	assert.Equal(t, int64(1500), o.ShippingCents)
	assert.Equal(t, int64(26500), o.TotalCents)
	assert.Equal(t, "DE", o.ShippingCountry)
	assert.Len(t, o.Items, 2)
	assert.NotEmpty(t, o.Number)

	var a catalog.Artwork
	require.NoError(t, db.First(&a, "id = ?", unique.ID).Error)
	assert.Equal(t, 0, a.Stock)
	assert.Equal(t, catalog.StatusSold, a.Status)
	require.NoError(t, db.First(&a, "id = ?", edition.ID).Error)
	assert.Equal(t, 3, a.Stock)
	assert.Equal(t, catalog.StatusAvailable, a.Status)

	var lines int64
	db.Model(&cart.CartItem{}).Count(&lines)
	assert.Zero(t, lines)
}

func TestCreateOrderFreeShippingAndEmptyCart(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	r := newRouter()
	tok := testutil.Token(t, buyer)

	w := testutil.Do(t, r, http.MethodPost, "/api/orders", address, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := testutil.CreateArtwork(t, db, artist.ID, testutil.WithPrice(50000))
	fillCart(t, db, buyer.ID, big.ID, 1)
	w = testutil.Do(t, r, http.MethodPost, "/api/orders", address, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	var o orders.Order
	testutil.Decode(t, w, &o)
	assert.Zero(t, o.ShippingCents)
	assert.Equal(t, int64(50000), o.TotalCents)
}

func TestCreateOrderValidatesAddress(t *testing.T) {
	db := testutil.SetupDB(t)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)

	w := testutil.Do(t, newRouter(), http.MethodPost, "/api/orders",
		gin.H{"shipping_name": "x", "shipping_line1": "y", "shipping_city": "z", "shipping_postal": "1", "shipping_country": "Germany"},
		testutil.Token(t, buyer))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderIsIdempotent(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	a := testutil.CreateArtwork(t, db, artist.ID, testutil.WithStock(4))
	fillCart(t, db, buyer.ID, a.ID, 1)
	r := newRouter()
	tok := testutil.Token(t, buyer)

	first := placeWithKey(t, r, tok, "checkout-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	// the cart is empty now; a replay must still answer with the same order
	second := placeWithKey(t, r, tok, "checkout-1")
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	var o1, o2 orders.Order
	testutil.Decode(t, first, &o1)
	testutil.Decode(t, second, &o2)
	assert.Equal(t, o1.ID, o2.ID)

	var n int64
	db.Model(&orders.Order{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	other := testutil.CreateUser(t, db, users.RoleCustomer)
	a := testutil.CreateArtwork(t, db, artist.ID)
	fillCart(t, db, buyer.ID, a.ID, 1)
	r := newRouter()
	tok := testutil.Token(t, buyer)

	w := testutil.Do(t, r, http.MethodPost, "/api/orders", address, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	var o orders.Order
	testutil.Decode(t, w, &o)

	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodGet, "/api/orders/"+o.ID, nil, testutil.Token(t, other)).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil, testutil.Token(t, other)).Code)

	w = testutil.Do(t, r, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.Decode(t, w, &o)
	assert.Equal(t, orders.StatusCancelled, o.Status)
	assert.NotNil(t, o.CancelledAt)

	var back catalog.Artwork
	require.NoError(t, db.First(&back, "id = ?", a.ID).Error)
	assert.Equal(t, 1, back.Stock)
	assert.Equal(t, catalog.StatusAvailable, back.Status)

	assert.Equal(t, http.StatusConflict, testutil.Do(t, r, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil, tok).Code)
}

func TestListAndGetOrders(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	admin := testutil.CreateUser(t, db, users.RoleAdmin)
	a := testutil.CreateArtwork(t, db, artist.ID)
	fillCart(t, db, buyer.ID, a.ID, 1)
	r := newRouter()
	tok := testutil.Token(t, buyer)

	w := testutil.Do(t, r, http.MethodPost, "/api/orders", address, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	var o orders.Order
	testutil.Decode(t, w, &o)

	var list []orders.Order
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/orders", nil, tok), &list)
	require.Len(t, list, 1)
	assert.Equal(t, o.ID, list[0].ID)

	assert.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodGet, "/api/orders/"+o.ID, nil, testutil.Token(t, admin)).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodGet, "/api/orders/garbage", nil, tok).Code)
}

func TestCheckoutOrder(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	a := testutil.CreateArtwork(t, db, artist.ID, testutil.WithPrice(4000))
	fillCart(t, db, buyer.ID, a.ID, 1)
	r := newRouter()
	tok := testutil.Token(t, buyer)

	w := testutil.Do(t, r, http.MethodPost, "/api/orders", address, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	var o orders.Order
	testutil.Decode(t, w, &o)

	// no Stripe key in tests
	assert.Equal(t, http.StatusServiceUnavailable, testutil.Do(t, r, http.MethodPost, "/api/orders/"+o.ID+"/checkout", nil, tok).Code)

	var got stripeinfra.CheckoutRequest
	prev := newCheckoutSession
	newCheckoutSession = func(req stripeinfra.CheckoutRequest) (*stripeinfra.CheckoutSession, error) {
		got = req
		return &stripeinfra.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
	}
	t.Cleanup(func() { newCheckoutSession = prev })

	w = testutil.Do(t, r, http.MethodPost, "/api/orders/"+o.ID+"/checkout", nil, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		URL       string `json:"url"`
		SessionID string `json:"session_id"`
	}
	testutil.Decode(t, w, &res)
	assert.Equal(t, "cs_test_1", res.SessionID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", res.URL)

	assert.Equal(t, o.ID, got.OrderID)
	assert.Equal(t, buyer.Email, got.CustomerEmail)
	assert.Equal(t, int64(1500), got.ShippingCents)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(4000), got.Lines[0].UnitAmount)

	var stored orders.Order
	require.NoError(t, db.First(&stored, "id = ?", o.ID).Error)
	require.NotNil(t, stored.StripeSessionID)
	assert.Equal(t, "cs_test_1", *stored.StripeSessionID)

	_, err := orders.Cancel(db, o.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, testutil.Do(t, r, http.MethodPost, "/api/orders/"+o.ID+"/checkout", nil, tok).Code)
}

func TestOrderStockChangesInvalidateCatalog(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SetupCache(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	a := testutil.CreateArtwork(t, db, artist.ID)
	fillCart(t, db, buyer.ID, a.ID, 1)
	r := newRouter()
	tok := testutil.Token(t, buyer)
	ctx := context.Background()

	before := cache.CatalogKey(ctx, "artworks:")
	w := testutil.Do(t, r, http.MethodPost, "/api/orders", address, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var o orders.Order
	testutil.Decode(t, w, &o)

	afterPlace := cache.CatalogKey(ctx, "artworks:")
	assert.NotEqual(t, before, afterPlace, "the sold artwork must drop out of cached listings")

	require.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil, tok).Code)
	assert.NotEqual(t, afterPlace, cache.CatalogKey(ctx, "artworks:"), "the released artwork must come back")

	// a rejected cancel changes nothing
	afterCancel := cache.CatalogKey(ctx, "artworks:")
	assert.Equal(t, http.StatusConflict, testutil.Do(t, r, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil, tok).Code)
	assert.Equal(t, afterCancel, cache.CatalogKey(ctx, "artworks:"))
}

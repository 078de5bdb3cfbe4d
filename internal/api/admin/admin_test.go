package admin

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"arvista/internal/app/http/middleware"
	"arvista/internal/domain/cart"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/inbox"
	"arvista/internal/domain/orders"
	"arvista/internal/domain/users"
	"arvista/internal/infra/cache"
	"arvista/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRouter() *gin.Engine {
	r := gin.New()
	g := r.Group("/api/admin", middleware.AuthMiddleware(), middleware.RequireRole(users.RoleAdmin))
	g.GET("/stats", GetAdminStats)
	g.GET("/users", ListAllUsers)
	g.GET("/users/:id", GetUserDetails)
	g.PATCH("/users/:id/role", UpdateUserRole)
	g.GET("/orders", ListOrders)
	g.PATCH("/orders/:id/status", UpdateOrderStatus)
	g.GET("/payments", ListAllPayments)
	g.GET("/contact", ListContactMessages)
	g.PATCH("/contact/:id", UpdateContactMessage)
	g.DELETE("/contact/:id", DeleteContactMessage)
	g.GET("/newsletter", ListSubscribers)
	return r
}

func placeOrder(t *testing.T, db *gorm.DB, buyerID uint, a catalog.Artwork) *orders.Order {
	t.Helper()
	require.NoError(t, cart.AddItem(db, buyerID, a.ID, 1))
	o, err := orders.Place(db, buyerID, orders.PlaceInput{}, orders.Pricing{Currency: "eur"})
	require.NoError(t, err)
	return o
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	db := testutil.SetupDB(t)
	customer := testutil.CreateUser(t, db, users.RoleCustomer)

	assert.Equal(t, http.StatusForbidden, testutil.Do(t, newRouter(), http.MethodGet, "/api/admin/stats", nil, testutil.Token(t, customer)).Code)
	assert.Equal(t, http.StatusUnauthorized, testutil.Do(t, newRouter(), http.MethodGet, "/api/admin/stats", nil, "").Code)
}

func TestAdminStats(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.CreateUser(t, db, users.RoleAdmin)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	paid := placeOrder(t, db, buyer.ID, testutil.CreateArtwork(t, db, artist.ID, testutil.WithPrice(12000)))
	placeOrder(t, db, buyer.ID, testutil.CreateArtwork(t, db, artist.ID, testutil.WithPrice(3000)))
	testutil.CreateArtwork(t, db, artist.ID, testutil.WithStatus(catalog.StatusDraft))
	_, err := orders.UpdateStatus(db, paid.ID, orders.StatusPaid)
	require.NoError(t, err)
	require.NoError(t, db.Create(&inbox.ContactMessage{Name: "x", Email: "x@y.z", Message: "hi", Status: inbox.ContactNew}).Error)
	_, _, err = inbox.Subscribe(db, "fan@arvista.test")
	require.NoError(t, err)

	w := testutil.Do(t, newRouter(), http.MethodGet, "/api/admin/stats", nil, testutil.Token(t, admin))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var s AdminStats
	testutil.Decode(t, w, &s)
	assert.Equal(t, int64(3), s.TotalUsers)
	assert.Equal(t, int64(3), s.TotalArtworks)
	assert.Equal(t, int64(2), s.ArtworksByStatus[catalog.StatusSold])
	assert.Equal(t, int64(1), s.ArtworksByStatus[catalog.StatusDraft])
	assert.Equal(t, int64(1), s.OrdersByStatus[orders.StatusPaid])
	assert.Equal(t, int64(1), s.OrdersByStatus[orders.StatusPending])
	assert.Equal(t, 120.0, s.TotalRevenue)
	assert.Equal(t, 120.0, s.RecentRevenue)
	assert.Equal(t, int64(2), s.RecentOrdersPlaced)
	assert.Equal(t, int64(1), s.NewContactMessages)
	assert.Equal(t, int64(1), s.ActiveSubscribers)
}

func TestAdminUsers(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.CreateUser(t, db, users.RoleAdmin)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	placeOrder(t, db, buyer.ID, testutil.CreateArtwork(t, db, artist.ID))
	r := newRouter()
	tok := testutil.Token(t, admin)

	var list struct {
		Items []AdminUser `json:"items"`
	}
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/admin/users?role=customer", nil, tok), &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, buyer.ID, list.Items[0].ID)
	assert.Equal(t, int64(1), list.Items[0].OrderCount)

	list.Items = nil
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/admin/users?search="+artist.Email, nil, tok), &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, artist.ID, list.Items[0].ID)

	assert.Equal(t, http.StatusBadRequest, testutil.Do(t, r, http.MethodGet, "/api/admin/users?role=owner", nil, tok).Code)

	w := testutil.Do(t, r, http.MethodGet, fmt.Sprintf("/api/admin/users/%d", buyer.ID), nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), buyer.Email)

	w = testutil.Do(t, r, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/role", buyer.ID), gin.H{"role": users.RoleArtist}, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stored users.User
	require.NoError(t, db.First(&stored, buyer.ID).Error)
	assert.Equal(t, users.RoleArtist, stored.Role)

	w = testutil.Do(t, r, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/role", admin.ID), gin.H{"role": users.RoleCustomer}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code, "admins cannot demote themselves")
	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodPatch, "/api/admin/users/999/role", gin.H{"role": users.RoleArtist}, tok).Code)
}

func TestAdminOrderStatus(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.CreateUser(t, db, users.RoleAdmin)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	o := placeOrder(t, db, buyer.ID, testutil.CreateArtwork(t, db, artist.ID))
	r := newRouter()
	tok := testutil.Token(t, admin)
	path := "/api/admin/orders/" + o.ID + "/status"

	assert.Equal(t, http.StatusConflict, testutil.Do(t, r, http.MethodPatch, path, gin.H{"status": orders.StatusDelivered}, tok).Code)
	assert.Equal(t, http.StatusBadRequest, testutil.Do(t, r, http.MethodPatch, path, gin.H{"status": "teleported"}, tok).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodPatch, "/api/admin/orders/nope/status", gin.H{"status": orders.StatusPaid}, tok).Code)

	w := testutil.Do(t, r, http.MethodPatch, path, gin.H{"status": orders.StatusPaid}, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page struct {
		Items []orders.Order `json:"items"`
	}
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/admin/orders?status=paid", nil, tok), &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, o.ID, page.Items[0].ID)

	assert.Equal(t, http.StatusBadRequest, testutil.Do(t, r, http.MethodGet, "/api/admin/orders?status=lost", nil, tok).Code)
}

func TestAdminPayments(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.CreateUser(t, db, users.RoleAdmin)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	o := placeOrder(t, db, buyer.ID, testutil.CreateArtwork(t, db, artist.ID, testutil.WithPrice(8800)))
	_, _, err := orders.MarkPaid(db, orders.PaymentResult{SessionID: "cs_admin", OrderID: o.ID, AmountCents: 8800, Currency: "eur"})
	require.NoError(t, err)

	var list []AdminPayment
	testutil.Decode(t, testutil.Do(t, newRouter(), http.MethodGet, "/api/admin/payments", nil, testutil.Token(t, admin)), &list)
	require.Len(t, list, 1)
	assert.Equal(t, o.Number, list[0].OrderNumber)
	assert.Equal(t, buyer.Email, list[0].Email)
	assert.Equal(t, 88.0, list[0].Amount)
}

func TestAdminInbox(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.CreateUser(t, db, users.RoleAdmin)
	msg := inbox.ContactMessage{Name: "x", Email: "x@y.z", Message: "hi", Status: inbox.ContactNew}
	require.NoError(t, db.Create(&msg).Error)
	r := newRouter()
	tok := testutil.Token(t, admin)
	path := fmt.Sprintf("/api/admin/contact/%d", msg.ID)

	assert.Equal(t, http.StatusBadRequest, testutil.Do(t, r, http.MethodPatch, path, gin.H{"status": "spam"}, tok).Code)
	require.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodPatch, path, gin.H{"status": inbox.ContactRead}, tok).Code)

	var page struct {
		Items []inbox.ContactMessage `json:"items"`
	}
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/admin/contact?status=read", nil, tok), &page)
	require.Len(t, page.Items, 1)

	require.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodDelete, path, nil, tok).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodDelete, path, nil, tok).Code)

	_, _, err := inbox.Subscribe(db, "reader@arvista.test")
	require.NoError(t, err)
	var subs struct {
		Items []inbox.NewsletterSubscription `json:"items"`
	}
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/admin/newsletter?status=active", nil, tok), &subs)
	require.Len(t, subs.Items, 1)
	assert.Equal(t, "reader@arvista.test", subs.Items[0].Email)

	subs.Items = nil
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/admin/newsletter?status=unsubscribed", nil, tok), &subs)
	assert.Empty(t, subs.Items)
	assert.Equal(t, http.StatusBadRequest, testutil.Do(t, r, http.MethodGet, "/api/admin/newsletter?status=bounced", nil, tok).Code)
}

func TestAdminCancelInvalidatesCatalog(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SetupCache(t)
	admin := testutil.CreateUser(t, db, users.RoleAdmin)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	buyer := testutil.CreateUser(t, db, users.RoleCustomer)
	o := placeOrder(t, db, buyer.ID, testutil.CreateArtwork(t, db, artist.ID))
	r := newRouter()
	tok := testutil.Token(t, admin)
	path := "/api/admin/orders/" + o.ID + "/status"
	ctx := context.Background()

	key := cache.CatalogKey(ctx, "artworks:")
	require.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodPatch, path, gin.H{"status": orders.StatusPaid}, tok).Code)
	assert.Equal(t, key, cache.CatalogKey(ctx, "artworks:"), "paying does not touch stock")

	require.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodPatch, path, gin.H{"status": orders.StatusCancelled}, tok).Code)
	assert.NotEqual(t, key, cache.CatalogKey(ctx, "artworks:"))

	var a catalog.Artwork
	require.NoError(t, db.First(&a, "id = ?", o.Items[0].ArtworkID).Error)
	assert.Equal(t, catalog.StatusAvailable, a.Status)
}

package orders

import (
	"errors"
	"net/http"
	"strings"

	"arvista/config"
	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/orders"
	"arvista/internal/domain/users"
	"arvista/internal/infra/metrics"
	stripeinfra "arvista/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// newCheckoutSession is swapped in tests.
var newCheckoutSession = stripeinfra.CreateCheckoutSession

type CreateOrderRequest struct {
	ShippingName    string `json:"shipping_name" binding:"required,max=120"`
	ShippingLine1   string `json:"shipping_line1" binding:"required,max=200"`
	ShippingLine2   string `json:"shipping_line2" binding:"max=200"`
	ShippingCity    string `json:"shipping_city" binding:"required,max=120"`
	ShippingPostal  string `json:"shipping_postal" binding:"required,max=20"`
	ShippingCountry string `json:"shipping_country" binding:"required,len=2"`
	Phone           string `json:"phone" binding:"max=40"`
	Notes           string `json:"notes" binding:"max=1000"`
}

func pricing() orders.Pricing {
	return orders.Pricing{
		Currency:              config.CURRENCY,
		ShippingFeeCents:      config.SHIPPING_FEE,
		FreeShippingThreshold: config.FREE_SHIPPING_THRESHOLD,
	}
}

func writeOrderError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, orders.ErrEmptyCart), errors.Is(err, orders.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrInsufficientStock),
		errors.Is(err, orders.ErrUnavailable),
		errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrNotCancellable),
		errors.Is(err, orders.ErrNotPayable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		common.InternalError(c, msg, err)
	}
}

// POST /orders
func CreateOrder(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := orders.PlaceInput{
		ShippingAddress: orders.ShippingAddress{
			ShippingName:    strings.TrimSpace(req.ShippingName),
			ShippingLine1:   strings.TrimSpace(req.ShippingLine1),
			ShippingLine2:   strings.TrimSpace(req.ShippingLine2),
			ShippingCity:    strings.TrimSpace(req.ShippingCity),
			ShippingPostal:  strings.TrimSpace(req.ShippingPostal),
			ShippingCountry: strings.ToUpper(strings.TrimSpace(req.ShippingCountry)),
			Phone:           strings.TrimSpace(req.Phone),
		},
		Notes:          strings.TrimSpace(req.Notes),
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	}

	order, err := orders.Place(database.DB, userID, in, pricing())
	if errors.Is(err, orders.ErrIdempotencyReplay) {
		c.JSON(http.StatusOK, order)
		return
	}
	if err != nil {
		writeOrderError(c, "Failed to create order", err)
		return
	}

	metrics.OrdersPlaced.Inc()
	common.InvalidateCatalog(c)
	zerolog.Ctx(c.Request.Context()).Info().
		Str("order", order.Number).
		Int64("total_cents", order.TotalCents).
		Msg("order placed")

	c.JSON(http.StatusCreated, order)
}

// GET /orders
func ListOrders(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	var list []orders.Order
	if err := database.DB.
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		common.InternalError(c, "Failed to load orders", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /orders/:id
func GetOrder(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	order, err := orders.Find(database.DB, c.Param("id"), ownerScope(c, userID))
	if err != nil {
		writeOrderError(c, "Failed to load order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// POST /orders/:id/cancel
func CancelOrder(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	order, err := orders.Cancel(database.DB, c.Param("id"), ownerScope(c, userID))
	if err != nil {
		writeOrderError(c, "Failed to cancel order", err)
		return
	}
	common.InvalidateCatalog(c)
	c.JSON(http.StatusOK, order)
}

// POST /orders/:id/checkout returns the hosted payment page for a pending order.
func CheckoutOrder(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	order, err := orders.Find(database.DB, c.Param("id"), &userID)
	if err != nil {
		writeOrderError(c, "Failed to load order", err)
		return
	}
	if order.Status != orders.StatusPending {
		writeOrderError(c, "", orders.ErrNotPayable)
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	req := stripeinfra.CheckoutRequest{
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		Currency:      order.Currency,
		CustomerEmail: user.Email,
		ShippingCents: order.ShippingCents,
		SuccessURL:    config.APP_URL + "/orders/" + order.ID + "?paid=1",
		CancelURL:     config.APP_URL + "/orders/" + order.ID + "?canceled=1",
	}
	for _, it := range order.Items {
		req.Lines = append(req.Lines, stripeinfra.CheckoutLine{
			Name:       it.Title,
			UnitAmount: it.UnitPriceCents,
			Quantity:   int64(it.Quantity),
		})
	}

	session, err := newCheckoutSession(req)
	if errors.Is(err, stripeinfra.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not configured"})
		return
	}
	if err != nil {
		common.InternalError(c, "Failed to create checkout session", err)
		return
	}

	if err := orders.AttachCheckoutSession(database.DB, order.ID, session.ID); err != nil {
		common.InternalError(c, "Failed to store checkout session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": session.URL, "session_id": session.ID})
}

// ownerScope returns nil for admins so they can act on any order.
func ownerScope(c *gin.Context, userID uint) *uint {
	if common.IsAdmin(c) {
		return nil
	}
	return &userID
}

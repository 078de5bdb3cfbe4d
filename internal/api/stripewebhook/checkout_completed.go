package stripewebhooks

import (
	"errors"

	"arvista/database"
	"arvista/internal/domain/orders"
	"arvista/internal/infra/metrics"
	stripeinfra "arvista/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
)

var (
	errNotPaidYet   = errors.New("checkout session not paid yet")
	errUnknownOrder = errors.New("checkout session does not match an order")
)

func handleCheckoutSessionCompleted(c *gin.Context, session *stripe.CheckoutSession) error {
	// Delayed payment methods complete the session before the money arrives.
	if stripeinfra.NormalizePaymentStatus(string(session.PaymentStatus)) != "paid" {
		return errNotPaidYet
	}

	res := orders.PaymentResult{
		OrderID:     orderIDFromSession(session),
		SessionID:   session.ID,
		AmountCents: session.AmountTotal,
		Currency:    string(session.Currency),
	}
	if session.PaymentIntent != nil {
		res.PaymentIntentID = session.PaymentIntent.ID
	}

	order, applied, err := orders.MarkPaid(database.DB, res)
	if errors.Is(err, orders.ErrNotFound) {
		return errUnknownOrder
	}
	if err != nil {
		return err
	}

	if !applied {
		return nil
	}
	if order.Status == orders.StatusPaid {
		metrics.OrdersPaid.Inc()
	}
	zerolog.Ctx(c.Request.Context()).Info().
		Str("order", order.Number).
		Str("status", order.Status).
		Msg("checkout session applied")
	return nil
}

// orderIDFromSession prefers metadata and falls back to the client reference.
func orderIDFromSession(s *stripe.CheckoutSession) string {
	if s.Metadata != nil && s.Metadata["order_id"] != "" {
		return s.Metadata["order_id"]
	}
	return s.ClientReferenceID
}
